package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	persistlog "plotcraft.ai/internal/persistence/log"
	"plotcraft.ai/internal/persistence/snapshot"
	"plotcraft.ai/internal/plan/model"
	"plotcraft.ai/internal/site"
	"plotcraft.ai/internal/tuning"
)

func main() {
	var (
		planDir    = flag.String("plan", "", "plan data directory (<data>/plans/<id>)")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (optional, defaults otherwise)")
		layoutOut  = flag.String("layout", "", "write the restored layout as JSON to this path (- for stdout)")
	)
	flag.Parse()

	if *planDir == "" {
		fmt.Fprintln(os.Stderr, "missing -plan")
		os.Exit(2)
	}

	tune := tuning.Defaults()
	if *tuningPath != "" {
		t, err := tuning.Load(*tuningPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "load tuning:", err)
			os.Exit(1)
		}
		tune = t
	}

	planID := filepath.Base(filepath.Clean(*planDir))
	if path := snapshot.Latest(filepath.Join(*planDir, "snapshots")); path != "" {
		h, err := snapshot.ReadHeader(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read snapshot header:", err)
			os.Exit(1)
		}
		fmt.Printf("snapshot %s v%d seq=%d checkpoints=%d size=%s written %s\n",
			filepath.Base(path), h.Version, h.Seq, h.Checkpoints, fileSize(path),
			humanize.Time(time.UnixMilli(h.UnixMS)))
		if h.TuningDigest != "" && h.TuningDigest != tune.Digest() {
			fmt.Printf("  note: snapshot tuning digest %s differs from %s\n", short(h.TuningDigest), short(tune.Digest()))
		}
	} else {
		fmt.Println("no snapshot; replaying from an empty plan")
	}

	files, err := persistlog.Files(*planDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list intent logs:", err)
		os.Exit(1)
	}
	for _, f := range files {
		fmt.Printf("log %s size=%s\n", filepath.Base(f), fileSize(f))
	}

	p, info, err := site.Restore(*planDir, planID, tune.ModelConfig())
	if err != nil {
		fmt.Fprintln(os.Stderr, "restore:", err)
		os.Exit(1)
	}
	fmt.Printf("plan=%s seq=%s replayed=%s rejected=%s\n",
		planID, humanize.Comma(int64(info.Seq)), humanize.Comma(int64(info.Entries)), humanize.Comma(int64(info.Rejected)))
	printStats(p.Stats())

	if *layoutOut == "" {
		return
	}
	b, err := json.MarshalIndent(p.Export(), "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "encode layout:", err)
		os.Exit(1)
	}
	if *layoutOut == "-" {
		_, _ = os.Stdout.Write(append(b, '\n'))
		return
	}
	if err := os.WriteFile(*layoutOut, append(b, '\n'), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "write layout:", err)
		os.Exit(1)
	}
}

func printStats(s model.Stats) {
	fmt.Printf("  walls=%d openings=%d rooms=%d objects=%d buildings=%d pools=%d foundations=%d stairs=%d roofs=%d\n",
		s.Walls, s.Openings, s.Rooms, s.Objects, s.Buildings, s.Pools, s.Foundations, s.Stairs, s.Roofs)
}

func fileSize(path string) string {
	st, err := os.Stat(path)
	if err != nil {
		return "?"
	}
	return humanize.Bytes(uint64(st.Size()))
}

func short(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}
