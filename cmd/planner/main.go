package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"plotcraft.ai/internal/catalog"
	"plotcraft.ai/internal/persistence/indexdb"
	"plotcraft.ai/internal/site"
	"plotcraft.ai/internal/tuning"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		dataDir    = flag.String("data", "./data", "runtime data directory (empty keeps plans in memory)")
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		catalogDir = flag.String("catalog", "./configs/catalog", "comparison object and building catalog directory (empty to disable)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite index (checkpoints, rejections, snapshot metadata)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[planner] ", log.LstdFlags|log.Lmicroseconds)

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", *tuningPath)
		tune = tuning.Defaults()
	}

	var cat *catalog.Catalog
	if dir := strings.TrimSpace(*catalogDir); dir != "" {
		cat, err = catalog.Load(dir)
		if err != nil {
			logger.Fatalf("load catalog: %v", err)
		}
		logger.Printf("catalog: objects=%d buildings=%d digest=%s", len(cat.Objects.ByID), len(cat.Buildings.ByID), cat.Digest()[:12])
	}

	var idx *indexdb.SQLiteIndex
	if !*disableDB && strings.TrimSpace(*dataDir) != "" {
		idx, err = indexdb.OpenSQLite(filepath.Join(*dataDir, "index", "plans.sqlite"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
	}

	ctx, cancel := signalContext()
	defer cancel()

	mgr := site.NewManager(ctx, site.ManagerConfig{
		DataDir: strings.TrimSpace(*dataDir),
		Tuning:  tune,
		Index:   idx,
		Logger:  logger,
	})
	defer mgr.Close()

	srv := &http.Server{
		Addr:              *addr,
		Handler:           newAPI(mgr, idx, cat, logger).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s data=%s tuning=%s", *addr, *dataDir, tune.Digest()[:12])
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
