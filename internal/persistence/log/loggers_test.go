package log

import (
	"os"
	"path/filepath"
	"testing"

	"plotcraft.ai/internal/plan/intent"
	"plotcraft.ai/internal/plan/model"
)

func testEnvelopes(t *testing.T) []intent.Envelope {
	t.Helper()
	envs, err := intent.EncodeAll([]intent.Intent{
		intent.AddWalls{Points: []model.Vec2{{X: 0, Z: 0}, {X: 4, Z: 0}}},
		intent.Checkpoint{Reason: "wall"},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return envs
}

func writeSeqs(t *testing.T, l *IntentLogger, envs []intent.Envelope, from, to uint64) {
	t.Helper()
	for seq := from; seq <= to; seq++ {
		if err := l.WriteEntry(Entry{Seq: seq, PlanID: "P1", UnixMS: int64(seq), Intents: envs}); err != nil {
			t.Fatalf("write %d: %v", seq, err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestIntentLogRoundTrip(t *testing.T) {
	dir := t.TempDir()
	envs := testEnvelopes(t)
	writeSeqs(t, NewIntentLogger(dir), envs, 1, 3)

	files, err := Files(dir)
	if err != nil || len(files) != 1 || filepath.Base(files[0]) != SegmentName(1) {
		t.Fatalf("files=%v err=%v", files, err)
	}

	var seqs []uint64
	err = ReadAll(dir, 1, func(e Entry) error {
		seqs = append(seqs, e.Seq)
		in, err := intent.Decode(e.Intents[0])
		if err != nil {
			return err
		}
		if aw := in.(intent.AddWalls); len(aw.Points) != 2 {
			t.Fatalf("decoded %+v", aw)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(seqs) != 2 || seqs[0] != 2 || seqs[1] != 3 {
		t.Fatalf("seqs=%v", seqs)
	}
}

func TestIntentLogSegmentsBySeq(t *testing.T) {
	planDir := t.TempDir()
	dir := filepath.Join(planDir, "intents")
	envs := testEnvelopes(t)

	writeSeqs(t, NewSegmentedLogger(dir, 2), envs, 1, 5)
	// A reopened logger starts its own segment at the next seq.
	writeSeqs(t, NewSegmentedLogger(dir, 2), envs, 6, 6)

	files, err := Files(planDir)
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	want := []uint64{1, 3, 5, 6}
	if len(files) != len(want) {
		t.Fatalf("files=%v", files)
	}
	for i, f := range files {
		if got, ok := SegmentFirstSeq(f); !ok || got != want[i] {
			t.Fatalf("segment %d: %s", i, f)
		}
	}

	// Segments covered by the snapshot are skipped unread.
	if err := os.WriteFile(files[0], []byte("not zstd"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(files[1], []byte("not zstd"), 0o644); err != nil {
		t.Fatal(err)
	}
	var seqs []uint64
	err = ReadAll(planDir, 4, func(e Entry) error {
		seqs = append(seqs, e.Seq)
		return nil
	})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(seqs) != 2 || seqs[0] != 5 || seqs[1] != 6 {
		t.Fatalf("seqs=%v", seqs)
	}
}

func TestIntentLogRejectsSeqRegression(t *testing.T) {
	l := NewIntentLogger(t.TempDir())
	defer l.Close()
	envs := testEnvelopes(t)
	if err := l.WriteEntry(Entry{Seq: 4, Intents: envs}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := l.WriteEntry(Entry{Seq: 4, Intents: envs}); err == nil {
		t.Fatalf("repeated seq accepted")
	}
}

func TestSegmentFirstSeq(t *testing.T) {
	if n, ok := SegmentFirstSeq(SegmentName(1234)); !ok || n != 1234 {
		t.Fatalf("n=%d ok=%v", n, ok)
	}
	for _, name := range []string{"intents-2026-03-01-10.jsonl.zst", "other-1.jsonl.zst", "intents-1.json"} {
		if _, ok := SegmentFirstSeq(name); ok {
			t.Fatalf("%s parsed", name)
		}
	}
}

func TestFilesMissingDir(t *testing.T) {
	files, err := Files(t.TempDir())
	if err != nil || len(files) != 0 {
		t.Fatalf("files=%v err=%v", files, err)
	}
}
