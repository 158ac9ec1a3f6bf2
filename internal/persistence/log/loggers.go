package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"

	"plotcraft.ai/internal/plan/intent"
)

// DefaultSegmentEntries caps how many batches one log segment holds.
const DefaultSegmentEntries = 4096

const segmentExt = ".jsonl.zst"

// Entry is one dispatched batch. Seq orders entries within a plan.
type Entry struct {
	Seq       uint64            `json:"seq"`
	PlanID    string            `json:"plan_id"`
	SessionID string            `json:"session_id,omitempty"`
	UnixMS    int64             `json:"unix_ms"`
	Intents   []intent.Envelope `json:"intents"`
	Rejected  int               `json:"rejected,omitempty"`
}

// SegmentName is the file name of the segment whose first entry is firstSeq.
// The zero padding keeps lexical order equal to seq order.
func SegmentName(firstSeq uint64) string {
	return fmt.Sprintf("intents-%020d%s", firstSeq, segmentExt)
}

// SegmentFirstSeq parses a name produced by SegmentName.
func SegmentFirstSeq(name string) (uint64, bool) {
	s, ok := strings.CutPrefix(filepath.Base(name), "intents-")
	if !ok {
		return 0, false
	}
	s, ok = strings.CutSuffix(s, segmentExt)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// IntentLogger appends batches to zstd-compressed JSONL segments under
// planDir/intents. A new segment starts when the open one is full and on
// every reopen, so a segment never continues a frame written by an earlier
// process.
type IntentLogger struct {
	dir        string
	maxEntries int

	mu      sync.Mutex
	lastSeq uint64
	count   int
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func NewIntentLogger(planDir string) *IntentLogger {
	return NewSegmentedLogger(filepath.Join(planDir, "intents"), DefaultSegmentEntries)
}

// NewSegmentedLogger writes segments of at most maxEntries batches to dir.
func NewSegmentedLogger(dir string, maxEntries int) *IntentLogger {
	if maxEntries <= 0 {
		maxEntries = DefaultSegmentEntries
	}
	return &IntentLogger{dir: dir, maxEntries: maxEntries}
}

func (l *IntentLogger) WriteEntry(e Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.lastSeq != 0 && e.Seq <= l.lastSeq {
		return fmt.Errorf("intent log: seq %d does not follow %d", e.Seq, l.lastSeq)
	}
	if l.enc == nil || l.count >= l.maxEntries {
		if err := l.rotateLocked(e.Seq); err != nil {
			return err
		}
	}

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := l.w.Write(b); err != nil {
		return err
	}
	if err := l.w.WriteByte('\n'); err != nil {
		return err
	}
	if err := l.w.Flush(); err != nil {
		return err
	}
	if err := l.enc.Flush(); err != nil {
		return err
	}
	l.count++
	l.lastSeq = e.Seq
	return nil
}

func (l *IntentLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closeLocked()
}

func (l *IntentLogger) rotateLocked(firstSeq uint64) error {
	if err := l.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(l.dir, SegmentName(firstSeq)), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	l.f = f
	l.enc = enc
	l.w = bufio.NewWriterSize(enc, 128*1024)
	l.count = 0
	return nil
}

func (l *IntentLogger) closeLocked() error {
	var err1 error
	if l.w != nil {
		_ = l.w.Flush()
	}
	if l.enc != nil {
		err1 = l.enc.Close()
		l.enc = nil
	}
	if l.f != nil {
		_ = l.f.Close()
		l.f = nil
	}
	l.w = nil
	return err1
}
