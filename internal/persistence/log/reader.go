package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zstd"
)

// Files lists the intent log segments of planDir in seq order.
func Files(planDir string) ([]string, error) {
	dir := filepath.Join(planDir, "intents")
	ents, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		if _, ok := SegmentFirstSeq(e.Name()); !ok {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// ReadFile streams every entry of one segment to fn. A segment may hold
// several concatenated zstd frames.
func ReadFile(path string, fn func(Entry) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return fmt.Errorf("%s:%d: %w", filepath.Base(path), line, err)
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return sc.Err()
}

// ReadAll streams the entries of every segment under planDir with
// Seq > after, in order. Segments wholly at or below after are not opened.
func ReadAll(planDir string, after uint64, fn func(Entry) error) error {
	files, err := Files(planDir)
	if err != nil {
		return err
	}
	for i, p := range files {
		if i+1 < len(files) {
			if next, _ := SegmentFirstSeq(files[i+1]); next <= after+1 {
				continue
			}
		}
		err := ReadFile(p, func(e Entry) error {
			if e.Seq <= after {
				return nil
			}
			return fn(e)
		})
		if err != nil {
			return err
		}
	}
	return nil
}
