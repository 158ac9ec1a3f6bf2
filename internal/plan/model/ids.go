package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Counters hold the next numeric suffix per id prefix. They are part of the
// snapshot so that replaying an intent log reproduces the same ids.
type Counters struct {
	NextWall       uint64 `json:"next_wall"`
	NextOpening    uint64 `json:"next_opening"`
	NextRoom       uint64 `json:"next_room"`
	NextObject     uint64 `json:"next_object"`
	NextPool       uint64 `json:"next_pool"`
	NextFoundation uint64 `json:"next_foundation"`
	NextStairs     uint64 `json:"next_stairs"`
	NextRoof       uint64 `json:"next_roof"`
}

const (
	prefixWall       = "W"
	prefixOpening    = "O"
	prefixRoom       = "R"
	prefixObject     = "B"
	prefixPool       = "P"
	prefixFoundation = "F"
	prefixStairs     = "S"
	prefixRoof       = "T"
)

func nextID(prefix string, n *uint64) string {
	*n++
	return fmt.Sprintf("%s%06d", prefix, *n)
}

// ParseUintAfterPrefix parses ids of the form <prefix><digits>.
func ParseUintAfterPrefix(prefix, id string) (uint64, bool) {
	if !strings.HasPrefix(id, prefix) {
		return 0, false
	}
	n, err := strconv.ParseUint(id[len(prefix):], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func bumpPast(prefix, id string, n *uint64) {
	if v, ok := ParseUintAfterPrefix(prefix, id); ok && v > *n {
		*n = v
	}
}
