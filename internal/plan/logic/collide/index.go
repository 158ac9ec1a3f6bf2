package collide

import (
	"sort"

	"github.com/dhconnelly/rtreego"

	"plotcraft.ai/internal/plan/model"
)

// pad widens the broad-phase rectangles so that zero-area and touching boxes
// are still reported as candidates. The narrow phase decides.
const pad = 1e-6

type entry struct {
	id         string
	box        Box
	axisAlign  bool
	insertedAt int
}

func (e *entry) Bounds() rtreego.Rect {
	r, _ := rtreego.NewRect(
		rtreego.Point{e.box.MinX - pad, e.box.MinZ - pad},
		[]float64{e.box.Width() + 2*pad, e.box.Length() + 2*pad},
	)
	return r
}

// Pair is one overlapping pair of footprints, A enumerated before B.
type Pair struct {
	A string `json:"a"`
	B string `json:"b"`
	// Approximate is set when either footprint is rotated off-axis and the
	// test used its enclosing box.
	Approximate bool `json:"approximate,omitempty"`
}

// Index holds footprint boxes for the standing overlap pass.
type Index struct {
	tree    *rtreego.Rtree
	entries []*entry
}

func NewIndex(objects []model.PlacedObject) *Index {
	idx := &Index{tree: rtreego.NewTree(2, 4, 16)}
	for _, o := range objects {
		idx.Insert(o)
	}
	return idx
}

func (idx *Index) Insert(o model.PlacedObject) {
	box, aligned := ObjectBounds(o)
	e := &entry{id: o.ID, box: box, axisAlign: aligned, insertedAt: len(idx.entries)}
	idx.entries = append(idx.entries, e)
	idx.tree.Insert(e)
}

func (idx *Index) Len() int { return len(idx.entries) }

// Overlapping returns every overlapping pair, ordered by the insertion order
// of A and then of B.
func (idx *Index) Overlapping() []Pair {
	var out []Pair
	for _, a := range idx.entries {
		hits := idx.tree.SearchIntersect(a.Bounds())
		var bs []*entry
		for _, h := range hits {
			b := h.(*entry)
			if b.insertedAt <= a.insertedAt || !Overlaps(a.box, b.box) {
				continue
			}
			bs = append(bs, b)
		}
		sort.Slice(bs, func(i, j int) bool { return bs[i].insertedAt < bs[j].insertedAt })
		for _, b := range bs {
			out = append(out, Pair{A: a.id, B: b.id, Approximate: !a.axisAlign || !b.axisAlign})
		}
	}
	return out
}

// Flagged returns the sorted ids of every footprint involved in an overlap.
func Flagged(pairs []Pair) []string {
	seen := map[string]bool{}
	for _, p := range pairs {
		seen[p.A] = true
		seen[p.B] = true
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
