package site

import (
	"plotcraft.ai/internal/plan/intent"
	"plotcraft.ai/internal/plan/logic/collide"
	"plotcraft.ai/internal/plan/tools"
	"plotcraft.ai/internal/protocol"
)

// applied builds the APPLIED reply for one handled event.
func (s *Site) applied(seq uint64, sess tools.Session, res intent.Outcome) protocol.AppliedMsg {
	msg := protocol.AppliedMsg{
		Type:     protocol.TypeApplied,
		Seq:      seq,
		Tool:     string(sess.Tool),
		State:    sess.State.Name(),
		Buffer:   sess.Buffer,
		Points:   sess.Points(),
		Selected: sess.Selection.ID,
		Intents:  res.Applied,
		Rejected: res.Rejected,
		Overlaps: collide.Flagged(collide.NewIndex(s.plan.Footprints()).Overlapping()),
	}
	if sess.HasPreview {
		msg.Preview = &protocol.Preview{Point: sess.Preview.Point, Kind: sess.Preview.Kind}
	}
	return msg
}
