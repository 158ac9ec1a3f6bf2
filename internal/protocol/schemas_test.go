package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"plotcraft.ai/internal/plan/intent"
	"plotcraft.ai/internal/plan/logic/snap"
	"plotcraft.ai/internal/plan/model"
	"plotcraft.ai/internal/plan/tools"
	"plotcraft.ai/internal/protocol"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		b, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var generic any
		if err := json.Unmarshal(b, &generic); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if err := s.Validate(generic); err != nil {
			t.Fatalf("validate %s: %v", b, err)
		}
	}

	validate(compile("hello.schema.json"), protocol.HelloMsg{
		Type: protocol.TypeHello, ProtocolVersion: protocol.Version, ClientName: "browser",
	})
	validate(compile("welcome.schema.json"), protocol.WelcomeMsg{
		Type: protocol.TypeWelcome, ProtocolVersion: protocol.Version,
		SessionID: "S000001", PlanID: "P1", TuningDigest: "abc",
	})
	validate(compile("event.schema.json"), protocol.EventMsg{
		Type: protocol.TypeEvent, Seq: 7,
		Event: protocol.PayloadOf(tools.PointerDown{Point: model.Vec2{X: 1, Z: 2}}),
	})
	validate(compile("applied.schema.json"), protocol.AppliedMsg{
		Type: protocol.TypeApplied, Seq: 7, Tool: "wall", State: "collecting",
		Preview:  &protocol.Preview{Point: model.Vec2{X: 1, Z: 2}, Kind: snap.KindCorner},
		Intents:  []intent.Applied{{Type: intent.NameAddWalls, IDs: []string{"W000001"}}},
		Rejected: []intent.Rejection{{Type: intent.NameAddOpening, Code: protocol.ErrPlacementRejected, Message: "overlap"}},
		Overlaps: []string{"O000001"},
	})
	validate(compile("error.schema.json"), protocol.NewError(protocol.ErrBadRequest, "bad"))

	var bad any
	_ = json.Unmarshal([]byte(`{"type":"EVENT","seq":1,"event":{"kind":"wheel"}}`), &bad)
	if err := compile("event.schema.json").Validate(bad); err == nil {
		t.Fatalf("expected unknown event kind rejected")
	}
}
