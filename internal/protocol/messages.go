package protocol

import (
	"plotcraft.ai/internal/plan/intent"
	"plotcraft.ai/internal/plan/logic/snap"
	"plotcraft.ai/internal/plan/model"
)

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	SessionID       string   `json:"session_id"`
	PlanID          string   `json:"plan_id"`
	TuningDigest    string   `json:"tuning_digest"`
	Tools           []string `json:"tools,omitempty"`
}

// EVENT (client -> server)
type EventMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version,omitempty"`
	Seq             uint64       `json:"seq"`
	Event           EventPayload `json:"event"`
}

type Preview struct {
	Point model.Vec2 `json:"point"`
	Kind  snap.Kind  `json:"kind"`
}

// APPLIED (server -> client), one per EVENT.
type AppliedMsg struct {
	Type     string             `json:"type"`
	Seq      uint64             `json:"seq"`
	Tool     string             `json:"tool"`
	State    string             `json:"state"`
	Buffer   string             `json:"buffer,omitempty"`
	Points   []model.Vec2       `json:"points,omitempty"`
	Preview  *Preview           `json:"preview,omitempty"`
	Selected string             `json:"selected,omitempty"`
	Intents  []intent.Applied   `json:"intents,omitempty"`
	Rejected []intent.Rejection `json:"rejected,omitempty"`
	Overlaps []string           `json:"overlaps,omitempty"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewError(code, message string) ErrorMsg {
	return ErrorMsg{Type: TypeError, Code: code, Message: message}
}
