package intent

import (
	"encoding/json"
	"fmt"
)

// Envelope is the wire and log form of an intent.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

var registry = map[string]func() Intent{
	NameAddWalls:      func() Intent { return &AddWalls{} },
	NameDeleteWall:    func() Intent { return &DeleteWall{} },
	NameResizeWall:    func() Intent { return &ResizeWall{} },
	NameMoveWalls:     func() Intent { return &MoveWalls{} },
	NamePaintWalls:    func() Intent { return &PaintWalls{} },
	NameAddOpening:    func() Intent { return &AddOpening{} },
	NameRemoveOpening: func() Intent { return &RemoveOpening{} },
	NameAddRoom:       func() Intent { return &AddRoom{} },
	NameMoveRoom:      func() Intent { return &MoveRoom{} },
	NameSetRoomStyle:  func() Intent { return &SetRoomStyle{} },
	NameSetRoomLabel:  func() Intent { return &SetRoomLabel{} },
	NameAddPool:       func() Intent { return &AddPool{} },
	NameAddFoundation: func() Intent { return &AddFoundation{} },
	NameAddStairs:     func() Intent { return &AddStairs{} },
	NameAddRoof:       func() Intent { return &AddRoof{} },
	NameAddObject:     func() Intent { return &AddObject{} },
	NameAddBuilding:   func() Intent { return &AddBuilding{} },
	NameMoveObject:    func() Intent { return &MoveObject{} },
	NameRotateObject:  func() Intent { return &RotateObject{} },
	NameMoveEntity:    func() Intent { return &MoveEntity{} },
	NameDelete:        func() Intent { return &Delete{} },
	NameSetBoundary:   func() Intent { return &SetBoundary{} },
	NameCheckpoint:    func() Intent { return &Checkpoint{} },
}

func Encode(i Intent) (Envelope, error) {
	b, err := json.Marshal(i)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s: %w", i.Name(), err)
	}
	return Envelope{Type: i.Name(), Data: b}, nil
}

// EncodeAll encodes a batch, stopping at the first failure.
func EncodeAll(in []Intent) ([]Envelope, error) {
	out := make([]Envelope, 0, len(in))
	for _, i := range in {
		e, err := Encode(i)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Decode returns the intent held by an envelope as a value type, the same
// shape the tools emit.
func Decode(e Envelope) (Intent, error) {
	mk, ok := registry[e.Type]
	if !ok {
		return nil, fmt.Errorf("unknown intent type %q", e.Type)
	}
	p := mk()
	if len(e.Data) > 0 {
		if err := json.Unmarshal(e.Data, p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", e.Type, err)
		}
	}
	return deref(p), nil
}

func deref(p Intent) Intent {
	switch v := p.(type) {
	case *AddWalls:
		return *v
	case *DeleteWall:
		return *v
	case *ResizeWall:
		return *v
	case *MoveWalls:
		return *v
	case *PaintWalls:
		return *v
	case *AddOpening:
		return *v
	case *RemoveOpening:
		return *v
	case *AddRoom:
		return *v
	case *MoveRoom:
		return *v
	case *SetRoomStyle:
		return *v
	case *SetRoomLabel:
		return *v
	case *AddPool:
		return *v
	case *AddFoundation:
		return *v
	case *AddStairs:
		return *v
	case *AddRoof:
		return *v
	case *AddObject:
		return *v
	case *AddBuilding:
		return *v
	case *MoveObject:
		return *v
	case *RotateObject:
		return *v
	case *MoveEntity:
		return *v
	case *Delete:
		return *v
	case *SetBoundary:
		return *v
	case *Checkpoint:
		return *v
	}
	return p
}
