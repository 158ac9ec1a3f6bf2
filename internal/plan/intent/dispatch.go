package intent

import (
	"fmt"

	"plotcraft.ai/internal/plan/logic/rooms"
	"plotcraft.ai/internal/plan/model"
)

// Checkpointer is the host's undo/redo hook. It is called once per closed
// batch of mutations.
type Checkpointer interface {
	CommitWallsToHistory(p *model.Plan, reason string)
}

// Applied records one intent that changed the plan.
type Applied struct {
	Intent Intent   `json:"-"`
	Type   string   `json:"type"`
	IDs    []string `json:"ids,omitempty"`
}

// Rejection records an intent that left the plan unchanged.
type Rejection struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Outcome struct {
	Applied     []Applied   `json:"applied,omitempty"`
	Rejected    []Rejection `json:"rejected,omitempty"`
	Checkpoints int         `json:"checkpoints,omitempty"`
}

// Dispatcher applies intents to a single plan. It is not safe for concurrent
// use; the host owns it from one goroutine.
type Dispatcher struct {
	plan  *model.Plan
	hook  Checkpointer
	dirty bool
}

func NewDispatcher(p *model.Plan, hook Checkpointer) *Dispatcher {
	return &Dispatcher{plan: p, hook: hook}
}

func (d *Dispatcher) Plan() *model.Plan { return d.plan }

// Dirty reports whether mutations were applied since the last checkpoint.
func (d *Dispatcher) Dirty() bool { return d.dirty }

// Apply runs every intent in order. A rejected intent is recorded and the rest
// of the batch still runs. A Checkpoint calls the hook only when something
// changed since the previous one.
func (d *Dispatcher) Apply(batch []Intent) Outcome {
	var out Outcome
	for _, in := range batch {
		if cp, ok := in.(Checkpoint); ok {
			if d.dirty {
				if d.hook != nil {
					d.hook.CommitWallsToHistory(d.plan, cp.Reason)
				}
				d.dirty = false
				out.Checkpoints++
			}
			continue
		}
		ids, err := d.apply(in)
		if err != nil {
			out.Rejected = append(out.Rejected, Rejection{Type: in.Name(), Code: model.Code(err), Message: err.Error()})
			continue
		}
		d.dirty = true
		out.Applied = append(out.Applied, Applied{Intent: in, Type: in.Name(), IDs: ids})
	}
	return out
}

func one(id string, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	return []string{id}, nil
}

func (d *Dispatcher) apply(in Intent) ([]string, error) {
	p := d.plan
	switch v := in.(type) {
	case AddWalls:
		return p.AddWallsFromPoints(v.Points, v.Height, v.IsFence, v.FenceType)
	case DeleteWall:
		return nil, p.DeleteWall(v.WallID)
	case ResizeWall:
		return nil, p.ResizeWall(v.WallID, v.Length, v.Anchor)
	case MoveWalls:
		return v.WallIDs, p.MoveWalls(v.WallIDs, v.Delta)
	case PaintWalls:
		if p.PaintWalls(v.WallIDs, v.Color) == 0 {
			return nil, fmt.Errorf("%w: walls %v", model.ErrNotFound, v.WallIDs)
		}
		return v.WallIDs, nil
	case AddOpening:
		return one(p.AddOpeningToWall(v.WallID, v.Opening))
	case RemoveOpening:
		return nil, p.RemoveOpening(v.WallID, v.OpeningID)
	case AddRoom:
		return one(p.AddRoom(v.Points, v.Label, v.FloorLevel))
	case MoveRoom:
		return nil, p.MoveRoom(v.RoomID, v.Delta)
	case SetRoomStyle:
		return d.setRoomStyle(v)
	case SetRoomLabel:
		return nil, p.SetRoomLabel(v.RoomID, v.Label)
	case AddPool:
		return one(p.AddPool(v.Points, v.Depth))
	case AddFoundation:
		return one(p.AddFoundation(v.Points, v.Height))
	case AddStairs:
		return one(p.AddStairs(v.Stairs))
	case AddRoof:
		return one(p.AddRoof(v.RoomID, v.Style, v.PitchDeg))
	case AddObject:
		return one(p.AddObject(v.Object))
	case AddBuilding:
		return one(p.AddBuilding(v.Building))
	case MoveObject:
		return nil, p.MoveObject(v.ObjectID, v.Position)
	case RotateObject:
		return nil, p.RotateObject(v.ObjectID, v.RotationDeg)
	case MoveEntity:
		return nil, p.MoveEntity(v.Kind, v.ID, v.Delta)
	case Delete:
		return nil, p.Delete(v.Kind, v.ID)
	case SetBoundary:
		return nil, p.SetBoundary(v.Points, v.Setback)
	default:
		return nil, fmt.Errorf("%w: unsupported intent %s", model.ErrInvalidGeometry, in.Name())
	}
}

// setRoomStyle stores the style and paints the walls bordering the room.
func (d *Dispatcher) setRoomStyle(v SetRoomStyle) ([]string, error) {
	r, ok := d.plan.Room(v.RoomID)
	if !ok {
		return nil, fmt.Errorf("%w: room %s", model.ErrNotFound, v.RoomID)
	}
	if err := d.plan.SetRoomStyle(v.RoomID, v.Style); err != nil {
		return nil, err
	}
	if v.Style.WallColor == "" {
		return nil, nil
	}
	ids := rooms.FindWallsForRoom(r, d.plan.Walls())
	d.plan.PaintWalls(ids, v.Style.WallColor)
	return ids, nil
}
