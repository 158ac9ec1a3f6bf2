// Package intent defines the mutation commands the tools emit and the
// dispatcher that applies them to a plan.
package intent

import "plotcraft.ai/internal/plan/model"

// Intent is one requested mutation of the plan.
type Intent interface {
	Name() string
}

const (
	NameAddWalls      = "ADD_WALLS"
	NameDeleteWall    = "DELETE_WALL"
	NameResizeWall    = "RESIZE_WALL"
	NameMoveWalls     = "MOVE_WALLS"
	NamePaintWalls    = "PAINT_WALLS"
	NameAddOpening    = "ADD_OPENING"
	NameRemoveOpening = "REMOVE_OPENING"
	NameAddRoom       = "ADD_ROOM"
	NameMoveRoom      = "MOVE_ROOM"
	NameSetRoomStyle  = "SET_ROOM_STYLE"
	NameSetRoomLabel  = "SET_ROOM_LABEL"
	NameAddPool       = "ADD_POOL"
	NameAddFoundation = "ADD_FOUNDATION"
	NameAddStairs     = "ADD_STAIRS"
	NameAddRoof       = "ADD_ROOF"
	NameAddObject     = "ADD_OBJECT"
	NameAddBuilding   = "ADD_BUILDING"
	NameMoveObject    = "MOVE_OBJECT"
	NameRotateObject  = "ROTATE_OBJECT"
	NameMoveEntity    = "MOVE_ENTITY"
	NameDelete        = "DELETE"
	NameSetBoundary   = "SET_BOUNDARY"
	NameCheckpoint    = "CHECKPOINT"
)

type AddWalls struct {
	Points    []model.Vec2 `json:"points"`
	Height    float64      `json:"height,omitempty"`
	IsFence   bool         `json:"is_fence,omitempty"`
	FenceType string       `json:"fence_type,omitempty"`
}

type DeleteWall struct {
	WallID string `json:"wall_id"`
}

type ResizeWall struct {
	WallID string     `json:"wall_id"`
	Length float64    `json:"length"`
	Anchor model.Vec2 `json:"anchor"`
}

type MoveWalls struct {
	WallIDs []string   `json:"wall_ids"`
	Delta   model.Vec2 `json:"delta"`
}

type PaintWalls struct {
	WallIDs []string `json:"wall_ids"`
	Color   string   `json:"color"`
}

type AddOpening struct {
	WallID  string        `json:"wall_id"`
	Opening model.Opening `json:"opening"`
}

type RemoveOpening struct {
	WallID    string `json:"wall_id"`
	OpeningID string `json:"opening_id"`
}

type AddRoom struct {
	Points     []model.Vec2 `json:"points"`
	Label      string       `json:"label,omitempty"`
	FloorLevel int          `json:"floor_level,omitempty"`
}

type MoveRoom struct {
	RoomID string     `json:"room_id"`
	Delta  model.Vec2 `json:"delta"`
}

// SetRoomStyle also paints the room's bordering walls when WallColor is set.
type SetRoomStyle struct {
	RoomID string          `json:"room_id"`
	Style  model.RoomStyle `json:"style"`
}

type SetRoomLabel struct {
	RoomID string `json:"room_id"`
	Label  string `json:"label"`
}

type AddPool struct {
	Points []model.Vec2 `json:"points"`
	Depth  float64      `json:"depth,omitempty"`
}

type AddFoundation struct {
	Points []model.Vec2 `json:"points"`
	Height float64      `json:"height,omitempty"`
}

type AddStairs struct {
	Stairs model.Stairs `json:"stairs"`
}

type AddRoof struct {
	RoomID   string  `json:"room_id"`
	Style    string  `json:"style,omitempty"`
	PitchDeg float64 `json:"pitch_deg"`
}

type AddObject struct {
	Object model.PlacedObject `json:"object"`
}

type AddBuilding struct {
	Building model.PlacedBuilding `json:"building"`
}

type MoveObject struct {
	ObjectID string     `json:"object_id"`
	Position model.Vec2 `json:"position"`
}

type RotateObject struct {
	ObjectID    string  `json:"object_id"`
	RotationDeg float64 `json:"rotation_deg"`
}

// MoveEntity translates a pool, foundation or stairs.
type MoveEntity struct {
	Kind  model.Kind `json:"kind"`
	ID    string     `json:"id"`
	Delta model.Vec2 `json:"delta"`
}

type Delete struct {
	Kind model.Kind `json:"kind"`
	ID   string     `json:"id"`
}

type SetBoundary struct {
	Points  []model.Vec2 `json:"points"`
	Setback float64      `json:"setback"`
}

// Checkpoint closes a batch of mutations so the host can snapshot it as one
// undo step.
type Checkpoint struct {
	Reason string `json:"reason,omitempty"`
}

func (AddWalls) Name() string      { return NameAddWalls }
func (DeleteWall) Name() string    { return NameDeleteWall }
func (ResizeWall) Name() string    { return NameResizeWall }
func (MoveWalls) Name() string     { return NameMoveWalls }
func (PaintWalls) Name() string    { return NamePaintWalls }
func (AddOpening) Name() string    { return NameAddOpening }
func (RemoveOpening) Name() string { return NameRemoveOpening }
func (AddRoom) Name() string       { return NameAddRoom }
func (MoveRoom) Name() string      { return NameMoveRoom }
func (SetRoomStyle) Name() string  { return NameSetRoomStyle }
func (SetRoomLabel) Name() string  { return NameSetRoomLabel }
func (AddPool) Name() string       { return NameAddPool }
func (AddFoundation) Name() string { return NameAddFoundation }
func (AddStairs) Name() string     { return NameAddStairs }
func (AddRoof) Name() string       { return NameAddRoof }
func (AddObject) Name() string     { return NameAddObject }
func (AddBuilding) Name() string   { return NameAddBuilding }
func (MoveObject) Name() string    { return NameMoveObject }
func (RotateObject) Name() string  { return NameRotateObject }
func (MoveEntity) Name() string    { return NameMoveEntity }
func (Delete) Name() string        { return NameDelete }
func (SetBoundary) Name() string   { return NameSetBoundary }
func (Checkpoint) Name() string    { return NameCheckpoint }
