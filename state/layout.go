// Package state provides typed, layout-driven views over snapshot memory
// images. All multi-byte fields are read little-endian; pointer fields read
// out of a data image are reference-image addresses and are rebased before
// use.
package state

import "fmt"

// Layout describes where the fields this module reads live inside a
// snapshot image. Offsets are relative to the image base. A layout is tied
// to one image build; it normally arrives with the dump metadata rather
// than being compiled in.
type Layout struct {
	// PtrSize is the width in bytes of pointer fields in the image (4 or 8).
	PtrSize int `yaml:"ptr_size"`

	// SegmentTable is the offset of the fixed 32-entry segment table. Each
	// entry is three pointer-sized fields: source start, source end
	// (exclusive), destination start.
	SegmentTable uint32 `yaml:"segment_table"`

	// SurfaceCount is the offset of the live surface counter (s32).
	SurfaceCount uint32 `yaml:"surface_count"`
	// SurfacePool is the offset of the pointer to the surface record array.
	SurfacePool uint32        `yaml:"surface_pool"`
	Surface     SurfaceLayout `yaml:"surface"`

	// ObjectPool is the offset of the embedded fixed-capacity object array.
	ObjectPool uint32       `yaml:"object_pool"`
	Object     ObjectLayout `yaml:"object"`

	// Character is the offset of the pointer to the tracked character's
	// motion state; CharacterPos the position field within that state.
	Character    uint32 `yaml:"character"`
	CharacterPos uint32 `yaml:"character_pos"`

	// TrackedObject is the offset of the pointer to the tracked character's
	// entry in the object pool.
	TrackedObject uint32 `yaml:"tracked_object"`

	FineSteps  FineStepLayout   `yaml:"fine_steps"`
	GameCamera GameCameraLayout `yaml:"game_camera"`
	Display    DisplayLayout    `yaml:"display"`

	// VertexStride is the record size of display-list vertex entries. The
	// three s16 position components sit at the start of each record.
	VertexStride uint32 `yaml:"vertex_stride"`
}

// SurfaceLayout describes one record of the surface pool: three vertex
// positions (3 x f32 each, consecutive) and a normal vector (3 x f32).
type SurfaceLayout struct {
	Stride uint32 `yaml:"stride"`
	Verts  uint32 `yaml:"verts"`
	Normal uint32 `yaml:"normal"`
}

// ObjectLayout describes the object pool and one slot within it.
type ObjectLayout struct {
	Count        int    `yaml:"count"`
	Stride       uint32 `yaml:"stride"`
	ActiveFlags  uint32 `yaml:"active_flags"` // u16 bitmask field
	ActiveMask   uint16 `yaml:"active_mask"`
	Pos          uint32 `yaml:"pos"` // 3 x f32
	HitboxHeight uint32 `yaml:"hitbox_height"`
	HitboxRadius uint32 `yaml:"hitbox_radius"`
	Behavior     uint32 `yaml:"behavior"` // pointer to behavior script
}

// FineStepLayout describes the fine-step log: a count field and an array of
// {intended position, result position} pairs (3 x f32 each).
type FineStepLayout struct {
	Count    uint32 `yaml:"count"` // s32
	Steps    uint32 `yaml:"steps"`
	Stride   uint32 `yaml:"stride"`
	Capacity int    `yaml:"capacity"`
}

// GameCameraLayout describes the live camera-control block. Pitch and yaw
// are s16 fixed-point angles scaled by pi/0x8000.
type GameCameraLayout struct {
	Block uint32 `yaml:"block"`
	Pos   uint32 `yaml:"pos"` // 3 x f32, relative to Block
	Pitch uint32 `yaml:"pitch"`
	Yaw   uint32 `yaml:"yaw"`
}

// DisplayLayout describes the per-layer display node lists: an array of
// head pointers and the field offsets within one node.
type DisplayLayout struct {
	Layers        uint32 `yaml:"layers"`
	LayerCount    int    `yaml:"layer_count"`
	NodeTransform uint32 `yaml:"node_transform"`
	NodeList      uint32 `yaml:"node_list"`
	NodeNext      uint32 `yaml:"node_next"`
	NodeObject    uint32 `yaml:"node_object"`
}

// Validate checks the layout for fields the readers cannot work without.
func (l *Layout) Validate() error {
	if l.PtrSize != 4 && l.PtrSize != 8 {
		return fmt.Errorf("layout: ptr_size must be 4 or 8, got %d", l.PtrSize)
	}
	if l.Surface.Stride == 0 {
		return fmt.Errorf("layout: surface.stride missing")
	}
	if l.Object.Count <= 0 || l.Object.Stride == 0 {
		return fmt.Errorf("layout: object pool dimensions missing")
	}
	if l.Object.ActiveMask == 0 {
		return fmt.Errorf("layout: object.active_mask missing")
	}
	if l.FineSteps.Stride == 0 || l.FineSteps.Capacity <= 0 {
		return fmt.Errorf("layout: fine_steps dimensions missing")
	}
	if l.Display.LayerCount <= 0 {
		return fmt.Errorf("layout: display.layer_count missing")
	}
	if l.VertexStride == 0 {
		return fmt.Errorf("layout: vertex_stride missing")
	}
	return nil
}

// segmentEntrySize returns the byte size of one segment table entry.
func (l *Layout) segmentEntrySize() uint32 {
	return uint32(3 * l.PtrSize)
}
