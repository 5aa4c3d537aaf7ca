package state

import (
	"snapviz/geom"
	"snapviz/mem"
)

// DefaultObjectList is the entity list id used when a behavior script does
// not name one in its opening command.
const DefaultObjectList = 6

// Snapshot is one recorded copy of simulation memory at a given frame,
// paired with the reference image describing the canonical structure
// layout. Snapshots are read-only and owned by the caller; nothing here
// retains one past the call it was passed to.
type Snapshot struct {
	Frame  int
	Ref    *mem.Image
	Data   *mem.Image
	Layout *Layout
}

// SurfaceRec is one decoded surface pool record.
type SurfaceRec struct {
	Verts  [3]geom.Vec3
	Normal geom.Vec3
}

// ObjectRec is one decoded object pool slot.
type ObjectRec struct {
	Active       bool
	Pos          geom.Vec3
	HitboxHeight float32
	HitboxRadius float32
	Behavior     mem.Addr
	// Addr is the slot's address in the data image, used to match display
	// nodes to the object they render.
	Addr mem.Addr
}

// FineStep is one entry of the fine-step motion log.
type FineStep struct {
	Intended geom.Vec3
	Result   geom.Vec3
}

// GameCamera is the live camera-control state read out of a snapshot.
type GameCamera struct {
	Pos   geom.Vec3
	Pitch int16
	Yaw   int16
}

// DisplayNode is one node of a per-layer display list, with all pointer
// fields already rebased into the data image.
type DisplayNode struct {
	Transform mem.Addr
	List      mem.Addr
	Next      mem.Addr
	Object    mem.Addr
}

func (s Snapshot) fieldAddr(off uint32) mem.Addr {
	return s.Data.Base + mem.Addr(off)
}

// rebase maps a pointer read out of the data image into the data image's
// address space. Null stays null.
func (s Snapshot) rebase(p mem.Addr) mem.Addr {
	if p == 0 {
		return 0
	}
	return mem.Rebase(p, s.Ref, s.Data)
}

// readPtrField reads a pointer global at the given image offset and rebases
// it.
func (s Snapshot) readPtrField(off uint32) (mem.Addr, error) {
	p, err := s.Data.ReadPtr(s.fieldAddr(off), s.Layout.PtrSize)
	if err != nil {
		return 0, err
	}
	return s.rebase(p), nil
}

// ReadPtr reads a pointer at an arbitrary data-image address and rebases it.
func (s Snapshot) ReadPtr(addr mem.Addr) (mem.Addr, error) {
	p, err := s.Data.ReadPtr(addr, s.Layout.PtrSize)
	if err != nil {
		return 0, err
	}
	return s.rebase(p), nil
}

func (s Snapshot) readVec3(addr mem.Addr) (geom.Vec3, error) {
	var v geom.Vec3
	var err error
	if v.X, err = s.Data.ReadF32(addr); err != nil {
		return v, err
	}
	if v.Y, err = s.Data.ReadF32(addr + 4); err != nil {
		return v, err
	}
	v.Z, err = s.Data.ReadF32(addr + 8)
	return v, err
}

// SurfaceCount returns the live surface counter.
func (s Snapshot) SurfaceCount() (int32, error) {
	return s.Data.ReadS32(s.fieldAddr(s.Layout.SurfaceCount))
}

// Surface decodes surface pool record i. The pool pointer is itself rebased
// from the reference image before indexing.
func (s Snapshot) Surface(i int32) (SurfaceRec, error) {
	var rec SurfaceRec
	pool, err := s.readPtrField(s.Layout.SurfacePool)
	if err != nil {
		return rec, err
	}
	base := pool + mem.Addr(uint32(i)*s.Layout.Surface.Stride)
	for v := 0; v < 3; v++ {
		rec.Verts[v], err = s.readVec3(base + mem.Addr(s.Layout.Surface.Verts+uint32(v)*12))
		if err != nil {
			return rec, err
		}
	}
	rec.Normal, err = s.readVec3(base + mem.Addr(s.Layout.Surface.Normal))
	return rec, err
}

// ObjectAddr returns the data-image address of object pool slot i.
func (s Snapshot) ObjectAddr(i int) mem.Addr {
	return s.fieldAddr(s.Layout.ObjectPool) + mem.Addr(uint32(i)*s.Layout.Object.Stride)
}

// Object decodes object pool slot i.
func (s Snapshot) Object(i int) (ObjectRec, error) {
	var rec ObjectRec
	base := s.ObjectAddr(i)
	rec.Addr = base

	ol := &s.Layout.Object
	flags, err := s.Data.ReadU16(base + mem.Addr(ol.ActiveFlags))
	if err != nil {
		return rec, err
	}
	rec.Active = flags&ol.ActiveMask != 0
	if !rec.Active {
		return rec, nil
	}

	if rec.Pos, err = s.readVec3(base + mem.Addr(ol.Pos)); err != nil {
		return rec, err
	}
	if rec.HitboxHeight, err = s.Data.ReadF32(base + mem.Addr(ol.HitboxHeight)); err != nil {
		return rec, err
	}
	if rec.HitboxRadius, err = s.Data.ReadF32(base + mem.Addr(ol.HitboxRadius)); err != nil {
		return rec, err
	}
	rec.Behavior, err = s.ReadPtr(base + mem.Addr(ol.Behavior))
	return rec, err
}

// ObjectList returns the entity list id named by a behavior script: the
// opening command's bits 16..31 when its high byte is zero, otherwise
// DefaultObjectList. The script address may be segmented and is translated
// through the snapshot's segment table first.
func (s Snapshot) ObjectList(behavior mem.Addr) (uint32, error) {
	if behavior == 0 {
		return DefaultObjectList, nil
	}
	tbl, err := s.Segments()
	if err != nil {
		return 0, err
	}
	real, err := mem.SegmentToReal(tbl, behavior)
	if err != nil {
		return 0, err
	}
	w, err := s.Data.ReadU32(s.rebase(real))
	if err != nil {
		return 0, err
	}
	if w>>24 != 0 {
		return DefaultObjectList, nil
	}
	return (w >> 16) & 0xFFFF, nil
}

// CharacterPos reads the tracked character's position through its state
// pointer.
func (s Snapshot) CharacterPos() (geom.Vec3, error) {
	st, err := s.readPtrField(s.Layout.Character)
	if err != nil {
		return geom.Vec3{}, err
	}
	return s.readVec3(st + mem.Addr(s.Layout.CharacterPos))
}

// TrackedObject returns the rebased address of the tracked character's
// object pool entry, or 0 when none is live.
func (s Snapshot) TrackedObject() (mem.Addr, error) {
	return s.readPtrField(s.Layout.TrackedObject)
}

// FineSteps reads the fine-step log. The returned claimed count is the raw
// counter value, which may exceed the log capacity; entries beyond capacity
// are not recorded and are not returned.
func (s Snapshot) FineSteps() ([]FineStep, int, error) {
	fl := &s.Layout.FineSteps
	count, err := s.Data.ReadS32(s.fieldAddr(fl.Count))
	if err != nil {
		return nil, 0, err
	}
	claimed := int(count)
	n := claimed
	if n < 0 {
		n = 0
	}
	if n > fl.Capacity {
		n = fl.Capacity
	}
	steps := make([]FineStep, 0, n)
	for i := 0; i < n; i++ {
		base := s.fieldAddr(fl.Steps) + mem.Addr(uint32(i)*fl.Stride)
		var st FineStep
		if st.Intended, err = s.readVec3(base); err != nil {
			return nil, claimed, err
		}
		if st.Result, err = s.readVec3(base + 12); err != nil {
			return nil, claimed, err
		}
		steps = append(steps, st)
	}
	return steps, claimed, nil
}

// GameCamera reads the live camera-control state.
func (s Snapshot) GameCamera() (GameCamera, error) {
	var gc GameCamera
	block := s.fieldAddr(s.Layout.GameCamera.Block)
	var err error
	if gc.Pos, err = s.readVec3(block + mem.Addr(s.Layout.GameCamera.Pos)); err != nil {
		return gc, err
	}
	if gc.Pitch, err = s.Data.ReadS16(block + mem.Addr(s.Layout.GameCamera.Pitch)); err != nil {
		return gc, err
	}
	gc.Yaw, err = s.Data.ReadS16(block + mem.Addr(s.Layout.GameCamera.Yaw))
	return gc, err
}

// DisplayLayerHead returns the rebased head pointer of display layer i.
func (s Snapshot) DisplayLayerHead(i int) (mem.Addr, error) {
	off := s.Layout.Display.Layers + uint32(i*s.Layout.PtrSize)
	return s.readPtrField(off)
}

// DisplayNode decodes the node at the given (already rebased) address.
func (s Snapshot) DisplayNode(addr mem.Addr) (DisplayNode, error) {
	var n DisplayNode
	dl := &s.Layout.Display
	var err error
	if n.Transform, err = s.ReadPtr(addr + mem.Addr(dl.NodeTransform)); err != nil {
		return n, err
	}
	if n.List, err = s.ReadPtr(addr + mem.Addr(dl.NodeList)); err != nil {
		return n, err
	}
	if n.Next, err = s.ReadPtr(addr + mem.Addr(dl.NodeNext)); err != nil {
		return n, err
	}
	n.Object, err = s.ReadPtr(addr + mem.Addr(dl.NodeObject))
	return n, err
}

// Segments reads the snapshot's fixed 32-entry segment table.
func (s Snapshot) Segments() (*mem.SegmentTable, error) {
	var tbl mem.SegmentTable
	entry := s.Layout.segmentEntrySize()
	ps := s.Layout.PtrSize
	for i := 0; i < mem.SegmentCount; i++ {
		base := s.fieldAddr(s.Layout.SegmentTable + uint32(i)*entry)
		var err error
		if tbl[i].SrcStart, err = s.Data.ReadPtr(base, ps); err != nil {
			return nil, err
		}
		if tbl[i].SrcEnd, err = s.Data.ReadPtr(base+mem.Addr(ps), ps); err != nil {
			return nil, err
		}
		if tbl[i].DstStart, err = s.Data.ReadPtr(base+mem.Addr(2*ps), ps); err != nil {
			return nil, err
		}
	}
	return &tbl, nil
}

// FixedMatrix decodes the 4x4 signed 16.16 fixed-point matrix at addr.
func (s Snapshot) FixedMatrix(addr mem.Addr) (geom.Mat4, error) {
	var hi, lo [16]uint16
	for i := 0; i < 16; i++ {
		v, err := s.Data.ReadU16(addr + mem.Addr(2*i))
		if err != nil {
			return geom.Mat4{}, err
		}
		hi[i] = v
	}
	for i := 0; i < 16; i++ {
		v, err := s.Data.ReadU16(addr + mem.Addr(32+2*i))
		if err != nil {
			return geom.Mat4{}, err
		}
		lo[i] = v
	}
	return geom.Mat4FromFixed(hi, lo), nil
}

// Vertex reads the position of vertex i of the display-list vertex array at
// base. Positions are s16 triples at the start of each record.
func (s Snapshot) Vertex(base mem.Addr, i uint32) (geom.Vec3, error) {
	addr := base + mem.Addr(i*s.Layout.VertexStride)
	x, err := s.Data.ReadS16(addr)
	if err != nil {
		return geom.Vec3{}, err
	}
	y, err := s.Data.ReadS16(addr + 2)
	if err != nil {
		return geom.Vec3{}, err
	}
	z, err := s.Data.ReadS16(addr + 4)
	if err != nil {
		return geom.Vec3{}, err
	}
	return geom.Vec3{X: float32(x), Y: float32(y), Z: float32(z)}, nil
}
