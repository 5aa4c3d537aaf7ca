package dlist

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"snapviz/common"
	"snapviz/geom"
	"snapviz/mem"
	"snapviz/state"
)

const (
	refBase  = 0x10000
	dataBase = 0x400000
)

type recordBackend struct {
	loops [][3]geom.Vec3
}

func (r *recordBackend) LineLoop(a, b, c geom.Vec3) {
	r.loops = append(r.loops, [3]geom.Vec3{a, b, c})
}

// testSnapshot wraps an image builder whose scratch area holds command
// streams and vertex arrays at ref-space addresses.
func testSnapshot(build func(b *state.ImageBuilder)) state.Snapshot {
	b := state.NewImageBuilder(dataBase, state.TestImageSize)
	build(b)
	return state.Snapshot{
		Ref:    state.NewImageBuilder(refBase, state.TestImageSize).Image(),
		Data:   b.Image(),
		Layout: state.TestLayout(),
	}
}

// putVerts writes three s16 vertex records at off.
func putVerts(b *state.ImageBuilder, off uint32, verts [][3]int16) {
	l := state.TestLayout()
	for i, v := range verts {
		base := off + uint32(i)*l.VertexStride
		b.PutS16(base, v[0])
		b.PutS16(base+2, v[1])
		b.PutS16(base+4, v[2])
	}
}

const (
	vtxOff  = uint32(state.TestScratch)        // vertex array
	listOff = uint32(state.TestScratch) + 0x100 // main command list
	subOff  = uint32(state.TestScratch) + 0x200 // secondary list
)

// vertexLoadW0 encodes a vertex-load first word for n vertices into slot v0.
func vertexLoadW0(n, v0 uint32) uint32 {
	return CmdVertex<<24 | ((n - 1) << 20) | (v0 << 16)
}

// triW1 encodes a triangle operand word for three cache slots.
func triW1(s0, s1, s2 uint32) uint32 {
	return s0*10<<16 | s1*10<<8 | s2*10
}

func TestLoadTriangleEnd(t *testing.T) {
	st := testSnapshot(func(b *state.ImageBuilder) {
		putVerts(b, vtxOff, [][3]int16{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}})
		b.PutCmd(listOff, vertexLoadW0(3, 0), refBase+vtxOff)
		b.PutCmd(listOff+8, CmdTriangle<<24, triW1(0, 1, 2))
		b.PutCmd(listOff+16, CmdEndList<<24, 0)
	})

	var rec recordBackend
	if err := New(nil).Run(st, st.Data.Base+mem.Addr(listOff), &rec); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := [][3]geom.Vec3{{
		{X: 1, Y: 2, Z: 3},
		{X: 4, Y: 5, Z: 6},
		{X: 7, Y: 8, Z: 9},
	}}
	if diff := cmp.Diff(want, rec.loops); diff != "" {
		t.Errorf("draws mismatch (-want +got):\n%s", diff)
	}
}

func TestVertexLoadBaseSlot(t *testing.T) {
	st := testSnapshot(func(b *state.ImageBuilder) {
		putVerts(b, vtxOff, [][3]int16{{9, 9, 9}})
		// Load one vertex into slot 2; slots 0 and 1 stay stale (zero).
		b.PutCmd(listOff, vertexLoadW0(1, 2), refBase+vtxOff)
		b.PutCmd(listOff+8, CmdTriangle<<24, triW1(0, 1, 2))
		b.PutCmd(listOff+16, CmdEndList<<24, 0)
	})

	var rec recordBackend
	if err := New(nil).Run(st, st.Data.Base+mem.Addr(listOff), &rec); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := [][3]geom.Vec3{{{}, {}, {X: 9, Y: 9, Z: 9}}}
	if diff := cmp.Diff(want, rec.loops); diff != "" {
		t.Errorf("draws mismatch (-want +got):\n%s", diff)
	}
}

func TestSubListCallResumes(t *testing.T) {
	st := testSnapshot(func(b *state.ImageBuilder) {
		putVerts(b, vtxOff, [][3]int16{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}})
		// Main: load, call sub, draw, end.
		b.PutCmd(listOff, vertexLoadW0(3, 0), refBase+vtxOff)
		b.PutCmd(listOff+8, subListCall, refBase+subOff)
		b.PutCmd(listOff+16, CmdTriangle<<24, triW1(0, 1, 2))
		b.PutCmd(listOff+24, CmdEndList<<24, 0)
		// Sub draws out of the shared cache.
		b.PutCmd(subOff, CmdTriangle<<24, triW1(2, 1, 0))
		b.PutCmd(subOff+8, CmdEndList<<24, 0)
	})

	var rec recordBackend
	if err := New(nil).Run(st, st.Data.Base+mem.Addr(listOff), &rec); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The sub-list sees the caller's cache and the caller resumes after the
	// call: sub's reversed triangle first, then the main list's.
	want := [][3]geom.Vec3{
		{{Z: 1}, {Y: 1}, {X: 1}},
		{{X: 1}, {Y: 1}, {Z: 1}},
	}
	if diff := cmp.Diff(want, rec.loops); diff != "" {
		t.Errorf("draws mismatch (-want +got):\n%s", diff)
	}
}

func TestSubListBranchNeverReturns(t *testing.T) {
	st := testSnapshot(func(b *state.ImageBuilder) {
		putVerts(b, vtxOff, [][3]int16{{5, 0, 0}, {0, 5, 0}, {0, 0, 5}})
		b.PutCmd(listOff, vertexLoadW0(3, 0), refBase+vtxOff)
		b.PutCmd(listOff+8, subListBranch, refBase+subOff)
		// Unreachable: a branch replaces the cursor for good.
		b.PutCmd(listOff+16, CmdTriangle<<24, triW1(0, 1, 2))
		b.PutCmd(listOff+24, CmdEndList<<24, 0)

		b.PutCmd(subOff, CmdTriangle<<24, triW1(0, 0, 0))
		b.PutCmd(subOff+8, CmdEndList<<24, 0)
	})

	var rec recordBackend
	if err := New(nil).Run(st, st.Data.Base+mem.Addr(listOff), &rec); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := [][3]geom.Vec3{{{X: 5}, {X: 5}, {X: 5}}}
	if diff := cmp.Diff(want, rec.loops); diff != "" {
		t.Errorf("draws mismatch (-want +got):\n%s", diff)
	}
}

func TestMatrixCommandFatal(t *testing.T) {
	for _, operand := range []uint32{0, 0x80001234, 0xFFFFFFFF} {
		st := testSnapshot(func(b *state.ImageBuilder) {
			b.PutCmd(listOff, CmdMatrix<<24, operand)
			b.PutCmd(listOff+8, CmdEndList<<24, 0)
		})

		err := New(nil).Run(st, st.Data.Base+mem.Addr(listOff), &recordBackend{})
		var fe *common.FormatError
		if !errors.As(err, &fe) || fe.Code != common.FmtUnsupportedCmd {
			t.Errorf("operand 0x%08X: err = %v, want FmtUnsupportedCmd", operand, err)
		}
	}
}

func TestBadSubListEncodingFatal(t *testing.T) {
	st := testSnapshot(func(b *state.ImageBuilder) {
		b.PutCmd(listOff, 0x06020000, refBase+subOff)
	})

	err := New(nil).Run(st, st.Data.Base+mem.Addr(listOff), &recordBackend{})
	var fe *common.FormatError
	if !errors.As(err, &fe) || fe.Code != common.FmtBadBranch {
		t.Errorf("err = %v, want FmtBadBranch", err)
	}
}

func TestDepthExceeded(t *testing.T) {
	st := testSnapshot(func(b *state.ImageBuilder) {
		// A list that calls itself nests until the depth bound trips.
		b.PutCmd(listOff, subListCall, refBase+listOff)
		b.PutCmd(listOff+8, CmdEndList<<24, 0)
	})

	err := New(nil).Run(st, st.Data.Base+mem.Addr(listOff), &recordBackend{})
	var fe *common.FormatError
	if !errors.As(err, &fe) || fe.Code != common.FmtDepthExceeded {
		t.Errorf("err = %v, want FmtDepthExceeded", err)
	}
}

func TestUnrecognizedCommandSkipped(t *testing.T) {
	st := testSnapshot(func(b *state.ImageBuilder) {
		b.PutCmd(listOff, 0xAA000000, 0xDEADBEEF)
		b.PutCmd(listOff+8, 0xC0000000, 0)
		b.PutCmd(listOff+16, CmdEndList<<24, 0)
	})

	if err := New(nil).Run(st, st.Data.Base+mem.Addr(listOff), &recordBackend{}); err != nil {
		t.Errorf("unrecognized commands should be no-ops, got %v", err)
	}
}

func TestNoOpStateCommands(t *testing.T) {
	ops := []uint32{
		CmdViewportLight, CmdClearGeomMode, CmdSetGeomMode, CmdSetOtherMode,
		CmdTexture, CmdLoadSync, CmdPipeSync, CmdTileSync, CmdSetTileSize,
		CmdLoadBlock, CmdSetTile, CmdSetEnvColor, CmdSetCombineMode,
		CmdSetTextureImage,
	}
	st := testSnapshot(func(b *state.ImageBuilder) {
		off := listOff
		for _, op := range ops {
			b.PutCmd(off, op<<24, 0x12345678)
			off += 8
		}
		b.PutCmd(off, CmdEndList<<24, 0)
	})

	var rec recordBackend
	if err := New(nil).Run(st, st.Data.Base+mem.Addr(listOff), &rec); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rec.loops) != 0 {
		t.Errorf("state commands drew %d loops", len(rec.loops))
	}
}

func TestListPastImageEnd(t *testing.T) {
	// A list with no end command runs off the image; the bounds check
	// turns that into a format error instead of reading wild memory.
	st := testSnapshot(func(b *state.ImageBuilder) {
		b.PutCmd(uint32(state.TestImageSize-8), CmdPipeSync<<24, 0)
	})

	err := New(nil).Run(st, st.Data.Base+mem.Addr(state.TestImageSize-8), &recordBackend{})
	if !common.IsFormatError(err) {
		t.Errorf("err = %v, want FormatError", err)
	}
}
