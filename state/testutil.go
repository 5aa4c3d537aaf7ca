package state

import (
	"encoding/binary"
	"math"

	"snapviz/geom"
	"snapviz/mem"
)

// Test support: builders for synthetic snapshot images, shared by this
// package's tests and by the scene, dlist and render tests.

// ImageBuilder assembles a memory image field by field.
type ImageBuilder struct {
	base mem.Addr
	data []byte
}

// NewImageBuilder creates a builder for an image of the given size at base.
func NewImageBuilder(base mem.Addr, size int) *ImageBuilder {
	return &ImageBuilder{base: base, data: make([]byte, size)}
}

func (b *ImageBuilder) PutU8(off uint32, v uint8) *ImageBuilder {
	b.data[off] = v
	return b
}

func (b *ImageBuilder) PutU16(off uint32, v uint16) *ImageBuilder {
	binary.LittleEndian.PutUint16(b.data[off:], v)
	return b
}

func (b *ImageBuilder) PutS16(off uint32, v int16) *ImageBuilder {
	return b.PutU16(off, uint16(v))
}

func (b *ImageBuilder) PutU32(off uint32, v uint32) *ImageBuilder {
	binary.LittleEndian.PutUint32(b.data[off:], v)
	return b
}

func (b *ImageBuilder) PutS32(off uint32, v int32) *ImageBuilder {
	return b.PutU32(off, uint32(v))
}

func (b *ImageBuilder) PutU64(off uint32, v uint64) *ImageBuilder {
	binary.LittleEndian.PutUint64(b.data[off:], v)
	return b
}

func (b *ImageBuilder) PutF32(off uint32, v float32) *ImageBuilder {
	return b.PutU32(off, math.Float32bits(v))
}

func (b *ImageBuilder) PutVec3(off uint32, v geom.Vec3) *ImageBuilder {
	b.PutF32(off, v.X)
	b.PutF32(off+4, v.Y)
	b.PutF32(off+8, v.Z)
	return b
}

// PutPtr writes a pointer field of the given width.
func (b *ImageBuilder) PutPtr(off uint32, v mem.Addr, ptrSize int) *ImageBuilder {
	if ptrSize == 4 {
		return b.PutU32(off, uint32(v))
	}
	return b.PutU64(off, uint64(v))
}

// PutCmd writes one 8-byte display-list command.
func (b *ImageBuilder) PutCmd(off uint32, w0, w1 uint32) *ImageBuilder {
	b.PutU32(off, w0)
	return b.PutU32(off+4, w1)
}

// Image returns the assembled image.
func (b *ImageBuilder) Image() *mem.Image {
	return mem.NewImage(b.base, b.data)
}

// TestLayout returns a compact, self-consistent layout for synthetic
// images. The object pool is shrunk to four slots to keep test images
// small; production layouts carry the full pool capacity.
func TestLayout() *Layout {
	return &Layout{
		PtrSize:      8,
		SegmentTable: 0x000, // 32 entries x 24 bytes -> 0x300
		SurfaceCount: 0x300,
		SurfacePool:  0x308,
		Surface: SurfaceLayout{
			Stride: 48,
			Verts:  0,
			Normal: 36,
		},
		ObjectPool: 0x310, // 4 slots x 64 bytes -> 0x410
		Object: ObjectLayout{
			Count:        4,
			Stride:       64,
			ActiveFlags:  0,
			ActiveMask:   0x0001,
			Pos:          8,
			HitboxHeight: 20,
			HitboxRadius: 24,
			Behavior:     32,
		},
		Character:     0x410,
		CharacterPos:  0,
		TrackedObject: 0x418,
		FineSteps: FineStepLayout{
			Count:    0x420,
			Steps:    0x424,
			Stride:   24,
			Capacity: 4,
		},
		GameCamera: GameCameraLayout{
			Block: 0x490,
			Pos:   0,
			Pitch: 12,
			Yaw:   14,
		},
		Display: DisplayLayout{
			Layers:        0x4A0, // 8 head pointers -> 0x4E0
			LayerCount:    8,
			NodeTransform: 0,
			NodeList:      8,
			NodeNext:      16,
			NodeObject:    24,
		},
		VertexStride: 16,
	}
}

// TestImageSize is large enough for TestLayout plus scratch space for
// pools, display lists and vertex arrays placed from TestScratch upward.
const (
	TestImageSize = 0x1000
	TestScratch   = 0x500
)
