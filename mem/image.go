// Package mem provides memory images, pointer rebasing between images, and
// segmented-address translation.
//
// A snapshot consists of two images sharing a byte-identical structural
// layout: the reference image, whose base address is the one pointer fields
// inside any snapshot were recorded against, and a data image holding the
// recorded bytes for one frame. Pointer values read out of a data image are
// reference-image addresses and must be rebased before dereferencing.
package mem

import (
	"encoding/binary"
	"fmt"
	"math"

	"snapviz/common"
)

// Addr is a raw pointer value as stored inside a snapshot image.
type Addr uint64

// Image is one contiguous memory image with a fixed base address. Images are
// read-only for the lifetime of any call that references them.
type Image struct {
	Base Addr
	Data []byte
}

// NewImage creates an image over data at the given base address.
func NewImage(base Addr, data []byte) *Image {
	return &Image{Base: base, Data: data}
}

// Size returns the image length in bytes.
func (im *Image) Size() uint64 { return uint64(len(im.Data)) }

// Contains reports whether addr falls inside the image span
// [Base, Base+Size).
func (im *Image) Contains(addr Addr) bool {
	return addr >= im.Base && addr < im.Base+Addr(len(im.Data))
}

func (im *Image) offset(addr Addr, n uint64) (uint64, error) {
	if addr < im.Base {
		return 0, common.NewFormatErrorf(common.FmtOutOfRange, uint64(addr),
			"read of %d bytes below image base 0x%x", n, im.Base)
	}
	off := uint64(addr - im.Base)
	if off+n > uint64(len(im.Data)) {
		return 0, common.NewFormatErrorf(common.FmtOutOfRange, uint64(addr),
			"read of %d bytes past image end 0x%x", n, im.Base+Addr(len(im.Data)))
	}
	return off, nil
}

// Bytes returns n bytes starting at addr. The returned slice aliases the
// image and must not be modified.
func (im *Image) Bytes(addr Addr, n uint64) ([]byte, error) {
	off, err := im.offset(addr, n)
	if err != nil {
		return nil, err
	}
	return im.Data[off : off+n], nil
}

// Snapshot fields are stored in the host byte order of the recording
// process, which is little-endian for every supported image build.

func (im *Image) ReadU8(addr Addr) (uint8, error) {
	off, err := im.offset(addr, 1)
	if err != nil {
		return 0, err
	}
	return im.Data[off], nil
}

func (im *Image) ReadU16(addr Addr) (uint16, error) {
	off, err := im.offset(addr, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(im.Data[off:]), nil
}

func (im *Image) ReadS16(addr Addr) (int16, error) {
	v, err := im.ReadU16(addr)
	return int16(v), err
}

func (im *Image) ReadU32(addr Addr) (uint32, error) {
	off, err := im.offset(addr, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(im.Data[off:]), nil
}

func (im *Image) ReadS32(addr Addr) (int32, error) {
	v, err := im.ReadU32(addr)
	return int32(v), err
}

func (im *Image) ReadU64(addr Addr) (uint64, error) {
	off, err := im.offset(addr, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(im.Data[off:]), nil
}

func (im *Image) ReadF32(addr Addr) (float32, error) {
	v, err := im.ReadU32(addr)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadPtr reads a pointer field of the given width (4 or 8 bytes).
func (im *Image) ReadPtr(addr Addr, ptrSize int) (Addr, error) {
	switch ptrSize {
	case 4:
		v, err := im.ReadU32(addr)
		return Addr(v), err
	case 8:
		v, err := im.ReadU64(addr)
		return Addr(v), err
	default:
		return 0, fmt.Errorf("unsupported pointer size %d", ptrSize)
	}
}
