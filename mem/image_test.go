package mem

import (
	"math"
	"testing"

	"snapviz/common"
)

func TestImageReads(t *testing.T) {
	data := []byte{
		0x01, 0x02, 0x03, 0x04,
		0xFF, 0xFF, // -1 as s16
		0x00, 0x00, 0x80, 0x3F, // 1.0 as f32
		0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88,
	}
	im := NewImage(0x1000, data)

	if v, err := im.ReadU32(0x1000); err != nil || v != 0x04030201 {
		t.Errorf("ReadU32 = 0x%x, %v; want 0x04030201", v, err)
	}
	if v, err := im.ReadS16(0x1004); err != nil || v != -1 {
		t.Errorf("ReadS16 = %d, %v; want -1", v, err)
	}
	if v, err := im.ReadF32(0x1006); err != nil || v != 1.0 {
		t.Errorf("ReadF32 = %v, %v; want 1.0", v, err)
	}
	if v, err := im.ReadU64(0x100A); err != nil || v != 0x8877665544332211 {
		t.Errorf("ReadU64 = 0x%x, %v; want 0x8877665544332211", v, err)
	}
}

func TestImageReadPtr(t *testing.T) {
	data := []byte{0x78, 0x56, 0x34, 0x12, 0x00, 0x00, 0x00, 0x00}
	im := NewImage(0x0, data)

	if v, err := im.ReadPtr(0, 4); err != nil || v != 0x12345678 {
		t.Errorf("ReadPtr(4) = 0x%x, %v", v, err)
	}
	if v, err := im.ReadPtr(0, 8); err != nil || v != 0x12345678 {
		t.Errorf("ReadPtr(8) = 0x%x, %v", v, err)
	}
	if _, err := im.ReadPtr(0, 2); err == nil {
		t.Error("ReadPtr(2) should fail")
	}
}

func TestImageBounds(t *testing.T) {
	im := NewImage(0x1000, make([]byte, 16))

	tests := []struct {
		name string
		addr Addr
		n    uint64
		ok   bool
	}{
		{"first byte", 0x1000, 1, true},
		{"full image", 0x1000, 16, true},
		{"last byte", 0x100F, 1, true},
		{"past end", 0x100F, 2, false},
		{"at end", 0x1010, 1, false},
		{"below base", 0x0FFF, 4, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := im.Bytes(tt.addr, tt.n)
			if (err == nil) != tt.ok {
				t.Errorf("Bytes(0x%x, %d) error = %v, want ok=%v", tt.addr, tt.n, err, tt.ok)
			}
			if err != nil && !common.IsFormatError(err) {
				t.Errorf("out-of-range read should be a FormatError, got %v", err)
			}
		})
	}
}

func TestImageContains(t *testing.T) {
	im := NewImage(0x80000000, make([]byte, 0x100))

	tests := []struct {
		name string
		addr Addr
		want bool
	}{
		{"base", 0x80000000, true},
		{"interior", 0x80000080, true},
		{"last valid", 0x800000FF, true},
		{"end is exclusive", 0x80000100, false},
		{"below base", 0x7FFFFFFF, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := im.Contains(tt.addr); got != tt.want {
				t.Errorf("Contains(0x%x) = %v, want %v", tt.addr, got, tt.want)
			}
		})
	}
}

func TestReadF32Negative(t *testing.T) {
	bits := math.Float32bits(-128.5)
	data := []byte{byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24)}
	im := NewImage(0, data)
	if v, err := im.ReadF32(0); err != nil || v != -128.5 {
		t.Errorf("ReadF32 = %v, %v; want -128.5", v, err)
	}
}
