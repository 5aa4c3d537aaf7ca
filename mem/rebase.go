package mem

import "snapviz/common"

// Rebase maps a pointer value recorded against the reference image to the
// corresponding address inside the target image. A value outside the
// reference image span is returned unchanged: it refers to process-owned
// static memory (a function pointer, a read-only asset) valid in every
// image. Rebase cannot fail.
//
// Precondition, not verified at runtime: ref and tgt share a byte-identical
// structural layout, so the same byte offset names the same field in both.
func Rebase(v Addr, ref, tgt *Image) Addr {
	if !ref.Contains(v) {
		return v
	}
	return v - ref.Base + tgt.Base
}

// SegmentCount is the fixed number of slots in a segment table.
const SegmentCount = 32

// Segment is one (source range -> destination base) descriptor. A zero
// descriptor (SrcStart == SrcEnd) matches nothing.
type Segment struct {
	SrcStart Addr
	SrcEnd   Addr
	DstStart Addr
}

// SegmentTable is the fixed 32-slot table of active segment mappings read
// out of a snapshot.
type SegmentTable [SegmentCount]Segment

// SegmentToReal translates a game-internal segmented address to a real
// address. Zero matching descriptors means v is already a real or static
// address and it is returned unchanged. More than one match is a
// consistency violation: the table is corrupted and there is no safe
// resolution, so a FormatError is returned rather than picking a mapping.
func SegmentToReal(tbl *SegmentTable, v Addr) (Addr, error) {
	var result Addr
	matched := false
	for i := range tbl {
		seg := &tbl[i]
		if v < seg.SrcStart || v >= seg.SrcEnd {
			continue
		}
		if matched {
			return 0, common.NewFormatErrorf(common.FmtSegmentOverlap, uint64(v),
				"two segments contain address")
		}
		matched = true
		result = v - seg.SrcStart + seg.DstStart
	}
	if !matched {
		return v, nil
	}
	return result, nil
}
