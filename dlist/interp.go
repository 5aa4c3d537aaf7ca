package dlist

import (
	"snapviz/common"
	"snapviz/geom"
	"snapviz/mem"
	"snapviz/state"
)

const (
	// CacheSlots is the fixed capacity of the vertex cache.
	CacheSlots = 32
	// MaxDepth bounds sub-list nesting. A well-formed snapshot never comes
	// close; exceeding it means a malformed or cyclic list structure.
	MaxDepth = 32

	cmdSize = 8
)

// VertexCache is the indexable position store shared by all commands within
// one top-level interpretation, including nested sub-lists. Slots persist
// until overwritten, so a triangle referencing a slot no vertex-load wrote
// reads stale data from an earlier list. That is a property of the command
// format, not of this interpreter.
type VertexCache [CacheSlots]geom.Vec3

// DrawBackend receives the geometry decoded out of a display list.
type DrawBackend interface {
	// LineLoop draws a closed loop through the three positions.
	LineLoop(a, b, c geom.Vec3)
}

// Interpreter decodes display lists read out of a snapshot. The zero value
// is usable; Log defaults to no logging.
type Interpreter struct {
	Log common.Logger
}

// New creates an interpreter with the given logger (nil for no logging).
func New(log common.Logger) *Interpreter {
	if log == nil {
		log = common.NewNoOpLogger()
	}
	return &Interpreter{Log: log}
}

// Run interprets the display list at list (an already rebased data-image
// address), issuing draw calls to backend. The vertex cache is scoped to
// this call: sub-list calls share it, independent Run calls do not.
//
// Consistency violations (matrix-load command, unknown sub-list encoding,
// nesting past MaxDepth, out-of-image reads, cache slots outside [0,32))
// return a FormatError; the list is corrupted or uses an unsupported
// variant and no safe partial result exists.
func (it *Interpreter) Run(st state.Snapshot, list mem.Addr, backend DrawBackend) error {
	log := it.Log
	if log == nil {
		log = common.NewNoOpLogger()
	}

	var cache VertexCache
	// Explicit call stack of return cursors, in place of native recursion.
	stack := make([]mem.Addr, 0, MaxDepth)
	cur := list

	for {
		w0, err := st.Data.ReadU32(cur)
		if err != nil {
			return err
		}
		w1, err := st.Data.ReadU32(cur + 4)
		if err != nil {
			return err
		}
		op := uint8(w0 >> 24)
		log.Logf(common.SeverityDebug, "%*s%08X %08X", 2*len(stack), "", w0, w1)

		switch op {
		case CmdMatrix:
			// No snapshot produced by this system's callers uses matrix
			// commands inside an object list; one here means corrupted
			// input. Guessing at a transform would draw wrong geometry.
			return common.NewFormatErrorf(common.FmtUnsupportedCmd, uint64(cur),
				"matrix command 0x%08X", w0)

		case CmdVertex:
			n := ((w0 >> 20) & 0xF) + 1
			v0 := (w0 >> 16) & 0xF
			if v0+n > CacheSlots {
				return common.NewFormatErrorf(common.FmtVertexSlot, uint64(cur),
					"vertex load slots [%d,%d)", v0, v0+n)
			}
			src := mem.Rebase(mem.Addr(w1), st.Ref, st.Data)
			for i := uint32(0); i < n; i++ {
				v, err := st.Vertex(src, i)
				if err != nil {
					return err
				}
				cache[v0+i] = v
			}

		case CmdSubList:
			target := mem.Rebase(mem.Addr(w1), st.Ref, st.Data)
			switch w0 {
			case subListCall:
				if len(stack) >= MaxDepth {
					return common.NewFormatErrorf(common.FmtDepthExceeded, uint64(cur),
						"sub-list nesting deeper than %d", MaxDepth)
				}
				stack = append(stack, cur+cmdSize)
				cur = target
				continue
			case subListBranch:
				cur = target
				continue
			default:
				return common.NewFormatErrorf(common.FmtBadBranch, uint64(cur),
					"sub-list command 0x%08X", w0)
			}

		case CmdEndList:
			if len(stack) == 0 {
				return nil
			}
			cur = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			continue

		case CmdTriangle:
			// Encoded indices are cache slot * 10.
			i0 := ((w1 >> 16) & 0xFF) / 10
			i1 := ((w1 >> 8) & 0xFF) / 10
			i2 := (w1 & 0xFF) / 10
			if i0 >= CacheSlots || i1 >= CacheSlots || i2 >= CacheSlots {
				return common.NewFormatErrorf(common.FmtVertexSlot, uint64(cur),
					"triangle slots %d %d %d", i0, i1, i2)
			}
			backend.LineLoop(cache[i0], cache[i1], cache[i2])

		case CmdViewportLight, CmdClearGeomMode, CmdSetGeomMode, CmdSetOtherMode,
			CmdTexture, CmdLoadSync, CmdPipeSync, CmdTileSync, CmdSetTileSize,
			CmdLoadBlock, CmdSetTile, CmdSetEnvColor, CmdSetCombineMode,
			CmdSetTextureImage:
			// Render-mode and texture state; not needed for wireframe
			// extraction.

		default:
			// Unrecognized commands are skipped for forward compatibility.
		}

		cur += cmdSize
	}
}
