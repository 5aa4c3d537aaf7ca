package scene

import (
	"snapviz/common"
	"snapviz/geom"
	"snapviz/state"
)

// Surface classification thresholds. Comparisons are strict.
const (
	floorNormalY = 0.01
	wallNormalX  = 0.707
)

// Classify maps a surface normal to a surface kind.
func Classify(n geom.Vec3) SurfaceKind {
	switch {
	case n.Y > floorNormalY:
		return Floor
	case n.Y < -floorNormalY:
		return Ceiling
	case n.X < -wallNormalX || n.X > wallNormalX:
		return WallXProj
	default:
		return WallZProj
	}
}

// Builder constructs scenes from snapshots.
type Builder struct {
	Log common.Logger
}

// NewBuilder creates a builder with the given logger (nil for no logging).
func NewBuilder(log common.Logger) *Builder {
	if log == nil {
		log = common.NewNoOpLogger()
	}
	return &Builder{Log: log}
}

// Build produces a scene from the current snapshot, the ordered historical
// snapshot list and the caller-supplied camera. The snapshots are only read.
func (b *Builder) Build(current state.Snapshot, history []state.Snapshot, cam Camera) (*Scene, error) {
	sc := &Scene{Camera: cam}

	if err := b.buildSurfaces(current, sc); err != nil {
		return nil, err
	}
	if err := b.buildObjects(current, sc); err != nil {
		return nil, err
	}
	if err := b.buildCharacterPath(current, history, sc); err != nil {
		return nil, err
	}
	return sc, nil
}

func (b *Builder) buildSurfaces(st state.Snapshot, sc *Scene) error {
	count, err := st.SurfaceCount()
	if err != nil {
		return err
	}
	sc.Surfaces = make([]Surface, 0, count)
	for i := int32(0); i < count; i++ {
		rec, err := st.Surface(i)
		if err != nil {
			return err
		}
		sc.Surfaces = append(sc.Surfaces, Surface{
			Kind:   Classify(rec.Normal),
			Verts:  rec.Verts,
			Normal: rec.Normal,
		})
	}
	return nil
}

func (b *Builder) buildObjects(st state.Snapshot, sc *Scene) error {
	for i := 0; i < st.Layout.Object.Count; i++ {
		rec, err := st.Object(i)
		if err != nil {
			return err
		}
		if !rec.Active {
			continue
		}
		list, err := st.ObjectList(rec.Behavior)
		if err != nil {
			return err
		}
		sc.Objects = append(sc.Objects, Entity{
			Pos:          rec.Pos,
			HitboxHeight: rec.HitboxHeight,
			HitboxRadius: rec.HitboxRadius,
			List:         list,
		})
	}
	return nil
}

// buildCharacterPath correlates the historical snapshots into one motion
// path for the tracked character. When a snapshot follows the current frame
// in the history, its fine-step log describes the motion update leaving the
// current frame and is attached to the current node.
func (b *Builder) buildCharacterPath(current state.Snapshot, history []state.Snapshot, sc *Scene) error {
	currentIndex := len(history)
	for i, st := range history {
		if st.Frame == current.Frame {
			currentIndex = i
			break
		}
	}
	if currentIndex == len(history) {
		b.Log.Warning("current frame not present in history; path index is a sentinel")
	}

	nodes := make([]PathNode, 0, len(history))
	for _, st := range history {
		if len(nodes) > 0 && len(nodes) == currentIndex+1 {
			steps, claimed, err := st.FineSteps()
			if err != nil {
				return err
			}
			if claimed > 4 {
				b.Log.Logf(common.SeverityInfo, "fine-step log claims %d entries", claimed)
			}
			prev := &nodes[len(nodes)-1]
			for _, s := range steps {
				prev.QuarterSteps = append(prev.QuarterSteps, QuarterStep{
					Intended: s.Intended,
					Result:   s.Result,
				})
			}
		}

		pos, err := st.CharacterPos()
		if err != nil {
			return err
		}
		nodes = append(nodes, PathNode{Pos: pos})
	}

	sc.ObjectPaths = append(sc.ObjectPaths, ObjectPath{
		Nodes:        nodes,
		CurrentIndex: currentIndex,
	})
	return nil
}
