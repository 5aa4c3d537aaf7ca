// Package scene builds a renderable scene description out of one current
// snapshot and an ordered list of historical snapshots.
package scene

import "snapviz/geom"

// SurfaceKind classifies a static surface by its normal vector.
type SurfaceKind int

const (
	Floor SurfaceKind = iota
	Ceiling
	// WallXProj and WallZProj are walls best projected along the X or Z
	// axis respectively.
	WallXProj
	WallZProj
)

func (k SurfaceKind) String() string {
	switch k {
	case Floor:
		return "FLOOR"
	case Ceiling:
		return "CEILING"
	case WallXProj:
		return "WALL_X_PROJ"
	case WallZProj:
		return "WALL_Z_PROJ"
	default:
		return "UNKNOWN"
	}
}

// Surface is one classified static surface, copied as-is from the surface
// pool with no further transform.
type Surface struct {
	Kind   SurfaceKind
	Verts  [3]geom.Vec3
	Normal geom.Vec3
}

// Entity is one active dynamic object with its hitbox dimensions. List is
// the entity list id derived from the object's behavior script.
type Entity struct {
	Pos          geom.Vec3
	HitboxHeight float32
	HitboxRadius float32
	List         uint32
}

// QuarterStep is one fine-grained intermediate position recorded during a
// single motion update, showing intended versus actual movement.
type QuarterStep struct {
	Intended geom.Vec3
	Result   geom.Vec3
}

// PathNode is the tracked entity's position at one historical frame.
// QuarterSteps is populated only on the current frame's node, copied from
// the following snapshot's fine-step log (the motion leaving that frame).
type PathNode struct {
	Pos          geom.Vec3
	QuarterSteps []QuarterStep
}

// ObjectPath is the motion history of one entity. CurrentIndex is the
// position within the node list of the current frame; callers must pass a
// history containing the current frame, otherwise CurrentIndex is the
// sentinel len(Nodes) and treating it as a valid index is a caller error.
type ObjectPath struct {
	Nodes        []PathNode
	CurrentIndex int
}

// CameraMode selects between the two camera descriptions.
type CameraMode int

const (
	Rotate CameraMode = iota
	BirdsEye
)

func (m CameraMode) String() string {
	switch m {
	case Rotate:
		return "ROTATE"
	case BirdsEye:
		return "BIRDS_EYE"
	default:
		return "UNKNOWN"
	}
}

// Camera is a tagged union over the two camera modes. Pitch, Yaw and FovY
// (radians) apply in Rotate mode; SpanY applies in BirdsEye mode.
type Camera struct {
	Mode  CameraMode
	Pos   geom.Vec3
	Pitch float32
	Yaw   float32
	FovY  float32
	SpanY float32
}

// Scene is the sole output of scene construction, consumed by a renderer.
type Scene struct {
	Camera      Camera
	Surfaces    []Surface
	Objects     []Entity
	ObjectPaths []ObjectPath
}
