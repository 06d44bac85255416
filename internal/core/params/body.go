package params

import (
	"fmt"

	"github.com/zeusync/ghostsim/pkg/geom"
)

const maxBodyHitboxes = 16

// BodyHitbox is a chassis sphere in vehicle space.
type BodyHitbox struct {
	Pos       geom.Vec3
	Radius    float32
	WallsOnly bool
}

// WheelSpec describes one suspension. Templates are stored for the left
// side and mirrored for the right.
type WheelSpec struct {
	DistSuspension  float32
	SpeedSuspension float32
	SlackY          float32
	TopmostPos      geom.Vec3
	WheelRadius     float32
	HitboxRadius    float32
}

func (w WheelSpec) MirrorX() WheelSpec {
	w.TopmostPos.X = -w.TopmostPos.X
	return w
}

// Body is the vehicle geometry used by the integrator and the collision
// hitboxes.
type Body struct {
	InitialPosY float32
	Hitboxes    []BodyHitbox
	// Cuboids are the half extents of the two boxes making up the inertia
	// tensor.
	Cuboids   [2]geom.Vec3
	RotFactor float32
	Wheels    [2]WheelSpec
}

func (b *Body) Validate() error {
	if len(b.Hitboxes) > maxBodyHitboxes {
		return fmt.Errorf("%w: %d body hitboxes", ErrInvalidStats, len(b.Hitboxes))
	}
	return nil
}

// Handle places the front wheel of bikes that steer it. Angles are radians.
type Handle struct {
	Pos    geom.Vec3
	Angles geom.Vec3
}
