package rig

import (
	"fmt"
	"time"

	"mirror-warp/internal/angle"
	"mirror-warp/internal/mathutil"
)

// Transform is the rotational part of a scene node.
type Transform struct {
	Name       string
	LocalEuler mathutil.Vec3 // degrees, XYZ
}

// Rotation returns the node's local rotation as a quaternion.
func (t *Transform) Rotation() mathutil.Quat {
	return mathutil.EulerDegToQuat(t.LocalEuler)
}

// Children spins every child node about one axis with the shared angle.
// The other two Euler components are reset to zero each frame.
type Children struct {
	axis  int
	angle angle.Provider
	nodes []*Transform
}

// NewChildren returns a rig rotating nodes about axis (0=X, 1=Y, 2=Z).
func NewChildren(axis int, p angle.Provider, nodes ...*Transform) (*Children, error) {
	if axis < 0 || axis > 2 {
		return nil, fmt.Errorf("rig: axis %d outside 0..2", axis)
	}
	return &Children{axis: axis, angle: p, nodes: nodes}, nil
}

// Add attaches another child.
func (c *Children) Add(t *Transform) {
	c.nodes = append(c.nodes, t)
}

// Update copies the current angle onto every child.
func (c *Children) Update(time.Duration) {
	var e mathutil.Vec3
	e[c.axis] = c.angle.Degrees()
	for _, n := range c.nodes {
		n.LocalEuler = e
	}
}
