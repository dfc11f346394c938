// Package border models the night boundary: a rectangle around the safe
// center that shrinks linearly toward the safe zone while night lasts.
package border

import (
	"math"

	"candysurvival.ai/internal/sim/world/logic/geom"
)

type Border struct {
	Center           geom.Vec2
	HalfW, HalfH     float64
	TargetW, TargetH float64

	speedX, speedY float64
}

// New starts the border at the given half extents; target is the safe zone's
// half extents and never shrinks below.
func New(center geom.Vec2, halfW, halfH, targetW, targetH float64) *Border {
	b := &Border{Center: center, TargetW: targetW, TargetH: targetH}
	b.Reset(halfW, halfH)
	return b
}

// Reset restores the half extents and stops any shrink in progress.
func (b *Border) Reset(halfW, halfH float64) {
	b.HalfW = math.Max(halfW, b.TargetW)
	b.HalfH = math.Max(halfH, b.TargetH)
	b.speedX, b.speedY = 0, 0
}

// StartShrink sets per-axis speeds so the border reaches the target after
// durationSec.
func (b *Border) StartShrink(durationSec float64) {
	d := math.Max(0.1, durationSec)
	b.speedX = math.Max(0, b.HalfW-b.TargetW) / d
	b.speedY = math.Max(0, b.HalfH-b.TargetH) / d
}

// Update shrinks the border by dt seconds; extents never grow and never pass
// the target.
func (b *Border) Update(dt float64) {
	if dt <= 0 {
		return
	}
	b.HalfW = math.Max(b.TargetW, b.HalfW-b.speedX*dt)
	b.HalfH = math.Max(b.TargetH, b.HalfH-b.speedY*dt)
}

func (b *Border) Shrinking() bool {
	return (b.speedX > 0 && b.HalfW > b.TargetW) || (b.speedY > 0 && b.HalfH > b.TargetH)
}

func (b *Border) Bounds() geom.Rect {
	return geom.Rect{X: b.Center.X - b.HalfW, Y: b.Center.Y - b.HalfH, W: 2 * b.HalfW, H: 2 * b.HalfH}
}

// Contains is edge-inclusive.
func (b *Border) Contains(p geom.Vec2) bool {
	return math.Abs(p.X-b.Center.X) <= b.HalfW && math.Abs(p.Y-b.Center.Y) <= b.HalfH
}
