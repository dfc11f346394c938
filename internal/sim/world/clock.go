package world

import (
	"fmt"

	"candysurvival.ai/internal/sim/tuning"
)

const minutesPerDay = 24 * 60

// Clock is the in-game time of day. Minutes stays in [0, 1440).
type Clock struct {
	Minutes float64
	Day     int
}

func NewClock() Clock { return Clock{Minutes: tuning.DayStartHour * 60, Day: 1} }

// Advance moves the clock by dt real seconds at rate in-game minutes per
// second and returns how many midnights were crossed.
func (c *Clock) Advance(dt, rate float64) int {
	if dt <= 0 || rate <= 0 {
		return 0
	}
	c.Minutes += dt * rate
	wraps := 0
	for c.Minutes >= minutesPerDay {
		c.Minutes -= minutesPerDay
		c.Day++
		wraps++
	}
	return wraps
}

// IsDaytime reports whether the clock is within [06:00, 20:00).
func (c Clock) IsDaytime() bool {
	return c.Minutes >= tuning.DayStartHour*60 && c.Minutes < tuning.DayEndHour*60
}

func (c Clock) String() string {
	m := int(c.Minutes)
	return fmt.Sprintf("Day %d %02d:%02d", c.Day, m/60, m%60)
}
