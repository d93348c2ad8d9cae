package levels

import (
	"fmt"
	"math"
)

// defaultThresholds is the reference level table: thresholds[i] is the
// cumulative XP required to hold level i+1.
var defaultThresholds = []int64{
	0, 100, 250, 500, 1000, 1750, 2750, 4000,
	5500, 7500, 10000, 13000, 16500, 20500, 25000,
}

// displayLevelStep is the per-level extrapolation used for rendering levels
// past the table. It never feeds back into the leveling update path.
const displayLevelStep = 5000

// Curve maps cumulative XP to a level number and back using a fixed
// ascending threshold table.
type Curve struct {
	thresholds []int64
}

// NewCurve builds a curve from an explicit threshold table. The table must
// start at 0 (level 1) and be strictly ascending.
func NewCurve(thresholds []int64) (*Curve, error) {
	if len(thresholds) == 0 {
		return nil, fmt.Errorf("level curve requires at least one threshold")
	}
	if thresholds[0] != 0 {
		return nil, fmt.Errorf("level 1 threshold must be 0, got %d", thresholds[0])
	}
	for i := 1; i < len(thresholds); i++ {
		if thresholds[i] <= thresholds[i-1] {
			return nil, fmt.Errorf("thresholds must be strictly ascending at index %d", i)
		}
	}
	c := &Curve{thresholds: make([]int64, len(thresholds))}
	copy(c.thresholds, thresholds)
	return c, nil
}

// Default returns a curve built from the reference table.
func Default() *Curve {
	c, _ := NewCurve(defaultThresholds)
	return c
}

// MaxLevel returns the highest level defined by the table.
func (c *Curve) MaxLevel() int {
	return len(c.thresholds)
}

// LevelForXP returns the greatest level whose threshold is <= xp.
// Level is never below 1, including for negative XP balances.
func (c *Curve) LevelForXP(xp int64) int {
	for i := len(c.thresholds) - 1; i >= 0; i-- {
		if xp >= c.thresholds[i] {
			return i + 1
		}
	}
	return 1
}

// XPForLevel returns the cumulative XP threshold for a level. Levels below 1
// map to 0; levels past the table map to the highest defined threshold.
func (c *Curve) XPForLevel(level int) int64 {
	if level < 1 {
		return 0
	}
	if level > len(c.thresholds) {
		return c.thresholds[len(c.thresholds)-1]
	}
	return c.thresholds[level-1]
}

// DisplayThreshold extrapolates a threshold for levels past the table at a
// fixed step per level. Rendering helper only.
func (c *Curve) DisplayThreshold(level int) int64 {
	if level <= len(c.thresholds) {
		return c.XPForLevel(level)
	}
	max := c.thresholds[len(c.thresholds)-1]
	return max + int64(level-len(c.thresholds))*displayLevelStep
}

// Progress describes how far into the current level a member's XP sits.
type Progress struct {
	Percent   int   `json:"percent"`
	IntoLevel int64 `json:"into_level"`
	Remaining int64 `json:"remaining"`
	LevelSpan int64 `json:"level_span"`
}

// ProgressFor computes progress through the current level. At max level the
// result reports 100% with nothing remaining.
func (c *Curve) ProgressFor(xp int64, level int) Progress {
	current := c.XPForLevel(level)
	if level >= c.MaxLevel() {
		into := xp - current
		if into < 0 {
			into = 0
		}
		return Progress{Percent: 100, IntoLevel: into, Remaining: 0, LevelSpan: 0}
	}

	next := c.XPForLevel(level + 1)
	span := next - current
	into := xp - current
	if into < 0 {
		into = 0
	}
	percent := int(math.Floor(float64(into) / float64(span) * 100))
	if percent > 100 {
		percent = 100
	}
	return Progress{
		Percent:   percent,
		IntoLevel: into,
		Remaining: next - xp,
		LevelSpan: span,
	}
}
