package gitclone

import (
	"time"

	"github.com/modelgarden/nodeup/internal/util"
)

// etaInterval is the minimum spacing between ETA recalculations. Together
// with the strict-progress requirement it rules out division by zero and
// keeps the estimate from flickering on bursty output.
const etaInterval = 3 * time.Second

// etaClock keeps the last sampled (percent, time) pair and produces a new
// estimate only when both enough time has passed and percent has strictly
// increased since that sample.
type etaClock struct {
	lastPercent int
	lastAt      time.Time
	primed      bool
}

// estimate returns an mm:ss estimate of the time remaining. The second
// return is false when the throttle suppressed recalculation.
func (c *etaClock) estimate(percent int, now time.Time) (string, bool) {
	if !c.primed {
		c.lastPercent = percent
		c.lastAt = now
		c.primed = true
		return "", false
	}

	dt := now.Sub(c.lastAt)
	dp := percent - c.lastPercent
	if dt < etaInterval || dp <= 0 {
		return "", false
	}

	remaining := time.Duration(float64(100-percent) * float64(dt) / float64(dp))
	c.lastPercent = percent
	c.lastAt = now
	return util.FormatClock(remaining), true
}
