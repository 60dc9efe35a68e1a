package gitclone

import (
	"regexp"
	"strconv"
	"strings"
)

// Event is the structured form of one line of git's progress output. Every
// field is independently optional; parsing is best-effort and a format
// change in git degrades fields to empty rather than failing the clone.
type Event struct {
	Percent  int    // -1 when the line carried no percentage
	Received string // transferred quantity with unit, e.g. "10.50 MiB"
	Rate     string // transfer rate with unit, e.g. "2.31 MiB/s"
	Total    string // final total from the completion summary line
}

var (
	receivingRe = regexp.MustCompile(`Receiving objects:\s+(\d+)%`)
	deltasRe    = regexp.MustCompile(`Resolving deltas:\s+(\d+)%`)
	bytesRe     = regexp.MustCompile(`(\d+(?:\.\d+)?\s*(?:B|KiB|MiB|GiB|TiB))(?:\s*\|\s*(\d+(?:\.\d+)?\s*(?:B|KiB|MiB|GiB|TiB)/s))?`)
)

// ParseLine extracts whatever progress information the line carries. The
// second return is false when the line carried nothing usable.
func ParseLine(line string) (Event, bool) {
	ev := Event{Percent: -1}
	matched := false

	if m := receivingRe.FindStringSubmatch(line); m != nil {
		if pct, err := strconv.Atoi(m[1]); err == nil {
			ev.Percent = pct
			matched = true
		}
	} else if m := deltasRe.FindStringSubmatch(line); m != nil {
		// Delta resolution runs after the transfer finishes; its percentage
		// is a coarse stand-in for overall progress and the consumer's
		// monotonic clamp drops any that would move backwards.
		if pct, err := strconv.Atoi(m[1]); err == nil {
			ev.Percent = pct
			matched = true
		}
	}

	if m := bytesRe.FindStringSubmatch(line); m != nil {
		ev.Received = strings.TrimSpace(m[1])
		matched = true
		if m[2] != "" {
			ev.Rate = strings.TrimSpace(m[2])
		}
	}

	// The completion summary fixes the total size, e.g.
	// "Receiving objects: 100% (2742/2742), 12.40 MiB | 3.10 MiB/s, done."
	if ev.Percent == 100 && ev.Received != "" && strings.Contains(line, "done") {
		ev.Total = ev.Received
	}

	return ev, matched
}
