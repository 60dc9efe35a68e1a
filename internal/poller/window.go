package poller

import (
	"fmt"

	"github.com/modelgarden/nodeup/internal/models"
)

const (
	windowBefore = 5
	windowAfter  = 5
	windowIdle   = 10
)

// Line is one rendered row. Synthetic summary lines ("3 completed",
// "7 more…") carry an empty Name.
type Line struct {
	Name    string
	Status  models.NodeStatus
	Message string
	Summary string
}

// Window trims the snapshot's node list to a bounded view around the
// active node, summarizing everything scrolled out above and below. With
// no active node it shows the head of the list instead.
func Window(snap models.Snapshot) []Line {
	active := -1
	for i, row := range snap.Nodes {
		if !row.Status.Terminal() && row.Status != models.StatusPending {
			active = i
			break
		}
	}

	var start, end int
	if active >= 0 {
		start = active - windowBefore
		end = active + windowAfter + 1
	} else {
		start = 0
		end = windowIdle
	}
	if start < 0 {
		start = 0
	}
	if end > len(snap.Nodes) {
		end = len(snap.Nodes)
	}

	var lines []Line
	if start > 0 {
		lines = append(lines, Line{Summary: fmt.Sprintf("%d completed", start)})
	}
	for _, row := range snap.Nodes[start:end] {
		lines = append(lines, Line{Name: row.Name, Status: row.Status, Message: row.Message})
	}
	if rest := len(snap.Nodes) - end; rest > 0 {
		lines = append(lines, Line{Summary: fmt.Sprintf("%d more…", rest)})
	}
	return lines
}
