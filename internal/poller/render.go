package poller

import (
	"fmt"
	"io"

	"github.com/modelgarden/nodeup/internal/models"
)

// Renderer consumes each deduplicated snapshot. Implementations draw a
// terminal view, push to a UI, or anything else.
type Renderer interface {
	Render(snap models.Snapshot) error
}

// WriterRenderer prints a header plus the windowed row list to an
// io.Writer, one block per snapshot.
type WriterRenderer struct {
	Out io.Writer
}

func (r WriterRenderer) Render(snap models.Snapshot) error {
	header := fmt.Sprintf("%d/%d processed (%d ok, %d failed)",
		snap.Processed, snap.TotalNodes, snap.Successful, snap.Failed)
	if snap.Completed {
		header += " - done"
	} else if snap.CurrentNode != "" {
		header += fmt.Sprintf(" - %s: %s", snap.CurrentNode, snap.CurrentStatus)
		if snap.CloneProgress != nil {
			header += fmt.Sprintf(" %d%%", *snap.CloneProgress)
		}
		if snap.ETA != "" {
			header += " eta " + snap.ETA
		}
	}
	if _, err := fmt.Fprintln(r.Out, header); err != nil {
		return err
	}

	for _, line := range Window(snap) {
		var err error
		if line.Summary != "" {
			_, err = fmt.Fprintf(r.Out, "  (%s)\n", line.Summary)
		} else if line.Message != "" {
			_, err = fmt.Fprintf(r.Out, "  %-12s %s  %s\n", line.Status, line.Name, line.Message)
		} else {
			_, err = fmt.Fprintf(r.Out, "  %-12s %s\n", line.Status, line.Name)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
