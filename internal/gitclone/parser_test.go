package gitclone_test

import (
	"testing"

	"github.com/modelgarden/nodeup/internal/gitclone"
)

func TestParseLineReceiving(t *testing.T) {
	ev, ok := gitclone.ParseLine("Receiving objects:  45% (1234/2742), 10.50 MiB | 2.31 MiB/s")
	if !ok {
		t.Fatal("expected line to parse")
	}
	if ev.Percent != 45 {
		t.Errorf("expected percent 45, got %d", ev.Percent)
	}
	if ev.Received != "10.50 MiB" {
		t.Errorf("expected received 10.50 MiB, got %q", ev.Received)
	}
	if ev.Rate != "2.31 MiB/s" {
		t.Errorf("expected rate 2.31 MiB/s, got %q", ev.Rate)
	}
	if ev.Total != "" {
		t.Errorf("expected no total mid-transfer, got %q", ev.Total)
	}
}

func TestParseLinePercentOnly(t *testing.T) {
	ev, ok := gitclone.ParseLine("Receiving objects:   7% (200/2742)")
	if !ok {
		t.Fatal("expected line to parse")
	}
	if ev.Percent != 7 {
		t.Errorf("expected percent 7, got %d", ev.Percent)
	}
	if ev.Received != "" || ev.Rate != "" {
		t.Errorf("expected no byte info, got %q / %q", ev.Received, ev.Rate)
	}
}

func TestParseLineCompletionSummary(t *testing.T) {
	ev, ok := gitclone.ParseLine("Receiving objects: 100% (2742/2742), 12.40 MiB | 3.10 MiB/s, done.")
	if !ok {
		t.Fatal("expected line to parse")
	}
	if ev.Percent != 100 {
		t.Errorf("expected percent 100, got %d", ev.Percent)
	}
	if ev.Total != "12.40 MiB" {
		t.Errorf("expected total 12.40 MiB, got %q", ev.Total)
	}
}

func TestParseLineResolvingDeltas(t *testing.T) {
	ev, ok := gitclone.ParseLine("Resolving deltas:  80% (1600/2000)")
	if !ok {
		t.Fatal("expected line to parse")
	}
	if ev.Percent != 80 {
		t.Errorf("expected percent 80, got %d", ev.Percent)
	}
	if ev.Total != "" {
		t.Errorf("delta lines carry no total, got %q", ev.Total)
	}
}

func TestParseLineUnrecognized(t *testing.T) {
	lines := []string{
		"Cloning into 'controlnet'...",
		"remote: Enumerating objects: 2742, done.",
		"warning: something unexpected",
		"",
	}
	for _, line := range lines {
		if ev, ok := gitclone.ParseLine(line); ok {
			t.Errorf("expected %q not to parse, got %+v", line, ev)
		}
	}
}

func TestParseLineMalformedDegradesGracefully(t *testing.T) {
	// A future git changing its wording must not produce bogus fields.
	ev, ok := gitclone.ParseLine("Receiving objects: lots% (??), fast")
	if ok {
		t.Errorf("expected malformed line to be ignored, got %+v", ev)
	}
}
