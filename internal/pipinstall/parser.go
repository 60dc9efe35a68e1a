package pipinstall

import (
	"regexp"
	"strings"
)

// Phase identifies which part of the install the tool is reporting on.
type Phase string

const (
	PhaseCollecting  Phase = "collecting"
	PhaseDownloading Phase = "downloading"
	PhaseInstalling  Phase = "installing"
)

// Event is the structured form of one line of the installer's output.
type Event struct {
	Phase   Phase
	Detail  string // package name for collecting, size for downloading
	Rate    string // optional transfer rate
	Percent int    // index/total proxy; -1 when total is unknown
}

var (
	collectingRe  = regexp.MustCompile(`^Collecting\s+(\S+)`)
	downloadingRe = regexp.MustCompile(`Downloading\s+\S+\s+\((\d+(?:\.\d+)?\s*[kKMG]?B)\)`)
	rateRe        = regexp.MustCompile(`(\d+(?:\.\d+)?\s*[kKMG]B/s)`)
	installingRe  = regexp.MustCompile(`^Installing collected packages`)
)

// Parser tracks the dependency index across a single install's output. The
// declared entry count drives the index/total progress proxy; the parser is
// best-effort and unrecognized lines leave it untouched.
type Parser struct {
	total int
	index int
}

// NewParser creates a parser over an install with the given declared entry
// count.
func NewParser(total int) *Parser {
	return &Parser{total: total}
}

// ParseLine classifies one output line. The second return is false for
// unrecognized lines.
func (p *Parser) ParseLine(line string) (Event, bool) {
	line = strings.TrimSpace(line)

	if m := collectingRe.FindStringSubmatch(line); m != nil {
		p.index++
		return Event{
			Phase:   PhaseCollecting,
			Detail:  m[1],
			Percent: p.percent(),
		}, true
	}

	if m := downloadingRe.FindStringSubmatch(line); m != nil {
		ev := Event{
			Phase:   PhaseDownloading,
			Detail:  strings.TrimSpace(m[1]),
			Percent: p.percent(),
		}
		if r := rateRe.FindStringSubmatch(line); r != nil {
			ev.Rate = r[1]
		}
		return ev, true
	}

	if installingRe.MatchString(line) {
		return Event{Phase: PhaseInstalling, Percent: 100}, true
	}

	return Event{}, false
}

func (p *Parser) percent() int {
	if p.total <= 0 {
		return -1
	}
	pct := p.index * 100 / p.total
	if pct > 100 {
		pct = 100
	}
	return pct
}

// CountRequirements counts declared dependency entries, ignoring blank
// lines and comments.
func CountRequirements(data []byte) int {
	count := 0
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		count++
	}
	return count
}
