package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// redrawInterval limits how often the status line is rewritten.
const redrawInterval = 100 * time.Millisecond

// LintTally counts lint outcomes.
type LintTally struct {
	Total    int
	Checked  int
	Rejected int
	ByType   map[string]int // Rejections per issue type
}

// LintProgress keeps a single status line on w describing a lint run:
//
//	lint 40/100 checked, 3 rejected [mixed_delimiter=1 negative_numbers=2]
//
// Lines that could not be decoded count as rejected under "invalid_escape".
// LintProgress is safe for concurrent use.
type LintProgress struct {
	mu       sync.Mutex
	w        io.Writer
	now      func() time.Time
	tally    LintTally
	lastDraw time.Time
}

// NewLintProgress creates a progress line for total expressions. A nil w
// writes to os.Stderr so progress never mixes with command output.
func NewLintProgress(w io.Writer, total int) *LintProgress {
	if w == nil {
		w = os.Stderr
	}
	return newLintProgress(w, total, time.Now)
}

func newLintProgress(w io.Writer, total int, now func() time.Time) *LintProgress {
	p := &LintProgress{
		w:     w,
		now:   now,
		tally: LintTally{Total: total, ByType: make(map[string]int)},
	}
	p.mu.Lock()
	p.draw()
	p.mu.Unlock()
	return p
}

// Observe records one checked expression. An empty issueTypes means the
// expression was accepted.
func (p *LintProgress) Observe(issueTypes []string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.tally.Checked++
	if len(issueTypes) > 0 {
		p.tally.Rejected++
		for _, t := range issueTypes {
			p.tally.ByType[t]++
		}
	}

	if p.tally.Checked == p.tally.Total || p.now().Sub(p.lastDraw) >= redrawInterval {
		p.draw()
	}
}

// Abort ends the line early with err, for example when the run is cancelled.
func (p *LintProgress) Abort(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.draw()
	fmt.Fprintf(p.w, "\nlint stopped after %d of %d: %v\n", p.tally.Checked, p.tally.Total, err)
}

// Finish draws the final line and returns the tally.
func (p *LintProgress) Finish() LintTally {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.draw()
	fmt.Fprintln(p.w)

	tally := p.tally
	tally.ByType = make(map[string]int, len(p.tally.ByType))
	for k, v := range p.tally.ByType {
		tally.ByType[k] = v
	}
	return tally
}

func (p *LintProgress) draw() {
	p.lastDraw = p.now()
	fmt.Fprintf(p.w, "\r%s", p.line())
}

func (p *LintProgress) line() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "lint %d/%d checked, %d rejected", p.tally.Checked, p.tally.Total, p.tally.Rejected)

	if len(p.tally.ByType) > 0 {
		types := make([]string, 0, len(p.tally.ByType))
		for t := range p.tally.ByType {
			types = append(types, t)
		}
		sort.Strings(types)

		parts := make([]string, len(types))
		for i, t := range types {
			parts[i] = fmt.Sprintf("%s=%d", t, p.tally.ByType[t])
		}
		fmt.Fprintf(&sb, " [%s]", strings.Join(parts, " "))
	}
	return sb.String()
}
