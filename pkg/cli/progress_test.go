package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// stepClock advances by step on every call.
type stepClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *stepClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(c.step)
	return c.t
}

// lastLine returns the most recent carriage-return-separated status line.
func lastLine(out string) string {
	out = strings.TrimRight(out, "\n")
	return out[strings.LastIndex(out, "\r")+1:]
}

func TestLintProgress_Tally(t *testing.T) {
	buf := &bytes.Buffer{}
	clock := &stepClock{t: time.Unix(0, 0), step: time.Second}
	p := newLintProgress(buf, 4, clock.now)

	p.Observe(nil)
	p.Observe([]string{"negative_numbers"})
	p.Observe([]string{"negative_numbers", "mixed_delimiter"})
	p.Observe([]string{"invalid_escape"})
	got := p.Finish()

	want := LintTally{
		Total:    4,
		Checked:  4,
		Rejected: 3,
		ByType: map[string]int{
			"negative_numbers": 2,
			"mixed_delimiter":  1,
			"invalid_escape":   1,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Finish() mismatch (-want +got):\n%s", diff)
	}

	wantLine := "lint 4/4 checked, 3 rejected [invalid_escape=1 mixed_delimiter=1 negative_numbers=2]"
	if line := lastLine(buf.String()); line != wantLine {
		t.Errorf("last line = %q, want %q", line, wantLine)
	}
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Error("Finish() did not end the line")
	}
}

func TestLintProgress_StartLine(t *testing.T) {
	buf := &bytes.Buffer{}
	newLintProgress(buf, 10, time.Now)

	if got, want := buf.String(), "\rlint 0/10 checked, 0 rejected"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestLintProgress_Throttle(t *testing.T) {
	tests := []struct {
		name      string
		step      time.Duration
		wantDraws int
	}{
		// Start, the final observation and Finish
		{name: "fast", step: time.Millisecond, wantDraws: 3},
		// Start, every observation and Finish
		{name: "slow", step: redrawInterval, wantDraws: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			clock := &stepClock{t: time.Unix(0, 0), step: tt.step}
			p := newLintProgress(buf, 5, clock.now)
			for range 5 {
				p.Observe(nil)
			}
			p.Finish()

			if got := strings.Count(buf.String(), "\r"); got != tt.wantDraws {
				t.Errorf("draws = %d, want %d", got, tt.wantDraws)
			}
		})
	}
}

func TestLintProgress_Abort(t *testing.T) {
	buf := &bytes.Buffer{}
	p := newLintProgress(buf, 3, time.Now)
	p.Observe([]string{"trailing_separator"})
	p.Abort(context.Canceled)

	out := buf.String()
	for _, want := range []string{
		"lint 1/3 checked, 1 rejected [trailing_separator=1]",
		"lint stopped after 1 of 3: context canceled",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output = %q, want it to contain %q", out, want)
		}
	}
}

func TestLintProgress_FinishCopiesTally(t *testing.T) {
	p := newLintProgress(&bytes.Buffer{}, 2, time.Now)
	p.Observe([]string{"negative_numbers"})

	tally := p.Finish()
	tally.ByType["negative_numbers"] = 99

	p.Observe([]string{"negative_numbers"})
	if got := p.Finish().ByType["negative_numbers"]; got != 2 {
		t.Errorf("ByType[negative_numbers] = %d, want 2", got)
	}
}

func TestLintProgress_Concurrent(t *testing.T) {
	p := newLintProgress(&bytes.Buffer{}, 1000, time.Now)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 100 {
				if (i+j)%4 == 0 {
					p.Observe([]string{"negative_numbers"})
				} else {
					p.Observe(nil)
				}
			}
		}()
	}
	wg.Wait()

	tally := p.Finish()
	if tally.Checked != 1000 || tally.Rejected != 250 {
		t.Errorf("checked/rejected = %d/%d, want 1000/250", tally.Checked, tally.Rejected)
	}
}

func TestNewLintProgress_NilWriter(t *testing.T) {
	if p := NewLintProgress(nil, 0); p.w == nil {
		t.Error("NewLintProgress(nil) left a nil writer")
	}
}
