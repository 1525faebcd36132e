// Package progressui renders pipeline progress to a terminal, in the
// teacher's terse style: a single updating line, no external progress-bar
// dependency (none appears anywhere in the example pack, so this is
// implemented directly against io.Writer and ANSI carriage returns).
package progressui

import (
	"fmt"
	"io"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/sergeii/twintail/internal/pipeline"
)

// Console is a pipeline.ProgressSink that overwrites a single terminal
// line with the current completed/failed/total counts.
type Console struct {
	Out   io.Writer
	Label string

	mu    sync.Mutex
	total int
}

func New(out io.Writer, label string) *Console {
	return &Console{Out: out, Label: label}
}

func (c *Console) Start(total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total = total
	fmt.Fprintf(c.Out, "%s: 0/%s\n", c.Label, humanize.Comma(int64(total)))
}

func (c *Console) Update(s pipeline.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.Out, "\r%s: %s/%s (%d failed)",
		c.Label, humanize.Comma(int64(s.Completed)), humanize.Comma(int64(s.Total)), s.Failed)
}

func (c *Console) Finish(s pipeline.Summary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	status := "done"
	if s.Cancelled {
		status = "cancelled"
	}
	fmt.Fprintf(c.Out, "\r%s: %s (%s/%s completed, %d failed)\n",
		c.Label, status, humanize.Comma(int64(s.Completed)), humanize.Comma(int64(s.Total)), s.Failed)
}
