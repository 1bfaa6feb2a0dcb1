package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/sir_venger/chunkxfer/internal/models"
)

const (
	progressBarWidth     = 32
	progressRenderPeriod = 120 * time.Millisecond
)

// progressBar рисует ASCII-индикатор по событиям Progress передачи.
// Без live перерисовки нет, выводится только итоговая строка.
type progressBar struct {
	out           io.Writer
	prefix        string
	live          bool
	state         models.Progress
	lastRender    time.Time
	lastLineWidth int
	finished      bool
	mu            sync.Mutex
}

func newProgressBar(out io.Writer, prefix string, live bool) *progressBar {
	return &progressBar{
		out:    out,
		prefix: prefix,
		live:   live,
	}
}

// Update подходит как transfer.ProgressFunc.
func (p *progressBar) Update(pr models.Progress) {
	if p == nil {
		return
	}
	p.mu.Lock()
	if p.finished {
		p.mu.Unlock()
		return
	}
	p.state = pr
	p.mu.Unlock()
	p.render(pr.Completed == pr.Total)
}

func (p *progressBar) render(force bool) {
	p.mu.Lock()
	if !p.live || p.finished {
		p.mu.Unlock()
		return
	}
	now := time.Now()
	if !force && now.Sub(p.lastRender) < progressRenderPeriod {
		p.mu.Unlock()
		return
	}

	line := p.lineLocked()
	prevWidth := p.lastLineWidth
	p.lastLineWidth = len(line)
	p.lastRender = now
	p.mu.Unlock()

	fmt.Fprintf(p.out, "\r%s%s", line, padding(prevWidth, len(line)))
}

func (p *progressBar) lineLocked() string {
	var builder strings.Builder
	builder.Grow(len(p.prefix) + 64)
	builder.WriteString(p.prefix)
	builder.WriteByte(' ')

	ratio := float64(p.state.Percent()) / 100
	filled := int(ratio*float64(progressBarWidth) + 0.5)
	if filled > progressBarWidth {
		filled = progressBarWidth
	}
	builder.WriteByte('[')
	builder.WriteString(strings.Repeat("=", filled))
	builder.WriteString(strings.Repeat(" ", progressBarWidth-filled))
	builder.WriteString("] ")
	builder.WriteString(fmt.Sprintf("%3d%% %d/%d chunks", p.state.Percent(), p.state.Completed, p.state.Total))

	return builder.String()
}

func (p *progressBar) Finish(summary string) {
	p.complete(successStyle.Render(symbolPass + " " + summary))
}

func (p *progressBar) Fail(err error) {
	p.complete(errorStyle.Render(fmt.Sprintf("%s %v", symbolFail, err)))
}

func (p *progressBar) complete(suffix string) {
	if p == nil {
		return
	}

	p.mu.Lock()
	if p.finished {
		p.mu.Unlock()
		return
	}
	p.finished = true
	line := p.lineLocked()
	prevWidth := p.lastLineWidth
	live := p.live
	p.mu.Unlock()

	if !live {
		fmt.Fprintf(p.out, "%s %s\n", p.prefix, suffix)
		return
	}
	full := line + " " + suffix
	fmt.Fprintf(p.out, "\r%s%s\n", full, padding(prevWidth, len(full)))
}

func padding(prev, cur int) string {
	if prev > cur {
		return strings.Repeat(" ", prev-cur)
	}
	return ""
}
