package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/xiam/guix-crates/index"
)

// progressBar reports scan progress on w. It implements index.Progress.
type progressBar struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

var _ index.Progress = (*progressBar)(nil)

func newProgressBar(w io.Writer) *progressBar {
	return &progressBar{w: w}
}

func (p *progressBar) OnStart(total int) {
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetDescription("Scanning modules"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(p.w)
		}),
	)
}

// OnFile is safe for concurrent use; the bar locks internally.
func (p *progressBar) OnFile(name string) {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

func (p *progressBar) OnFinish() {
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
}
