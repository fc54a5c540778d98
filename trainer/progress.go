package trainer

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/neurlang/fasttext/args"
)

// Snapshot is one progress report.
type Snapshot struct {
	Tokens       int64
	Progress     float64
	WordsPerSec  float64 // per worker
	LearningRate float32
	Loss         float32
	ETA          time.Duration
	Elapsed      time.Duration
}

// Progress counts the tokens consumed by all workers against the budget of
// epoch * ntokens.
type Progress struct {
	tokens  atomic.Int64
	total   int64
	lr      float64
	threads int
	start   time.Time

	w       io.Writer
	metrics *Metrics
}

// NewProgress sizes the budget from the configuration and the corpus token
// count. Reports go to stderr until SetWriter is called.
func NewProgress(a *args.Args, ntokens int64) *Progress {
	return &Progress{
		total:   int64(a.Epoch) * ntokens,
		lr:      a.LR,
		threads: a.Thread,
		start:   time.Now(),
		w:       os.Stderr,
	}
}

// SetWriter redirects the progress line. A nil writer silences it.
func (p *Progress) SetWriter(w io.Writer) {
	p.w = w
}

// SetMetrics attaches a metrics sink updated on every report.
func (p *Progress) SetMetrics(m *Metrics) {
	p.metrics = m
}

// Start resets the counter and the clock.
func (p *Progress) Start() {
	p.tokens.Store(0)
	p.start = time.Now()
}

// Add flushes a worker's local token count into the global counter.
func (p *Progress) Add(n int64) {
	p.tokens.Add(n)
}

func (p *Progress) Tokens() int64 {
	return p.tokens.Load()
}

// Total is the token budget of the run.
func (p *Progress) Total() int64 {
	return p.total
}

// Done reports whether the budget is exhausted.
func (p *Progress) Done() bool {
	return p.tokens.Load() >= p.total
}

// Fraction is the consumed share of the budget, in [0, 1].
func (p *Progress) Fraction() float64 {
	if p.total <= 0 {
		return 1
	}
	return min(float64(p.tokens.Load())/float64(p.total), 1)
}

// LearningRate decays the base rate linearly to 0 at the end of the run.
func (p *Progress) LearningRate(progress float64) float32 {
	return float32(p.lr * (1 - min(max(progress, 0), 1)))
}

// Snapshot computes the report for the given progress and loss.
func (p *Progress) Snapshot(progress float64, loss float32) Snapshot {
	elapsed := time.Since(p.start)
	s := Snapshot{
		Tokens:       p.tokens.Load(),
		Progress:     progress,
		LearningRate: p.LearningRate(progress),
		Loss:         loss,
		Elapsed:      elapsed,
	}
	if sec := elapsed.Seconds(); sec > 0 {
		s.WordsPerSec = float64(s.Tokens) / sec / float64(max(p.threads, 1))
	}
	if progress > 0 {
		s.ETA = time.Duration(float64(elapsed) / progress * (1 - progress))
	}
	return s
}

// Report prints the progress line and updates the metrics.
func (p *Progress) Report(progress float64, loss float32) error {
	s := p.Snapshot(progress, loss)
	if p.w != nil {
		eta := int(s.ETA.Seconds())
		etah := eta / 3600
		etam := (eta - etah*3600) / 60
		if _, err := fmt.Fprintf(p.w, "\rProgress: %.1f%%  words/sec/thread: %.0f  lr: %.6f  loss: %.6f  eta: %dh%dm ",
			100*s.Progress, s.WordsPerSec, s.LearningRate, s.Loss, etah, etam); err != nil {
			return err
		}
	}
	if p.metrics != nil {
		return p.metrics.Observe(s)
	}
	return nil
}

// Finish prints the final report followed by a newline.
func (p *Progress) Finish(loss float32) error {
	if err := p.Report(1, loss); err != nil {
		return err
	}
	if p.w != nil {
		_, err := fmt.Fprintln(p.w)
		return err
	}
	return nil
}
