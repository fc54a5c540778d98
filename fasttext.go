// Package fasttext trains subword embeddings and linear text classifiers
// and serves vectors, predictions and evaluation from a trained model.
//
// Training partitions the input file across a fixed pool of workers. Every
// worker owns a model.Model bound to the same input and output matrices and
// updates them without locks.
package fasttext

import (
	"io"
	"os"

	"github.com/neurlang/fasttext/args"
	"github.com/neurlang/fasttext/dictionary"
	"github.com/neurlang/fasttext/matrix"
	"github.com/neurlang/fasttext/model"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrNoModel is returned by inference calls made before Train or LoadModel.
var ErrNoModel = errors.New("no model trained or loaded")

type FastText struct {
	args   *args.Args
	dict   *dictionary.Dictionary
	input  *matrix.Matrix
	output *matrix.Matrix
	model  *model.Model

	log         *zap.Logger
	progressOut io.Writer
	metricsPath string
}

// Option configures a FastText.
type Option func(*FastText)

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(f *FastText) {
		if log != nil {
			f.log = log
		}
	}
}

// WithProgressWriter sets where worker 0 prints the progress line. The
// default is stderr; nil silences it.
func WithProgressWriter(w io.Writer) Option {
	return func(f *FastText) {
		f.progressOut = w
	}
}

// WithMetricsFile makes training write Prometheus text metrics to path at
// every progress report.
func WithMetricsFile(path string) Option {
	return func(f *FastText) {
		f.metricsPath = path
	}
}

func New(opts ...Option) *FastText {
	f := &FastText{
		log:         zap.NewNop(),
		progressOut: os.Stderr,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Args returns the configuration of the trained or loaded model.
func (f *FastText) Args() *args.Args {
	return f.args
}

// Dictionary returns the vocabulary of the trained or loaded model.
func (f *FastText) Dictionary() *dictionary.Dictionary {
	return f.dict
}

// Input returns the embedding matrix.
func (f *FastText) Input() *matrix.Matrix {
	return f.input
}

// Output returns the output matrix.
func (f *FastText) Output() *matrix.Matrix {
	return f.output
}

// newModel binds an optimizer to the shared matrices with the target
// distribution of the objective.
func (f *FastText) newModel(seed int64) (*model.Model, error) {
	m := model.New(f.input, f.output, f.args, seed)
	counts := f.dict.Counts(dictionary.Word)
	if f.args.Model == args.Supervised {
		counts = f.dict.Counts(dictionary.Label)
	}
	return m, errors.Wrap(m.SetTargetCounts(counts), "set target counts")
}
