package fasttext

import (
	"io"
	"os"

	"github.com/neurlang/fasttext/args"
	"github.com/neurlang/fasttext/dictionary"
	"github.com/neurlang/fasttext/matrix"
	"github.com/neurlang/fasttext/parallel"
	"github.com/neurlang/fasttext/trainer"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Train builds the vocabulary from a.Input, trains with a.Thread workers
// and, when a.Output is set, saves <output>.bin and for unsupervised models
// <output>.vec. Any error aborts the run before anything is saved.
func (f *FastText) Train(a *args.Args) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if a.Input == "-" {
		return errors.New("cannot use stdin for training")
	}
	file, err := os.Open(a.Input)
	if err != nil {
		return errors.Wrap(err, "input file cannot be opened")
	}
	f.args = a
	f.dict = dictionary.New(a, f.log)
	err = f.dict.ReadFrom(file)
	file.Close()
	if err != nil {
		return err
	}
	if a.Model == args.Supervised && f.dict.NLabels() == 0 {
		return errors.Errorf("no labels with prefix %q found in %s", a.Label, a.Input)
	}
	if a.Model != args.Supervised && f.dict.NWords() == 0 {
		return errors.Errorf("no words left in %s after thresholding, try a smaller minCount value", a.Input)
	}

	if a.PretrainedVectors != "" {
		if err := f.LoadVectors(a.PretrainedVectors); err != nil {
			return err
		}
	} else {
		f.input = matrix.New(int64(f.dict.NWords())+int64(a.Bucket), int64(a.Dim))
		f.input.Uniform(1 / float32(a.Dim))
	}
	if a.Model == args.Supervised {
		f.output = matrix.New(int64(f.dict.NLabels()), int64(a.Dim))
	} else {
		f.output = matrix.New(int64(f.dict.NWords()), int64(a.Dim))
	}
	f.log.Info("parameters allocated",
		zap.Int64("input_rows", f.input.M),
		zap.Int64("output_rows", f.output.M),
		zap.Int("dim", a.Dim),
		zap.Bool("simd", matrix.Accelerated))

	if err := f.run(); err != nil {
		return err
	}
	if f.model, err = f.newModel(0); err != nil {
		return err
	}

	if a.Output == "" {
		return nil
	}
	if err := f.SaveModel(); err != nil {
		return err
	}
	if a.Model != args.Supervised {
		return f.SaveVectors()
	}
	return nil
}

// run starts one worker per thread and waits for all of them.
func (f *FastText) run() error {
	info, err := os.Stat(f.args.Input)
	if err != nil {
		return errors.Wrap(err, "input file cannot be opened")
	}
	progress := trainer.NewProgress(f.args, f.dict.NTokens())
	var out io.Writer
	if f.args.Verbose > 0 {
		out = f.progressOut
	}
	progress.SetWriter(out)
	if f.metricsPath != "" {
		progress.SetMetrics(trainer.NewMetrics(f.metricsPath))
	}
	f.log.Info("training started",
		zap.Stringer("model", f.args.Model),
		zap.Stringer("loss", f.args.Loss),
		zap.Int("threads", f.args.Thread),
		zap.Int64("token_budget", progress.Total()))
	progress.Start()
	err = parallel.ForEach(f.args.Thread, f.args.Thread, func(id int) error {
		return f.trainThread(id, info.Size(), progress)
	})
	if err != nil {
		return err
	}
	f.log.Info("training finished", zap.Int64("tokens", progress.Tokens()))
	return nil
}

// trainThread is one worker: it scans the input from its own offset,
// wrapping to the start of the file at the end, until the global token
// budget is spent.
func (f *FastText) trainThread(id int, size int64, progress *trainer.Progress) error {
	file, err := os.Open(f.args.Input)
	if err != nil {
		return errors.Wrap(err, "input file cannot be opened")
	}
	defer file.Close()
	if _, err := file.Seek(parallel.Offset(id, size, f.args.Thread), io.SeekStart); err != nil {
		return errors.Wrapf(err, "worker %d cannot seek input", id)
	}
	r := dictionary.NewReader(file)

	m, err := f.newModel(int64(id))
	if err != nil {
		return err
	}

	var (
		local, sinceRewind int64
		rewound            bool
		line, labels       []int32
		reportFailed       bool
	)
	for !progress.Done() {
		frac := progress.Fraction()
		lr := progress.LearningRate(frac)
		if r.EOF() {
			if rewound && sinceRewind == 0 {
				return errors.New("input has no trainable tokens")
			}
			if err := r.Rewind(); err != nil {
				return errors.Wrapf(err, "worker %d", id)
			}
			rewound, sinceRewind = true, 0
		}

		var n int64
		n, line, labels = f.dict.GetLine(r, line, labels, m.Rand())
		local += n
		sinceRewind += n
		switch f.args.Model {
		case args.Supervised:
			line = f.dict.AddNgrams(line, f.args.WordNgrams)
			f.supervised(m, lr, line, labels)
		case args.CBOW:
			f.cbow(m, lr, line)
		case args.SkipGram:
			f.skipgram(m, lr, line)
		}

		if local > int64(f.args.LRUpdateRate) {
			progress.Add(local)
			local = 0
			if id == 0 && f.args.Verbose > 1 && !reportFailed {
				if err := progress.Report(frac, m.Loss()); err != nil {
					f.log.Warn("progress report failed", zap.Error(err))
					reportFailed = true
				}
			}
		}
	}
	if id == 0 {
		if err := progress.Finish(m.Loss()); err != nil {
			f.log.Warn("progress report failed", zap.Error(err))
		}
	}
	return nil
}
