package fasttext

import (
	"bufio"
	"io"

	"github.com/neurlang/fasttext/args"
	"github.com/neurlang/fasttext/dictionary"
	"github.com/neurlang/fasttext/inference"
	"go.uber.org/zap"
)

// Predict reads one line from r and returns its k most likely labels, best
// first. A line without known tokens yields no predictions.
func (f *FastText) Predict(r *dictionary.Reader, k int) ([]inference.Prediction, error) {
	if f.model == nil {
		return nil, ErrNoModel
	}
	_, line, _ := f.dict.GetLine(r, nil, nil, f.model.Rand())
	return f.predictLine(line, k), nil
}

func (f *FastText) predictLine(line []int32, k int) []inference.Prediction {
	line = f.dict.AddNgrams(line, f.args.WordNgrams)
	pairs := f.model.Predict(line, k)
	preds := make([]inference.Prediction, len(pairs))
	for i, p := range pairs {
		preds[i].Score = p.Score
		if f.args.Model == args.Supervised {
			preds[i].Label = f.dict.Label(p.ID)
		} else {
			preds[i].Label = f.dict.Word(p.ID)
		}
	}
	return preds
}

// PredictAll writes the predictions of every line of r to w, with their
// probabilities when printProb is set.
func (f *FastText) PredictAll(r io.Reader, w io.Writer, k int, printProb bool) error {
	if f.model == nil {
		return ErrNoModel
	}
	in := dictionary.NewReader(r)
	bw := bufio.NewWriter(w)
	for in.More() {
		preds, err := f.Predict(in, k)
		if err != nil {
			return err
		}
		if err := inference.WriteLine(bw, preds, printProb); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Test measures precision and recall at k over the labeled lines of r.
// Lines without words or without labels are skipped.
func (f *FastText) Test(r io.Reader, k int) (*inference.Meter, error) {
	if f.model == nil {
		return nil, ErrNoModel
	}
	in := dictionary.NewReader(r)
	meter := inference.NewMeter(k)
	var line, labels []int32
	for in.More() {
		_, line, labels = f.dict.GetLine(in, line, labels, f.model.Rand())
		if len(line) == 0 || len(labels) == 0 {
			continue
		}
		line = f.dict.AddNgrams(line, f.args.WordNgrams)
		pairs := f.model.Predict(line, k)
		predicted := make([]int32, len(pairs))
		for i, p := range pairs {
			predicted[i] = p.ID
		}
		meter.Add(predicted, labels)
	}
	f.log.Debug("test finished", zap.Int("examples", meter.Examples()), zap.Int("k", k))
	return meter, nil
}
