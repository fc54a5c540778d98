package fasttext

import (
	"bufio"
	"io"

	"github.com/neurlang/fasttext/args"
	"github.com/neurlang/fasttext/dictionary"
	"github.com/neurlang/fasttext/matrix"
	"github.com/pkg/errors"
)

// GetVector stores in vec the mean of the input rows of word's subwords.
// Words outside the vocabulary are represented by their char n-grams; with
// none of those vec is zero.
func (f *FastText) GetVector(vec matrix.Vector, word string) {
	f.mean(vec, f.dict.NgramsOf(word))
}

// SentenceVector stores in vec the mean of the input rows of the line's
// words and word n-grams. line is not modified.
func (f *FastText) SentenceVector(vec matrix.Vector, line []int32) {
	f.mean(vec, f.dict.AddNgrams(append([]int32(nil), line...), f.args.WordNgrams))
}

func (f *FastText) mean(vec matrix.Vector, ids []int32) {
	vec.Zero()
	for _, id := range ids {
		vec.AddRow(f.input, int64(id))
	}
	if len(ids) > 0 {
		vec.Mul(1 / float32(len(ids)))
	}
}

// WordVectors writes "<word> <vector>" for every whitespace separated token
// of r.
func (f *FastText) WordVectors(r io.Reader, w io.Writer) error {
	if f.model == nil {
		return ErrNoModel
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	sc.Split(bufio.ScanWords)
	bw := bufio.NewWriter(w)
	vec := matrix.NewVector(f.args.Dim)
	var buf []byte
	for sc.Scan() {
		word := sc.Text()
		f.GetVector(vec, word)
		buf = append(buf[:0], word...)
		buf = append(buf, ' ')
		buf = vec.AppendText(buf)
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return errors.Wrap(err, "read words")
	}
	return bw.Flush()
}

// TextVectors writes one sentence vector per line of r.
func (f *FastText) TextVectors(r io.Reader, w io.Writer) error {
	if f.model == nil {
		return ErrNoModel
	}
	in := dictionary.NewReader(r)
	bw := bufio.NewWriter(w)
	vec := matrix.NewVector(f.args.Dim)
	var (
		line, labels []int32
		buf          []byte
	)
	for in.More() {
		_, line, labels = f.dict.GetLine(in, line, labels, f.model.Rand())
		f.SentenceVector(vec, line)
		buf = vec.AppendText(buf[:0])
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// PrintVectors writes sentence vectors for classifiers and word vectors for
// embedding models.
func (f *FastText) PrintVectors(r io.Reader, w io.Writer) error {
	if f.model == nil {
		return ErrNoModel
	}
	if f.args.Model == args.Supervised {
		return f.TextVectors(r, w)
	}
	return f.WordVectors(r, w)
}
