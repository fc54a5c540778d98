package fasttext

import (
	"bufio"
	"io"
	"os"
	"strconv"

	"github.com/neurlang/fasttext/args"
	"github.com/neurlang/fasttext/dictionary"
	"github.com/neurlang/fasttext/matrix"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// SaveModel writes the model to <output>.bin.
func (f *FastText) SaveModel() error {
	path := f.args.Output + ".bin"
	if err := writeFile(path, "model", f.WriteModel); err != nil {
		return err
	}
	f.log.Info("model saved", zap.String("path", path))
	return nil
}

// WriteModel writes the configuration, the vocabulary, the input and the
// output matrix, in that order.
func (f *FastText) WriteModel(w io.Writer) error {
	if f.model == nil {
		return ErrNoModel
	}
	if err := f.args.Save(w); err != nil {
		return err
	}
	if err := f.dict.Save(w); err != nil {
		return err
	}
	if err := f.input.Save(w); err != nil {
		return err
	}
	return f.output.Save(w)
}

// LoadModel reads a model written by SaveModel.
func (f *FastText) LoadModel(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "model file cannot be opened for loading")
	}
	defer file.Close()
	if err := f.ReadModel(bufio.NewReader(file)); err != nil {
		return errors.Wrapf(err, "load model %s", path)
	}
	f.log.Info("model loaded", zap.String("path", path))
	return nil
}

// ReadModel reads what WriteModel wrote and rebuilds the target
// distribution from the vocabulary counts.
func (f *FastText) ReadModel(r io.Reader) error {
	a := args.New(args.SkipGram)
	if err := a.Load(r); err != nil {
		return err
	}
	dict := dictionary.New(a, f.log)
	if err := dict.Load(r); err != nil {
		return err
	}
	input, output := new(matrix.Matrix), new(matrix.Matrix)
	if err := input.Load(r); err != nil {
		return errors.Wrap(err, "input matrix")
	}
	if err := output.Load(r); err != nil {
		return errors.Wrap(err, "output matrix")
	}

	targets := int64(dict.NWords())
	if a.Model == args.Supervised {
		targets = int64(dict.NLabels())
	}
	switch {
	case input.N != int64(a.Dim) || output.N != int64(a.Dim):
		return errors.Errorf("matrix width %d/%d does not match dim %d", input.N, output.N, a.Dim)
	case input.M != int64(dict.NWords())+int64(a.Bucket):
		return errors.Errorf("input matrix has %d rows, want %d", input.M, int64(dict.NWords())+int64(a.Bucket))
	case output.M != targets:
		return errors.Errorf("output matrix has %d rows, want %d", output.M, targets)
	}

	f.args, f.dict, f.input, f.output = a, dict, input, output
	m, err := f.newModel(0)
	if err != nil {
		return err
	}
	f.model = m
	return nil
}

// SaveVectors writes the word vectors to <output>.vec.
func (f *FastText) SaveVectors() error {
	path := f.args.Output + ".vec"
	if err := writeFile(path, "vectors", f.WriteVectors); err != nil {
		return err
	}
	f.log.Info("vectors saved", zap.String("path", path))
	return nil
}

// WriteVectors writes "<nwords> <dim>" and then one "<word> <vector>" line
// per vocabulary word.
func (f *FastText) WriteVectors(w io.Writer) error {
	if f.model == nil {
		return ErrNoModel
	}
	bw := bufio.NewWriter(w)
	buf := strconv.AppendInt(nil, int64(f.dict.NWords()), 10)
	buf = append(buf, ' ')
	buf = strconv.AppendInt(buf, int64(f.args.Dim), 10)
	buf = append(buf, '\n')
	if _, err := bw.Write(buf); err != nil {
		return err
	}
	vec := matrix.NewVector(f.args.Dim)
	for id := int32(0); id < f.dict.NWords(); id++ {
		word := f.dict.Word(id)
		f.GetVector(vec, word)
		buf = append(buf[:0], word...)
		buf = append(buf, ' ')
		buf = vec.AppendText(buf)
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// LoadVectors seeds the input matrix from a pretrained vectors file. See
// ReadVectors.
func (f *FastText) LoadVectors(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "pretrained vectors file cannot be opened")
	}
	defer file.Close()
	return f.ReadVectors(file)
}

// ReadVectors reads "<n> <dim>" followed by n "<word> <dim floats>" records,
// separated by any whitespace. Every word joins the vocabulary, the input
// matrix is reallocated with a uniform initialization and the pretrained
// rows replace the rows of their words.
func (f *FastText) ReadVectors(r io.Reader) error {
	if f.args == nil || f.dict == nil {
		return errors.New("pretrained vectors need a configuration and a vocabulary")
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	sc.Split(bufio.ScanWords)
	next := func(what string) (string, error) {
		if sc.Scan() {
			return sc.Text(), nil
		}
		if err := sc.Err(); err != nil {
			return "", errors.Wrap(err, "read pretrained vectors")
		}
		return "", errors.Errorf("read pretrained vectors: unexpected end of input, want %s", what)
	}
	nextInt := func(what string) (int64, error) {
		s, err := next(what)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseInt(s, 10, 64)
		return v, errors.Wrapf(err, "read pretrained vectors: %s", what)
	}

	n, err := nextInt("row count")
	if err != nil {
		return err
	}
	dim, err := nextInt("dimension")
	if err != nil {
		return err
	}
	if dim != int64(f.args.Dim) {
		return errors.Errorf("dimension of pretrained vectors (%d) does not match dim option (%d)", dim, f.args.Dim)
	}
	if n < 0 {
		return errors.Errorf("read pretrained vectors: invalid row count %d", n)
	}

	mat := matrix.New(n, dim)
	words := make([]string, 0, n)
	for i := int64(0); i < n; i++ {
		word, err := next("word")
		if err != nil {
			return err
		}
		words = append(words, word)
		f.dict.Add(word)
		row := mat.Row(i)
		for j := range row {
			s, err := next("vector component")
			if err != nil {
				return err
			}
			v, err := strconv.ParseFloat(s, 32)
			if err != nil {
				return errors.Wrapf(err, "read pretrained vectors: %s", word)
			}
			row[j] = float32(v)
		}
	}

	f.dict.Threshold(1, 0)
	f.input = matrix.New(int64(f.dict.NWords())+int64(f.args.Bucket), dim)
	f.input.Uniform(1 / float32(dim))
	for i, word := range words {
		id := f.dict.ID(word)
		if id < 0 || id >= f.dict.NWords() {
			continue
		}
		copy(f.input.Row(int64(id)), mat.Row(int64(i)))
	}
	f.log.Info("pretrained vectors loaded", zap.Int64("rows", n), zap.Int32("words", f.dict.NWords()))
	return nil
}

// writeFile creates path and streams write into it through a buffer. what
// names the file in errors.
func writeFile(path, what string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "%s file cannot be opened for saving", what)
	}
	bw := bufio.NewWriter(file)
	err = write(bw)
	if err == nil {
		err = bw.Flush()
	}
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return errors.Wrapf(err, "write %s file %s", what, path)
}
