package fasttext

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/neurlang/fasttext/args"
	"github.com/neurlang/fasttext/dictionary"
	"github.com/neurlang/fasttext/matrix"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const reviews = "__label__pos good great film\n" +
	"__label__neg bad awful film\n" +
	"__label__pos great fun\n"

func writeCorpus(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.txt")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func classifierArgs(input string) *args.Args {
	a := args.New(args.Supervised)
	a.Input = input
	a.Dim = 10
	a.Bucket = 0
	a.Epoch = 20
	a.LR = 0.5
	a.Thread = 1
	a.Verbose = 0
	return a
}

func trainClassifier(t *testing.T) *FastText {
	t.Helper()
	f := New(WithProgressWriter(nil))
	require.NoError(t, f.Train(classifierArgs(writeCorpus(t, reviews))))
	return f
}

func TestTrainRejectsStdin(t *testing.T) {
	a := classifierArgs("-")
	err := New().Train(a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stdin")
}

func TestTrainMissingInput(t *testing.T) {
	a := classifierArgs(filepath.Join(t.TempDir(), "missing.txt"))
	err := New().Train(a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input file cannot be opened")
}

func TestTrainSupervisedWithoutLabels(t *testing.T) {
	a := classifierArgs(writeCorpus(t, "no labels here\n"))
	err := New().Train(a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no labels")
}

func TestTrainNoTrainableTokens(t *testing.T) {
	// only </s> survives minCount, so no line yields a token
	a := args.New(args.SkipGram)
	a.Input = writeCorpus(t, "alpha\nbeta\n")
	a.MinCount = 2
	a.Bucket = 0
	a.Dim = 4
	a.Thread = 1
	a.Verbose = 0
	err := New(WithProgressWriter(nil)).Train(a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no trainable tokens")
}

func TestNoModel(t *testing.T) {
	f := New()
	var out bytes.Buffer
	assert.ErrorIs(t, f.PredictAll(strings.NewReader("x\n"), &out, 1, false), ErrNoModel)
	assert.ErrorIs(t, f.PrintVectors(strings.NewReader("x\n"), &out), ErrNoModel)
	assert.ErrorIs(t, f.WriteModel(&out), ErrNoModel)
	_, err := f.Test(strings.NewReader("x\n"), 1)
	assert.ErrorIs(t, err, ErrNoModel)
}

func TestClassifierPredict(t *testing.T) {
	f := trainClassifier(t)
	labels := []string{"__label__pos", "__label__neg"}

	preds, err := f.Predict(dictionary.NewReader(strings.NewReader("great film\n")), 2)
	require.NoError(t, err)
	require.Len(t, preds, 2)
	assert.GreaterOrEqual(t, preds[0].Score, preds[1].Score)
	for _, p := range preds {
		assert.Contains(t, labels, p.Label)
		assert.LessOrEqual(t, p.Probability(), 1.0)
	}

	preds, err = f.Predict(dictionary.NewReader(strings.NewReader("unseen words\n")), 2)
	require.NoError(t, err)
	assert.Empty(t, preds)
}

func TestClassifierPredictAll(t *testing.T) {
	f := trainClassifier(t)
	var out bytes.Buffer
	require.NoError(t, f.PredictAll(strings.NewReader("great film\nzzz\n"), &out, 1, true))

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	fields := strings.Fields(lines[0])
	require.Len(t, fields, 2)
	assert.True(t, strings.HasPrefix(fields[0], "__label__"))
	prob, err := strconv.ParseFloat(fields[1], 64)
	require.NoError(t, err)
	assert.Greater(t, prob, 0.0)
	assert.Equal(t, "n/a", lines[1])
}

func TestClassifierTest(t *testing.T) {
	f := trainClassifier(t)
	meter, err := f.Test(strings.NewReader(reviews+"no labels\n__label__pos\n"), 1)
	require.NoError(t, err)
	assert.Equal(t, 3, meter.Examples())
	// one label per example, so both ratios count the same hits
	assert.InDelta(t, meter.Precision(), meter.Recall(), 1e-12)
	assert.GreaterOrEqual(t, meter.Precision(), 0.0)
	assert.LessOrEqual(t, meter.Precision(), 1.0)
}

func TestTextVectors(t *testing.T) {
	f := trainClassifier(t)
	var out bytes.Buffer
	require.NoError(t, f.PrintVectors(strings.NewReader("great film\n\n"), &out))
	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Len(t, strings.Fields(lines[0]), 10)
	for _, v := range strings.Fields(lines[1]) {
		assert.Equal(t, "0", v)
	}
}

func TestGetVector(t *testing.T) {
	a := args.New(args.SkipGram)
	a.Dim = 2
	a.MinCount = 1
	a.Bucket = 0
	f := New()
	f.args = a
	f.dict = dictionary.New(a, zap.NewNop())
	require.NoError(t, f.dict.ReadFrom(strings.NewReader("cat dog\n")))
	f.input = matrix.New(int64(f.dict.NWords()), 2)
	for i := int64(0); i < f.input.M; i++ {
		copy(f.input.Row(i), []float32{float32(i), float32(10 * i)})
	}

	vec := matrix.NewVector(2)
	id := int64(f.dict.ID("dog"))
	f.GetVector(vec, "dog")
	assert.Equal(t, matrix.Vector(f.input.Row(id)), vec)

	f.GetVector(vec, "unknown")
	assert.Equal(t, matrix.Vector{0, 0}, vec)

	f.SentenceVector(vec, []int32{f.dict.ID("cat"), f.dict.ID("dog")})
	want := (float32(f.dict.ID("cat")) + float32(f.dict.ID("dog"))) / 2
	assert.InDelta(t, want, vec[0], 1e-6)
}

// subwordFixture has char n-grams enabled and input row i set to (i, 10i).
func subwordFixture(t *testing.T) *FastText {
	t.Helper()
	a := args.New(args.SkipGram)
	a.Dim = 2
	a.MinCount = 1
	a.Bucket = 7
	a.Minn = 2
	a.Maxn = 3
	a.WordNgrams = 2
	f := New()
	f.args = a
	f.dict = dictionary.New(a, zap.NewNop())
	require.NoError(t, f.dict.ReadFrom(strings.NewReader("cat dog\n")))
	f.input = matrix.New(int64(f.dict.NWords())+int64(a.Bucket), 2)
	for i := int64(0); i < f.input.M; i++ {
		copy(f.input.Row(i), []float32{float32(i), float32(10 * i)})
	}
	return f
}

func TestGetVectorAveragesSubwords(t *testing.T) {
	f := subwordFixture(t)
	vec := matrix.NewVector(2)
	for _, word := range []string{"cat", "cow"} {
		ids := f.dict.NgramsOf(word)
		require.Greater(t, len(ids), 1, word)
		var sum float32
		for _, id := range ids {
			sum += float32(id)
		}
		mean := sum / float32(len(ids))

		f.GetVector(vec, word)
		assert.InDelta(t, mean, vec[0], 1e-5, word)
		assert.InDelta(t, 10*mean, vec[1], 1e-4, word)
	}
	assert.Equal(t, f.dict.ID("cat"), f.dict.NgramsOf("cat")[0])
	assert.Less(t, f.dict.ID("cow"), int32(0))
}

func TestSentenceVectorKeepsLine(t *testing.T) {
	f := subwordFixture(t)
	ids := []int32{f.dict.ID("cat"), f.dict.ID("dog"), 99}
	vec := matrix.NewVector(2)
	f.SentenceVector(vec, ids[:2])
	assert.Equal(t, int32(99), ids[2])
	assert.NotEqual(t, matrix.Vector{0, 0}, vec)
}

func TestTrainWithoutWords(t *testing.T) {
	a := args.New(args.CBOW)
	a.Input = writeCorpus(t, "__label__a __label__b")
	a.Loss = args.HierarchicalSoftmax
	a.MinCount = 1
	a.Bucket = 0
	a.Dim = 4
	a.Thread = 1
	a.Verbose = 0
	err := New(WithProgressWriter(nil)).Train(a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no words left")
}

func TestSaveModelErrors(t *testing.T) {
	f := trainClassifier(t)
	f.args.Output = filepath.Join(t.TempDir(), "missing", "model")
	err := f.SaveModel()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model file cannot be opened for saving")

	path := filepath.Join(t.TempDir(), "model.bin")
	err = writeFile(path, "model", func(io.Writer) error { return errors.New("disk full") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write model file")
	assert.Contains(t, err.Error(), "disk full")
	assert.NotContains(t, err.Error(), "cannot be opened")
}

func skipgramArgs(t *testing.T) *args.Args {
	t.Helper()
	a := args.New(args.SkipGram)
	a.Input = writeCorpus(t, strings.Repeat("the quick brown fox jumps over the lazy dog\n", 20))
	a.Output = filepath.Join(t.TempDir(), "model")
	a.Loss = args.HierarchicalSoftmax
	a.MinCount = 1
	a.Dim = 5
	a.Bucket = 50
	a.Minn = 2
	a.Maxn = 3
	a.Epoch = 2
	a.Thread = 2
	a.Verbose = 1
	return a
}

func TestTrainSkipGramSavesAndReloads(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	var progress bytes.Buffer
	metricsPath := filepath.Join(t.TempDir(), "train.prom")
	f := New(WithLogger(zap.New(core)), WithProgressWriter(&progress), WithMetricsFile(metricsPath))
	a := skipgramArgs(t)
	require.NoError(t, f.Train(a))

	assert.Equal(t, 1, logs.FilterMessage("training finished").Len())
	assert.Equal(t, 1, logs.FilterMessage("model saved").Len())
	assert.Contains(t, progress.String(), "Progress: 100.0%")
	metrics, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "fasttext_train_progress_ratio 1")

	vecFile, err := os.Open(a.Output + ".vec")
	require.NoError(t, err)
	defer vecFile.Close()
	sc := bufio.NewScanner(vecFile)
	require.True(t, sc.Scan())
	assert.Equal(t, strconv.Itoa(int(f.Dictionary().NWords()))+" 5", sc.Text())
	rows := 0
	for sc.Scan() {
		rows++
		assert.Len(t, strings.Fields(sc.Text()), 6)
	}
	assert.Equal(t, int(f.Dictionary().NWords()), rows)

	loaded := New()
	require.NoError(t, loaded.LoadModel(a.Output+".bin"))
	assert.Equal(t, a.Dim, loaded.Args().Dim)
	assert.Equal(t, a.Loss, loaded.Args().Loss)
	assert.Equal(t, f.Dictionary().NWords(), loaded.Dictionary().NWords())
	assert.Equal(t, f.Input().Data, loaded.Input().Data)
	assert.Equal(t, f.Output().Data, loaded.Output().Data)

	want, got := matrix.NewVector(a.Dim), matrix.NewVector(a.Dim)
	for _, w := range []string{"quick", "lazy", "quack"} {
		f.GetVector(want, w)
		loaded.GetVector(got, w)
		assert.Equal(t, want, got, w)
	}

	var out bytes.Buffer
	require.NoError(t, loaded.PrintVectors(strings.NewReader("quick quack"), &out))
	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "quack "))
	assert.Len(t, strings.Fields(lines[1]), 6)
}

func TestLoadModelErrors(t *testing.T) {
	err := New().LoadModel(filepath.Join(t.TempDir(), "missing.bin"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model file cannot be opened for loading")

	f := trainClassifier(t)
	var buf bytes.Buffer
	require.NoError(t, f.WriteModel(&buf))
	truncated := buf.Bytes()[:buf.Len()-3]
	assert.Error(t, New().ReadModel(bytes.NewReader(truncated)))

	restored := New()
	require.NoError(t, restored.ReadModel(bytes.NewReader(buf.Bytes())))
	assert.Equal(t, f.Dictionary().NLabels(), restored.Dictionary().NLabels())
}

func TestReadVectors(t *testing.T) {
	a := args.New(args.SkipGram)
	a.Dim = 4
	a.MinCount = 1
	a.Bucket = 0
	f := New()
	f.args = a
	f.dict = dictionary.New(a, zap.NewNop())
	require.NoError(t, f.dict.ReadFrom(strings.NewReader("alpha beta\n")))

	require.NoError(t, f.ReadVectors(strings.NewReader("2 4\nalpha 1 1 1 1\ngamma\n2 2 2 2\n")))
	assert.Equal(t, int64(f.dict.NWords()), f.input.M)
	assert.Equal(t, []float32{1, 1, 1, 1}, f.input.Row(int64(f.dict.ID("alpha"))))
	assert.Equal(t, []float32{2, 2, 2, 2}, f.input.Row(int64(f.dict.ID("gamma"))))
	for _, v := range f.input.Row(int64(f.dict.ID("beta"))) {
		assert.GreaterOrEqual(t, v, float32(-0.25))
		assert.Less(t, v, float32(0.25))
	}
}

func TestReadVectorsWithoutVocabulary(t *testing.T) {
	assert.Error(t, New().ReadVectors(strings.NewReader("1 2\nalpha 1 1\n")))
}

func TestReadVectorsDimMismatch(t *testing.T) {
	a := args.New(args.SkipGram)
	a.Dim = 3
	f := New()
	f.args = a
	f.dict = dictionary.New(a, zap.NewNop())
	err := f.ReadVectors(strings.NewReader("1 4\nalpha 1 1 1 1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match dim")

	assert.Error(t, f.ReadVectors(strings.NewReader("2 3\nalpha 1 1\n")))
}

func TestTrainWithPretrainedVectors(t *testing.T) {
	dir := t.TempDir()
	pretrained := filepath.Join(dir, "pre.vec")
	require.NoError(t, os.WriteFile(pretrained, []byte("1 10\ngreat 1 1 1 1 1 1 1 1 1 1\n"), 0o644))
	a := classifierArgs(writeCorpus(t, reviews))
	a.PretrainedVectors = pretrained
	f := New(WithProgressWriter(nil))
	require.NoError(t, f.Train(a))
	assert.GreaterOrEqual(t, f.Dictionary().ID("great"), int32(0))
	assert.Equal(t, int64(f.Dictionary().NWords()), f.Input().M)
}
