package args

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSupervisedDefaults(t *testing.T) {
	a := New(Supervised)
	assert.Equal(t, Supervised, a.Model)
	assert.Equal(t, Softmax, a.Loss)
	assert.Equal(t, 1, a.MinCount)
	assert.Equal(t, 0, a.Minn)
	assert.Equal(t, 0, a.Maxn)
	assert.InDelta(t, 0.1, a.LR, 1e-12)
	assert.LessOrEqual(t, a.Thread, defaultThreads)
	assert.Greater(t, a.Thread, 0)
	require.NoError(t, a.Validate())
}

func TestNewUnsupervisedDefaults(t *testing.T) {
	a := New(SkipGram)
	assert.Equal(t, NegativeSampling, a.Loss)
	assert.Equal(t, 3, a.Minn)
	assert.Equal(t, 6, a.Maxn)
	assert.Equal(t, 2000000, a.Bucket)
	require.NoError(t, a.Validate())
}

func TestSaveLoad(t *testing.T) {
	a := New(CBOW)
	a.Dim = 17
	a.WS = 3
	a.Loss = HierarchicalSoftmax
	a.T = 0.001

	var buf bytes.Buffer
	require.NoError(t, a.Save(&buf))
	assert.Equal(t, 12*4+8, buf.Len())

	b := New(Supervised)
	require.NoError(t, b.Load(&buf))
	assert.Equal(t, CBOW, b.Model)
	assert.Equal(t, HierarchicalSoftmax, b.Loss)
	assert.Equal(t, 17, b.Dim)
	assert.Equal(t, 3, b.WS)
	assert.Equal(t, a.Bucket, b.Bucket)
	assert.Equal(t, a.Minn, b.Minn)
	assert.Equal(t, a.Maxn, b.Maxn)
	assert.Equal(t, 0.001, b.T)
}

func TestLoadRejectsGarbage(t *testing.T) {
	b := New(Supervised)
	require.Error(t, b.Load(bytes.NewReader([]byte{1, 2, 3})))
	require.Error(t, b.Load(bytes.NewReader(make([]byte, 56))))
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(a *Args)
	}{
		{"dim", func(a *Args) { a.Dim = 0 }},
		{"ws", func(a *Args) { a.WS = 0 }},
		{"epoch", func(a *Args) { a.Epoch = -1 }},
		{"thread", func(a *Args) { a.Thread = 0 }},
		{"lrUpdateRate", func(a *Args) { a.LRUpdateRate = 0 }},
		{"wordNgrams", func(a *Args) { a.WordNgrams = 0 }},
		{"bucket", func(a *Args) { a.Bucket = -1 }},
		{"neg", func(a *Args) { a.Loss = NegativeSampling; a.Neg = 0 }},
		{"label", func(a *Args) { a.Label = "" }},
		{"model", func(a *Args) { a.Model = 9 }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a := New(SkipGram)
			tc.mutate(a)
			assert.Error(t, a.Validate())
		})
	}
}

func TestParseLoss(t *testing.T) {
	for in, want := range map[string]LossName{"hs": HierarchicalSoftmax, "NS": NegativeSampling, " softmax ": Softmax} {
		got, err := ParseLoss(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseLoss("hinge")
	assert.Error(t, err)
}

func TestOverlayPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "train.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dim: 42\nepoch: 7\nloss: hs\nws: 2\n"), 0o600))
	t.Setenv("FASTTEXT_EPOCH", "9")

	a := New(SkipGram)
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	a.BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--ws", "4", "--input", "corpus.txt"}))

	require.NoError(t, a.Overlay(path, fs))
	assert.Equal(t, 42, a.Dim, "yaml beats defaults")
	assert.Equal(t, 9, a.Epoch, "environment beats yaml")
	assert.Equal(t, 4, a.WS, "explicit flag beats yaml")
	assert.Equal(t, HierarchicalSoftmax, a.Loss)
	assert.Equal(t, "corpus.txt", a.Input)
}

func TestOverlayMissingFile(t *testing.T) {
	a := New(SkipGram)
	assert.Error(t, a.Overlay(filepath.Join(t.TempDir(), "missing.yaml"), nil))
}
