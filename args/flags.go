package args

import "github.com/spf13/pflag"

// BindFlags registers the training flags on fs with the current values of a
// as defaults. Flag names follow the persisted field names.
func (a *Args) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&a.Input, "input", a.Input, "training file path")
	fs.StringVar(&a.Output, "output", a.Output, "output file path, without extension")
	fs.Float64Var(&a.LR, "lr", a.LR, "learning rate")
	fs.IntVar(&a.LRUpdateRate, "lrUpdateRate", a.LRUpdateRate, "change the rate of updates for the learning rate")
	fs.IntVar(&a.Dim, "dim", a.Dim, "size of word vectors")
	fs.IntVar(&a.WS, "ws", a.WS, "size of the context window")
	fs.IntVar(&a.Epoch, "epoch", a.Epoch, "number of epochs")
	fs.IntVar(&a.MinCount, "minCount", a.MinCount, "minimal number of word occurences")
	fs.IntVar(&a.MinCountLabel, "minCountLabel", a.MinCountLabel, "minimal number of label occurences")
	fs.IntVar(&a.Neg, "neg", a.Neg, "number of negatives sampled")
	fs.IntVar(&a.WordNgrams, "wordNgrams", a.WordNgrams, "max length of word ngram")
	fs.Var(&a.Loss, "loss", "loss function {ns, hs, softmax}")
	fs.IntVar(&a.Bucket, "bucket", a.Bucket, "number of buckets")
	fs.IntVar(&a.Minn, "minn", a.Minn, "min length of char ngram")
	fs.IntVar(&a.Maxn, "maxn", a.Maxn, "max length of char ngram")
	fs.IntVar(&a.Thread, "thread", a.Thread, "number of threads")
	fs.Float64Var(&a.T, "t", a.T, "sampling threshold")
	fs.StringVar(&a.Label, "label", a.Label, "labels prefix")
	fs.IntVar(&a.Verbose, "verbose", a.Verbose, "verbosity level")
	fs.StringVar(&a.PretrainedVectors, "pretrainedVectors", a.PretrainedVectors, "pretrained word vectors for supervised learning")
}
