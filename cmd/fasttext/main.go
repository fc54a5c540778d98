package main

import (
	"os"

	"github.com/neurlang/fasttext/args"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var profile profiler
	root := &cobra.Command{
		Use:   "fasttext",
		Short: "Train and query word vectors and text classifiers",
		Long: `fasttext learns word representations and sentence classifiers.

Examples:
  # Train a classifier, labels are tokens starting with __label__
  fasttext supervised --input train.txt --output model

  # Evaluate it at k=1
  fasttext test model.bin test.txt 1

  # Train skipgram vectors with settings from a file
  fasttext skipgram --config skipgram.yaml --input data.txt --output vectors

  # Print vectors for words read from stdin
  echo "king queen" | fasttext print-vectors vectors.bin`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return profile.start()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return profile.stop()
		},
	}
	root.PersistentFlags().StringVar(&profile.path, "cpuprofile", "", "write a CPU profile to this file")

	root.AddCommand(
		newTrainCmd(args.Supervised, "supervised", "Train a supervised classifier"),
		newTrainCmd(args.CBOW, "cbow", "Train word vectors with the cbow objective"),
		newTrainCmd(args.SkipGram, "skipgram", "Train word vectors with the skipgram objective"),
		newTestCmd(),
		newPredictCmd("predict", false),
		newPredictCmd("predict-prob", true),
		newPrintVectorsCmd(),
	)
	return root
}
