package main

import (
	"io"
	"os"
	"strconv"

	"github.com/neurlang/fasttext"
	"github.com/neurlang/fasttext/internal/logging"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func loadModel(path string) (*fasttext.FastText, error) {
	log, err := logging.New(0)
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	f := fasttext.New(fasttext.WithLogger(log))
	if err := f.LoadModel(path); err != nil {
		return nil, err
	}
	return f, nil
}

// openInput opens path for reading. "-" is stdin.
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "input file cannot be opened")
	}
	return f, nil
}

// parseK reads the optional k argument at index i.
func parseK(args []string, i int) (int, error) {
	if len(args) <= i {
		return 1, nil
	}
	k, err := strconv.Atoi(args[i])
	if err != nil || k <= 0 {
		return 0, errors.Errorf("k must be a positive integer, got %q", args[i])
	}
	return k, nil
}

func newTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test <model> <test-data> [<k>]",
		Short: "Evaluate a classifier with precision and recall at k",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := parseK(args, 2)
			if err != nil {
				return err
			}
			f, err := loadModel(args[0])
			if err != nil {
				return err
			}
			in, err := openInput(cmd, args[1])
			if err != nil {
				return err
			}
			defer in.Close()
			meter, err := f.Test(in, k)
			if err != nil {
				return err
			}
			_, err = meter.WriteTo(cmd.OutOrStdout())
			return err
		},
	}
}

func newPredictCmd(use string, printProb bool) *cobra.Command {
	short := "Print the k most likely labels of every line"
	if printProb {
		short = "Print the k most likely labels of every line with their probabilities"
	}
	return &cobra.Command{
		Use:   use + " <model> <test-data> [<k>]",
		Short: short,
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := parseK(args, 2)
			if err != nil {
				return err
			}
			f, err := loadModel(args[0])
			if err != nil {
				return err
			}
			in, err := openInput(cmd, args[1])
			if err != nil {
				return err
			}
			defer in.Close()
			return f.PredictAll(in, cmd.OutOrStdout(), k, printProb)
		},
	}
}

func newPrintVectorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "print-vectors <model>",
		Short: "Print vectors of words or, for classifiers, of lines read from stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadModel(args[0])
			if err != nil {
				return err
			}
			return f.PrintVectors(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
