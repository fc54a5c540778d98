// Package main provides the fasttext command line tool.
// It trains word embeddings (cbow, skipgram) and text classifiers
// (supervised) on a plain text corpus, evaluates classifiers with
// precision and recall at k, prints predicted labels and prints word or
// sentence vectors from a saved model.
package main
