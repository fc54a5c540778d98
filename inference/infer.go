// Package inference implements the human facing side of prediction: the
// predicted label list and the precision/recall meter used by test runs.
package inference

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
)

// Prediction is one ranked label. Score is a log-probability.
type Prediction struct {
	Score float32
	Label string
}

// Probability converts the score back to a probability.
func (p Prediction) Probability() float64 {
	return math.Exp(float64(p.Score))
}

// WriteLine prints predictions as space separated labels, each followed by
// its probability when printProb is set. An empty list prints n/a.
func WriteLine(w *bufio.Writer, preds []Prediction, printProb bool) error {
	if len(preds) == 0 {
		_, err := w.WriteString("n/a\n")
		return err
	}
	var buf []byte
	for i, p := range preds {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, p.Label...)
		if printProb {
			buf = append(buf, ' ')
			buf = strconv.AppendFloat(buf, p.Probability(), 'g', 6, 64)
		}
	}
	buf = append(buf, '\n')
	_, err := w.Write(buf)
	return err
}

// Meter accumulates precision@k and recall@k over labeled examples.
type Meter struct {
	k        int
	examples int
	labels   int
	hits     int
}

func NewMeter(k int) *Meter {
	return &Meter{k: k}
}

// Add scores the predicted ids of one example against its true label ids.
func (m *Meter) Add(predicted, gold []int32) {
	for _, p := range predicted {
		for _, g := range gold {
			if p == g {
				m.hits++
				break
			}
		}
	}
	m.examples++
	m.labels += len(gold)
}

func (m *Meter) Examples() int { return m.examples }

// Precision is hits / (k * examples).
func (m *Meter) Precision() float64 {
	return float64(m.hits) / float64(m.k*m.examples)
}

// Recall is hits / number of true labels.
func (m *Meter) Recall() float64 {
	return float64(m.hits) / float64(m.labels)
}

// WriteTo prints the P@k, R@k and example count lines.
func (m *Meter) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w, "P@%d: %.3g\nR@%d: %.3g\nNumber of examples: %d\n",
		m.k, m.Precision(), m.k, m.Recall(), m.examples)
	return int64(n), err
}
