package fasttext

import "math/rand"

// optimizer is the part of model.Model the objectives drive.
type optimizer interface {
	Update(input []int32, target int32, lr float32)
	Rand() *rand.Rand
}

// supervised trains the line against one of its labels, picked uniformly.
func (f *FastText) supervised(m optimizer, lr float32, line, labels []int32) {
	if len(labels) == 0 || len(line) == 0 {
		return
	}
	i := m.Rand().Intn(len(labels))
	m.Update(line, labels[i], lr)
}

// cbow predicts every word from the subwords of its context window.
func (f *FastText) cbow(m optimizer, lr float32, line []int32) {
	var bow []int32
	for w := range line {
		boundary := 1 + m.Rand().Intn(f.args.WS)
		bow = bow[:0]
		for c := -boundary; c <= boundary; c++ {
			if c != 0 && w+c >= 0 && w+c < len(line) {
				bow = append(bow, f.dict.Ngrams(line[w+c])...)
			}
		}
		m.Update(bow, line[w], lr)
	}
}

// skipgram predicts every context word from the subwords of the center.
func (f *FastText) skipgram(m optimizer, lr float32, line []int32) {
	for w := range line {
		boundary := 1 + m.Rand().Intn(f.args.WS)
		ngrams := f.dict.Ngrams(line[w])
		for c := -boundary; c <= boundary; c++ {
			if c != 0 && w+c >= 0 && w+c < len(line) {
				m.Update(ngrams, line[w+c], lr)
			}
		}
	}
}
