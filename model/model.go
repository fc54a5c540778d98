// Package model implements the optimizer instance owned by one training
// worker: the hidden layer, the output approximations (negative sampling,
// hierarchical softmax, softmax) and top-k prediction.
//
// A Model is not safe for concurrent use. The matrices it references are
// shared with the other workers' models and updated without locks.
package model

import (
	"container/heap"
	"math"
	"math/rand"
	"sort"

	"github.com/neurlang/fasttext/args"
	"github.com/neurlang/fasttext/matrix"
	"github.com/pkg/errors"
)

const negativeTableSize = 10000000

// Pair is a scored output id. Score is a log-probability.
type Pair struct {
	Score float32
	ID    int32
}

type node struct {
	parent int32
	left   int32
	right  int32
	count  int64
	binary bool
}

type Model struct {
	wi   *matrix.Matrix
	wo   *matrix.Matrix
	args *args.Args

	hidden matrix.Vector
	output matrix.Vector
	grad   matrix.Vector
	osz    int32

	loss      float32
	nexamples int64

	negatives []int32
	negpos    int

	tree  []node
	paths [][]int32
	codes [][]bool

	rng *rand.Rand
}

// New binds a model to the input matrix wi and output matrix wo. The seed
// drives every random choice the model and its caller make.
func New(wi, wo *matrix.Matrix, a *args.Args, seed int64) *Model {
	return &Model{
		wi:        wi,
		wo:        wo,
		args:      a,
		hidden:    matrix.NewVector(a.Dim),
		output:    matrix.NewVector(int(wo.M)),
		grad:      matrix.NewVector(a.Dim),
		osz:       int32(wo.M),
		nexamples: 1,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// Rand returns the model's own random generator.
func (m *Model) Rand() *rand.Rand {
	return m.rng
}

// Loss returns the average loss over the updates so far.
func (m *Model) Loss() float32 {
	return m.loss / float32(m.nexamples)
}

// SetTargetCounts prepares the sampling table or the Huffman tree from the
// target frequencies. counts must be sorted in descending order and have one
// entry per output row.
func (m *Model) SetTargetCounts(counts []int64) error {
	if int32(len(counts)) != m.osz {
		return errors.Errorf("got %d target counts for %d output rows", len(counts), m.osz)
	}
	switch m.args.Loss {
	case args.NegativeSampling:
		m.initTableNegatives(counts)
	case args.HierarchicalSoftmax:
		m.buildTree(counts)
	}
	return nil
}

func (m *Model) initTableNegatives(counts []int64) {
	var z float64
	for _, c := range counts {
		z += math.Sqrt(float64(c))
	}
	m.negatives = m.negatives[:0]
	for i, c := range counts {
		share := math.Sqrt(float64(c)) * negativeTableSize / z
		for j := 0; float64(j) < share; j++ {
			m.negatives = append(m.negatives, int32(i))
		}
	}
	m.rng.Shuffle(len(m.negatives), func(i, j int) {
		m.negatives[i], m.negatives[j] = m.negatives[j], m.negatives[i]
	})
}

func (m *Model) negative(target int32) int32 {
	for {
		n := m.negatives[m.negpos]
		m.negpos = (m.negpos + 1) % len(m.negatives)
		if n != target {
			return n
		}
	}
}

func (m *Model) buildTree(counts []int64) {
	osz := int32(len(counts))
	m.tree = make([]node, 2*osz-1)
	for i := range m.tree {
		m.tree[i] = node{parent: -1, left: -1, right: -1, count: 1e15}
	}
	for i, c := range counts {
		m.tree[i].count = c
	}
	leaf, nd := osz-1, osz
	for i := osz; i < 2*osz-1; i++ {
		var mini [2]int32
		for j := range mini {
			if leaf >= 0 && m.tree[leaf].count < m.tree[nd].count {
				mini[j] = leaf
				leaf--
			} else {
				mini[j] = nd
				nd++
			}
		}
		m.tree[i].left = mini[0]
		m.tree[i].right = mini[1]
		m.tree[i].count = m.tree[mini[0]].count + m.tree[mini[1]].count
		m.tree[mini[0]].parent = i
		m.tree[mini[1]].parent = i
		m.tree[mini[1]].binary = true
	}
	m.paths = make([][]int32, osz)
	m.codes = make([][]bool, osz)
	for i := int32(0); i < osz; i++ {
		for j := i; m.tree[j].parent != -1; j = m.tree[j].parent {
			m.paths[i] = append(m.paths[i], m.tree[j].parent-osz)
			m.codes[i] = append(m.codes[i], m.tree[j].binary)
		}
	}
}

func (m *Model) binaryLogistic(target int32, label bool, lr float32) float32 {
	score := sigmoid(m.wo.DotRow(m.hidden, int64(target)))
	var l float32
	if label {
		l = 1
	}
	alpha := lr * (l - score)
	m.grad.AddRowScaled(m.wo, int64(target), alpha)
	m.wo.AddRow(m.hidden, int64(target), alpha)
	if label {
		return -log(score)
	}
	return -log(1 - score)
}

func (m *Model) negativeSampling(target int32, lr float32) float32 {
	m.grad.Zero()
	loss := m.binaryLogistic(target, true, lr)
	if m.osz < 2 {
		return loss
	}
	for n := 1; n <= m.args.Neg; n++ {
		loss += m.binaryLogistic(m.negative(target), false, lr)
	}
	return loss
}

func (m *Model) hierarchicalSoftmax(target int32, lr float32) float32 {
	m.grad.Zero()
	var loss float32
	for i, inner := range m.paths[target] {
		loss += m.binaryLogistic(inner, m.codes[target][i], lr)
	}
	return loss
}

func (m *Model) computeOutputSoftmax(hidden, output matrix.Vector) {
	output.MatMul(m.wo, hidden)
	hi := output[0]
	for _, x := range output[1:] {
		if x > hi {
			hi = x
		}
	}
	var z float32
	for i, x := range output {
		output[i] = float32(math.Exp(float64(x - hi)))
		z += output[i]
	}
	for i := range output {
		output[i] /= z
	}
}

func (m *Model) softmax(target int32, lr float32) float32 {
	m.grad.Zero()
	m.computeOutputSoftmax(m.hidden, m.output)
	for i := int32(0); i < m.osz; i++ {
		var label float32
		if i == target {
			label = 1
		}
		alpha := lr * (label - m.output[i])
		m.grad.AddRowScaled(m.wo, int64(i), alpha)
		m.wo.AddRow(m.hidden, int64(i), alpha)
	}
	return -log(m.output[target])
}

func (m *Model) computeHidden(input []int32, hidden matrix.Vector) {
	hidden.Zero()
	for _, id := range input {
		hidden.AddRow(m.wi, int64(id))
	}
	hidden.Mul(1 / float32(len(input)))
}

// Update performs one optimization step predicting target from the mean of
// the input rows, then propagates the gradient back into those rows.
func (m *Model) Update(input []int32, target int32, lr float32) {
	if len(input) == 0 || target < 0 || target >= m.osz {
		return
	}
	m.computeHidden(input, m.hidden)
	switch m.args.Loss {
	case args.NegativeSampling:
		m.loss += m.negativeSampling(target, lr)
	case args.HierarchicalSoftmax:
		m.loss += m.hierarchicalSoftmax(target, lr)
	default:
		m.loss += m.softmax(target, lr)
	}
	m.nexamples++
	if m.args.Model == args.Supervised {
		m.grad.Mul(1 / float32(len(input)))
	}
	for _, id := range input {
		m.wi.AddRow(m.grad, int64(id), 1)
	}
}

// Predict returns the k best output ids for input, best first. It uses its
// own buffers, so the shared matrices are only read.
func (m *Model) Predict(input []int32, k int) []Pair {
	if len(input) == 0 || k <= 0 {
		return nil
	}
	hidden := matrix.NewVector(m.args.Dim)
	m.computeHidden(input, hidden)
	h := make(pairHeap, 0, k+1)
	if m.args.Loss == args.HierarchicalSoftmax && len(m.tree) > 0 {
		m.dfs(k, 2*m.osz-2, 0, &h, hidden)
	} else {
		m.findKBest(k, &h, hidden, matrix.NewVector(int(m.osz)))
	}
	out := []Pair(h)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func (m *Model) findKBest(k int, h *pairHeap, hidden, output matrix.Vector) {
	m.computeOutputSoftmax(hidden, output)
	for i, p := range output {
		score := log(p)
		if h.Len() == k && score < (*h)[0].Score {
			continue
		}
		heap.Push(h, Pair{Score: score, ID: int32(i)})
		if h.Len() > k {
			heap.Pop(h)
		}
	}
}

func (m *Model) dfs(k int, nd int32, score float32, h *pairHeap, hidden matrix.Vector) {
	if h.Len() == k && score < (*h)[0].Score {
		return
	}
	if m.tree[nd].left == -1 && m.tree[nd].right == -1 {
		heap.Push(h, Pair{Score: score, ID: nd})
		if h.Len() > k {
			heap.Pop(h)
		}
		return
	}
	f := sigmoid(m.wo.DotRow(hidden, int64(nd-m.osz)))
	m.dfs(k, m.tree[nd].left, score+log(1-f), h, hidden)
	m.dfs(k, m.tree[nd].right, score+log(f), h, hidden)
}

// pairHeap keeps the lowest score on top.
type pairHeap []Pair

func (h pairHeap) Len() int           { return len(h) }
func (h pairHeap) Less(i, j int) bool { return h[i].Score < h[j].Score }
func (h pairHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *pairHeap) Push(x any)        { *h = append(*h, x.(Pair)) }
func (h *pairHeap) Pop() any {
	old := *h
	x := old[len(old)-1]
	*h = old[:len(old)-1]
	return x
}
