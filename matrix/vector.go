package matrix

import "strconv"

// Vector is a dense float32 work vector.
type Vector []float32

// NewVector allocates a zero vector of size n.
func NewVector(n int) Vector {
	return make(Vector, n)
}

func (v Vector) Zero() {
	clear(v)
}

// Mul scales v by a.
func (v Vector) Mul(a float32) {
	scale(v, a)
}

// AddRow adds row i of mat to v.
func (v Vector) AddRow(mat *Matrix, i int64) {
	add(v, mat.Row(i))
}

// AddRowScaled adds a times row i of mat to v.
func (v Vector) AddRowScaled(mat *Matrix, i int64, a float32) {
	axpy(a, mat.Row(i), v)
}

// MatMul sets v to mat * vec. len(v) must equal mat.M.
func (v Vector) MatMul(mat *Matrix, vec Vector) {
	for i := range v {
		v[i] = mat.DotRow(vec, int64(i))
	}
}

// AppendText appends the elements with 5 significant digits, each followed
// by a space.
func (v Vector) AppendText(b []byte) []byte {
	for _, x := range v {
		b = strconv.AppendFloat(b, float64(x), 'g', 5, 32)
		b = append(b, ' ')
	}
	return b
}
