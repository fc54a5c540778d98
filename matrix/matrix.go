// Package matrix implements the dense float32 parameter matrices and the
// work vectors used during training and inference.
//
// A Matrix is shared by reference between training workers which read and
// write its rows without synchronization. Updates are sparse and small, so
// an occasional lost update is tolerated.
package matrix

import (
	"encoding/binary"
	"io"
	"math/rand"

	"github.com/pkg/errors"
)

// chunk is the number of elements encoded per binary.Write call.
const chunk = 1 << 16

// Matrix is a row major M x N array.
type Matrix struct {
	M, N int64
	Data []float32
}

// New allocates a zero M x N matrix.
func New(m, n int64) *Matrix {
	return &Matrix{M: m, N: n, Data: make([]float32, m*n)}
}

// Row returns row i as a slice aliasing the matrix storage.
func (mat *Matrix) Row(i int64) []float32 {
	return mat.Data[i*mat.N : (i+1)*mat.N]
}

// Zero sets every element to 0.
func (mat *Matrix) Zero() {
	clear(mat.Data)
}

// Uniform fills the matrix from U[-a, a) with a fixed seed, so two matrices
// of the same shape are initialized identically.
func (mat *Matrix) Uniform(a float32) {
	rng := rand.New(rand.NewSource(1))
	for i := range mat.Data {
		mat.Data[i] = -a + 2*a*rng.Float32()
	}
}

// DotRow returns the dot product of vec and row i.
func (mat *Matrix) DotRow(vec Vector, i int64) float32 {
	return dot(vec, mat.Row(i))
}

// AddRow adds a*vec to row i.
func (mat *Matrix) AddRow(vec Vector, i int64, a float32) {
	axpy(a, vec, mat.Row(i))
}

// Save writes M and N as int64 followed by the elements.
func (mat *Matrix) Save(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, [2]int64{mat.M, mat.N}); err != nil {
		return errors.Wrap(err, "write matrix shape")
	}
	for off := 0; off < len(mat.Data); off += chunk {
		end := min(off+chunk, len(mat.Data))
		if err := binary.Write(w, binary.LittleEndian, mat.Data[off:end]); err != nil {
			return errors.Wrap(err, "write matrix data")
		}
	}
	return nil
}

// Load reads what Save wrote, replacing shape and contents.
func (mat *Matrix) Load(r io.Reader) error {
	var shape [2]int64
	if err := binary.Read(r, binary.LittleEndian, &shape); err != nil {
		return errors.Wrap(err, "read matrix shape")
	}
	if shape[0] < 0 || shape[1] < 0 {
		return errors.Errorf("read matrix: invalid shape %dx%d", shape[0], shape[1])
	}
	mat.M, mat.N = shape[0], shape[1]
	mat.Data = make([]float32, mat.M*mat.N)
	for off := 0; off < len(mat.Data); off += chunk {
		end := min(off+chunk, len(mat.Data))
		if err := binary.Read(r, binary.LittleEndian, mat.Data[off:end]); err != nil {
			return errors.Wrap(err, "read matrix data")
		}
	}
	return nil
}
