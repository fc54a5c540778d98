package matrix

import (
	"github.com/klauspost/cpuid/v2"
	"github.com/viterin/vek/vek32"
	"gonum.org/v1/gonum/blas/blas32"
)

// Row kernels. The SIMD variants are selected at start up when the CPU can
// run them, the blas32 ones everywhere else.
var (
	dot   func(x, y []float32) float32
	add   func(dst, x []float32)
	scale func(x []float32, a float32)

	// Accelerated reports whether the SIMD kernels are in use.
	Accelerated bool
)

func init() {
	if cpuid.CPU.Supports(cpuid.AVX2, cpuid.FMA3) {
		dot = vek32.Dot
		add = func(dst, x []float32) { vek32.Add_Inplace(dst, x) }
		scale = func(x []float32, a float32) { vek32.MulNumber_Inplace(x, a) }
		Accelerated = true
	} else {
		dot = blasDot
		add = func(dst, x []float32) { blasAxpy(1, x, dst) }
		scale = blasScal
		Accelerated = false
	}
}

func vector(x []float32) blas32.Vector {
	return blas32.Vector{N: len(x), Inc: 1, Data: x}
}

func blasDot(x, y []float32) float32 {
	return blas32.Dot(vector(x), vector(y))
}

// blasAxpy computes y += a*x.
func blasAxpy(a float32, x, y []float32) {
	blas32.Axpy(a, vector(x), vector(y))
}

func blasScal(x []float32, a float32) {
	blas32.Scal(a, vector(x))
}

// axpy computes y += a*x. A unit scale takes the plain add kernel.
func axpy(a float32, x, y []float32) {
	if a == 1 {
		add(y, x)
		return
	}
	blasAxpy(a, x, y)
}
