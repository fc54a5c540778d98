package model

import "math"

const (
	sigmoidTableSize = 512
	maxSigmoid       = 8
	logTableSize     = 512
)

var (
	tSigmoid [sigmoidTableSize + 1]float32
	tLog     [logTableSize + 1]float32
)

func init() {
	for i := range tSigmoid {
		x := float64(i*2*maxSigmoid)/sigmoidTableSize - maxSigmoid
		tSigmoid[i] = float32(1 / (1 + math.Exp(-x)))
	}
	for i := range tLog {
		x := (float64(i) + 1e-5) / logTableSize
		tLog[i] = float32(math.Log(x))
	}
}

// sigmoid is a table lookup, saturating outside [-8, 8].
func sigmoid(x float32) float32 {
	switch {
	case x < -maxSigmoid:
		return 0
	case x > maxSigmoid:
		return 1
	}
	return tSigmoid[int((x+maxSigmoid)*sigmoidTableSize/maxSigmoid/2)]
}

// log is a table lookup for x in [0, 1]; larger values map to 0.
func log(x float32) float32 {
	if x > 1 {
		return 0
	}
	return tLog[int(x*logTableSize)]
}
