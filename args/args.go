// Package args holds the configuration of a training or inference run.
//
// The configuration is immutable once training starts. It is persisted at
// the head of every model file (see Save and Load), filled from command
// line flags (BindFlags) and optionally overlaid from a YAML file and the
// environment (Overlay).
package args

import (
	"strings"

	"github.com/klauspost/cpuid/v2"
	"github.com/pkg/errors"
)

// ModelName selects the learning objective.
type ModelName int32

const (
	CBOW ModelName = iota + 1
	SkipGram
	Supervised
)

func (m ModelName) String() string {
	switch m {
	case CBOW:
		return "cbow"
	case SkipGram:
		return "sg"
	case Supervised:
		return "sup"
	}
	return "unknown"
}

// LossName selects the output layer approximation.
type LossName int32

const (
	HierarchicalSoftmax LossName = iota + 1
	NegativeSampling
	Softmax
)

func (l LossName) String() string {
	switch l {
	case HierarchicalSoftmax:
		return "hs"
	case NegativeSampling:
		return "ns"
	case Softmax:
		return "softmax"
	}
	return "unknown"
}

// Set implements pflag.Value.
func (l *LossName) Set(s string) error {
	v, err := ParseLoss(s)
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Type implements pflag.Value.
func (l *LossName) Type() string {
	return "loss"
}

// ParseLoss parses hs, ns or softmax.
func ParseLoss(s string) (LossName, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hs":
		return HierarchicalSoftmax, nil
	case "ns":
		return NegativeSampling, nil
	case "softmax":
		return Softmax, nil
	}
	return 0, errors.Errorf("unknown loss: %q", s)
}

// Args is the run configuration.
type Args struct {
	Input             string    `koanf:"input"`
	Output            string    `koanf:"output"`
	LR                float64   `koanf:"lr"`
	LRUpdateRate      int       `koanf:"lrupdaterate"`
	Dim               int       `koanf:"dim"`
	WS                int       `koanf:"ws"`
	Epoch             int       `koanf:"epoch"`
	MinCount          int       `koanf:"mincount"`
	MinCountLabel     int       `koanf:"mincountlabel"`
	Neg               int       `koanf:"neg"`
	WordNgrams        int       `koanf:"wordngrams"`
	Loss              LossName  `koanf:"-"`
	Model             ModelName `koanf:"-"`
	Bucket            int       `koanf:"bucket"`
	Minn              int       `koanf:"minn"`
	Maxn              int       `koanf:"maxn"`
	Thread            int       `koanf:"thread"`
	T                 float64   `koanf:"t"`
	Label             string    `koanf:"label"`
	Verbose           int       `koanf:"verbose"`
	PretrainedVectors string    `koanf:"pretrainedvectors"`
}

// defaultThreads is the worker count used when the CPU reports nothing.
const defaultThreads = 12

// New returns the defaults for the given objective.
func New(model ModelName) *Args {
	a := &Args{
		LR:           0.05,
		LRUpdateRate: 100,
		Dim:          100,
		WS:           5,
		Epoch:        5,
		MinCount:     5,
		Neg:          5,
		WordNgrams:   1,
		Loss:         NegativeSampling,
		Model:        model,
		Bucket:       2000000,
		Minn:         3,
		Maxn:         6,
		Thread:       defaultThreads,
		T:            1e-4,
		Label:        "__label__",
		Verbose:      2,
	}
	if n := cpuid.CPU.LogicalCores; n > 0 && n < a.Thread {
		a.Thread = n
	}
	if model == Supervised {
		a.Loss = Softmax
		a.MinCount = 1
		a.Minn = 0
		a.Maxn = 0
		a.LR = 0.1
	}
	return a
}

// Validate reports the first setting that cannot drive a run.
func (a *Args) Validate() error {
	switch {
	case a.Model < CBOW || a.Model > Supervised:
		return errors.Errorf("unknown model: %d", a.Model)
	case a.Loss < HierarchicalSoftmax || a.Loss > Softmax:
		return errors.Errorf("unknown loss: %d", a.Loss)
	case a.Dim <= 0:
		return errors.Errorf("dim must be positive, got %d", a.Dim)
	case a.WS <= 0:
		return errors.Errorf("ws must be positive, got %d", a.WS)
	case a.Epoch <= 0:
		return errors.Errorf("epoch must be positive, got %d", a.Epoch)
	case a.Thread <= 0:
		return errors.Errorf("thread must be positive, got %d", a.Thread)
	case a.LRUpdateRate <= 0:
		return errors.Errorf("lrUpdateRate must be positive, got %d", a.LRUpdateRate)
	case a.WordNgrams <= 0:
		return errors.Errorf("wordNgrams must be positive, got %d", a.WordNgrams)
	case a.Bucket < 0:
		return errors.Errorf("bucket must not be negative, got %d", a.Bucket)
	case a.Minn < 0 || a.Maxn < 0:
		return errors.Errorf("minn and maxn must not be negative, got %d and %d", a.Minn, a.Maxn)
	case a.Loss == NegativeSampling && a.Neg <= 0:
		return errors.Errorf("neg must be positive with ns loss, got %d", a.Neg)
	case a.Label == "":
		return errors.New("label prefix must not be empty")
	}
	return nil
}
