package args

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// header is the fixed on-disk layout of Args inside a model file.
type header struct {
	Dim          int32
	WS           int32
	Epoch        int32
	MinCount     int32
	Neg          int32
	WordNgrams   int32
	Loss         int32
	Model        int32
	Bucket       int32
	Minn         int32
	Maxn         int32
	LRUpdateRate int32
	T            float64
}

// Save writes the persisted subset of the configuration.
func (a *Args) Save(w io.Writer) error {
	h := header{
		Dim:          int32(a.Dim),
		WS:           int32(a.WS),
		Epoch:        int32(a.Epoch),
		MinCount:     int32(a.MinCount),
		Neg:          int32(a.Neg),
		WordNgrams:   int32(a.WordNgrams),
		Loss:         int32(a.Loss),
		Model:        int32(a.Model),
		Bucket:       int32(a.Bucket),
		Minn:         int32(a.Minn),
		Maxn:         int32(a.Maxn),
		LRUpdateRate: int32(a.LRUpdateRate),
		T:            a.T,
	}
	return errors.Wrap(binary.Write(w, binary.LittleEndian, &h), "write args")
}

// Load reads what Save wrote. Fields that are not persisted keep their
// current values.
func (a *Args) Load(r io.Reader) error {
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return errors.Wrap(err, "read args")
	}
	if h.Model < int32(CBOW) || h.Model > int32(Supervised) {
		return errors.Errorf("read args: unknown model %d", h.Model)
	}
	if h.Loss < int32(HierarchicalSoftmax) || h.Loss > int32(Softmax) {
		return errors.Errorf("read args: unknown loss %d", h.Loss)
	}
	if h.Dim <= 0 {
		return errors.Errorf("read args: invalid dim %d", h.Dim)
	}
	a.Dim = int(h.Dim)
	a.WS = int(h.WS)
	a.Epoch = int(h.Epoch)
	a.MinCount = int(h.MinCount)
	a.Neg = int(h.Neg)
	a.WordNgrams = int(h.WordNgrams)
	a.Loss = LossName(h.Loss)
	a.Model = ModelName(h.Model)
	a.Bucket = int(h.Bucket)
	a.Minn = int(h.Minn)
	a.Maxn = int(h.Maxn)
	a.LRUpdateRate = int(h.LRUpdateRate)
	a.T = h.T
	return nil
}
