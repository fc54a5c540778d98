// Package dictionary implements the vocabulary: token and label ids, their
// counts, subword n-gram ids and the per line reader used by training and
// inference.
package dictionary

import (
	"encoding/binary"
	"io"
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/neurlang/fasttext/args"
	"github.com/neurlang/fasttext/hash"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	// EOS is the token emitted for every newline.
	EOS = "</s>"
	// BOW and EOW delimit a word before char n-grams are extracted.
	BOW = "<"
	EOW = ">"

	maxVocabSize = 30000000
	maxLineSize  = 1024
)

// EntryType tells words from labels.
type EntryType int8

const (
	Word EntryType = iota
	Label
)

type entry struct {
	word     string
	count    int64
	typ      EntryType
	subwords []int32
}

// Dictionary maps tokens to ids. Words occupy ids [0, NWords) and labels
// [NWords, Size). Label ids handed out by GetLine are relative to NWords.
type Dictionary struct {
	args *args.Args
	log  *zap.Logger

	word2int map[string]int32
	words    []entry
	pdiscard []float32

	nwords  int32
	nlabels int32
	ntokens int64
}

// New returns an empty dictionary. A nil logger disables logging.
func New(a *args.Args, log *zap.Logger) *Dictionary {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dictionary{
		args:     a,
		log:      log,
		word2int: make(map[string]int32),
	}
}

func (d *Dictionary) Size() int32    { return int32(len(d.words)) }
func (d *Dictionary) NWords() int32  { return d.nwords }
func (d *Dictionary) NLabels() int32 { return d.nlabels }
func (d *Dictionary) NTokens() int64 { return d.ntokens }

// ID returns the id of w or -1.
func (d *Dictionary) ID(w string) int32 {
	if id, ok := d.word2int[w]; ok {
		return id
	}
	return -1
}

func (d *Dictionary) Type(id int32) EntryType {
	return d.words[id].typ
}

func (d *Dictionary) Word(id int32) string {
	return d.words[id].word
}

// Label returns the label with the relative id lid.
func (d *Dictionary) Label(lid int32) string {
	return d.words[lid+d.nwords].word
}

func (d *Dictionary) typeOf(w string) EntryType {
	if strings.HasPrefix(w, d.args.Label) {
		return Label
	}
	return Word
}

// Add counts one occurrence of w.
func (d *Dictionary) Add(w string) {
	d.ntokens++
	if id, ok := d.word2int[w]; ok {
		d.words[id].count++
		return
	}
	d.word2int[w] = int32(len(d.words))
	d.words = append(d.words, entry{word: w, count: 1, typ: d.typeOf(w)})
}

// Ngrams returns the subword ids of a vocabulary entry: the id itself
// followed by its char n-gram bucket ids.
func (d *Dictionary) Ngrams(id int32) []int32 {
	return d.words[id].subwords
}

// NgramsOf returns the subword ids of w. A word outside the vocabulary is
// represented by its char n-grams only.
func (d *Dictionary) NgramsOf(w string) []int32 {
	if id := d.ID(w); id >= 0 {
		return d.Ngrams(id)
	}
	return d.computeNgrams(BOW+w+EOW, nil)
}

// computeNgrams appends the bucket ids of every char n-gram of word whose
// length in runes is within [minn, maxn]. The boundary markers alone never
// form a 1-gram.
func (d *Dictionary) computeNgrams(word string, out []int32) []int32 {
	minn, maxn, bucket := d.args.Minn, d.args.Maxn, int32(d.args.Bucket)
	if bucket <= 0 || maxn <= 0 {
		return out
	}
	for i := 0; i < len(word); i++ {
		if word[i]&0xC0 == 0x80 {
			continue
		}
		j := i
		for n := 1; j < len(word) && n <= maxn; n++ {
			j++
			for j < len(word) && word[j]&0xC0 == 0x80 {
				j++
			}
			if n >= minn && !(n == 1 && (i == 0 || j == len(word))) {
				out = append(out, d.nwords+hash.Bucket(word[i:j], bucket))
			}
		}
	}
	return out
}

func (d *Dictionary) initNgrams() {
	for i := range d.words {
		e := &d.words[i]
		e.subwords = append(e.subwords[:0], int32(i))
		e.subwords = d.computeNgrams(BOW+e.word+EOW, e.subwords)
	}
}

func (d *Dictionary) initTableDiscard() {
	d.pdiscard = make([]float32, len(d.words))
	for i, e := range d.words {
		f := float64(e.count) / float64(d.ntokens)
		d.pdiscard[i] = float32(math.Sqrt(d.args.T/f) + d.args.T/f)
	}
}

// discard decides whether a frequent word is skipped for this occurrence.
// Supervised models never skip words.
func (d *Dictionary) discard(id int32, r float32) bool {
	if d.args.Model == args.Supervised {
		return false
	}
	return r > d.pdiscard[id]
}

// ReadFrom builds the vocabulary from a whole corpus, applies the minimum
// counts and prepares subwords and subsampling.
func (d *Dictionary) ReadFrom(r io.Reader) error {
	rd := NewReader(r)
	minThreshold := int64(1)
	for {
		w, ok := rd.ReadWord()
		if !ok {
			break
		}
		d.Add(w)
		if d.ntokens%1000000 == 0 {
			d.log.Debug("reading corpus", zap.Int64("mwords", d.ntokens/1000000))
		}
		if len(d.words) > maxVocabSize*3/4 {
			minThreshold++
			d.Threshold(minThreshold, minThreshold)
		}
	}
	d.Threshold(int64(d.args.MinCount), int64(d.args.MinCountLabel))
	d.log.Info("vocabulary built",
		zap.Int64("tokens", d.ntokens),
		zap.Int32("words", d.nwords),
		zap.Int32("labels", d.nlabels))
	if len(d.words) == 0 {
		return errors.New("empty vocabulary, try a smaller minCount value")
	}
	return nil
}

// Threshold drops words seen fewer than t times and labels seen fewer than
// tl times, then renumbers: words first, each group by descending count.
func (d *Dictionary) Threshold(t, tl int64) {
	sort.SliceStable(d.words, func(i, j int) bool {
		if d.words[i].typ != d.words[j].typ {
			return d.words[i].typ < d.words[j].typ
		}
		return d.words[i].count > d.words[j].count
	})
	kept := d.words[:0]
	for _, e := range d.words {
		if (e.typ == Word && e.count < t) || (e.typ == Label && e.count < tl) {
			continue
		}
		kept = append(kept, e)
	}
	d.words = kept
	d.reindex()
	d.initTableDiscard()
	d.initNgrams()
}

func (d *Dictionary) reindex() {
	d.word2int = make(map[string]int32, len(d.words))
	d.nwords, d.nlabels = 0, 0
	for i, e := range d.words {
		d.word2int[e.word] = int32(i)
		switch e.typ {
		case Word:
			d.nwords++
		case Label:
			d.nlabels++
		}
	}
}

// Counts returns the counts of every entry of the given type in id order.
func (d *Dictionary) Counts(typ EntryType) []int64 {
	var counts []int64
	for _, e := range d.words {
		if e.typ == typ {
			counts = append(counts, e.count)
		}
	}
	return counts
}

// AddNgrams appends the bucket id of every word n-gram of length 2..n.
func (d *Dictionary) AddNgrams(line []int32, n int) []int32 {
	bucket := uint64(d.args.Bucket)
	if bucket == 0 {
		return line
	}
	size := len(line)
	for i := 0; i < size; i++ {
		h := hash.Start(line[i])
		for j := i + 1; j < size && j < i+n; j++ {
			h = hash.Mix(h, line[j])
			line = append(line, d.nwords+int32(h%bucket))
		}
	}
	return line
}

// GetLine reads tokens up to the next newline into words and labels,
// reusing their storage. Unknown tokens are skipped and frequent words are
// subsampled with rng. It returns the number of known tokens read.
func (d *Dictionary) GetLine(r *Reader, words, labels []int32, rng *rand.Rand) (int64, []int32, []int32) {
	words, labels = words[:0], labels[:0]
	var ntokens int64
	for {
		token, ok := r.ReadWord()
		if !ok || token == EOS {
			break
		}
		wid := d.ID(token)
		if wid < 0 {
			continue
		}
		ntokens++
		switch d.Type(wid) {
		case Word:
			if !d.discard(wid, rng.Float32()) {
				words = append(words, wid)
			}
		case Label:
			labels = append(labels, wid-d.nwords)
		}
		if len(words) > maxLineSize && d.args.Model != args.Supervised {
			break
		}
	}
	return ntokens, words, labels
}

// Save writes the vocabulary. Subwords and subsampling are derived data and
// are not written.
func (d *Dictionary) Save(w io.Writer) error {
	head := struct {
		Size, NWords, NLabels int32
		NTokens               int64
	}{int32(len(d.words)), d.nwords, d.nlabels, d.ntokens}
	if err := binary.Write(w, binary.LittleEndian, &head); err != nil {
		return errors.Wrap(err, "write dictionary header")
	}
	for _, e := range d.words {
		if _, err := io.WriteString(w, e.word); err != nil {
			return errors.Wrap(err, "write dictionary entry")
		}
		tail := struct {
			Zero  byte
			Count int64
			Type  EntryType
		}{0, e.count, e.typ}
		if err := binary.Write(w, binary.LittleEndian, &tail); err != nil {
			return errors.Wrap(err, "write dictionary entry")
		}
	}
	return nil
}

// Load replaces the vocabulary with what Save wrote.
func (d *Dictionary) Load(r io.Reader) error {
	var head struct {
		Size, NWords, NLabels int32
		NTokens               int64
	}
	if err := binary.Read(r, binary.LittleEndian, &head); err != nil {
		return errors.Wrap(err, "read dictionary header")
	}
	if head.Size < 0 || head.NWords < 0 || head.NLabels < 0 || head.NWords+head.NLabels != head.Size {
		return errors.Errorf("read dictionary: inconsistent header %+v", head)
	}
	d.words = make([]entry, 0, head.Size)
	for i := int32(0); i < head.Size; i++ {
		word, err := readCString(r)
		if err != nil {
			return errors.Wrap(err, "read dictionary entry")
		}
		var tail struct {
			Count int64
			Type  EntryType
		}
		if err := binary.Read(r, binary.LittleEndian, &tail); err != nil {
			return errors.Wrap(err, "read dictionary entry")
		}
		d.words = append(d.words, entry{word: word, count: tail.Count, typ: tail.Type})
	}
	d.ntokens = head.NTokens
	d.reindex()
	if d.nwords != head.NWords || d.nlabels != head.NLabels {
		return errors.Errorf("read dictionary: %d words and %d labels, header says %d and %d",
			d.nwords, d.nlabels, head.NWords, head.NLabels)
	}
	d.initTableDiscard()
	d.initNgrams()
	return nil
}

// readCString reads bytes up to and excluding a 0 byte.
func readCString(r io.Reader) (string, error) {
	var sb strings.Builder
	if br, ok := r.(io.ByteReader); ok {
		for {
			c, err := br.ReadByte()
			if err != nil {
				return "", err
			}
			if c == 0 {
				return sb.String(), nil
			}
			sb.WriteByte(c)
		}
	}
	var c [1]byte
	for {
		if _, err := io.ReadFull(r, c[:]); err != nil {
			return "", err
		}
		if c[0] == 0 {
			return sb.String(), nil
		}
		sb.WriteByte(c[0])
	}
}
