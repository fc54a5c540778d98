package dictionary

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

// Reader splits a byte stream into whitespace separated tokens. A newline
// yields EOS. Reader remembers whether the underlying stream is exhausted so
// that training workers can rewind it.
type Reader struct {
	src io.Reader
	br  *bufio.Reader
	buf []byte
	eof bool
}

// NewReader buffers r.
func NewReader(r io.Reader) *Reader {
	return &Reader{src: r, br: bufio.NewReader(r)}
}

// EOF reports whether a read hit the end of the stream.
func (r *Reader) EOF() bool {
	return r.eof
}

// More reports whether at least one more byte can be read.
func (r *Reader) More() bool {
	_, err := r.br.Peek(1)
	return err == nil
}

// Rewind seeks the underlying stream back to its first byte.
func (r *Reader) Rewind() error {
	s, ok := r.src.(io.Seeker)
	if !ok {
		return errors.New("input stream is not seekable")
	}
	if _, err := s.Seek(0, io.SeekStart); err != nil {
		return errors.Wrap(err, "rewind input")
	}
	r.br.Reset(r.src)
	r.eof = false
	return nil
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\n', '\r', '\t', '\v', '\f', 0:
		return true
	}
	return false
}

// ReadWord returns the next token. It reports false once the stream is
// exhausted and no token is pending.
func (r *Reader) ReadWord() (string, bool) {
	r.buf = r.buf[:0]
	for {
		c, err := r.br.ReadByte()
		if err != nil {
			r.eof = true
			return string(r.buf), len(r.buf) > 0
		}
		if !isSpace(c) {
			r.buf = append(r.buf, c)
			continue
		}
		if len(r.buf) == 0 {
			if c == '\n' {
				return EOS, true
			}
			continue
		}
		if c == '\n' {
			// the newline ends the next line read
			_ = r.br.UnreadByte()
		}
		return string(r.buf), true
	}
}
