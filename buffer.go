package ulog

import (
	"unicode/utf8"
)

// fixedBuffer is an [io.Writer] over a fixed byte slice. Bytes past its
// capacity are dropped and Write still reports success, so fmt never sees a
// short write and formatting never grows the slice.
type fixedBuffer struct {
	b         []byte
	n         int
	truncated bool
}

func newFixedBuffer(size int) fixedBuffer {
	return fixedBuffer{b: make([]byte, size)}
}

func (f *fixedBuffer) Write(p []byte) (int, error) {
	m := copy(f.b[f.n:], p)
	f.n += m

	if m < len(p) {
		f.truncated = true
	}

	return len(p), nil
}

// start rewinds the buffer for a new message.
func (f *fixedBuffer) start() {
	f.n = 0
	f.truncated = false
}

// bytes returns the rendered message. When the message was cut, a trailing
// partial UTF-8 sequence is dropped so subscribers never see a broken rune.
func (f *fixedBuffer) bytes() []byte {
	out := f.b[:f.n]
	if !f.truncated {
		return out
	}

	// A rune is at most utf8.UTFMax bytes; only the tail needs checking.
	for i := 1; i < utf8.UTFMax && i <= len(out); i++ {
		c := out[len(out)-i]
		if c < utf8.RuneSelf {
			break
		}

		if utf8.RuneStart(c) {
			if !utf8.FullRune(out[len(out)-i:]) {
				out = out[:len(out)-i]
			}

			break
		}
	}

	return out
}

// zero clears the backing storage.
func (f *fixedBuffer) zero() {
	clear(f.b)
	f.start()
}
