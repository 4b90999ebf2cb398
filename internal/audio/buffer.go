package audio

import (
	"errors"
	"fmt"
)

// ErrOverCommit is returned by [Buffer.Commit] when the reported count exceeds
// the reserved spare capacity.
var ErrOverCommit = errors.New("commit exceeds reserved capacity")

// Buffer is a byte buffer whose capacity is reserved up front and whose length
// grows only through [Buffer.Commit].
//
// Contract: a producer writes into [Buffer.Spare] and reports how many bytes
// it wrote; the caller commits exactly that count. The committed bytes are
// trusted as-is. A count larger than the spare capacity is rejected rather
// than exposing unwritten memory.
type Buffer struct {
	b []byte
}

// NewBuffer returns an empty buffer with capacity for at least size bytes.
func NewBuffer(size int) *Buffer {
	if size < 0 {
		size = 0
	}
	return &Buffer{b: make([]byte, 0, size)}
}

// Spare returns the reserved, uncommitted tail of the buffer. Its length is
// Cap() - Len(). Writes into it become visible only after Commit.
func (b *Buffer) Spare() []byte {
	return b.b[len(b.b):cap(b.b)]
}

// Commit extends the committed length by n bytes of spare capacity.
func (b *Buffer) Commit(n int) error {
	spare := cap(b.b) - len(b.b)
	if n < 0 || n > spare {
		return fmt.Errorf("%w: %d bytes reported, %d reserved", ErrOverCommit, n, spare)
	}
	b.b = b.b[:len(b.b)+n]
	return nil
}

// Bytes returns the committed bytes. The slice aliases the buffer.
func (b *Buffer) Bytes() []byte { return b.b }

// Len returns the committed length.
func (b *Buffer) Len() int { return len(b.b) }

// Cap returns the reserved capacity.
func (b *Buffer) Cap() int { return cap(b.b) }
