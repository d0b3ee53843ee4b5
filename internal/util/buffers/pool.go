// Package buffers pools the byte buffers used to stream upload and
// download bodies.
package buffers

import (
	"io"
	"sync"
	"sync/atomic"

	"github.com/minidrive/minidrive/internal/constants"
)

var (
	allocations atomic.Int64
	gets        atomic.Int64
)

var copyPool = &sync.Pool{
	New: func() any {
		allocations.Add(1)
		buf := make([]byte, constants.CopyBufferSize)
		return &buf
	},
}

// Get retrieves a CopyBufferSize buffer. Return it with Put.
func Get() *[]byte {
	gets.Add(1)
	return copyPool.Get().(*[]byte)
}

// Put returns buf to the pool. Buffers of another size are dropped.
// The contents are cleared so file data does not outlive the copy.
func Put(buf *[]byte) {
	if buf == nil || len(*buf) != constants.CopyBufferSize {
		return
	}
	clear(*buf)
	copyPool.Put(buf)
}

// Copy is io.CopyBuffer with a pooled buffer.
func Copy(dst io.Writer, src io.Reader) (int64, error) {
	buf := Get()
	defer Put(buf)
	return io.CopyBuffer(dst, src, *buf)
}

// Stats reports pool usage.
type Stats struct {
	BufferSize  int
	Allocations int64
	Gets        int64
}

// GetStats returns current pool statistics.
func GetStats() Stats {
	return Stats{
		BufferSize:  constants.CopyBufferSize,
		Allocations: allocations.Load(),
		Gets:        gets.Load(),
	}
}
