// Package stream compares byte streams without loading them into memory.
package stream

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// bufferSize matches the extractor chunk size so both sides issue reads of the same size.
const bufferSize = 8 << 10

// Equal reports whether a and b yield identical byte sequences of identical length.
// It stops at the first differing byte. Unbuffered readers are wrapped in a
// bufio.Reader; the callers keep ownership and must close them.
func Equal(a, b io.Reader) (bool, error) {
	left, right := buffered(a), buffered(b)

	for {
		lb, lerr := left.ReadByte()
		if lerr != nil && !errors.Is(lerr, io.EOF) {
			return false, fmt.Errorf("read first stream: %w", lerr)
		}

		rb, rerr := right.ReadByte()
		if rerr != nil && !errors.Is(rerr, io.EOF) {
			return false, fmt.Errorf("read second stream: %w", rerr)
		}

		leftDone, rightDone := lerr != nil, rerr != nil
		switch {
		case leftDone && rightDone:
			return true, nil
		case leftDone != rightDone:
			return false, nil
		case lb != rb:
			return false, nil
		}
	}
}

func buffered(r io.Reader) *bufio.Reader {
	if br, ok := r.(*bufio.Reader); ok {
		return br
	}

	return bufio.NewReaderSize(r, bufferSize)
}
