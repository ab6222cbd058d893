package markov

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"
	"unicode/utf8"

	"github.com/natefinch/atomic"
)

// The binary model format, little-endian throughout:
//
//	offset 0     u64            byte length L of the vertex table
//	offset 8     L bytes        UTF-8 vertex table, one character per vertex
//	offset 8+L   n² × u64       row-major count matrix, n = number of vertices
//
// Row i of the matrix belongs to the i-th character of the vertex table.
const u64Size = 8

// MarshalBinary encodes the chain in the binary model format.
func (c *Chain) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(u64Size + len(c.vertices)*utf8.UTFMax + u64Size*len(c.graph.weights))
	if _, err := c.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTo writes the chain to w in the binary model format.
func (c *Chain) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var written int64
	var scratch [u64Size]byte

	table := []byte(string(c.vertices))
	binary.LittleEndian.PutUint64(scratch[:], uint64(len(table)))
	n, err := bw.Write(scratch[:])
	written += int64(n)
	if err != nil {
		return written, err
	}
	n, err = bw.Write(table)
	written += int64(n)
	if err != nil {
		return written, err
	}

	for _, weight := range c.graph.weights {
		binary.LittleEndian.PutUint64(scratch[:], weight)
		n, err = bw.Write(scratch[:])
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, bw.Flush()
}

// Decode parses a chain from data in the binary model format. Structural problems
// are reported as a *FormatError; data is never partially accepted.
func Decode(data []byte, opts ...Option) (*Chain, error) {
	size := uint64(len(data))
	if size < u64Size {
		return nil, &FormatError{Offset: 0, Err: fmt.Errorf("%w: missing vertex table length", ErrTruncated)}
	}
	tableLen := binary.LittleEndian.Uint64(data)
	if tableLen > size-u64Size {
		return nil, &FormatError{Offset: u64Size, Err: fmt.Errorf("%w: vertex table needs %d bytes, %d left", ErrTruncated, tableLen, size-u64Size)}
	}

	table := data[u64Size : u64Size+tableLen]
	if !utf8.Valid(table) {
		return nil, &FormatError{Offset: u64Size, Err: ErrInvalidUTF8}
	}
	vertices := []rune(string(table))
	n := uint64(len(vertices))
	if n == 0 {
		return nil, &FormatError{Offset: u64Size, Err: ErrEmptyVertexSet}
	}

	offset := u64Size + tableLen
	remaining := size - offset
	if n > remaining/u64Size/n {
		return nil, &FormatError{Offset: int64(offset), Err: fmt.Errorf("%w: weight matrix needs %d×%d entries, %d bytes left", ErrTruncated, n, n, remaining)}
	}
	if want := n * n * u64Size; remaining != want {
		return nil, &FormatError{Offset: int64(offset + want), Err: fmt.Errorf("%w: %d", ErrTrailingBytes, remaining-want)}
	}

	weights := make([]uint64, n*n)
	for i := range weights {
		weights[i] = binary.LittleEndian.Uint64(data[offset+uint64(i)*u64Size:])
	}

	c, err := New(vertices, weights, opts...)
	if err != nil {
		return nil, &FormatError{Offset: u64Size, Err: err}
	}
	return c, nil
}

// Save writes the chain to path. The file is replaced atomically, so a failed save
// never leaves a partially written model behind. Failures are *SavingError.
func (c *Chain) Save(path string) error {
	data, err := c.MarshalBinary()
	if err != nil {
		return &SavingError{Path: path, Err: err}
	}
	if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return &SavingError{Path: path, Err: err}
	}

	c.logger.Info("Chain saved",
		slog.String("path", path),
		slog.Int("vertices", len(c.vertices)),
		slog.Int("bytes", len(data)),
	)
	return nil
}

// Load reads a chain saved with Save. Failures are *LoadingError wrapping either
// the I/O error or a *FormatError.
func Load(path string, opts ...Option) (*Chain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadingError{Path: path, Err: err}
	}
	c, err := Decode(data, opts...)
	if err != nil {
		return nil, &LoadingError{Path: path, Err: err}
	}

	c.logger.Info("Chain loaded",
		slog.String("path", path),
		slog.Int("vertices", len(c.vertices)),
	)
	return c, nil
}
