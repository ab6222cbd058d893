package markov

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyVertexSet is returned when a graph is built over no vertices.
	ErrEmptyVertexSet = errors.New("markov: empty vertex set")
	// ErrDuplicateVertex is returned when a vertex appears more than once.
	ErrDuplicateVertex = errors.New("markov: duplicate vertex")
	// ErrWeightCountMismatch is returned when a bulk weight import is not n² long.
	ErrWeightCountMismatch = errors.New("markov: weight count does not match vertex count")
	// ErrMissingBoundary is returned when a vertex table lacks the Boundary symbol.
	ErrMissingBoundary = errors.New("markov: vertex set does not contain the boundary symbol")

	// ErrEmptyCorpus is returned by Fit when there is nothing to learn from.
	ErrEmptyCorpus = errors.New("markov: empty training corpus")
	// ErrEmptyWord is returned by Fit for a zero-length word.
	ErrEmptyWord = errors.New("markov: empty word")
	// ErrBoundaryInWord is returned by Fit for a word containing the Boundary symbol.
	ErrBoundaryInWord = errors.New("markov: word contains the boundary symbol")

	// ErrMalformed matches every *FormatError.
	ErrMalformed = errors.New("markov: malformed model data")
	// ErrTruncated means the data ended before the size its header announces.
	ErrTruncated = errors.New("markov: truncated model data")
	// ErrInvalidUTF8 means a vertex table or training word is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("markov: invalid utf-8")
	// ErrTrailingBytes means the data continues past the weight matrix.
	ErrTrailingBytes = errors.New("markov: unexpected trailing bytes")
)

// InputError reports a training word that cannot be fitted.
type InputError struct {
	Index int    // position of the word in the corpus
	Word  string // the offending word
	Err   error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid training word %d (%q): %v", e.Index, e.Word, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// FormatError reports structurally invalid serialized model data. It is distinct
// from plain I/O failures and always matches ErrMalformed.
type FormatError struct {
	Offset int64 // byte offset at which decoding failed
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format error at offset %d: %v", e.Offset, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// Is reports whether target is ErrMalformed.
func (e *FormatError) Is(target error) bool { return target == ErrMalformed }

// SavingError is returned by Chain.Save.
type SavingError struct {
	Path string
	Err  error
}

func (e *SavingError) Error() string {
	return fmt.Sprintf("cannot save to %s: %v", e.Path, e.Err)
}

func (e *SavingError) Unwrap() error { return e.Err }

// LoadingError is returned by Load. Err is either the underlying I/O error or a
// *FormatError.
type LoadingError struct {
	Path string
	Err  error
}

func (e *LoadingError) Error() string {
	return fmt.Sprintf("cannot load chain from %s: %v", e.Path, e.Err)
}

func (e *LoadingError) Unwrap() error { return e.Err }
