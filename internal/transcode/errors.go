package transcode

import (
	"errors"
	"fmt"
)

// Kind classifies a per-file failure by the step that produced it.
type Kind int

const (
	KindInputRead Kind = iota + 1
	KindDecode
	KindEncoderConfig
	KindEncode
	KindFlush
	KindOutputWrite
)

var kindNames = map[Kind]string{
	KindInputRead:     "read input",
	KindDecode:        "decode",
	KindEncoderConfig: "configure encoder",
	KindEncode:        "encode",
	KindFlush:         "flush encoder",
	KindOutputWrite:   "write output",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a per-file conversion failure. It never aborts a batch.
type Error struct {
	Kind Kind
	Path string // offending input file
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s failed for %s: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind, true
	}
	return 0, false
}

func fail(kind Kind, path string, err error) error {
	return &Error{Kind: kind, Path: path, Err: err}
}
