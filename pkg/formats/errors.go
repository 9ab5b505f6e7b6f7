package formats

import (
	"errors"
	"fmt"
)

// Parse errors shared by the text formats.
var (
	ErrMalformedNumber      = errors.New("malformed numeric token")
	ErrMissingValue         = errors.New("directive is missing a value")
	ErrIndexOutOfRange      = errors.New("index out of range")
	ErrUnsupportedFaceArity = errors.New("face must have exactly 3 vertex references")
	ErrMalformedFaceVertex  = errors.New("malformed face vertex reference")
)

// ParseError locates a structural fault inside a text file.
type ParseError struct {
	Path  string // empty when parsing from a reader
	Line  int    // 1-based
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	where := fmt.Sprintf("line %d", e.Line)
	if e.Path != "" {
		where = fmt.Sprintf("%s:%d", e.Path, e.Line)
	}
	if e.Token == "" {
		return fmt.Sprintf("%s: %v", where, e.Err)
	}
	return fmt.Sprintf("%s: %q: %v", where, e.Token, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// withPath stamps path onto a ParseError found anywhere in err's chain.
func withPath(err error, path string) error {
	var pe *ParseError
	if errors.As(err, &pe) && pe.Path == "" {
		pe.Path = path
	}
	return err
}
