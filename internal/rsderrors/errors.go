// Package rsderrors defines RSD's closed error taxonomy. Every failure the core
// can produce is one of the sentinels below, wrapped with enough context
// (offending key, element name, human message) to report without inspecting
// the error's dynamic type.
package rsderrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// The taxonomy is closed: callers should never need an eleventh sentinel.
var (
	// ErrParseError is returned for malformed serialized state or an unknown kind tag.
	ErrParseError = errors.New("parse error")
	// ErrSchemaMismatch is returned when a component's elements don't match its
	// provider's declared schema.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrKindMismatch is returned when an operation receives operands of
	// differing element kinds.
	ErrKindMismatch = errors.New("kind mismatch")
	// ErrComponentMismatch is returned by diff/apply/combine across differing
	// (type, qualifier) keys.
	ErrComponentMismatch = errors.New("component mismatch")
	// ErrMissingBase is returned when apply of a DIFF component finds no
	// matching FULL component in the host.
	ErrMissingBase = errors.New("missing base")
	// ErrListDrift is returned when a list-diff hunk cannot locate its context
	// during apply.
	ErrListDrift = errors.New("list drift")
	// ErrUnknownProvider is returned by a registry lookup miss.
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrGatherFailed is returned when a provider's gather step fails.
	ErrGatherFailed = errors.New("gather failed")
	// ErrRenderFailed is returned when a provider's render step fails.
	ErrRenderFailed = errors.New("render failed")
	// ErrInvalidSystem is returned when a dependency edge points to a
	// component not present in the system, or the dependency relation
	// contains a cycle (which makes it non-orderable, a specialization of the
	// same condition).
	ErrInvalidSystem = errors.New("invalid system")
)

// Key identifies the component (and optionally the element within it) an
// error is about.
type Key struct {
	Type      string
	Qualifier []string
	Element   string
}

func (k Key) String() string {
	s := k.Type
	for _, q := range k.Qualifier {
		s += "." + q
	}
	if k.Element != "" {
		s += "#" + k.Element
	}
	return s
}

// Error wraps a taxonomy sentinel with the key it concerns and a human
// message, without losing errors.Is/errors.As compatibility with the sentinel.
type Error struct {
	Err     error
	Key     Key
	Message string
}

func Wrap(sentinel error, key Key, format string, args ...any) error {
	return Error{
		Err:     sentinel,
		Key:     key,
		Message: sentinel.Error() + ": " + fmt.Sprintf(format, args...),
	}
}

func (e Error) Error() string {
	if e.Key.Type == "" {
		return e.Message
	}
	return e.Key.String() + ": " + e.Message
}

func (e Error) Unwrap() error { return e.Err }

// ExitCode maps an error to the process exit code described in the CLI
// surface's contract: 0 success, 1 input/parse, 2 invalid state, 3 provider
// failure, 4 list-drift/missing-base, 64+ reserved for unexpected failures.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch {
	case errors.Is(err, ErrParseError):
		return 1
	case errors.Is(err, ErrSchemaMismatch), errors.Is(err, ErrInvalidSystem):
		return 2
	case errors.Is(err, ErrUnknownProvider), errors.Is(err, ErrGatherFailed), errors.Is(err, ErrRenderFailed):
		return 3
	case errors.Is(err, ErrListDrift), errors.Is(err, ErrMissingBase):
		return 4
	case errors.Is(err, ErrKindMismatch), errors.Is(err, ErrComponentMismatch):
		return 2
	default:
		return 64
	}
}
