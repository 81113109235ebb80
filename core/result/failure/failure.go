package failure

import (
	"errors"
	"fmt"
	"runtime"

	pkgerrors "github.com/pkg/errors"
	"github.com/storacha/go-cacao/core/ipld"
	"github.com/storacha/go-cacao/core/result/failure/datamodel"
)

// Names of the failures raised while transcoding a token.
const (
	// MalformedTokenName is raised when a compact token does not have exactly
	// three dot separated segments.
	MalformedTokenName = "MalformedToken"
	// EncodingErrorName is raised on a base64url or CBOR byte level decode
	// failure.
	EncodingErrorName = "EncodingError"
	// SchemaErrorName is raised when a decoded claim map is missing a required
	// field or has a wrongly shaped value.
	SchemaErrorName = "SchemaError"
	// UnencodableValueName is raised when the encoder receives a value that
	// does not match its declared type.
	UnencodableValueName = "UnencodableValue"
	// PolicyMismatchName is raised when an envelope is encoded with a DID
	// representation other than the one it was remapped with.
	PolicyMismatchName = "PolicyMismatch"
)

// Named is an error that you can read a name from
type Named interface {
	Name() string
}

// WithStackTrace is an error that you can read a stack trace from
type WithStackTrace interface {
	Stack() string
}

// WithField is an error that names the offending claim field.
type WithField interface {
	Field() string
}

// IPLDConvertableError is an error with a custom method to convert to an IPLD Node
type IPLDConvertableError interface {
	error
	ToIPLD() (ipld.Node, error)
}

type Failure interface {
	error
	Named
}

type IPLDBuilderFailure interface {
	IPLDConvertableError
	Failure
}

type namedWithStackTrace struct {
	name  string
	stack pkgerrors.StackTrace
}

func (n namedWithStackTrace) Name() string {
	return n.name
}

func (n namedWithStackTrace) Stack() string {
	return fmt.Sprintf("%+v", n.stack)
}

func callers(skip int) pkgerrors.StackTrace {
	const depth = 32

	var pcs [depth]uintptr
	n := runtime.Callers(skip, pcs[:])

	f := make(pkgerrors.StackTrace, n)
	for i := 0; i < n; i++ {
		f[i] = pkgerrors.Frame(pcs[i])
	}
	return f
}

// FieldError is a named failure raised at the point of detection. It records
// the claim field that caused it (when known) and wraps the underlying cause.
type FieldError struct {
	namedWithStackTrace
	field   string
	message string
	cause   error
}

var _ IPLDBuilderFailure = (*FieldError)(nil)
var _ WithField = (*FieldError)(nil)

func (e *FieldError) Field() string {
	return e.field
}

func (e *FieldError) Error() string {
	msg := e.name
	if e.field != "" {
		msg += fmt.Sprintf(" (%s)", e.field)
	}
	msg += ": " + e.message
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *FieldError) Unwrap() error {
	return e.cause
}

func (e *FieldError) ToIPLD() (ipld.Node, error) {
	model := datamodel.FailureModel{Message: e.Error()}
	name := e.Name()
	model.Name = &name
	if e.field != "" {
		field := e.field
		model.Field = &field
	}
	stack := e.Stack()
	model.Stack = &stack
	return model.ToIPLD()
}

func newFieldError(name, field string, cause error, format string, args ...any) *FieldError {
	return &FieldError{
		namedWithStackTrace: namedWithStackTrace{name, callers(4)},
		field:               field,
		message:             fmt.Sprintf(format, args...),
		cause:               cause,
	}
}

func MalformedToken(format string, args ...any) *FieldError {
	return newFieldError(MalformedTokenName, "", nil, format, args...)
}

func EncodingError(field string, cause error, format string, args ...any) *FieldError {
	return newFieldError(EncodingErrorName, field, cause, format, args...)
}

func SchemaError(field string, cause error, format string, args ...any) *FieldError {
	return newFieldError(SchemaErrorName, field, cause, format, args...)
}

func UnencodableValue(field string, cause error, format string, args ...any) *FieldError {
	return newFieldError(UnencodableValueName, field, cause, format, args...)
}

func PolicyMismatch(format string, args ...any) *FieldError {
	return newFieldError(PolicyMismatchName, "", nil, format, args...)
}

// Is reports whether any failure in the error chain has the given name.
func Is(err error, name string) bool {
	for err != nil {
		if named, ok := err.(Named); ok && named.Name() == name {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// NameOf returns the name of the first named failure in the error chain, or
// the empty string.
func NameOf(err error) string {
	var named Named
	if errors.As(err, &named) {
		return named.Name()
	}
	return ""
}

// FieldOf returns the offending field recorded in the error chain, or the
// empty string.
func FieldOf(err error) string {
	var wf WithField
	if errors.As(err, &wf) {
		return wf.Field()
	}
	return ""
}

type failure struct {
	model  datamodel.FailureModel
	toIPLD func() (ipld.Node, error)
}

func (f failure) Name() string {
	if f.model.Name == nil {
		return ""
	}
	return *f.model.Name
}

func (f failure) Error() string {
	return f.model.Message
}

func (f failure) ToIPLD() (ipld.Node, error) {
	if f.toIPLD != nil {
		return f.toIPLD()
	}
	return f.model.ToIPLD()
}

// FromError converts any error into a failure that can be rendered as IPLD.
func FromError(err error) IPLDBuilderFailure {
	var conv IPLDBuilderFailure
	if errors.As(err, &conv) {
		return failure{
			model:  datamodel.FailureModel{Name: ptr(conv.Name()), Message: err.Error()},
			toIPLD: conv.ToIPLD,
		}
	}
	model := datamodel.FailureModel{Message: err.Error()}
	if name := NameOf(err); name != "" {
		model.Name = &name
	}
	if field := FieldOf(err); field != "" {
		model.Field = &field
	}
	var withStackTrace WithStackTrace
	if errors.As(err, &withStackTrace) {
		stack := withStackTrace.Stack()
		model.Stack = &stack
	}
	return failure{model: model}
}

func ptr[T any](v T) *T {
	return &v
}
