// Package cynerr classifies failures so callers can decide between failing
// fast and retrying.
//
//   - Structural: the test file or captured specification is malformed.
//     Never retried.
//   - Validation: a generated artifact was rejected (bad shape, failing
//     tests). Retried up to the configured budget.
//   - Precondition: the environment is not ready (missing credential,
//     project directory or input file). Reported once, never retried.
package cynerr

import "errors"

type Kind int

const (
	KindUnknown Kind = iota
	KindStructural
	KindValidation
	KindPrecondition
)

func (k Kind) String() string {
	switch k {
	case KindStructural:
		return "structural"
	case KindValidation:
		return "generation_validation"
	case KindPrecondition:
		return "precondition"
	default:
		return "unknown"
	}
}

var (
	ErrStructural   = errors.New("structural error")
	ErrValidation   = errors.New("generation validation failure")
	ErrPrecondition = errors.New("precondition failure")
)

type kindError struct {
	kind Kind
	err  error
}

func (e *kindError) Error() string { return e.err.Error() }

func (e *kindError) Unwrap() []error {
	return []error{e.err, sentinel(e.kind)}
}

func sentinel(k Kind) error {
	switch k {
	case KindStructural:
		return ErrStructural
	case KindValidation:
		return ErrValidation
	case KindPrecondition:
		return ErrPrecondition
	default:
		return nil
	}
}

func wrap(k Kind, err error) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: k, err: err}
}

// Structural marks err as a malformed-specification error.
func Structural(err error) error { return wrap(KindStructural, err) }

// Validation marks err as a rejected generation attempt.
func Validation(err error) error { return wrap(KindValidation, err) }

// Precondition marks err as an unmet precondition.
func Precondition(err error) error { return wrap(KindPrecondition, err) }

// KindOf returns the outermost classification found in err's chain.
func KindOf(err error) Kind {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.kind
	}
	return KindUnknown
}
