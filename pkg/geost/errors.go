package geost

// errors.go: error classes raised by the placement constraint

import (
	"errors"
	"fmt"

	"github.com/gitrdm/geost/pkg/fd"
)

var (
	// ErrDomainContradiction is the ordinary failure of a propagation
	// episode. It wraps fd.ErrInconsistent so search engines treat it as a
	// plain dead end.
	ErrDomainContradiction = fmt.Errorf("geost: domain contradiction: %w", fd.ErrInconsistent)

	// ErrArithmeticInvariant marks a defect in exact integer distance
	// arithmetic. It is raised by panic and never recovered by this package.
	ErrArithmeticInvariant = errors.New("geost: arithmetic invariant violated")

	// ErrUnsupportedConfiguration rejects a construction the algorithms
	// cannot handle, such as a non-Euclidean norm.
	ErrUnsupportedConfiguration = errors.New("geost: unsupported configuration")

	// ErrConfigurationMismatch rejects inconsistent construction input, such
	// as a constraint naming an unregistered object.
	ErrConfigurationMismatch = errors.New("geost: configuration mismatch")
)

// ArithmeticError is the panic value for ErrArithmeticInvariant.
type ArithmeticError struct {
	Op     string
	Detail string
}

func (e *ArithmeticError) Error() string {
	return fmt.Sprintf("geost: %s: %s", e.Op, e.Detail)
}

func (e *ArithmeticError) Unwrap() error { return ErrArithmeticInvariant }

func arithmeticFault(op, format string, args ...any) {
	panic(&ArithmeticError{Op: op, Detail: fmt.Sprintf(format, args...)})
}

// contradiction wraps a store failure so that callers see both the
// geost class and the underlying cause.
func contradiction(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrDomainContradiction) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrDomainContradiction, err)
}
