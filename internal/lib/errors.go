package lib

import "fmt"

type wrappedError struct {
	parent error
	child  error
}

// WrapError keeps both errors in the chain, so errors.Is matches either of them
func WrapError(parent error, child error) error {
	if child == nil {
		return parent
	}
	return &wrappedError{parent: parent, child: child}
}

func (e *wrappedError) Error() string {
	return fmt.Sprintf("%s: %s", e.parent, e.child)
}

func (e *wrappedError) Unwrap() []error {
	return []error{e.parent, e.child}
}
