package errs

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
