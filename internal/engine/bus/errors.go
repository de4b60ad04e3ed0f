package bus

import (
	"errors"
	"fmt"
)

// UserError marks a command precondition failure: the payload referenced a
// nonexistent or wrong-typed object. It is converted to a COMMAND.FAILED
// event with reason USER_ERROR and never mutates state; retrying with
// corrected input is safe.
type UserError struct {
	msg string
}

func (e *UserError) Error() string { return e.msg }

func UserErrorf(format string, args ...interface{}) error {
	return &UserError{msg: fmt.Sprintf(format, args...)}
}

func IsUserError(err error) bool {
	var ue *UserError
	return errors.As(err, &ue)
}
