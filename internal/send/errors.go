package send

import "errors"

// ValidationError reports a malformed or incomplete send request. It is
// raised before any side effect, so a rejected request writes nothing.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err is a request validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
