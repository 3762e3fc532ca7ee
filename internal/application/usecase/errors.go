package usecase

import "errors"

// ErrInvalidRequest marks a request the use case cannot interpret, such as an
// unknown action name.
var ErrInvalidRequest = errors.New("invalid request")
