package service

import "errors"

// ErrForbidden indicates the caller is authenticated but may not perform the
// operation on the targeted resource.
var ErrForbidden = errors.New("forbidden")
