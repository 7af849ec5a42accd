package service

import "errors"

// ErrUnauthorized rejects an operation by someone other than the record's
// owner. Room-level role checks belong to the UI collaborator; this is the
// core ownership contract.
var ErrUnauthorized = errors.New("operation not permitted for this user")
