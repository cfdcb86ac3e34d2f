// Package errorspkg provides errors shared by every layer of the app.
package errorspkg

import "errors"

// ErrInternal is returned in place of store and infrastructure failures.
// The original error is logged where it happens and never reaches the client.
var ErrInternal = errors.New("internal error")
