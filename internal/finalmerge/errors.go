package finalmerge

import "errors"

// ErrLocalCommandFailed is returned when the local concat+audio-mux
// transcoder invocation exits non-zero.
var ErrLocalCommandFailed = errors.New("finalmerge: local command failed")
