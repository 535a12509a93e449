package segment

import "errors"

// ErrLocalCommandFailed is returned when the local segmentation transcoder
// invocation exits non-zero.
var ErrLocalCommandFailed = errors.New("segment: local command failed")
