package sceneanalysis

import "errors"

// ErrLocalCommandFailed is returned when the local scene-detection
// transcoder invocation exits non-zero.
var ErrLocalCommandFailed = errors.New("sceneanalysis: local command failed")
