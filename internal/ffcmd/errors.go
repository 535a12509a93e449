package ffcmd

import "errors"

// ErrInvalidScope is returned by Command.AddParam when a param's spec does
// not belong to the command's declared scope (and is not UNKNOWN).
var ErrInvalidScope = errors.New("ffcmd: param not valid in command scope")

// ErrForbiddenArg is returned by Command.AddParam when a Forbid-policy spec
// is added to a command that already holds that spec, and by
// Parser.ParseCommand when a non-template command line contains a
// Forbid-policy flag.
var ErrForbiddenArg = errors.New("ffcmd: forbidden argument")
