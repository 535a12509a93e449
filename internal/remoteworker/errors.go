package remoteworker

import "errors"

// ErrWindowsMissingShell is returned when a worker configured with the
// windows platform has no reachable PowerShell.
var ErrWindowsMissingShell = errors.New("remoteworker: windows worker has no powershell")
