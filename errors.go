package distrffmpeg

import (
	"github.com/five82/distrffmpeg/internal/config"
	"github.com/five82/distrffmpeg/internal/dispatch"
	"github.com/five82/distrffmpeg/internal/ffcmd"
	"github.com/five82/distrffmpeg/internal/finalmerge"
	"github.com/five82/distrffmpeg/internal/remoteworker"
	"github.com/five82/distrffmpeg/internal/sceneanalysis"
	"github.com/five82/distrffmpeg/internal/segment"
)

// Sentinel errors callers can match with errors.Is, one per error kind
// spec.md's error table names. Each lives beside the package that
// produces it; these vars just give library callers a single import to
// check against.
var (
	ErrInvalidConfig       = config.ErrInvalidConfig
	ErrInvalidOverride     = config.ErrInvalidOverride
	ErrNoWorkersOnline     = dispatch.ErrNoWorkersOnline
	ErrRetriesExhausted    = dispatch.ErrRetriesExhausted
	ErrJobFailed           = dispatch.ErrJobFailed
	ErrWindowsMissingShell = remoteworker.ErrWindowsMissingShell
	ErrInvalidScope        = ffcmd.ErrInvalidScope
	ErrForbiddenArg        = ffcmd.ErrForbiddenArg

	ErrSceneAnalysisFailed = sceneanalysis.ErrLocalCommandFailed
	ErrSegmentationFailed  = segment.ErrLocalCommandFailed
	ErrFinalMergeFailed    = finalmerge.ErrLocalCommandFailed
)
