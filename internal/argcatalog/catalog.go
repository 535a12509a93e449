// Package argcatalog holds the static classification tables that tell the
// command-argument planner which pipeline stage a transcoder flag belongs
// to and how repeated occurrences of it should be merged.
package argcatalog

// Scope is the pipeline stage at which a command-line argument applies.
type Scope int

const (
	// Unknown means the flag is absent from the catalog.
	Unknown Scope = iota
	// Pre runs locally for analysis and segmentation.
	Pre
	// Remote runs on worker machines.
	Remote
	// Final runs locally for concatenation and muxing.
	Final
	// Discard flags are silently dropped by the parser, except a
	// Forbid-policy flag, which the parser rejects.
	Discard
)

func (s Scope) String() string {
	switch s {
	case Pre:
		return "PRE"
	case Remote:
		return "REMOTE"
	case Final:
		return "FINAL"
	case Discard:
		return "DISCARD"
	default:
		return "UNKNOWN"
	}
}

// Policy governs how a repeated flag is merged into a Command.
type Policy int

const (
	// Replace overwrites the existing value. It is the default for any
	// spec absent from the Concat/Multiple/Forbid tables below.
	Replace Policy = iota
	// Concat joins repeated values with a comma.
	Concat
	// Multiple allows the same spec to appear more than once.
	Multiple
	// Forbid rejects the argument outright.
	Forbid
)

// outputSpec is the map key used for positional params (spec == nil in the
// Param model). The catalog tables below use it wherever the original
// Python tables list None.
const outputSpec = ""

var scopeOf = map[string]Scope{
	// PRE
	"threads":   Pre,
	"ss":        Pre,
	"t":         Pre,
	"frames:v":  Pre,
	"vframes":   Pre,
	"i":         Pre, // also FINAL; see InScope below for disambiguation
	// REMOTE
	"c:v":      Remote,
	"vcodec":   Remote,
	"crf":      Remote,
	"qp":       Remote,
	"b:v":      Remote,
	"vn":       Remote,
	"pass":     Remote,
	"filter:v": Remote,
	"vf":       Remote,
	"f":        Remote,
	// FINAL
	"c:a":      Final,
	"acodec":   Final,
	"b:a":      Final,
	"an":       Final,
	"movflags": Final,
	outputSpec: Final,
	// DISCARD
	"y":        Discard,
	"n":        Discard,
	"v":        Discard,
	"loglevel": Discard,
	"report":   Discard,
	"g":        Discard,
}

// finalAlsoAllowed lists specs that belong to more than one scope in the
// catalog (the spec names "i" under both PRE and FINAL). scopeOf above
// resolves the ambiguity in favor of PRE since that is "i"'s primary home;
// InScope consults this table for the secondary membership.
var finalAlsoAllowed = map[string]bool{
	"i": true,
}

var policyOf = map[string]Policy{
	"filter:v": Concat,
	"vf":       Concat,
	outputSpec: Multiple,
	"i":        Multiple,
	"f":        Multiple,
	"map":      Multiple,
	"g":        Forbid,
}

var quoted = map[string]bool{
	"filter:v": true,
	"vf":       true,
	"i":        true,
}

var singles = map[string]bool{
	"y":      true,
	"n":      true,
	"v":      true,
	"report": true,
	"vn":     true,
	"an":     true,
}

// ScopeOf returns the declared scope for spec, or Unknown if the catalog has
// no entry for it. A positional Param (Go nil spec) is looked up under the
// empty string.
func ScopeOf(spec string) Scope {
	if s, ok := scopeOf[spec]; ok {
		return s
	}
	return Unknown
}

// InScope reports whether spec belongs to scope s, accounting for specs the
// catalog lists under more than one scope (only "i", PRE and FINAL).
func InScope(spec string, s Scope) bool {
	if ScopeOf(spec) == s {
		return true
	}
	if s == Final && finalAlsoAllowed[spec] {
		return true
	}
	return false
}

// PolicyOf returns the merge policy for spec, defaulting to Replace.
func PolicyOf(spec string) Policy {
	if p, ok := policyOf[spec]; ok {
		return p
	}
	return Replace
}

// Quoted reports whether spec's value must be rendered in double quotes.
func Quoted(spec string) bool {
	return quoted[spec]
}

// IsSingle reports whether spec is a flag that never carries a value.
func IsSingle(spec string) bool {
	return singles[spec]
}

// OutputSpec is the sentinel key used in the catalog for positional params.
const OutputSpec = outputSpec
