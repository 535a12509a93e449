package ffcmd

import (
	"fmt"
	"strings"

	"github.com/five82/distrffmpeg/internal/argcatalog"
)

// Command is a structured, ordered transcoder command line: a list of
// Params, a declared Scope, and at most one output slot (the last
// positional Param).
type Command struct {
	Scope  argcatalog.Scope
	params []Param
	output *int // index into params of the current output slot, or nil
}

// NewCommand creates a Command for the given binary name and scope. The
// binary occupies position 0 as a positional Param, matching the source's
// convention of seeding every command with its own binary name.
func NewCommand(bin string, scope argcatalog.Scope) *Command {
	return &Command{
		Scope:  scope,
		params: []Param{NewPositional(bin)},
	}
}

// Params returns the command's params in rendering order. The returned
// slice must not be mutated by the caller.
func (c *Command) Params() []Param {
	return c.params
}

// inScope reports whether p belongs to c's declared scope or to UNKNOWN.
func (c *Command) inScope(p Param) bool {
	key := p.specKey()
	return argcatalog.InScope(key, c.Scope) || argcatalog.ScopeOf(key) == argcatalog.Unknown
}

// AddParam inserts or merges p into the command under the scope/merge
// algorithm. When skipScope is true, the scope check is bypassed (used
// while seeding a template, which may legitimately carry params from other
// scopes to be inherited verbatim).
func (c *Command) AddParam(p Param, skipScope bool) error {
	if !skipScope && !c.inScope(p) {
		return fmt.Errorf("%w: %s", ErrInvalidScope, describeSpec(p))
	}

	specEncounteredAt := -1
	var placeholderIdx []int
	for i, existing := range c.params {
		if p.sameSpec(existing) && specEncounteredAt == -1 {
			specEncounteredAt = i
		}
		if IsPlaceholder(existing.Value) {
			placeholderIdx = append(placeholderIdx, i)
		}
	}

	if specEncounteredAt == -1 {
		c.params = append(c.params, p)
		if p.IsOutput() {
			c.setOutput(len(c.params) - 1)
		}
		c.keepOutputLast()
		return nil
	}

	// Substitute the earliest same-spec placeholder, if any.
	for _, idx := range placeholderIdx {
		if p.sameSpec(c.params[idx]) {
			c.params[idx].Value = p.Value
			c.keepOutputLast()
			return nil
		}
	}

	switch argcatalog.PolicyOf(p.specKey()) {
	case argcatalog.Concat:
		existing := c.params[specEncounteredAt]
		lit, ok := existing.Value.(Literal)
		if !ok {
			lit = ""
		}
		c.params[specEncounteredAt].Value = Literal(string(lit) + "," + p.Value.render())
	case argcatalog.Multiple:
		c.params = append(c.params, p)
		if p.IsOutput() {
			c.setOutput(len(c.params) - 1)
		}
	case argcatalog.Forbid:
		return fmt.Errorf("%w: %s", ErrForbiddenArg, describeSpec(p))
	default: // Replace
		c.params[specEncounteredAt].Value = p.Value
		if p.IsOutput() {
			c.setOutput(specEncounteredAt)
		}
	}

	c.keepOutputLast()
	return nil
}

// setOutput records idx as the current output slot. Any prior output param
// is removed from params, matching the source's "remove the old output
// param" behavior applied through the Multiple/Replace paths above.
func (c *Command) setOutput(idx int) {
	if c.output != nil && *c.output != idx {
		old := *c.output
		c.params = append(c.params[:old], c.params[old+1:]...)
		if idx > old {
			idx--
		}
	}
	c.output = &idx
}

// keepOutputLast moves the tracked output param to the end of params, if
// it isn't already there.
func (c *Command) keepOutputLast() {
	if c.output == nil {
		return
	}
	idx := *c.output
	if idx == len(c.params)-1 {
		return
	}
	p := c.params[idx]
	c.params = append(c.params[:idx], c.params[idx+1:]...)
	c.params = append(c.params, p)
	last := len(c.params) - 1
	c.output = &last
}

func describeSpec(p Param) string {
	if p.Spec == nil {
		return "<positional>"
	}
	return *p.Spec
}

// GetCommand renders the command as a space-separated string. When
// withoutBin is true, the binary occupying position 0 is omitted.
func (c *Command) GetCommand(withoutBin bool) string {
	var b strings.Builder
	start := 0
	if withoutBin {
		start = 1
	}
	for _, p := range c.params[start:] {
		switch {
		case p.Spec == nil:
			fmt.Fprintf(&b, "%q ", p.Value.render())
		case IsNoValue(p.Value):
			fmt.Fprintf(&b, "-%s ", *p.Spec)
		case argcatalog.Quoted(*p.Spec):
			fmt.Fprintf(&b, "-%s %q ", *p.Spec, p.Value.render())
		default:
			fmt.Fprintf(&b, "-%s %s ", *p.Spec, p.Value.render())
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// Clone returns a deep copy of c, used to seed new commands from a
// template at each pipeline-separator token.
func (c *Command) Clone() *Command {
	clone := &Command{
		Scope:  c.Scope,
		params: append([]Param(nil), c.params...),
	}
	if c.output != nil {
		o := *c.output
		clone.output = &o
	}
	return clone
}

// Validate reports whether the command is well-formed: at least three
// params, exactly two positionals (binary and output), the last param is
// the output, and every param passes its scope check.
func (c *Command) Validate() bool {
	if len(c.params) < 3 {
		return false
	}
	if !c.params[len(c.params)-1].IsOutput() {
		return false
	}
	positionals := 0
	for _, p := range c.params {
		if !c.inScope(p) {
			return false
		}
		if p.IsOutput() {
			positionals++
		}
	}
	return positionals == 2
}
