package ffcmd

import (
	"fmt"
	"strings"

	"github.com/five82/distrffmpeg/internal/argcatalog"
)

// pipelineSeparator is the literal token that starts a new Command within a
// multi-pass user command line.
const pipelineSeparator = "ffmpeg"

// Parser tokenizes raw command lines and routes params into one or more
// Commands, all sharing the Parser's declared Scope. A Parser accumulates a
// template across calls made with asTemplate=true; every subsequent
// Command started at a pipeline separator (including the first Command of
// a later non-template call) is seeded as a clone of that template.
type Parser struct {
	Scope    argcatalog.Scope
	Cmds     []*Command
	template *Command
}

// NewParser creates a Parser in the given scope, seeded with a single
// empty "ffmpeg" Command.
func NewParser(scope argcatalog.Scope) *Parser {
	first := NewCommand("ffmpeg", scope)
	return &Parser{
		Scope:    scope,
		Cmds:     []*Command{first},
		template: first.Clone(),
	}
}

// ParseCommand tokenizes commandLine as a POSIX shell would and routes each
// resulting Param into the Parser's current Command, starting a new Command
// at each pipeline-separator token. When asTemplate is true, scope
// classification is bypassed for every param (the template is trusted to
// carry flags from any scope, to be inherited verbatim by later passes) and
// the Parser's template is replaced with a clone of the final Command built.
func (p *Parser) ParseCommand(commandLine string, asTemplate bool) error {
	tokens := splitShellWords(commandLine)
	if len(tokens) == 0 {
		return nil
	}

	i := 1 // skip the binary name at token 0
	for i < len(tokens) {
		token := tokens[i]

		var param Param
		switch {
		case token == pipelineSeparator:
			p.Cmds = append(p.Cmds, p.template.Clone())
			i++
			continue

		case strings.HasPrefix(token, "-") && token != "-":
			spec := token[1:]
			if argcatalog.IsSingle(spec) {
				param = NewFlag(spec, NoValue)
			} else {
				i++
				var value string
				if i < len(tokens) {
					value = tokens[i]
				}
				// A template string may spell out the literal word
				// "PLACEHOLDER" where a later pass is expected to supply
				// the real value (see finalmerge/sceneanalysis/segment
				// template constants). The tokenizer has no other way to
				// express the tagged Placeholder value from plain text,
				// so it is special-cased here rather than carried forward
				// as a Literal that AddParam would have to string-compare.
				if value == "PLACEHOLDER" {
					param = NewFlag(spec, Placeholder)
				} else {
					param = NewFlag(spec, Literal(value))
				}
			}

		default:
			param = NewPositional(token)
		}

		cur := p.Cmds[len(p.Cmds)-1]
		if err := p.place(cur, param, asTemplate); err != nil {
			return err
		}

		i++
	}

	if asTemplate {
		p.template = p.Cmds[len(p.Cmds)-1].Clone()
	}

	return nil
}

// place applies the Parser's classification rule for a single param.
func (p *Parser) place(cur *Command, param Param, asTemplate bool) error {
	if asTemplate {
		return cur.AddParam(param, true)
	}

	key := param.specKey()
	switch {
	case argcatalog.PolicyOf(key) == argcatalog.Forbid:
		// A forbidden flag in a user command fails the parse outright,
		// whatever its scope, rather than being dropped as DISCARD.
		return fmt.Errorf("%w: %s", ErrForbiddenArg, describeSpec(param))
	case argcatalog.InScope(key, p.Scope):
		return cur.AddParam(param, false)
	case argcatalog.InScope(key, argcatalog.Discard):
		return nil
	case argcatalog.ScopeOf(key) == argcatalog.Unknown && p.Scope == argcatalog.Remote:
		// Unclassified flags default to REMOTE: the transcoder accepts a
		// much larger flag surface than the catalog enumerates, and
		// REMOTE is the scope where passing through an unrecognized
		// encoder-specific flag is useful rather than silently lossy.
		return cur.AddParam(param, false)
	default:
		return nil
	}
}
