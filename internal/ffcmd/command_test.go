package ffcmd

import (
	"errors"
	"testing"

	"github.com/five82/distrffmpeg/internal/argcatalog"
)

func TestAddParamConcatPolicy(t *testing.T) {
	cmd := NewCommand("ffmpeg", argcatalog.Remote)
	if err := cmd.AddParam(NewFlag("vf", Literal("scale=1920:1080")), false); err != nil {
		t.Fatalf("first vf: %v", err)
	}
	if err := cmd.AddParam(NewFlag("vf", Literal("vidstabdetect")), false); err != nil {
		t.Fatalf("second vf: %v", err)
	}

	var got string
	count := 0
	for _, p := range cmd.Params() {
		if p.Spec != nil && *p.Spec == "vf" {
			count++
			got = p.Value.render()
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one vf param, got %d", count)
	}
	if got != "scale=1920:1080,vidstabdetect" {
		t.Fatalf("unexpected concatenated value: %q", got)
	}
}

func TestAddParamMultiplePolicy(t *testing.T) {
	cmd := NewCommand("ffmpeg", argcatalog.Pre)
	for _, v := range []string{"a.mkv", "b.mkv", "c.mkv"} {
		if err := cmd.AddParam(NewFlag("i", Literal(v)), false); err != nil {
			t.Fatalf("add -i %s: %v", v, err)
		}
	}

	var values []string
	for _, p := range cmd.Params() {
		if p.Spec != nil && *p.Spec == "i" {
			values = append(values, p.Value.render())
		}
	}
	if len(values) != 3 {
		t.Fatalf("expected 3 -i params, got %d: %v", len(values), values)
	}
	want := []string{"a.mkv", "b.mkv", "c.mkv"}
	for i, v := range want {
		if values[i] != v {
			t.Fatalf("param %d: want %q got %q", i, v, values[i])
		}
	}
}

func TestAddParamForbidPolicy(t *testing.T) {
	cmd := NewCommand("ffmpeg", argcatalog.Remote)
	// The policy applies to a repeated spec; g is DISCARD-scoped, so both
	// adds bypass the scope check the way template seeding does.
	if err := cmd.AddParam(NewFlag("g", Literal("10000")), true); err != nil {
		t.Fatalf("seed g: %v", err)
	}
	err := cmd.AddParam(NewFlag("g", Literal("250")), true)
	if !errors.Is(err, ErrForbiddenArg) {
		t.Fatalf("expected ErrForbiddenArg, got %v", err)
	}
}

func TestAddParamDiscardNeverAdded(t *testing.T) {
	// DISCARD params are dropped by the Parser before they ever reach
	// AddParam; AddParam itself has no special DISCARD handling, matching
	// the source. Exercised end-to-end in parser_test.go.
}

func TestAddParamPlaceholderSubstitution(t *testing.T) {
	cmd := NewCommand("ffmpeg", argcatalog.Pre)
	if err := cmd.AddParam(NewFlag("i", Placeholder), true); err != nil {
		t.Fatalf("seed placeholder: %v", err)
	}
	if err := cmd.AddParam(NewFlag("i", Literal("in.mp4")), false); err != nil {
		t.Fatalf("substitute: %v", err)
	}

	count := 0
	for _, p := range cmd.Params() {
		if p.Spec != nil && *p.Spec == "i" {
			count++
			if p.Value.render() != "in.mp4" {
				t.Fatalf("expected substituted value, got %q", p.Value.render())
			}
		}
	}
	if count != 1 {
		t.Fatalf("placeholder substitution should not create a new param, got %d", count)
	}
}

func TestAddParamOutputSlotIsUniqueAndLast(t *testing.T) {
	cmd := NewCommand("ffmpeg", argcatalog.Final)
	if err := cmd.AddParam(NewFlag("c:a", Literal("copy")), false); err != nil {
		t.Fatalf("c:a: %v", err)
	}
	if err := cmd.AddParam(NewPositional("first.mkv"), false); err != nil {
		t.Fatalf("first positional: %v", err)
	}
	if err := cmd.AddParam(NewFlag("b:a", Literal("128k")), false); err != nil {
		t.Fatalf("b:a: %v", err)
	}
	if err := cmd.AddParam(NewPositional("final.mkv"), false); err != nil {
		t.Fatalf("second positional: %v", err)
	}

	params := cmd.Params()
	last := params[len(params)-1]
	if !last.IsOutput() || last.Value.render() != "final.mkv" {
		t.Fatalf("expected final.mkv as last output param, got %+v", last)
	}

	outputs := 0
	for _, p := range params {
		if p.IsOutput() && p.Value.render() == "first.mkv" {
			outputs++
		}
	}
	if outputs != 0 {
		t.Fatalf("first.mkv should have been evicted as output, found %d occurrences", outputs)
	}
}

func TestValidateFinalCommand(t *testing.T) {
	cmd := NewCommand("ffmpeg", argcatalog.Final)
	if err := cmd.AddParam(NewFlag("c:a", Literal("copy")), false); err != nil {
		t.Fatal(err)
	}
	if err := cmd.AddParam(NewPositional("out.mkv"), false); err != nil {
		t.Fatal(err)
	}
	if !cmd.Validate() {
		t.Fatalf("expected valid FINAL command, got invalid: %s", cmd.GetCommand(false))
	}
}

func TestGetCommandRendering(t *testing.T) {
	cmd := NewCommand("ffmpeg", argcatalog.Final)
	if err := cmd.AddParam(NewFlag("i", Literal("in.mp4")), false); err != nil {
		t.Fatal(err)
	}
	if err := cmd.AddParam(NewFlag("an", NoValue), true); err != nil {
		t.Fatal(err)
	}
	if err := cmd.AddParam(NewPositional("out.mkv"), true); err != nil {
		t.Fatal(err)
	}

	got := cmd.GetCommand(true)
	want := `-i "in.mp4" -an "out.mkv"`
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
