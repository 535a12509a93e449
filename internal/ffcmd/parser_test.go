package ffcmd

import (
	"strings"
	"testing"

	"github.com/five82/distrffmpeg/internal/argcatalog"
)

func TestParserTwoPassTemplate(t *testing.T) {
	p := NewParser(argcatalog.Remote)
	template := `ffmpeg -i PLACEHOLDER -c:v libaom-av1 -crf 40 out.mkv`
	if err := p.ParseCommand(template, true); err != nil {
		t.Fatalf("template parse: %v", err)
	}
	// The tokenizer turns the literal word "PLACEHOLDER" into the
	// Placeholder value, so the template parse above seeds it directly.

	user := `ffmpeg -i in.mp4 -pass 1 -f null - ffmpeg -i in.mp4 -pass 2`
	if err := p.ParseCommand(user, false); err != nil {
		t.Fatalf("user parse: %v", err)
	}

	if len(p.Cmds) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(p.Cmds))
	}

	first := p.Cmds[0].GetCommand(true)
	second := p.Cmds[1].GetCommand(true)

	if !strings.Contains(first, `-pass 1`) || !strings.Contains(first, `-f null`) {
		t.Fatalf("first command missing pass/f flags: %s", first)
	}
	if !strings.Contains(second, `-pass 2`) {
		t.Fatalf("second command missing pass flag: %s", second)
	}
	for _, cmd := range []string{first, second} {
		if !strings.Contains(cmd, `-c:v libaom-av1`) || !strings.Contains(cmd, `-crf 40`) {
			t.Fatalf("command missing inherited template flags: %s", cmd)
		}
	}
}

func TestParserFilterConcat(t *testing.T) {
	p := NewParser(argcatalog.Remote)
	if err := p.ParseCommand(`ffmpeg -i in.mp4 -vf scale=1920:1080 -vf vidstabdetect out.mkv`, true); err != nil {
		t.Fatalf("parse: %v", err)
	}
	rendered := p.Cmds[0].GetCommand(true)
	if strings.Count(rendered, "-vf ") != 1 {
		t.Fatalf("expected a single -vf flag, got: %s", rendered)
	}
	if !strings.Contains(rendered, `scale=1920:1080,vidstabdetect`) {
		t.Fatalf("expected concatenated filter value, got: %s", rendered)
	}
}

func TestParserForbiddenArgBeforeExternalProcess(t *testing.T) {
	p := NewParser(argcatalog.Remote)
	err := p.ParseCommand(`ffmpeg -i in.mp4 -g 250 out.mkv`, false)
	if err == nil {
		t.Fatalf("expected forbidden-arg error for -g")
	}
}

func TestParserDiscardDropsUnconditionally(t *testing.T) {
	p := NewParser(argcatalog.Remote)
	if err := p.ParseCommand(`ffmpeg -y -i in.mp4 -loglevel quiet out.mkv`, false); err != nil {
		t.Fatalf("parse: %v", err)
	}
	rendered := p.Cmds[0].GetCommand(true)
	if strings.Contains(rendered, "-y") || strings.Contains(rendered, "-loglevel") {
		t.Fatalf("discarded flags present in rendered command: %s", rendered)
	}
}

func TestParserUnclassifiedDefaultsToRemote(t *testing.T) {
	p := NewParser(argcatalog.Remote)
	if err := p.ParseCommand(`ffmpeg -i in.mp4 -preset slow out.mkv`, false); err != nil {
		t.Fatalf("parse: %v", err)
	}
	rendered := p.Cmds[0].GetCommand(true)
	if !strings.Contains(rendered, "-preset slow") {
		t.Fatalf("expected unclassified flag to pass through in REMOTE scope: %s", rendered)
	}
}
