package speech

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/oshokin/vlarm/internal/logger"
)

// CommandSynthesizer runs a local program that writes audio for its last
// argument to stdout, for example "espeak-ng --stdout".
type CommandSynthesizer struct {
	command string
	args    []string
}

// NewCommandSynthesizer splits commandLine on whitespace.
func NewCommandSynthesizer(commandLine string) (*CommandSynthesizer, error) {
	command, args, err := splitCommand(commandLine)
	if err != nil {
		return nil, err
	}

	return &CommandSynthesizer{
		command: command,
		args:    args,
	}, nil
}

// Name implements Synthesizer.
func (c *CommandSynthesizer) Name() string {
	return filepath.Base(c.command)
}

// Synthesize implements Synthesizer.
func (c *CommandSynthesizer) Synthesize(ctx context.Context, text string) (*Audio, error) {
	args := append(append([]string(nil), c.args...), text)

	cmd := exec.CommandContext(ctx, c.command, args...)

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("run %s: %w%s", c.Name(), err, stderrSuffix(&stderr))
	}

	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%s produced no audio", c.Name())
	}

	return &Audio{
		Text:        text,
		Data:        stdout.Bytes(),
		ContentType: ContentTypeWAV,
		Synthesizer: c.Name(),
	}, nil
}

// CommandPlayer pipes audio into the stdin of a local program, for example
// "ffplay -nodisp -autoexit -loglevel quiet -".
type CommandPlayer struct {
	command string
	args    []string
}

// NewCommandPlayer splits commandLine on whitespace.
func NewCommandPlayer(commandLine string) (*CommandPlayer, error) {
	command, args, err := splitCommand(commandLine)
	if err != nil {
		return nil, err
	}

	return &CommandPlayer{
		command: command,
		args:    args,
	}, nil
}

// Play implements Player. Cancelling ctx kills the program.
func (p *CommandPlayer) Play(ctx context.Context, audio *Audio) error {
	cmd := exec.CommandContext(ctx, p.command, p.args...)

	var stderr bytes.Buffer

	cmd.Stdin = bytes.NewReader(audio.Data)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		return fmt.Errorf("play with %s: %w%s", filepath.Base(p.command), err, stderrSuffix(&stderr))
	}

	return nil
}

// LogPlayer only logs what would be said. It is used when no player is configured.
type LogPlayer struct{}

// Play implements Player.
func (LogPlayer) Play(ctx context.Context, audio *Audio) error {
	logger.InfoKV(ctx, "Speaking",
		"text", audio.Text,
		"synthesizer", audio.Synthesizer,
		"content_type", audio.ContentType,
		"bytes", len(audio.Data))

	return nil
}

func splitCommand(commandLine string) (string, []string, error) {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("%w: empty command", ErrNotConfigured)
	}

	return fields[0], fields[1:], nil
}

func stderrSuffix(stderr *bytes.Buffer) string {
	msg := strings.TrimSpace(stderr.String())
	if msg == "" {
		return ""
	}

	return ": " + msg
}
