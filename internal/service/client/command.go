package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/oshokin/vlarm/internal/config"
	domain "github.com/oshokin/vlarm/internal/domain/alarm"
	"github.com/oshokin/vlarm/internal/interpreter"
	"github.com/oshokin/vlarm/internal/logger"
	pb "github.com/oshokin/vlarm/internal/pb/v1"
	"github.com/oshokin/vlarm/internal/service/common"
	"github.com/oshokin/vlarm/internal/timecalc"
)

// Options configures how the CLI reaches the server.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string

	// ServerAddress overrides server address from config when specified.
	ServerAddress string
}

// EditOptions lists the fields an edit changes. Nil and empty values are left alone.
type EditOptions struct {
	// Time is RFC 3339 or a clock time such as 07:30 or 7:30 PM.
	Time    string
	Message *string
	Repeat  *bool
	Enabled *bool
}

const listTimeLayout = "Mon 15:04"

var (
	// errNothingToEdit is returned when EditOptions changes nothing.
	errNothingToEdit = errors.New("nothing to edit")
	// errBadTime is returned for a time ParseClockTime does not understand.
	errBadTime = errors.New("unrecognised time")
)

//nolint:gochecknoglobals // Read-only formatting helpers.
var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// clockLayouts are tried in order by ParseClockTime.
//
//nolint:gochecknoglobals // Read-only.
var clockLayouts = []string{"15:04", "3:04 PM", "3:04PM", "3 PM", "3PM"}

// Say sends an utterance to the server, which schedules the alarm and speaks the reply.
func Say(ctx context.Context, opts *Options, utterance string, w io.Writer) error {
	return withClient(ctx, opts, "vlarm-say", func(ctx context.Context, c *common.Client) error {
		result, err := c.Interpret(ctx, utterance)
		if err != nil {
			return err
		}

		fmt.Fprintln(w, bold(result.Reply))

		if result.Alarm != nil {
			fmt.Fprintf(w, "%s (rule: %s)\n", formatEntry(result.Alarm), result.Rule)
		}

		return nil
	})
}

// List prints the alarms grouped as Active, Upcoming and Past against the local
// clock, followed by disabled ones.
func List(ctx context.Context, opts *Options, w io.Writer) error {
	return withClient(ctx, opts, "vlarm-list", func(ctx context.Context, c *common.Client) error {
		entries, err := c.ListAlarms(ctx)
		if err != nil {
			return err
		}

		writeBoard(w, entries, time.Now())

		return nil
	})
}

// Edit changes the fields given in edit.
func Edit(ctx context.Context, opts *Options, id string, edit EditOptions, w io.Writer) error {
	patch, err := edit.Patch(time.Now())
	if err != nil {
		return err
	}

	return withClient(ctx, opts, "vlarm-edit", func(ctx context.Context, c *common.Client) error {
		entry, updateErr := c.UpdateAlarm(ctx, id, patch)
		if updateErr != nil {
			return updateErr
		}

		fmt.Fprintln(w, formatEntry(entry))

		return nil
	})
}

// Delete removes an alarm.
func Delete(ctx context.Context, opts *Options, id string, w io.Writer) error {
	return withClient(ctx, opts, "vlarm-delete", func(ctx context.Context, c *common.Client) error {
		if err := c.DeleteAlarm(ctx, id); err != nil {
			return err
		}

		fmt.Fprintf(w, "Deleted %s\n", id)

		return nil
	})
}

// Snooze defers an alarm by the server's snooze interval.
func Snooze(ctx context.Context, opts *Options, id string, w io.Writer) error {
	return withClient(ctx, opts, "vlarm-snooze", func(ctx context.Context, c *common.Client) error {
		entry, err := c.SnoozeAlarm(ctx, id)
		if err != nil {
			return err
		}

		fmt.Fprintln(w, formatEntry(entry))

		return nil
	})
}

// Dismiss clears the snooze state of an alarm.
func Dismiss(ctx context.Context, opts *Options, id string, w io.Writer) error {
	return withClient(ctx, opts, "vlarm-dismiss", func(ctx context.Context, c *common.Client) error {
		entry, err := c.DismissAlarm(ctx, id)
		if err != nil {
			return err
		}

		fmt.Fprintln(w, formatEntry(entry))

		return nil
	})
}

// Parse interprets utterance locally and prints the result without scheduling anything.
func Parse(w io.Writer, utterance string, now time.Time) {
	switch r := interpreter.New().Interpret(utterance, now).(type) {
	case interpreter.TimedReminder:
		fmt.Fprintf(w, "%s %s at %s (rule: %s)\n",
			green("scheduled"), r.Message, r.TriggerTime.Format(time.RFC3339), r.Rule())
	case interpreter.Unparsed:
		fmt.Fprintf(w, "%s nothing to schedule\n", yellow("unparsed"))
	}
}

// Patch converts the options into a domain patch, resolving clock times against now.
func (e EditOptions) Patch(now time.Time) (domain.Patch, error) {
	patch := domain.Patch{
		Message:     e.Message,
		RepeatDaily: e.Repeat,
		IsEnabled:   e.Enabled,
	}

	if e.Time != "" {
		at, err := ParseClockTime(e.Time, now)
		if err != nil {
			return patch, err
		}

		patch.TriggerTime = &at
	}

	if patch.IsEmpty() {
		return patch, errNothingToEdit
	}

	return patch, nil
}

// ParseClockTime accepts an RFC 3339 instant or a clock time, which is placed
// at its next occurrence after now.
func ParseClockTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)

	if t, err := pb.ParseTime(s); err == nil {
		return t, nil
	}

	upper := strings.ToUpper(s)

	for _, layout := range clockLayouts {
		parsed, err := time.Parse(layout, upper)
		if err != nil {
			continue
		}

		at, ok := timecalc.NextOccurrence(now, parsed.Hour(), parsed.Minute())
		if ok {
			return at, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", errBadTime, s)
}

func withClient(
	ctx context.Context,
	opts *Options,
	name string,
	fn func(ctx context.Context, c *common.Client) error,
) error {
	ctx = logger.WithName(ctx, name)

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	c, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Timeout))
	if err != nil {
		return err
	}

	defer func() {
		_ = c.Close()
	}()

	logger.DebugKV(ctx, "Calling vlarm server", "server_address", serverAddress)

	return fn(ctx, c)
}

// writeBoard prints enabled alarms categorized against now, then the disabled ones.
func writeBoard(w io.Writer, entries []common.Entry, now time.Time) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No alarms")

		return
	}

	var (
		alarms   = make([]domain.Alarm, 0, len(entries))
		disabled []domain.Alarm
	)

	for i := range entries {
		alarms = append(alarms, entries[i].Alarm)

		if !entries[i].Alarm.IsEnabled {
			disabled = append(disabled, entries[i].Alarm)
		}
	}

	board := domain.Categorize(alarms, now)

	groups := []struct {
		title  string
		status domain.Status
		alarms []domain.Alarm
	}{
		{"Active", domain.StatusActive, board.Active},
		{"Upcoming", domain.StatusUpcoming, board.Upcoming},
		{"Past", domain.StatusPast, board.Past},
		{"Disabled", "", disabled},
	}

	for _, g := range groups {
		if len(g.alarms) == 0 {
			continue
		}

		fmt.Fprintln(w, bold(g.title))

		for i := range g.alarms {
			fmt.Fprintln(w, "  "+formatEntry(&common.Entry{Alarm: g.alarms[i], Status: g.status}))
		}
	}
}

func formatEntry(e *common.Entry) string {
	var flags []string

	if e.Alarm.RepeatDaily {
		flags = append(flags, "daily")
	}

	if e.Alarm.SnoozeActive {
		flags = append(flags, "snoozed")
	}

	if !e.Alarm.IsEnabled {
		flags = append(flags, "off")
	}

	message := e.Alarm.Message
	if message == "" {
		message = gray("(no message)")
	}

	line := fmt.Sprintf("%s  %s  %s",
		gray(e.Alarm.ID),
		colorStatus(e.Alarm.TriggerTime.Format(listTimeLayout), e.Status),
		message)
	if len(flags) > 0 {
		line += " [" + strings.Join(flags, ", ") + "]"
	}

	return line
}

func colorStatus(s string, st domain.Status) string {
	switch st {
	case domain.StatusActive:
		return green(s)
	case domain.StatusUpcoming:
		return yellow(s)
	case domain.StatusPast:
		return gray(s)
	default:
		return s
	}
}
