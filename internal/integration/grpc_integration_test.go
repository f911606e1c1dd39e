package integration

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oshokin/vlarm/internal/config"
	domain "github.com/oshokin/vlarm/internal/domain/alarm"
	"github.com/oshokin/vlarm/internal/service/client"
	"github.com/oshokin/vlarm/internal/service/common"
	"github.com/oshokin/vlarm/internal/service/server"
	"github.com/oshokin/vlarm/internal/service/voice"
)

// freeAddress reserves a loopback port and releases it for the server to take.
func freeAddress(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	require.NoError(t, l.Close())

	return addr
}

// writeConfig saves settings that keep speech local and silent.
func writeConfig(t *testing.T, addr string) string {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), "settings.yaml")

	require.NoError(t, config.Save(cfgPath, &config.Config{
		ServerAddress: addr,
		Timeout:       5 * time.Second,
		Speech:        config.SpeechConfig{FallbackCommand: "true"},
	}))

	return cfgPath
}

// startGRPC runs the real server until the returned stop function is called.
func startGRPC(t *testing.T, cfgPath, addr, alarmsPath string) (stop func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- server.Run(ctx, &server.Options{
			ConfigPath:    cfgPath,
			ListenAddress: addr,
			AlarmsFile:    alarmsPath,
		})
	}()

	require.Eventually(t, func() bool {
		conn, err := net.DialTimeout("tcp", addr, 50*time.Millisecond)
		if err != nil {
			return false
		}

		_ = conn.Close()

		return true
	}, 3*time.Second, 20*time.Millisecond)

	return func() {
		cancel()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(3 * time.Second):
			t.Fatal("server did not stop")
		}
	}
}

// dial connects a client that is closed with the test.
func dial(t *testing.T, addr string) *common.Client {
	t.Helper()

	c, err := common.Dial(context.Background(), addr, common.WithCallTimeout(3*time.Second))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = c.Close()
	})

	return c
}

// TestGRPC_Roundtrip drives the real server through every RPC and restarts it to check persistence.
func TestGRPC_Roundtrip(t *testing.T) {
	t.Parallel()

	var (
		addr       = freeAddress(t)
		cfgPath    = writeConfig(t, addr)
		alarmsPath = filepath.Join(t.TempDir(), "alarms.json")
		ctx        = context.Background()
	)

	stop := startGRPC(t, cfgPath, addr, alarmsPath)

	c := dial(t, addr)

	unparsed, err := c.Interpret(ctx, "what a nice day")
	require.NoError(t, err)
	require.Equal(t, voice.RetryReply, unparsed.Reply)
	require.Nil(t, unparsed.Alarm)

	before := time.Now()

	scheduled, err := c.Interpret(ctx, "Remind me in 20 minutes to finish my homework.")
	require.NoError(t, err)
	require.Equal(t, "relative", scheduled.Rule)
	require.NotNil(t, scheduled.Alarm)
	require.Equal(t, "Finish My Homework", scheduled.Alarm.Alarm.Message)
	require.True(t, scheduled.Alarm.Alarm.IsEnabled)
	require.WithinDuration(t, before.Add(20*time.Minute), scheduled.Alarm.Alarm.TriggerTime, 5*time.Second)
	require.Contains(t, scheduled.Reply, "Got it! I'll remind you to Finish My Homework at ")

	id := scheduled.Alarm.Alarm.ID

	_, err = c.Interpret(ctx, "wake me up at 6 am")
	require.NoError(t, err)

	list, err := c.ListAlarms(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.False(t, list[1].Alarm.TriggerTime.Before(list[0].Alarm.TriggerTime), "list is ordered by trigger time")

	message := "Hand in homework"
	updated, err := c.UpdateAlarm(ctx, id, domain.Patch{Message: &message})
	require.NoError(t, err)
	require.Equal(t, message, updated.Alarm.Message)

	snoozed, err := c.SnoozeAlarm(ctx, id)
	require.NoError(t, err)
	require.True(t, snoozed.Alarm.SnoozeActive)

	dismissed, err := c.DismissAlarm(ctx, id)
	require.NoError(t, err)
	require.False(t, dismissed.Alarm.SnoozeActive)

	_, err = c.GetAlarm(ctx, "missing")
	require.Equal(t, codes.NotFound, status.Code(err))

	stop()

	_, err = os.Stat(alarmsPath)
	require.NoError(t, err)

	require.NoError(t, c.Close())

	stop = startGRPC(t, cfgPath, addr, alarmsPath)
	defer stop()

	c = dial(t, addr)

	restored, err := c.GetAlarm(ctx, id)
	require.NoError(t, err)
	require.Equal(t, message, restored.Alarm.Message)

	require.NoError(t, c.DeleteAlarm(ctx, id))

	list, err = c.ListAlarms(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

// TestCLI_Commands runs the CLI operations against the real server.
func TestCLI_Commands(t *testing.T) {
	t.Parallel()

	var (
		addr    = freeAddress(t)
		cfgPath = writeConfig(t, addr)
		ctx     = context.Background()
		opts    = &client.Options{ConfigPath: cfgPath}
		out     bytes.Buffer
	)

	stop := startGRPC(t, cfgPath, addr, filepath.Join(t.TempDir(), "alarms.json"))
	defer stop()

	require.NoError(t, client.Say(ctx, opts, "remind me at 11 pm to water the plants", &out))
	require.Contains(t, out.String(), "Water The Plants")
	require.Contains(t, out.String(), "rule: clock")

	out.Reset()
	require.NoError(t, client.List(ctx, opts, &out))
	require.Contains(t, out.String(), "Water The Plants")

	require.Error(t, client.Delete(ctx, opts, "missing", &out))
}
