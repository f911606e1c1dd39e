package server

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oshokin/vlarm/internal/config"
)

// TestResolveListenAddress covers overrides, port extraction and bad input.
func TestResolveListenAddress(t *testing.T) {
	t.Parallel()

	addr, err := resolveListenAddress("alarm.local:7070", "")
	require.NoError(t, err)
	require.Equal(t, ":7070", addr)

	addr, err = resolveListenAddress("alarm.local:7070", "127.0.0.1:9999")
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9999", addr)

	_, err = resolveListenAddress("", "")
	require.ErrorIs(t, err, ErrNoServerAddress)

	_, err = resolveListenAddress("no-port", "")
	require.Error(t, err)
}

// TestRun_MissingConfig verifies Run fails fast without settings.
func TestRun_MissingConfig(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), &Options{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)
}

// TestRun_StopsOnCancel starts the server on a free port and checks it exits with its context.
func TestRun_StopsOnCancel(t *testing.T) {
	t.Parallel()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	require.NoError(t, l.Close())

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "settings.yaml")

	require.NoError(t, config.Save(cfgPath, &config.Config{
		ServerAddress: addr,
		AlarmsFile:    filepath.Join(dir, "alarms.json"),
		Speech:        config.SpeechConfig{FallbackCommand: "true"},
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- Run(ctx, &Options{ConfigPath: cfgPath, ListenAddress: addr})
	}()

	require.Eventually(t, func() bool {
		conn, dialErr := net.DialTimeout("tcp", addr, 50*time.Millisecond)
		if dialErr != nil {
			return false
		}

		_ = conn.Close()

		return true
	}, 3*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err = <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "server did not stop")
	}
}

// TestLoggingInterceptor checks that handler results pass through unchanged.
func TestLoggingInterceptor(t *testing.T) {
	t.Parallel()

	interceptor := loggingInterceptor(context.Background())
	info := &grpc.UnaryServerInfo{FullMethod: "/vlarm.v1.AlarmService/GetAlarm"}

	resp, err := interceptor(context.Background(), "req", info, func(context.Context, any) (any, error) {
		return "resp", nil
	})
	require.NoError(t, err)
	require.Equal(t, "resp", resp)

	_, err = interceptor(context.Background(), "req", info, func(context.Context, any) (any, error) {
		return nil, status.Error(codes.NotFound, "missing")
	})
	require.Equal(t, codes.NotFound, status.Code(err))
}
