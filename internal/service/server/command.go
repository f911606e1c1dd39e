package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	api "github.com/oshokin/vlarm/internal/api/grpc/alarm"
	"github.com/oshokin/vlarm/internal/config"
	"github.com/oshokin/vlarm/internal/logger"
	"github.com/oshokin/vlarm/internal/metrics"
	pb "github.com/oshokin/vlarm/internal/pb/v1"
	repository "github.com/oshokin/vlarm/internal/repository/alarms"
	"github.com/oshokin/vlarm/internal/service/alarms"
	"github.com/oshokin/vlarm/internal/service/ringer"
	"github.com/oshokin/vlarm/internal/service/voice"
	"github.com/oshokin/vlarm/internal/speech"
)

// Options controls the vlarm server process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// AlarmsFile overrides the path of the alarm list JSON.
	AlarmsFile string
}

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

const (
	// metricsPath serves the Prometheus exposition.
	metricsPath = "/metrics"
	// shutdownTimeout bounds the metrics server shutdown.
	shutdownTimeout = 5 * time.Second
	// readHeaderTimeout protects the metrics endpoint from slow clients.
	readHeaderTimeout = 5 * time.Second
)

// Run starts the gRPC server, the ringer and the optional metrics endpoint,
// and blocks until ctx is cancelled or one of them fails.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "vlarm-server")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if level, ok := logger.ParseLogLevel(settings.LogLevel); ok {
		logger.SetLevel(level)
	}

	alarmsFile := settings.AlarmsFile
	if opts.AlarmsFile != "" {
		alarmsFile = opts.AlarmsFile
	}

	listenAddress, err := resolveListenAddress(settings.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	collectorSet := metrics.MustNewMetrics(registry)

	manager, err := alarms.NewManager(ctx,
		repository.NewFileRepository(alarmsFile),
		alarms.WithMetrics(collectorSet))
	if err != nil {
		return fmt.Errorf("initialise alarms: %w", err)
	}

	speaker, err := speech.NewSpeakerFromConfig(settings.Speech, settings.Timeout, speech.WithMetrics(collectorSet))
	if err != nil {
		return fmt.Errorf("initialise speech: %w", err)
	}

	session := voice.NewSession(manager, speaker, voice.WithMetrics(collectorSet))
	bell := ringer.New(manager, speaker,
		ringer.WithMissedWindow(settings.Ringer.MissedWindow),
		ringer.WithMetrics(collectorSet))

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(loggingInterceptor(ctx)))
	pb.RegisterAlarmServiceServer(grpcServer,
		api.NewServer(manager, session, api.WithSnooze(settings.Ringer.Snooze)))

	metricsServer, metricsListener, err := newMetricsServer(ctx, settings.MetricsAddress, registry)
	if err != nil {
		_ = lis.Close()

		return err
	}

	logger.InfoKV(ctx, "Vlarm server listening",
		"listen_address", listenAddress,
		"alarms_file", alarmsFile,
		"metrics_address", settings.MetricsAddress,
		"alarms", len(manager.List(ctx)))

	g, groupCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		bell.Run(groupCtx, settings.Ringer.Tick)

		return nil
	})

	g.Go(func() error {
		if serveErr := grpcServer.Serve(lis); serveErr != nil && !errors.Is(serveErr, grpc.ErrServerStopped) {
			return fmt.Errorf("serve gRPC: %w", serveErr)
		}

		return nil
	})

	if metricsServer != nil {
		g.Go(func() error {
			if serveErr := metricsServer.Serve(metricsListener); serveErr != nil &&
				!errors.Is(serveErr, http.ErrServerClosed) {
				return fmt.Errorf("serve metrics: %w", serveErr)
			}

			return nil
		})
	}

	g.Go(func() error {
		<-groupCtx.Done()
		logger.Info(ctx, "Shutting down vlarm server")

		grpcServer.GracefulStop()

		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()

			if shutdownErr := metricsServer.Shutdown(shutdownCtx); shutdownErr != nil {
				logger.WarnKV(ctx, "Metrics server shutdown failed", "error", shutdownErr)
			}
		}

		speaker.Stop()

		return nil
	})

	err = g.Wait()

	logger.Info(ctx, "Vlarm server stopped")

	return err
}

// newMetricsServer returns nil values when address is empty.
func newMetricsServer(
	ctx context.Context,
	address string,
	registry *prometheus.Registry,
) (*http.Server, net.Listener, error) {
	if address == "" {
		return nil, nil, nil
	}

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return nil, nil, fmt.Errorf("listen metrics on %s: %w", address, err)
	}

	mux := http.NewServeMux()
	mux.Handle(metricsPath, promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	return &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}, lis, nil
}

// loggingInterceptor gives every request the server logger tagged with its method.
func loggingInterceptor(base context.Context) grpc.UnaryServerInterceptor {
	serverLogger := logger.FromContext(base)

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx = logger.WithKV(logger.ToContext(ctx, serverLogger), "method", info.FullMethod)
		started := time.Now()

		resp, err := handler(ctx, req)
		if err != nil {
			logger.WarnKV(ctx, "Request failed",
				"code", status.Code(err).String(),
				"duration", time.Since(started))

			return nil, err
		}

		logger.DebugKV(ctx, "Request served", "duration", time.Since(started))

		return resp, nil
	}
}

// resolveListenAddress determines the listen address for the gRPC server.
// If override is provided, uses it directly. Otherwise extracts port from configAddr.
// Returns appropriate listen address (e.g., ":8080" for port-only binding).
func resolveListenAddress(configAddr, override string) (string, error) {
	// Use override address if provided (e.g., ":9090", "0.0.0.0:8080").
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	_, port, err := net.SplitHostPort(configAddr)
	if err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	// Bind on all interfaces.
	return ":" + port, nil
}
