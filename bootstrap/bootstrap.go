// Package bootstrap builds a System from configuration and hands it to
// program setup code.
//
// A typical main:
//
//	func main() {
//	    bootstrap.Main(func(ctx context.Context, sys *system.System) error {
//	        sys.AddNode(&Producer{}).AddNode(&Consumer{})
//	        return sys.Start(ctx)
//	    })
//	}
//
// Main loads nodekit.toml (see package config), wires logging, tracing,
// lifecycle events and OS signal handling, runs setup, and exits with 0 on
// success or 1 on any error.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/vinayprograms/nodekit/config"
	nkerrors "github.com/vinayprograms/nodekit/errors"
	"github.com/vinayprograms/nodekit/logging"
	"github.com/vinayprograms/nodekit/shutdown"
	"github.com/vinayprograms/nodekit/system"
	"github.com/vinayprograms/nodekit/telemetry"
)

// SetupFunc registers nodes on sys and usually ends by calling sys.Start.
type SetupFunc func(ctx context.Context, sys *system.System) error

// flushTimeout bounds the span flush on exit.
const flushTimeout = 5 * time.Second

// Run builds one System from cfg and passes it to setup.
// A nil cfg uses config.Default.
func Run(ctx context.Context, cfg *config.Config, setup SetupFunc) error {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nkerrors.WrapWithCode(err, nkerrors.ErrCodeInvalidInput, "invalid config")
	}

	logger := logging.New()
	logger.SetLevel(cfg.Level())

	opts := []system.Option{
		system.WithName(cfg.Name),
		system.WithLogger(logger),
	}

	if cfg.Telemetry.Enabled {
		provider, err := telemetry.InitProvider(ctx, telemetry.ProviderConfig{
			ServiceName: cfg.ServiceName(),
			SystemName:  cfg.Name,
			Attributes:  cfg.Telemetry.Attributes,
			Endpoint:    cfg.Telemetry.Endpoint,
			Protocol:    cfg.Telemetry.Protocol,
			Insecure:    cfg.Telemetry.Insecure,
		})
		if err != nil {
			return nkerrors.Wrap(err, "init tracing")
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
			defer cancel()
			if err := provider.Shutdown(flushCtx); err != nil {
				logger.Warn("tracing_shutdown_failed", map[string]interface{}{"error": err.Error()})
			}
		}()
		opts = append(opts, system.WithTracer(provider.Tracer()))
	}

	exporter, err := telemetry.NewExporter(cfg.Telemetry.EventsProtocol, cfg.Telemetry.EventsEndpoint)
	if err != nil {
		return nkerrors.Wrap(err, "init lifecycle events")
	}
	defer func() {
		if err := exporter.Close(); err != nil {
			logger.Warn("event_exporter_close_failed", map[string]interface{}{"error": err.Error()})
		}
	}()
	opts = append(opts, system.WithExporter(exporter))

	sys := system.New(opts...)

	if cfg.Signals.Enabled {
		stop := shutdown.HandleSignals(ctx, sys.Context(), logger.WithComponent("signals"))
		defer stop()
	}

	return setup(ctx, sys)
}

// Main loads configuration, calls Run and exits the process.
func Main(setup SetupFunc) {
	cfg, path, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if path != "" {
		logging.New().WithComponent("bootstrap").Debug("config_loaded", map[string]interface{}{"path": path})
	}

	err = Run(context.Background(), cfg, setup)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", cfg.Name, err)
	}
	os.Exit(ExitCode(err))
}

// ExitCode maps the result of Run to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
