// Command gpubridged serves a gpubridge registry over a websocket.
//
// Each text frame carries one JSON request; the reply is written back on
// the same connection. Animation completion events are pushed to every
// connected client.
//
//	gpubridged -config gpubridged.yaml
//	gpubridged -listen :8765 -backend software -dialect metal
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gogpu/gpubridge"
	_ "github.com/gogpu/gpubridge/backend/native" // GPU backend, excluded with -tags nogpu
	_ "github.com/gogpu/gpubridge/backend/rust"   // wgpu-native backend, included with -tags rust
	"github.com/gogpu/gpubridge/bridge"
	"github.com/gogpu/gpubridge/config"
	"github.com/gogpu/gpubridge/translate"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "gpubridged:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "", "YAML or TOML config file")
		listen     = flag.String("listen", "", "listen address (overrides config)")
		backendArg = flag.String("backend", "", "backend name (overrides config)")
		dialectArg = flag.String("dialect", "", "software backend dialect (overrides config)")
		logLevel   = flag.String("log-level", "", "debug, info, warn or error (overrides config)")
		tick       = flag.Duration("tick", 16*time.Millisecond, "animation tick interval, 0 disables")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return err
		}
	}
	override(&cfg.Listen, *listen)
	override(&cfg.Backend, *backendArg)
	override(&cfg.Dialect, *dialectArg)
	override(&cfg.LogLevel, *logLevel)
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := cfg.Level()
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	gpubridge.SetLogger(log)

	hub := newHub(log)
	opts := []gpubridge.Option{
		gpubridge.WithTextCacheSize(cfg.TextCacheSize),
		gpubridge.WithEventHandler(hub.broadcast),
	}
	if cfg.Backend != "" {
		opts = append(opts, gpubridge.WithBackendName(cfg.Backend))
	}
	if cfg.Dialect != "" {
		d, _ := translate.Lookup(cfg.Dialect)
		opts = append(opts, gpubridge.WithDialect(d))
	}
	reg, err := gpubridge.New(opts...)
	if err != nil {
		return err
	}
	defer reg.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *tick > 0 {
		go tickLoop(ctx, reg, *tick)
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Path, newServer(&cfg, bridge.NewDispatcher(reg, log), hub, log))
	srv := &http.Server{Addr: cfg.Listen, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	errc := make(chan error, 1)
	go func() {
		log.Info("gpubridged: listening", "addr", cfg.Listen, "path", cfg.Path, "backend", reg.DeviceInfo().Backend)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info("gpubridged: shutting down")
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	hub.closeAll()
	return srv.Shutdown(shutdownCtx)
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func tickLoop(ctx context.Context, reg *gpubridge.Registry, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			reg.Tick()
		}
	}
}
