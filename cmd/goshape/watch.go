package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/reoring/goshape"
	"github.com/reoring/goshape/internal/metrics"
)

const watchDebounce = 100 * time.Millisecond

func newWatchCmd(g *globals) *cobra.Command {
	var (
		schema      string
		metricsAddr string
	)
	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Revalidate a document every time it changes",
		Long: `Validate FILE once, then again after every write until interrupted.
Outcomes are logged; the process keeps running when the document is invalid.
With --metrics-addr, validation counters are served at /metrics.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := lookupSchema(schema)
			if err != nil {
				return err
			}
			path := args[0]
			collector := metrics.NewCollector(nil)
			if metricsAddr != "" {
				_, stop, err := serveMetrics(metricsAddr, collector, g.log)
				if err != nil {
					return err
				}
				defer stop()
			}
			revalidate := func() {
				start := time.Now()
				_, err := check(g, s, path, g.sourceOptions())
				collector.Observe(schema, time.Since(start), err)
				if err != nil {
					attrs := []any{"file", path, "error", err}
					if ve, ok := goshape.AsValidationError(err); ok {
						attrs = append(attrs, "path", ve.Path(), "code", ve.Root().Code)
					}
					g.log.Warn("document invalid", attrs...)
					return
				}
				g.log.Info("document valid", "file", path, "schema", schema)
			}
			revalidate()
			return watchFile(cmd.Context(), path, watchDebounce, g.log, revalidate)
		},
	}
	cmd.Flags().StringVarP(&schema, "schema", "s", "", "schema name")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

// serveMetrics starts an HTTP server exposing collector at /metrics. It
// returns the bound address and a function that shuts the server down.
func serveMetrics(addr string, collector *metrics.Collector, log *slog.Logger) (string, func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("failed to listen on %q: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", "error", err)
		}
	}()
	bound := ln.Addr().String()
	log.Info("serving metrics", "addr", bound)
	return bound, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

// watchFile calls onChange after path is written, created or renamed into
// place, coalescing events that arrive within debounce. The parent directory
// is watched so that editors replacing the file are noticed. It blocks until
// ctx is done.
func watchFile(ctx context.Context, path string, debounce time.Duration, log *slog.Logger, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer w.Close()

	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %q: %w", path, err)
	}
	log.Info("watching file", "file", path, "debounce_ms", debounce.Milliseconds())

	fire := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info("watch stopped")
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			log.Debug("file event", "file", ev.Name, "op", ev.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			onChange()
		case err, ok := <-w.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			log.Error("watcher error", "error", err)
		}
	}
}
