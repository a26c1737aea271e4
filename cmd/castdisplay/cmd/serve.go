// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/gogpu/remotedisplay"
	"github.com/gogpu/remotedisplay/display"
	"github.com/gogpu/remotedisplay/internal/api"
	"github.com/gogpu/remotedisplay/internal/castsink"
	"github.com/gogpu/remotedisplay/internal/journal"
	"github.com/gogpu/remotedisplay/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the display service",
	Long: `Start the display service.

The service provides:
- a WebSocket endpoint (/sink) where receivers announce themselves as displays
- optional discovery of secondary X11 monitors (--x11)
- an HTTP control API (/status, /color, /detach, /sessions)`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "127.0.0.1:7878", "address to listen on")
	serveCmd.Flags().Bool("x11", false, "attach secondary X11 monitors")
	serveCmd.Flags().Bool("no-audio", false, "disable session audio")
	serveCmd.Flags().String("backend", "auto", "surface provider (auto, wgpu, software)")

	mustBindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	mustBindPFlag("display.x11", serveCmd.Flags().Lookup("x11"))
	mustBindPFlag("surface.backend", serveCmd.Flags().Lookup("backend"))
}

// mustBindPFlag binds a viper key to a cobra flag and panics if binding fails.
func mustBindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("failed to bind flag %q to key %q: %v", flag.Name, key, err))
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noAudio, _ := cmd.Flags().GetBool("no-audio"); noAudio {
		cfg.Audio.Enabled = false
	}
	log := remotedisplay.Logger()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	q, err := query(cfg.Surface)
	if err != nil {
		return err
	}
	factory, err := rendererFactory(cfg.Renderer)
	if err != nil {
		return err
	}
	p, closePlayer := player(cfg.Audio)
	defer func() {
		if err := closePlayer(); err != nil {
			log.Warn("closing audio", "err", err)
		}
	}()

	opts := []session.Option{
		session.WithQuery(q),
		session.WithRenderer(factory),
		session.WithPlayer(p),
		session.WithProfile(cfg.Profile.Request()),
	}

	var apiOpts []api.Option
	if cfg.Journal.Enabled {
		store, err := journal.Open(cfg.Journal.DSN)
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, session.WithRecorder(store))
		apiOpts = append(apiOpts, api.WithHistory(store))
	}

	m := session.New(opts...)
	defer m.Close()

	sink := castsink.New(
		castsink.WithQuality(cfg.Server.JPEGQuality),
	)
	defer sink.Close()
	apiOpts = append(apiOpts, api.WithSink(sink))

	var wg sync.WaitGroup
	pump := func(name string, events <-chan display.Event) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.Run(ctx, events); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("display events stopped", "source", name, "err", err)
			}
		}()
	}
	pump("castsink", sink.Events())

	if cfg.Display.X11 {
		w, err := display.NewX11Watcher(cfg.Display.X11Display, cfg.Display.PollInterval, cfg.Display.Primary)
		if err != nil {
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = w.Run(ctx)
		}()
		pump("x11", w.Events())
	}

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: api.New(m, apiOpts...).Handler(),
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", slog.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err = <-errCh:
		log.Error("server failed", "err", err)
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	_ = sink.Close()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		log.Warn("server shutdown", "err", serr)
	}
	wg.Wait()
	return err
}
