package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/soundtext/soundtext/pkg/config"
	"github.com/soundtext/soundtext/runtime/logger"
	metrics "github.com/soundtext/soundtext/runtime/metrics/prometheus"
	"github.com/soundtext/soundtext/runtime/telemetry"
	"github.com/soundtext/soundtext/runtime/tts"
)

func newSpeakCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "speak [text]",
		Short: "Render text to audio and print one location per chunk",
		Long: `Render text through the sounds service. Text is taken from the arguments,
or from stdin when none are given. One audio URL is printed per chunk, in order.`,
		RunE: runSpeak,
	}
}

func runSpeak(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if err := configureLogging(cmd, cfg); err != nil {
		return err
	}

	text, err := readText(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, cfg.Spec.Telemetry.OTLPEndpoint, cfg.Spec.Telemetry.ServiceName)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("failed to flush traces", "error", err)
		}
	}()

	stopMetrics, err := serveMetrics(ctx, cfg.Spec.Telemetry.MetricsAddr)
	if err != nil {
		return err
	}
	defer stopMetrics()

	locations, err := newService(cfg).CreateAudio(ctx, text)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, loc := range locations {
		fmt.Fprintln(out, loc)
	}
	return nil
}

func newService(cfg *config.SoundtextConfig) tts.Service {
	client := tts.NewSounds(cfg.SoundsConfig())
	return tts.NewOrchestrator(client,
		tts.WithMaxLength(cfg.Spec.Chunking.MaxLength),
		tts.WithMaxConcurrency(cfg.Spec.Orchestrator.MaxConcurrency),
	)
}

// serveMetrics starts the Prometheus exporter when addr is set. The returned
// function stops it and waits for shutdown.
func serveMetrics(ctx context.Context, addr string) (func(), error) {
	if addr == "" {
		return func() {}, nil
	}

	exporter := metrics.NewExporter(addr)
	if err := exporter.Listen(); err != nil {
		return nil, fmt.Errorf("failed to listen for metrics on %s: %w", addr, err)
	}
	logger.Info("serving metrics", "addr", exporter.Addr())

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := exporter.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("metrics exporter stopped", "error", err)
		}
	}()

	return func() {
		cancel()
		<-done
	}, nil
}
