// Command cadenza analyses WAV recordings for syllable nuclei and prosodic
// prominence, emitting one event per detected nucleus.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/mlindstr/cadenza/internal/config"
	"github.com/mlindstr/cadenza/internal/observe"
	"github.com/mlindstr/cadenza/pkg/audio"
	"github.com/mlindstr/cadenza/pkg/syllable"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "", "path to the YAML configuration file (optional)")
	format := flag.String("format", "", "output format: json or text (overrides config)")
	metricsAddr := flag.String("metrics-addr", "", "address for the Prometheus /metrics endpoint (overrides config)")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: cadenza [flags] file.wav [file.wav ...]")
		flag.PrintDefaults()
		return 2
	}

	// ── Load configuration ────────────────────────────────────────────────────
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cadenza: %v\n", err)
			return 1
		}
	} else {
		cfg = config.Default()
	}
	if *format != "" {
		cfg.Runtime.OutputFormat = config.OutputFormat(*format)
		if !cfg.Runtime.OutputFormat.IsValid() {
			fmt.Fprintf(os.Stderr, "cadenza: -format %q is invalid; valid values: json, text\n", *format)
			return 2
		}
	}
	if *metricsAddr != "" {
		cfg.Runtime.MetricsAddr = *metricsAddr
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Runtime.LogLevel.SlogLevel(),
	}))
	slog.SetDefault(logger)

	slog.Info("cadenza starting",
		"files", len(files),
		"format", cfg.Runtime.OutputFormat,
		"concurrency", cfg.Runtime.Concurrency,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "cadenza"})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	if cfg.Runtime.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: cfg.Runtime.MetricsAddr, Handler: mux}
		go func() {
			slog.Info("metrics endpoint listening", "addr", cfg.Runtime.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server error", "err", err)
			}
		}()
		defer srv.Close()
	}

	// ── Analysis ──────────────────────────────────────────────────────────────
	sink := newEventSink(os.Stdout, cfg.Runtime.OutputFormat)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Runtime.Concurrency)
	for _, file := range files {
		file := file
		g.Go(func() error {
			return analyzeFile(gctx, file, cfg, metrics, sink)
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Info("interrupted")
			return 1
		}
		slog.Error("analysis failed", "err", err)
		return 1
	}
	return 0
}

// analyzeFile streams one WAV file through a detector and writes every
// committed event to the sink.
func analyzeFile(ctx context.Context, path string, cfg *config.Config, metrics *observe.Metrics, sink *eventSink) error {
	start := time.Now()
	metrics.ActiveAnalyses.Add(ctx, 1)
	defer metrics.ActiveAnalyses.Add(ctx, -1)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	br, err := audio.NewBlockReader(f, cfg.Runtime.BlockSize)
	if err != nil {
		metrics.RecordDecodeError(ctx, path)
		return fmt.Errorf("read %q: %w", path, err)
	}

	detCfg := cfg.Detector.Apply(syllable.DefaultConfig(br.SampleRate()))
	det, err := syllable.New(detCfg)
	if err != nil {
		return fmt.Errorf("detector for %q: %w", path, err)
	}

	slog.Debug("analysing file",
		"file", path,
		"sample_rate", br.SampleRate(),
		"channels", br.Channels(),
	)

	var events, accented int64
	out := make([]syllable.Event, 64)
	emit := func(n int) error {
		for _, ev := range out[:n] {
			events++
			if ev.IsAccented {
				accented++
			}
			if err := sink.Write(path, ev); err != nil {
				return fmt.Errorf("write event: %w", err)
			}
		}
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		block, err := br.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			metrics.RecordDecodeError(ctx, path)
			return fmt.Errorf("read %q: %w", path, err)
		}
		if err := emit(det.Process(block, out)); err != nil {
			return err
		}
	}
	if err := emit(det.Flush(out)); err != nil {
		return err
	}

	metrics.RecordFileResult(ctx, path, int64(det.TotalSamples()), events, accented, int64(det.Dropped()))
	metrics.AnalysisDuration.Record(ctx, time.Since(start).Seconds())

	slog.Info("file analysed",
		"file", path,
		"events", events,
		"accented", accented,
		"samples", det.TotalSamples(),
		"took", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// eventSink serialises event output from concurrent analyses onto one writer.
type eventSink struct {
	mu     sync.Mutex
	w      io.Writer
	format config.OutputFormat
	enc    *json.Encoder
}

func newEventSink(w io.Writer, format config.OutputFormat) *eventSink {
	return &eventSink{w: w, format: format, enc: json.NewEncoder(w)}
}

// fileEvent is the JSON-lines record written for each detected nucleus.
type fileEvent struct {
	File string `json:"file"`
	syllable.Event
}

func (s *eventSink) Write(file string, ev syllable.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == config.FormatText {
		accent := " "
		if ev.IsAccented {
			accent = "*"
		}
		_, err := fmt.Fprintf(s.w, "%s%s t=%.3fs dur=%.3fs f0=%.1fHz prom=%.2f\n",
			accent, file, ev.TimeSeconds, ev.DurationS, ev.F0, ev.ProminenceScore)
		return err
	}
	return s.enc.Encode(fileEvent{File: file, Event: ev})
}
