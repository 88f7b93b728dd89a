// chakraflow: biofeedback session engine.
// Takes hand/face/body landmark frames, runs the per-tick pipeline, streams
// state to the dashboard and writes the session report on exit.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/teslashibe/go-chakraflow/internal/config"
	"github.com/teslashibe/go-chakraflow/internal/log"
	"github.com/teslashibe/go-chakraflow/pkg/debug"
	"github.com/teslashibe/go-chakraflow/pkg/engine"
	"github.com/teslashibe/go-chakraflow/pkg/ingest"
	"github.com/teslashibe/go-chakraflow/pkg/landmark"
	"github.com/teslashibe/go-chakraflow/pkg/landmark/source"
	"github.com/teslashibe/go-chakraflow/pkg/report"
	"github.com/teslashibe/go-chakraflow/pkg/report/render"
	"github.com/teslashibe/go-chakraflow/pkg/session"
	"github.com/teslashibe/go-chakraflow/pkg/web"
)

var version = "0.1.0"

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "chakraflow:", err)
		os.Exit(1)
	}

	log.Init(cfg.LogLevel)
	logger := log.L()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("chakraflow stopped", "error", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and environment, then applies flags.
func loadConfig() (config.Config, error) {
	configPath := flag.String("config", os.Getenv("CHAKRAFLOW_CONFIG"), "YAML config file")
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	traceTicks := flag.Bool("trace-ticks", false, "Log every pipeline tick (very verbose)")
	traceLandmarks := flag.Bool("trace-landmarks", false, "Log every ingested landmark frame")
	addr := flag.String("addr", "", "Dashboard listen address (overrides config)")
	preset := flag.String("preset", "", "Engine preset: default, gentle, responsive")
	replay := flag.String("replay", "", "Replay a JSON lines landmark file instead of running live")
	dial := flag.String("dial", "", "Connect to a landmark sidecar websocket URL")
	reportDir := flag.String("report-dir", "", "Write summary images to this directory")
	flag.Parse()

	if *preset != "" {
		os.Setenv("CHAKRAFLOW_PRESET", *preset)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return cfg, err
	}

	if *debugFlag {
		cfg.LogLevel = "debug"
		debug.Enabled = true
	}
	debug.Ticks = *traceTicks
	debug.Landmarks = *traceLandmarks
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *replay != "" {
		cfg.Source.Mode, cfg.Source.ReplayPath = config.SourceReplay, *replay
	}
	if *dial != "" {
		cfg.Source.Mode, cfg.Source.URL = config.SourceDial, *dial
	}
	if *reportDir != "" {
		cfg.ReportDir = *reportDir
	}
	return cfg, cfg.Validate()
}

func openStore(cfg config.StoreConfig) (session.Store, error) {
	switch cfg.Driver {
	case config.StoreJSON:
		return session.NewJSONStore(cfg.Path)
	case config.StoreSQLite:
		return session.NewSQLiteStore(cfg.Path)
	}
	return nil, nil
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	collab, closeProvider, err := buildCollaborator(cfg.Providers, cfg.Engine.Narration.Timeout, logger)
	if err != nil {
		return fmt.Errorf("narration provider: %w", err)
	}
	defer closeProvider()

	eng, err := engine.New(cfg.Engine, collab, logger)
	if err != nil {
		return err
	}

	store, err := openStore(cfg.Store)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	if store != nil {
		defer store.Close()
	}

	var (
		sess *engine.Session
		end  time.Time
	)
	if cfg.Source.Mode == config.SourceReplay {
		sess, end, err = runReplay(ctx, cfg, eng, logger)
	} else {
		sess = eng.NewSession(time.Now())
		end, err = runLive(ctx, cfg, eng, sess, store, logger)
	}
	if sess != nil {
		defer sess.Close()
	}
	if err != nil {
		return err
	}

	return finish(cfg, eng, sess, store, end, logger)
}

// peeked replays a frame that was read ahead before the rest of the file.
type peeked struct {
	first *landmark.Frame
	rest  engine.FrameReader
}

func (p *peeked) Next() (landmark.Frame, error) {
	if f := p.first; f != nil {
		p.first = nil
		return *f, nil
	}
	return p.rest.Next()
}

// runReplay starts the session at the first recorded frame so elapsed times
// match the recording.
func runReplay(ctx context.Context, cfg config.Config, eng *engine.Engine, logger *slog.Logger) (*engine.Session, time.Time, error) {
	r, err := source.OpenReplay(cfg.Source.ReplayPath)
	if err != nil {
		return nil, time.Time{}, err
	}
	defer r.Close()

	first, err := r.Next()
	if errors.Is(err, io.EOF) {
		return nil, time.Time{}, fmt.Errorf("replay %s: no frames", cfg.Source.ReplayPath)
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	sess := eng.NewSession(first.Timestamp)

	logger.Info("replaying landmarks", "path", cfg.Source.ReplayPath, "session", sess.ID())
	sink := engine.SinkFunc(func(s engine.Snapshot) {
		if s.NarrationChanged {
			logger.Info("narration", "region", s.Narration.Region.String(), "source", s.Narration.Source, "text", s.Narration.Text)
		}
	})
	end, err := engine.Replay(ctx, eng, sess, &peeked{first: &first, rest: r}, sink)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	return sess, end, err
}

func runLive(ctx context.Context, cfg config.Config, eng *engine.Engine, sess *engine.Session, store session.Store, logger *slog.Logger) (time.Time, error) {
	mb := source.NewMailbox(cfg.Source.StaleAfter)

	srv := web.NewServer(web.LiveSession{Engine: eng, Session: sess}, web.Options{
		Addr:   cfg.Server.Addr,
		Static: cfg.Server.Static,
		Store:  store,
		Config: cfg.Engine,
		Logger: logger,
	})

	ing := ingest.New(func(_ string, f landmark.Frame) {
		mb.Put(f, time.Now())
	}, logger)
	app := srv.App()
	ing.RegisterRoutes(app)
	ing.RegisterAPIRoutes(app.Group("/api"))
	registerMetrics(app, sess, mb, ing, srv)

	if cfg.Source.Mode == config.SourceDial {
		client := source.NewClient(cfg.Source.URL, mb, logger)
		go func() {
			if err := client.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("landmark client stopped", "error", err)
			}
		}()
	}

	srv.StartAsync(ctx)
	defer func() {
		if err := srv.Shutdown(); err != nil {
			logger.Warn("dashboard shutdown", "error", err)
		}
	}()

	logger.Info("session live",
		"session", sess.ID(),
		"version", version,
		"dashboard", cfg.Server.Addr,
		"source", cfg.Source.Mode,
	)

	runner := engine.NewRunner(eng, sess, mb, srv)
	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return time.Time{}, err
	}
	return time.Now(), nil
}

// registerMetrics exposes counters in the Prometheus text format.
func registerMetrics(app *fiber.App, sess *engine.Session, mb *source.Mailbox, ing *ingest.Server, srv *web.Server) {
	app.Get("/metrics", func(c *fiber.Ctx) error {
		stats := ing.GetStats()
		puts, dropped := mb.Stats()
		_, conflated := srv.StateHub().Stats()
		return c.SendString(fmt.Sprintf(`# HELP chakraflow_ticks Pipeline ticks in the current session
# TYPE chakraflow_ticks counter
chakraflow_ticks %d

# HELP chakraflow_producers Connected landmark producers
# TYPE chakraflow_producers gauge
chakraflow_producers %d

# HELP chakraflow_frames_received Landmark frames received over ingest
# TYPE chakraflow_frames_received counter
chakraflow_frames_received %d

# HELP chakraflow_frames_rejected Ingest messages rejected
# TYPE chakraflow_frames_rejected counter
chakraflow_frames_rejected %d

# HELP chakraflow_mailbox_puts Frames offered to the mailbox
# TYPE chakraflow_mailbox_puts counter
chakraflow_mailbox_puts %d

# HELP chakraflow_mailbox_dropped Out-of-order frames dropped by the mailbox
# TYPE chakraflow_mailbox_dropped counter
chakraflow_mailbox_dropped %d

# HELP chakraflow_state_clients Connected dashboard clients
# TYPE chakraflow_state_clients gauge
chakraflow_state_clients %d

# HELP chakraflow_state_conflated Snapshots replaced in a slow client's queue
# TYPE chakraflow_state_conflated counter
chakraflow_state_conflated %d
`, sess.Ticks(), stats.ProducerCount, stats.FramesReceived, stats.Rejected, puts, dropped, srv.StateHub().ClientCount(), conflated))
	})
}

// finish summarizes the session, persists it and prints the report.
func finish(cfg config.Config, eng *engine.Engine, sess *engine.Session, store session.Store, end time.Time, logger *slog.Logger) error {
	sum := eng.Summarize(sess, end)

	if store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Save(ctx, sum); err != nil {
			logger.Warn("save session summary", "error", err)
		} else {
			logger.Info("session saved", "session", sum.ID, "store", cfg.Store.Driver)
		}
	}

	if err := report.Write(os.Stdout, sum); err != nil {
		return err
	}

	if cfg.ReportDir != "" {
		if err := os.MkdirAll(cfg.ReportDir, 0o755); err != nil {
			return err
		}
		paths, err := render.Save(cfg.ReportDir, sum)
		if err != nil {
			logger.Warn("render summary images", "error", err)
		} else {
			logger.Info("summary images written", "paths", paths)
		}
	}
	return nil
}
