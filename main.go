package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/edaniels/golog"
	"github.com/spf13/pflag"

	"github.com/soar/padmap/internal/config"
	"github.com/soar/padmap/internal/console"
	"github.com/soar/padmap/internal/engine"
	"github.com/soar/padmap/internal/hub"
	"github.com/soar/padmap/internal/output"
	"github.com/soar/padmap/internal/pad"
	"github.com/soar/padmap/internal/server"
	"github.com/soar/padmap/internal/source"
	"github.com/soar/padmap/internal/tray"
)

// Cross-platform signal handling: os.Interrupt covers Ctrl+C on Windows and
// SIGINT on Unix.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// padEvents feeds controller transitions from the reader thread into the
// engine. A connect or disconnect clears the session so nothing stays held.
type padEvents struct {
	engine *engine.Engine
	logger golog.Logger
}

func (p *padEvents) ButtonDown(b pad.Button) { p.engine.ButtonDown(b) }
func (p *padEvents) ButtonUp(b pad.Button)   { p.engine.ButtonUp(b) }

func (p *padEvents) Connected(name string) {
	p.logger.Infow("active controller", "name", name)
	p.engine.Reset()
}

func (p *padEvents) Disconnected() {
	p.logger.Info("no controller available")
	p.engine.Reset()
}

func main() {
	var (
		configPath = pflag.StringP("config", "c", "padmap.yaml", "path to the configuration file")
		addr       = pflag.String("addr", ":8080", "overlay listen address")
		debug      = pflag.Bool("debug", false, "enable debug logging")
	)
	pflag.Parse()

	fromConsole := console.IsRunningFromConsole()

	var logger golog.Logger
	if *debug {
		logger = golog.NewDebugLogger("padmap")
	} else {
		logger = golog.NewDevelopmentLogger("padmap")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)

	consoleShutdown := make(chan struct{})
	reRegisterHandler := console.SetupConsoleHandler(consoleShutdown)

	h := hub.NewHub(logger)
	go h.Run()

	broadcaster := hub.NewBroadcaster(h, logger)

	// The reader feeds the engine and the engine samples the reader; the
	// events sink is bound once both exist, before the reader starts.
	events := &padEvents{logger: logger}
	reader := source.NewReader(events, logger)

	eng := engine.New(engine.Options{
		Source:    reader,
		Executor:  output.NewLogExecutor(logger),
		Indicator: broadcaster,
		Logger:    logger,
	})
	events.engine = eng
	go broadcaster.Run(eng.Changes())

	// Profiles load as a set keyed by foreground-app identity. Without a
	// frontmost-app monitor on this platform the empty identity selects the
	// default profile.
	loader := config.NewLoader(*configPath, logger)
	settings, profiles, err := loader.Load()
	if err != nil {
		logger.Warnw("loading configuration failed, using defaults", "path", *configPath, "error", err)
		settings = pad.DefaultSettings()
	}
	eng.SetSettings(settings)
	if p := profiles.For(""); p != nil {
		eng.SetProfile(p)
	}
	loader.Watch(func(s pad.Settings, ps *pad.ProfileSet) {
		eng.SetSettings(s)
		if p := ps.For(""); p != nil {
			eng.SetProfile(p)
		}
	})

	frontendFS := getFrontendFS()
	srv := server.New(h, broadcaster, eng, frontendFS, *addr, logger)
	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	overlayURL := fmt.Sprintf("http://localhost%s", *addr)
	logger.Infow("padmap started", "overlay", overlayURL)

	shutdownRequested := make(chan struct{})

	if runtime.GOOS == "windows" {
		go func() {
			t := tray.New(eng, overlayURL, func() {
				close(shutdownRequested)
			}, logger)
			t.Run(tray.GetIcon())
		}()
	} else if fromConsole {
		logger.Info("press Ctrl+C to exit")
	}

	// Reader owns SDL and its OS thread; the console handler has to be
	// reinstalled once SDL init replaced it.
	readerDone := make(chan struct{})
	go func() {
		reader.Run(ctx)
		close(readerDone)
	}()
	go eng.Run(ctx)

	time.AfterFunc(time.Second, reRegisterHandler)

	eng.Enable()

	select {
	case <-sigCh:
		logger.Info("shutting down")
	case <-consoleShutdown:
		logger.Info("shutdown requested from console")
	case <-shutdownRequested:
		logger.Info("shutdown requested from tray")
	case err := <-serverErrCh:
		logger.Errorw("http server error", "error", err)
	}

	eng.Disable()
	cancel()
	<-readerDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnw("http server shutdown error", "error", err)
	}

	logger.Info("padmap stopped")
}
