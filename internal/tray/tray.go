// Package tray puts padmap in the system tray with an enable/disable toggle.
package tray

import (
	"os/exec"
	"runtime"
	"sync"
	"sync/atomic"

	"fyne.io/systray"
	"github.com/edaniels/golog"
)

// ShutdownFunc is called when "Exit" is clicked
type ShutdownFunc func()

// Engine is the slice of the mapping engine the tray drives.
type Engine interface {
	Enable()
	Disable()
	Enabled() bool
}

// Tray manages the system tray icon and menu
type Tray struct {
	engine       Engine
	overlayURL   string
	shutdownFunc ShutdownFunc
	logger       golog.Logger
	once         sync.Once
	shuttingDown atomic.Bool
	menuToggle   *systray.MenuItem
	menuOverlay  *systray.MenuItem
	menuExit     *systray.MenuItem
}

// New creates a new Tray instance
func New(engine Engine, overlayURL string, shutdownFn ShutdownFunc, logger golog.Logger) *Tray {
	return &Tray{
		engine:       engine,
		overlayURL:   overlayURL,
		shutdownFunc: shutdownFn,
		logger:       logger,
	}
}

// Run initializes and runs the system tray (blocks until Quit())
func (t *Tray) Run(iconData []byte) {
	systray.Run(func() {
		t.onReady(iconData)
	}, func() {
		t.onExit()
	})
}

func (t *Tray) onReady(iconData []byte) {
	if iconData != nil {
		systray.SetIcon(iconData)
	}
	systray.SetTitle("padmap")
	systray.SetTooltip("padmap - controller mapping")

	t.menuToggle = systray.AddMenuItem("Disable Mapping", "Pause controller mapping")
	t.menuOverlay = systray.AddMenuItem("Open Overlay", "Open status overlay")
	t.menuExit = systray.AddMenuItem("Exit", "Quit application")

	go t.handleMenuClicks()

	t.logger.Info("system tray initialized")
}

// handleMenuClicks processes menu item clicks without blocking
func (t *Tray) handleMenuClicks() {
	for {
		select {
		case <-t.menuToggle.ClickedCh:
			if t.shuttingDown.Load() {
				continue
			}
			if t.engine.Enabled() {
				t.engine.Disable()
				t.menuToggle.SetTitle("Enable Mapping")
			} else {
				t.engine.Enable()
				t.menuToggle.SetTitle("Disable Mapping")
			}
		case <-t.menuOverlay.ClickedCh:
			if !t.shuttingDown.Load() {
				t.openBrowser()
			}
		case <-t.menuExit.ClickedCh:
			if t.shuttingDown.CompareAndSwap(false, true) {
				t.once.Do(t.shutdownFunc)
				systray.Quit()
				return
			}
		}
	}
}

func (t *Tray) onExit() {
	t.shuttingDown.Store(true)
	t.logger.Info("system tray exiting")
}

// openBrowser opens the default web browser on the overlay page
func (t *Tray) openBrowser() {
	if t.shuttingDown.Load() {
		return
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", t.overlayURL)
	case "darwin":
		cmd = exec.Command("open", t.overlayURL)
	default:
		cmd = exec.Command("xdg-open", t.overlayURL)
	}

	if err := cmd.Start(); err != nil {
		t.logger.Warnw("failed to open browser", "error", err)
	}
}
