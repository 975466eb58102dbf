// Package ui provides the terminal user interface for the supervisor
// dashboard.
package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/iconidentify/sharegrab/cmd/dashboard/internal/botapi"
	"github.com/iconidentify/sharegrab/cmd/dashboard/internal/config"
	"github.com/iconidentify/sharegrab/cmd/dashboard/internal/supervisor"
)

// Panel represents a UI panel type.
type Panel int

const (
	PanelStatus Panel = iota
	PanelLogs
	PanelHelp
)

// status is one refresh's worth of polled data.
type status struct {
	Health    *botapi.Health
	Ready     *botapi.Health
	Stats     *botapi.Stats
	Reachable bool
	Err       error
}

// App is the main dashboard application.
type App struct {
	app    *tview.Application
	pages  *tview.Pages
	cfg    *config.Config
	client *botapi.Client
	super  *supervisor.Supervisor

	status   *status
	statusMu sync.RWMutex

	currentPanel Panel
	ctx          context.Context
	cancel       context.CancelFunc

	// UI components
	mainFlex   *tview.Flex
	header     *tview.TextView
	footer     *tview.TextView
	statusBar  *tview.TextView
	statusView *tview.Flex
	logsView   *tview.TextView
	helpView   *tview.TextView

	refreshTicker *time.Ticker
}

// NewApp creates the dashboard application.
func NewApp(cfg *config.Config) *App {
	ctx, cancel := context.WithCancel(context.Background())

	var args []string
	if cfg.BotConfig != "" {
		args = append(args, "-config", cfg.BotConfig)
	}

	a := &App{
		app:    tview.NewApplication(),
		pages:  tview.NewPages(),
		cfg:    cfg,
		client: botapi.NewClient(cfg.BotURL, cfg.APIKey),
		super:  supervisor.New(cfg.BotBinary, args, cfg.LogLines),
		ctx:    ctx,
		cancel: cancel,
	}

	a.setupUI()
	return a
}

// setupUI initializes all UI components.
func (a *App) setupUI() {
	a.header = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	a.header.SetBackgroundColor(tcell.ColorDarkBlue)
	a.updateHeader()

	a.footer = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText("[yellow]1[white]:Status [yellow]2[white]:Logs [yellow]s[white]:Start [yellow]x[white]:Stop [yellow]w[white]:Sweep [yellow]r[white]:Refresh [yellow]?[white]:Help [yellow]q[white]:Quit")
	a.footer.SetBackgroundColor(tcell.ColorDarkBlue)

	a.statusBar = tview.NewTextView().
		SetDynamicColors(true)
	a.statusBar.SetBackgroundColor(tcell.ColorDarkGreen)

	a.createStatusPanel()
	a.createLogsPanel()
	a.createHelpPanel()

	a.pages.AddPage("status", a.statusView, true, true)
	a.pages.AddPage("logs", a.logsView, true, false)
	a.pages.AddPage("help", a.helpView, true, false)

	a.mainFlex = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.header, 3, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false).
		AddItem(a.footer, 1, 0, false)

	a.app.SetInputCapture(a.handleGlobalKeys)
	a.app.SetRoot(a.mainFlex, true)
}

// handleGlobalKeys handles global keyboard shortcuts.
func (a *App) handleGlobalKeys(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyRune:
		switch event.Rune() {
		case '1':
			a.switchPanel(PanelStatus)
			return nil
		case '2':
			a.switchPanel(PanelLogs)
			return nil
		case '?':
			a.switchPanel(PanelHelp)
			return nil
		case 'q', 'Q':
			a.Stop()
			return nil
		case 'r', 'R':
			go a.refreshStatus()
			return nil
		case 's', 'S':
			go a.startBot()
			return nil
		case 'x', 'X':
			go a.stopBot()
			return nil
		case 'w', 'W':
			go a.sweepScratch()
			return nil
		}
	case tcell.KeyEscape:
		a.switchPanel(PanelStatus)
		return nil
	}

	return event
}

// switchPanel switches to the specified panel.
func (a *App) switchPanel(panel Panel) {
	a.currentPanel = panel

	switch panel {
	case PanelStatus:
		a.pages.SwitchToPage("status")
	case PanelLogs:
		a.pages.SwitchToPage("logs")
		a.updateLogs()
	case PanelHelp:
		a.pages.SwitchToPage("help")
	}

	a.updateHeader()
}

// updateHeader updates the header with the current panel name.
func (a *App) updateHeader() {
	var panelName string
	switch a.currentPanel {
	case PanelStatus:
		panelName = "Status"
	case PanelLogs:
		panelName = "Process Logs"
	case PanelHelp:
		panelName = "Help"
	}

	a.header.SetText(fmt.Sprintf("\n[white::b]Sharegrab Dashboard[white] - [yellow]%s[white] | Bot: [green]%s",
		panelName, a.cfg.BotURL))
}

// updateStatusBar updates the status bar message.
func (a *App) updateStatusBar(msg string) {
	a.app.QueueUpdateDraw(func() {
		a.statusBar.SetText(fmt.Sprintf(" %s | Last refresh: %s", msg, time.Now().Format("15:04:05")))
	})
}

// Run starts the dashboard.
func (a *App) Run() error {
	go a.startBackgroundRefresh()
	go a.refreshStatus()

	return a.app.Run()
}

// Stop stops the dashboard. The supervised bot process keeps running.
func (a *App) Stop() {
	a.cancel()
	if a.refreshTicker != nil {
		a.refreshTicker.Stop()
	}
	a.app.Stop()
}

// startBackgroundRefresh polls the bot periodically.
func (a *App) startBackgroundRefresh() {
	a.refreshTicker = time.NewTicker(a.cfg.StatusRefresh)
	defer a.refreshTicker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-a.refreshTicker.C:
			a.refreshStatus()
		}
	}
}

// refreshStatus polls the bot's operational endpoints.
func (a *App) refreshStatus() {
	ctx, cancel := context.WithTimeout(a.ctx, 10*time.Second)
	defer cancel()

	st := &status{}

	health, err := a.client.Health(ctx)
	if err != nil {
		st.Err = err
	} else {
		st.Health = health
		st.Reachable = true

		if ready, err := a.client.Ready(ctx); err == nil {
			st.Ready = ready
		}
		if stats, err := a.client.Stats(ctx); err == nil {
			st.Stats = stats
		}
	}

	a.statusMu.Lock()
	a.status = st
	a.statusMu.Unlock()

	a.app.QueueUpdateDraw(func() {
		a.updateStatusPanel()
		if a.currentPanel == PanelLogs {
			a.updateLogs()
		}
	})

	switch {
	case st.Reachable:
		a.updateStatusBar("[green]Bot reachable")
	case a.super.State() == supervisor.StateRunning:
		a.updateStatusBar("[yellow]Bot process running but API unreachable")
	default:
		a.updateStatusBar("[red]Bot unreachable")
	}
}

// getStatus returns the last polled status.
func (a *App) getStatus() *status {
	a.statusMu.RLock()
	defer a.statusMu.RUnlock()
	return a.status
}

// startBot launches the supervised bot process.
func (a *App) startBot() {
	if err := a.super.Start(); err != nil {
		a.updateStatusBar(fmt.Sprintf("[red]Start failed: %v", err))
		return
	}
	a.updateStatusBar("[green]Bot started")
	// Give it a moment to bind before polling.
	time.Sleep(2 * time.Second)
	a.refreshStatus()
}

// stopBot stops the supervised bot process.
func (a *App) stopBot() {
	a.updateStatusBar("Stopping bot...")
	if err := a.super.Stop(30 * time.Second); err != nil {
		a.updateStatusBar(fmt.Sprintf("[red]Stop failed: %v", err))
		return
	}
	a.updateStatusBar("[yellow]Bot stopped")
	a.refreshStatus()
}

// sweepScratch removes stale scratch files. When the bot is running only
// files older than an hour are removed; a stopped bot owns nothing, so
// everything goes.
func (a *App) sweepScratch() {
	var maxAge time.Duration
	if a.super.State() == supervisor.StateRunning || a.getStatus() != nil && a.getStatus().Reachable {
		maxAge = time.Hour
	}

	removed, err := sweepDir(a.cfg.ScratchDir, maxAge)
	if err != nil {
		a.updateStatusBar(fmt.Sprintf("[red]Sweep failed: %v", err))
		return
	}
	a.updateStatusBar(fmt.Sprintf("[green]Sweep removed %d files", removed))
}

func sweepDir(dir string, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if maxAge > 0 {
			info, err := entry.Info()
			if err != nil || info.ModTime().After(cutoff) {
				continue
			}
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
