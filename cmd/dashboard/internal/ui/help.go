package ui

import (
	"github.com/rivo/tview"
)

// createHelpPanel creates the help panel.
func (a *App) createHelpPanel() {
	a.helpView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	a.helpView.SetBorder(true).SetTitle(" Help ")

	a.helpView.SetText(`
[white::b]Sharegrab Dashboard[white]

Monitors and supervises a sharegrab bot instance.

[yellow::b]Panels[white]
  [yellow]1[white]       Status (process, health, outcome counters)
  [yellow]2[white]       Process logs (captured from a bot started here)
  [yellow]?[white]       This help
  [yellow]Esc[white]     Back to status

[yellow::b]Actions[white]
  [yellow]s[white]       Start the bot process
  [yellow]x[white]       Stop the bot process (SIGTERM, then kill)
  [yellow]w[white]       Sweep scratch storage
  [yellow]r[white]       Refresh now
  [yellow]q[white]       Quit (the bot keeps running)

[yellow::b]Environment[white]
  SHAREGRAB_URL             Bot API base URL (default http://127.0.0.1:9848)
  SHAREGRAB_API_KEY         API key for /api/v1 endpoints
  SHAREGRAB_BOT_BINARY      Bot binary to supervise (default sharegrab-bot)
  SHAREGRAB_BOT_CONFIG      Config file passed to the bot
  SHAREGRAB_SCRATCH_DIR     Scratch directory for sweeps
  SHAREGRAB_STATUS_REFRESH  Poll interval (default 5s)

[yellow::b]Notes[white]
  The dashboard can monitor a bot it did not start; process logs are
  only available for a bot launched from this dashboard.

  Sweeping while the bot is running only removes files older than an
  hour; in-flight requests own the newer ones.
`)
}
