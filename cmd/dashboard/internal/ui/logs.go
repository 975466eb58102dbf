package ui

import (
	"strings"

	"github.com/rivo/tview"
)

// createLogsPanel creates the process log panel.
func (a *App) createLogsPanel() {
	a.logsView = tview.NewTextView().
		SetDynamicColors(false).
		SetScrollable(true)
	a.logsView.SetBorder(true).SetTitle(" Process Logs ")
}

// updateLogs renders the supervised process output.
func (a *App) updateLogs() {
	lines := a.super.Logs()
	if len(lines) == 0 {
		a.logsView.SetText("No process output. Start the bot with 's' to capture logs here.")
		return
	}
	a.logsView.SetText(strings.Join(lines, "\n"))
	a.logsView.ScrollToEnd()
}
