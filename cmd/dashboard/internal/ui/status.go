package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rivo/tview"

	"github.com/iconidentify/sharegrab/cmd/dashboard/internal/supervisor"
)

// createStatusPanel creates the main status panel.
func (a *App) createStatusPanel() {
	processBox := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	processBox.SetBorder(true).SetTitle(" Process ")

	healthBox := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	healthBox.SetBorder(true).SetTitle(" Health ")

	journalBox := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	journalBox.SetBorder(true).SetTitle(" Outcomes ")

	platformsBox := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	platformsBox.SetBorder(true).SetTitle(" Platforms ")

	topRow := tview.NewFlex().
		AddItem(processBox, 0, 1, false).
		AddItem(healthBox, 0, 1, false)

	bottomRow := tview.NewFlex().
		AddItem(journalBox, 0, 1, false).
		AddItem(platformsBox, 0, 1, false)

	a.statusView = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(topRow, 0, 1, false).
		AddItem(bottomRow, 0, 1, false)
}

// updateStatusPanel renders the last polled status.
func (a *App) updateStatusPanel() {
	if a.statusView.GetItemCount() < 2 {
		return
	}

	topRow := a.statusView.GetItem(0).(*tview.Flex)
	bottomRow := a.statusView.GetItem(1).(*tview.Flex)

	processBox := topRow.GetItem(0).(*tview.TextView)
	healthBox := topRow.GetItem(1).(*tview.TextView)
	journalBox := bottomRow.GetItem(0).(*tview.TextView)
	platformsBox := bottomRow.GetItem(1).(*tview.TextView)

	// Process
	var processText strings.Builder
	state := a.super.State()
	stateColor := "red"
	if state == supervisor.StateRunning {
		stateColor = "green"
	}
	processText.WriteString(fmt.Sprintf("[white::b]State:[white] [%s]%s[white]\n", stateColor, state))
	if pid := a.super.PID(); pid > 0 {
		processText.WriteString(fmt.Sprintf("[white::b]PID:[white] %d\n", pid))
	}
	processText.WriteString(fmt.Sprintf("[white::b]Binary:[white] %s\n", a.cfg.BotBinary))
	processText.WriteString(fmt.Sprintf("[white::b]Scratch:[white] %s\n", a.cfg.ScratchDir))
	processBox.SetText(processText.String())

	st := a.getStatus()
	if st == nil {
		return
	}

	// Health
	var healthText strings.Builder
	if !st.Reachable {
		healthText.WriteString("[red]API unreachable[white]\n")
		if st.Err != nil {
			healthText.WriteString(fmt.Sprintf("[dim]%v[white]\n", st.Err))
		}
	} else {
		healthText.WriteString("[green]API reachable[white]\n")
		healthText.WriteString(fmt.Sprintf("[white::b]Uptime:[white] %ds\n", st.Health.UptimeSeconds))
		if st.Ready != nil {
			readyColor := "green"
			if st.Ready.Status != "ok" {
				readyColor = "red"
			}
			healthText.WriteString(fmt.Sprintf("[white::b]Ready:[white] [%s]%s[white]\n", readyColor, st.Ready.Status))
			healthText.WriteString(fmt.Sprintf("[white::b]Queue:[white] %d pending\n", st.Ready.Pending))
		}
		if st.Stats != nil && st.Stats.ScratchFreeBytes > 0 {
			healthText.WriteString(fmt.Sprintf("[white::b]Scratch free:[white] %.1f GB\n",
				float64(st.Stats.ScratchFreeBytes)/(1024*1024*1024)))
		}
	}
	healthBox.SetText(healthText.String())

	// Outcomes
	var journalText strings.Builder
	if st.Stats == nil || st.Stats.Journal == nil {
		journalText.WriteString("[yellow]No journal data[white]")
	} else {
		j := st.Stats.Journal
		journalText.WriteString(fmt.Sprintf("[white::b]Requests:[white] %d\n", j.Total))
		journalText.WriteString(fmt.Sprintf("[green]Delivered:[white] %d\n", j.Delivered))
		journalText.WriteString(fmt.Sprintf("[yellow]Rejected:[white] %d\n", j.Rejected))
		journalText.WriteString(fmt.Sprintf("[red]Failed:[white] %d\n", j.Failed))
		journalText.WriteString(fmt.Sprintf("[white::b]Data sent:[white] %.1f MB\n", float64(j.BytesSent)/(1024*1024)))

		if len(j.PerReason) > 0 {
			journalText.WriteString("\n[white::b]By reason:[white]\n")
			for _, reason := range sortedKeys(j.PerReason) {
				journalText.WriteString(fmt.Sprintf("  %s: %d\n", reason, j.PerReason[reason]))
			}
		}
	}
	journalBox.SetText(journalText.String())

	// Platforms
	var platformsText strings.Builder
	if st.Stats == nil || st.Stats.Journal == nil || len(st.Stats.Journal.PerPlatform) == 0 {
		platformsText.WriteString("[yellow]No platform data[white]")
	} else {
		for _, platform := range sortedKeys(st.Stats.Journal.PerPlatform) {
			platformsText.WriteString(fmt.Sprintf("[white::b]%s:[white] %d\n", platform, st.Stats.Journal.PerPlatform[platform]))
		}
	}
	platformsBox.SetText(platformsText.String())
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
