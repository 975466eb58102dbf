// Command dashboard is a terminal supervisor for a sharegrab bot: it
// polls the bot's operational API, starts and stops the process, and
// sweeps scratch storage.
package main

import (
	"fmt"
	"os"

	"github.com/iconidentify/sharegrab/cmd/dashboard/internal/config"
	"github.com/iconidentify/sharegrab/cmd/dashboard/internal/ui"
)

func main() {
	cfg := config.Load()

	app := ui.NewApp(cfg)
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running dashboard: %v\n", err)
		os.Exit(1)
	}
}
