// Command sweep removes stale scratch files. It is safe to run while the
// bot is down; a running bot already sweeps its own scratch at startup.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

func main() {
	dir := flag.String("dir", "/data/scratch", "Scratch directory to sweep")
	maxAge := flag.Duration("max-age", 0, "Only remove files older than this (0 removes everything)")
	dryRun := flag.Bool("dry-run", false, "List files without removing them")
	flag.Parse()

	removed, freed, err := sweep(*dir, *maxAge, *dryRun)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sweep: %v\n", err)
		os.Exit(1)
	}

	verb := "removed"
	if *dryRun {
		verb = "would remove"
	}
	fmt.Printf("%s %d files (%.1f MB)\n", verb, removed, float64(freed)/(1024*1024))
}

func sweep(dir string, maxAge time.Duration, dryRun bool) (int, int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, fmt.Errorf("read scratch dir: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)

	var (
		removed int
		freed   int64
	)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if maxAge > 0 && info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if dryRun {
			fmt.Println(path)
		} else if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, freed, fmt.Errorf("remove %s: %w", entry.Name(), err)
		}
		removed++
		freed += info.Size()
	}

	return removed, freed, nil
}
