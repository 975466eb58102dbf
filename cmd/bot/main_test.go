package main

import (
	"context"
	"testing"
	"time"
)

func TestAwaitBotExit_AlreadyExited(t *testing.T) {
	// botDone was drained by the startup select; waiting on it again
	// would block until the deadline.
	botDone := make(chan error)

	start := time.Now()
	if !awaitBotExit(context.Background(), botDone, true) {
		t.Error("awaitBotExit() = false, want true when the bot already returned")
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("awaitBotExit() blocked for %v, want immediate return", elapsed)
	}
}

func TestAwaitBotExit_WaitsForExit(t *testing.T) {
	botDone := make(chan error, 1)
	botDone <- nil

	if !awaitBotExit(context.Background(), botDone, false) {
		t.Error("awaitBotExit() = false, want true once the bot returns")
	}
}

func TestAwaitBotExit_DeadlineExpired(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if awaitBotExit(ctx, make(chan error), false) {
		t.Error("awaitBotExit() = true, want false when the bot never returns")
	}
}
