package main

import (
	"log/slog"

	"github.com/vendhub/vendhub/pkg/vendhub"
)

func main() {

	//you may do your own logger setup here or use this default one with slog
	vendhub.SetupLogger()

	if err := vendhub.Start(nil); err != nil {
		slog.Error("Service exited with error", "error", err)
	}
}
