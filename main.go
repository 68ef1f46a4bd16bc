package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"

	_ "net/http/pprof"

	"github.com/vecno-foundation/vecnominer/util/panics"
	"github.com/vecno-foundation/vecnominer/util/profiling"
	"github.com/vecno-foundation/vecnominer/version"
)

func main() {
	defer panics.HandlePanic(log, "MAIN", nil)
	interrupt := interruptListener()

	cfg, err := parseConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing command-line arguments: %s\n", err)
		os.Exit(1)
	}

	// Show version at startup.
	log.Infof("Version %s", version.Version())

	// Enable http profiling server if requested.
	if cfg.Profile != "" {
		profiling.Start(cfg.Profile, log)
	}

	client, err := newMinerClient(cfg)
	if err != nil {
		panic(errors.Wrap(err, "error connecting to the RPC server"))
	}
	defer client.Disconnect()

	doneChan := make(chan struct{})
	spawn("mineLoop", func() {
		err = mineLoop(client, cfg)
		if err != nil {
			panic(errors.Errorf("Error in mine loop: %s", err))
		}
		doneChan <- struct{}{}
	})

	select {
	case <-doneChan:
	case <-interrupt:
	}
}
