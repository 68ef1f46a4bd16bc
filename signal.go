package main

import (
	"os"
	"os/signal"
	"syscall"
)

// interruptListener returns a channel that is closed when SIGINT or SIGTERM
// is received, so the process can shut down cleanly.
func interruptListener() chan struct{} {
	c := make(chan struct{})
	go func() {
		interruptChannel := make(chan os.Signal, 1)
		signal.Notify(interruptChannel, os.Interrupt, syscall.SIGTERM)

		sig := <-interruptChannel
		log.Infof("Received signal (%s). Shutting down...", sig)
		close(c)

		// Repeated signals exit immediately.
		for sig := range interruptChannel {
			log.Infof("Received signal (%s). Already shutting down...", sig)
		}
	}()
	return c
}
