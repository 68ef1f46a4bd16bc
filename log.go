package main

import (
	"fmt"
	"os"

	"github.com/vecno-foundation/vecnominer/infrastructure/logger"
	"github.com/vecno-foundation/vecnominer/util/panics"
)

var (
	backendLog = logger.NewBackend()
	log        = backendLog.Logger("VNMR")
	spawn      = panics.GoroutineWrapperFunc(log)
)

func initLog(logFile, errLogFile string, verbose bool) {
	stdoutLevel := logger.LevelInfo
	if verbose {
		stdoutLevel = logger.LevelDebug
		log.SetLevel(logger.LevelDebug)
	}
	err := backendLog.AddLogWriter(os.Stdout, stdoutLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding stdout to the logger: %s", err)
		os.Exit(1)
	}
	err = backendLog.AddLogFile(logFile, logger.LevelTrace)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding log file %s as log rotator for level %s: %s", logFile, logger.LevelTrace, err)
		os.Exit(1)
	}
	err = backendLog.AddLogFile(errLogFile, logger.LevelWarn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding log file %s as log rotator for level %s: %s", errLogFile, logger.LevelWarn, err)
		os.Exit(1)
	}
	err = backendLog.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting the logger: %s ", err)
		os.Exit(1)
	}
}
