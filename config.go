package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/kaspanet/kaspad/util"
	"github.com/pkg/errors"

	"github.com/vecno-foundation/vecnominer/version"
)

const (
	defaultLogFilename    = "vecnominer.log"
	defaultErrLogFilename = "vecnominer_err.log"
)

var (
	// Default configuration options
	defaultHomeDir    = util.AppDir("vecnominer", false)
	defaultLogFile    = filepath.Join(defaultHomeDir, defaultLogFilename)
	defaultErrLogFile = filepath.Join(defaultHomeDir, defaultErrLogFilename)
	defaultRPCServer  = "localhost:7110"
)

type configFlags struct {
	ShowVersion       bool   `short:"V" long:"version" description:"Display version information and exit"`
	RPCServer         string `short:"s" long:"rpcserver" description:"RPC server to connect to"`
	MiningAddress     string `long:"miningaddr" description:"Address to mine to"`
	Threads           uint8  `short:"t" long:"threads" description:"Number of mining threads. Defaults to the number of logical CPUs."`
	NumberOfBlocks    uint64 `short:"n" long:"numblocks" description:"Number of blocks to mine. If omitted, will mine until the process is interrupted."`
	MineWhenNotSynced bool   `long:"mine-when-not-synced" description:"Mine even if the node is not synced with the rest of the network."`
	Verbose           bool   `long:"verbose" short:"v" description:"Enable logging of RPC requests"`
	Profile           string `long:"profile" description:"Enable HTTP profiling on given port -- NOTE port must be between 1024 and 65536"`
}

func parseConfig() (*configFlags, error) {
	cfg := &configFlags{
		RPCServer: defaultRPCServer,
	}
	parser := flags.NewParser(cfg, flags.PrintErrors|flags.HelpFlag)
	_, err := parser.Parse()

	// Show the version and exit if the version flag was specified.
	if cfg.ShowVersion {
		appName := filepath.Base(os.Args[0])
		appName = strings.TrimSuffix(appName, filepath.Ext(appName))
		fmt.Println(appName, "version", version.Version())
		os.Exit(0)
	}

	if err != nil {
		return nil, err
	}

	if cfg.MiningAddress == "" {
		return nil, errors.New("--miningaddr is required")
	}

	if cfg.Threads == 0 {
		cfg.Threads = uint8(runtime.NumCPU())
	}

	if cfg.Profile != "" {
		profilePort, err := strconv.Atoi(cfg.Profile)
		if err != nil || profilePort < 1024 || profilePort > 65535 {
			return nil, errors.New("The profile port must be between 1024 and 65535")
		}
	}

	initLog(defaultLogFile, defaultErrLogFile, cfg.Verbose)

	return cfg, nil
}
