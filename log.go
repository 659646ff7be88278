package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gaugesuite/emission-gauge-server/dal"
	"github.com/gaugesuite/emission-gauge-server/gaugemgr"
	"github.com/gaugesuite/emission-gauge-server/gaugeserver"
	"github.com/gaugesuite/emission-gauge-server/mintmgr"
	"github.com/gaugesuite/emission-gauge-server/scheduler"
	"github.com/gaugesuite/emission-gauge-server/service"
	"github.com/gaugesuite/emission-gauge-server/tokenledger"
	"github.com/gaugesuite/emission-gauge-server/utils"
	"github.com/gaugesuite/emission-gauge-server/weightmgr"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"
)

// logWriter implements an io.Writer that outputs to both standard output and
// the write-end pipe of an initialized log rotator.
type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	os.Stdout.Write(p)
	logRotator.Write(p)
	return len(p), nil
}

// Loggers per subsystem.  A single backend logger is created and all subsytem
// loggers created from it will write to the backend.  When adding new
// subsystems, add the subsystem logger variable here and to the
// subsystemLoggers map.
//
// Loggers can not be used before the log rotator has been initialized with a
// log file.  This must be performed early during application startup by calling
// initLogRotator.
var (
	// backendLog is the logging backend used to create all subsystem loggers.
	// The backend must not be used before the log rotator has been initialized,
	// or data races and/or nil pointer dereferences will occur.
	backendLog = btclog.NewBackend(logWriter{})

	// logRotator is one of the logging outputs.  It should be closed on
	// application shutdown.
	logRotator *rotator.Rotator

	gaugeLog       = backendLog.Logger("GAUG")
	gaugeServerLog = backendLog.Logger("GASV")
	dalLog         = backendLog.Logger("DAL")
	utilsLog       = backendLog.Logger("UTILS")
	serviceLog     = backendLog.Logger("SERVICE")
	weightMgrLog   = backendLog.Logger("WEIGHT")
	gaugeMgrLog    = backendLog.Logger("STAKE")
	mintMgrLog     = backendLog.Logger("MINT")
	ledgerLog      = backendLog.Logger("LEDGER")
	schedulerLog   = backendLog.Logger("SCHED")
)

// Initialize package-global logger variables.
func init() {
	gaugeserver.UseLogger(gaugeServerLog)
	dal.UseLogger(dalLog)
	utils.UseLogger(utilsLog)
	service.UseLogger(serviceLog)
	weightmgr.UseLogger(weightMgrLog)
	gaugemgr.UseLogger(gaugeMgrLog)
	mintmgr.UseLogger(mintMgrLog)
	tokenledger.UseLogger(ledgerLog)
	scheduler.UseLogger(schedulerLog)
}

// subsystemLoggers maps each subsystem identifier to its associated logger.
var subsystemLoggers = map[string]btclog.Logger{
	"GAUG":    gaugeLog,
	"GASV":    gaugeServerLog,
	"DAL":     dalLog,
	"UTILS":   utilsLog,
	"SERVICE": serviceLog,
	"WEIGHT":  weightMgrLog,
	"STAKE":   gaugeMgrLog,
	"MINT":    mintMgrLog,
	"LEDGER":  ledgerLog,
	"SCHED":   schedulerLog,
}

// initLogRotator initializes the logging rotater to write logs to logFile and
// create roll files in the same directory.  It must be called before the
// package-global log rotater variables are used.
func initLogRotator(logFile string) {
	logDir, _ := filepath.Split(logFile)
	err := os.MkdirAll(logDir, 0700)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log directory: %v\n", err)
		os.Exit(1)
	}
	r, err := rotator.New(logFile, 10*1024, false, 30)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create file rotator: %v\n", err)
		os.Exit(1)
	}

	logRotator = r
}

// setLogLevel sets the logging level for provided subsystem.  Invalid
// subsystems are ignored.  Uninitialized subsystems are dynamically created as
// needed.
func setLogLevel(subsystemID string, logLevel string) {
	// Ignore invalid subsystems.
	logger, ok := subsystemLoggers[subsystemID]
	if !ok {
		return
	}

	// Defaults to info if the log level is invalid.
	level, _ := btclog.LevelFromString(logLevel)
	logger.SetLevel(level)
}

// setLogLevels sets the log level for all subsystem loggers to the passed
// level.  It also dynamically creates the subsystem loggers as needed, so it
// can be used to initialize the logging system.
func setLogLevels(logLevel string) {
	// Configure all sub-systems with the new logging level.  Dynamically
	// create loggers as needed.
	for subsystemID := range subsystemLoggers {
		setLogLevel(subsystemID, logLevel)
	}
}

// pickNoun returns the singular or plural form of a noun depending
// on the count n.
func pickNoun(n uint64, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
