package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"runtime"
	"time"

	"github.com/gaugesuite/emission-gauge-server/dal"
	"github.com/gaugesuite/emission-gauge-server/dal/dao"
	"github.com/gaugesuite/emission-gauge-server/dal/do"
	"github.com/gaugesuite/emission-gauge-server/epochclock"
)

var (
	cfg *config
)

func startProfileServer() {
	listenAddr := net.JoinHostPort("localhost", cfg.ProfilePort)
	gaugeLog.Infof("Profile server listening on %s", listenAddr)
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	gaugeLog.Errorf("%v", http.ListenAndServe(listenAddr, mux))
}

// resolveStartTime decides when emission begins. A persisted start time from
// a previous run always wins, then the configured one, and a fresh install
// derives it from the wall clock plus the network inflation delay.
func resolveStartTime(persisted *do.MinterConfigInfo) int64 {
	if persisted != nil && persisted.StartTime > 0 {
		if cfg.EmissionStartTime != 0 && cfg.EmissionStartTime != persisted.StartTime {
			gaugeLog.Warnf("Ignoring configured emission start time %v, "+
				"emission already anchored at %v", cfg.EmissionStartTime, persisted.StartTime)
		}
		return persisted.StartTime
	}
	if cfg.EmissionStartTime != 0 {
		return cfg.EmissionStartTime
	}
	return time.Now().Unix() + netParams.InflationDelay
}

func gaugeMain() error {
	// Load configuration and parse command line. This function also
	// initializes logging and configures it accordingly.
	tcfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	cfg = tcfg

	defer func() {
		if logRotator != nil {
			logRotator.Close()
		}
	}()

	defer gaugeLog.Info("Shutdown complete")

	// Enable http profiling server if requested.
	if cfg.ProfilePort != "" {
		go func() {
			startProfileServer()
		}()
	}

	// initiate database
	err = dal.InitDB(&dal.DBConfig{
		Username:     cfg.DbUsername,
		Password:     cfg.DbPassword,
		Address:      cfg.DbAddress,
		DatabaseName: cfg.DbName,
	}, !cfg.DisableAutoCreateDB)
	if err != nil {
		return err
	}

	// The epoch clock is anchored at the persisted start time if one
	// exists, so restarts never shift epoch boundaries.
	ctx := context.Background()
	tx := dal.GetDB(ctx)
	persisted, err := dao.GetMinterConfigInfoDAOImpl().Get(ctx, tx)
	if err != nil {
		return err
	}
	startTime := resolveStartTime(persisted)
	clock := epochclock.New(netParams, startTime, nil)
	gaugeLog.Infof("Network %v, emission starts at %v, epoch length %vs",
		netParams.Name, startTime, netParams.EpochLength)

	svr, err := newServer(clock)
	if err != nil {
		return err
	}

	rateCeiling := cfg.RateCeiling
	if rateCeiling == "" {
		rateCeiling = defaultRateCeiling().String()
	}
	minterCfg, err := svr.mintManager.EnsureConfig(ctx, &do.MinterConfigInfo{
		Admin:           cfg.AdminID,
		EmergencyReturn: cfg.EmergencyReturn,
		RateCeiling:     rateCeiling,
		StartTime:       startTime,
	})
	if err != nil {
		return err
	}
	gaugeLog.Infof("Minter config: admin %v, emergency return %v, rate ceiling %v",
		minterCfg.Admin, minterCfg.EmergencyReturn, minterCfg.RateCeiling)

	// show registered gauges and types
	types, err := svr.weightManager.GetTypes(ctx)
	if err != nil {
		return err
	}
	gauges, err := svr.weightManager.GetGauges(ctx)
	if err != nil {
		return err
	}
	gaugeLog.Infof("Found %v %v across %v %v",
		len(gauges), pickNoun(uint64(len(gauges)), "gauge", "gauges"),
		len(types), pickNoun(uint64(len(types)), "type", "types"))

	if err := svr.Start(); err != nil {
		return err
	}

	// An authorized RPC client may ask the whole process to shut down.
	go func() {
		<-svr.gaugeRPCServer.RequestedProcessShutdown()
		shutdownRequestChannel <- struct{}{}
	}()

	addInterruptHandler(func() {
		svr.Stop()
	})

	// Wait until the interrupt signal is received from an OS signal or
	// shutdown is requested through one of the subsystems such as the RPC
	// server.
	<-interruptHandlersDone
	return nil
}

func main() {
	// Use all processor cores.
	runtime.GOMAXPROCS(runtime.NumCPU())

	if err := gaugeMain(); err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}
}
