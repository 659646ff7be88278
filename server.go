package main

import (
	"github.com/gaugesuite/emission-gauge-server/dal"
	"github.com/gaugesuite/emission-gauge-server/epochclock"
	"github.com/gaugesuite/emission-gauge-server/gaugemgr"
	"github.com/gaugesuite/emission-gauge-server/gaugeserver"
	"github.com/gaugesuite/emission-gauge-server/mintmgr"
	"github.com/gaugesuite/emission-gauge-server/scheduler"
	"github.com/gaugesuite/emission-gauge-server/service"
	"github.com/gaugesuite/emission-gauge-server/tokenledger"
	"github.com/gaugesuite/emission-gauge-server/weightmgr"
)

type server struct {
	gaugeRPCServer      *gaugeserver.GaugeServer
	checkpointScheduler *scheduler.Scheduler
	weightManager       *weightmgr.WeightManager
	gaugeManager        *gaugemgr.GaugeManager
	mintManager         *mintmgr.MintManager
}

func newServer(clock *epochclock.Clock) (*server, error) {
	db := dal.GlobalDBClient

	// Token custody and the emission schedule share one ledger backend.
	ledger := tokenledger.NewDBLedger()
	emission := tokenledger.NewEmissionLedger(clock, ledger, cfg.EmissionToken, cfg.MinterAddress)
	staking := tokenledger.NewStakingLedger(ledger, cfg.StakingToken)

	ctrlSvc := service.NewControllerService(clock)
	gaugeSvc := service.NewGaugeService(clock, ctrlSvc, staking)
	mintSvc := service.NewMintService(gaugeSvc, emission, staking, ledger)

	weightMgr := weightmgr.NewWeightManager(clock, ctrlSvc, db, cfg.WeightCacheSize)
	gaugeMgr := gaugemgr.NewGaugeManager(clock, gaugeSvc, db)
	mintMgr := mintmgr.NewMintManager(clock, mintSvc, db)

	gaugeSvr, err := gaugeserver.NewGaugeServer(&gaugeserver.ConfigGaugeServer{
		DisableTLS:       cfg.DisableTLS,
		ListenersString:  cfg.Listeners,
		RPCUser:          cfg.GaugeUser,
		RPCPass:          cfg.GaugePass,
		RPCLimitUser:     cfg.GaugeLimitUser,
		RPCLimitPass:     cfg.GaugeLimitPass,
		RPCMaxClients:    cfg.RPCMaxClients,
		RPCMaxWebsockets: cfg.RPCMaxWebsockets,
		RPCCert:          cfg.GaugeCert,
		RPCKey:           cfg.GaugeKey,
	}, clock, weightMgr, gaugeMgr, mintMgr)
	if err != nil {
		return nil, err
	}

	var checkpointScheduler *scheduler.Scheduler
	if !cfg.DisableScheduler {
		checkpointScheduler = scheduler.New(weightMgr, gaugeMgr, cfg.CheckpointSchedule)
	}

	ret := &server{
		gaugeRPCServer:      gaugeSvr,
		checkpointScheduler: checkpointScheduler,
		weightManager:       weightMgr,
		gaugeManager:        gaugeMgr,
		mintManager:         mintMgr,
	}
	return ret, nil
}

func (s *server) Start() error {
	if s.gaugeRPCServer != nil {
		s.gaugeRPCServer.Start()
	}
	if s.checkpointScheduler != nil {
		if err := s.checkpointScheduler.Start(); err != nil {
			return err
		}
	}
	return nil
}

func (s *server) Stop() {
	if s.checkpointScheduler != nil {
		s.checkpointScheduler.Stop()
	}
	if s.gaugeRPCServer != nil {
		if err := s.gaugeRPCServer.Stop(); err != nil {
			gaugeLog.Errorf("Problem shutting down rpc server: %v", err)
		}
	}
}
