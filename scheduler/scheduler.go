package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/gaugesuite/emission-gauge-server/gaugemgr"
	"github.com/gaugesuite/emission-gauge-server/metrics"
	"github.com/gaugesuite/emission-gauge-server/utils"
	"github.com/gaugesuite/emission-gauge-server/weightmgr"

	"github.com/robfig/cron/v3"
)

// Scheduler periodically checkpoints every registered gauge so that no
// on-demand call ever has to walk a long history of epochs. Each run fills
// the weight series and advances the reward integrals to the current time.
type Scheduler struct {
	weightMgr *weightmgr.WeightManager
	gaugeMgr  *gaugemgr.GaugeManager
	spec      string

	cron    *cron.Cron
	started bool
	mu      sync.Mutex
}

// New returns a scheduler running checkpoints on the given cron spec. An
// empty spec defaults to hourly.
func New(weightMgr *weightmgr.WeightManager, gaugeMgr *gaugemgr.GaugeManager, spec string) *Scheduler {
	if spec == "" {
		spec = "@hourly"
	}
	return &Scheduler{
		weightMgr: weightMgr,
		gaugeMgr:  gaugeMgr,
		spec:      spec,
	}
}

// Start registers the checkpoint job and launches the cron loop.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.spec, s.CheckpointAll); err != nil {
		return err
	}
	s.cron.Start()
	s.started = true
	log.Infof("Checkpoint scheduler started, spec %q", s.spec)
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.started = false
	log.Info("Checkpoint scheduler stopped")
}

// CheckpointAll advances every gauge to now. A failing gauge is logged and
// skipped; the rest of the sweep continues.
func (s *Scheduler) CheckpointAll() {
	defer utils.MyRecover()

	ctx := context.Background()
	start := time.Now()

	gauges, err := s.weightMgr.GetGauges(ctx)
	if err != nil {
		log.Errorf("Checkpoint sweep: unable to list gauges: %v", err)
		return
	}

	var failed int
	for _, g := range gauges {
		if err := s.gaugeMgr.CheckpointGauge(ctx, g.GaugeID); err != nil {
			log.Errorf("Checkpoint sweep: gauge %v: %v", g.GaugeID, err)
			failed++
			continue
		}
	}

	metrics.ObserveCheckpointSweep(len(gauges), failed, time.Since(start))
	log.Debugf("Checkpoint sweep finished: %v gauges, %v failed, took %v",
		len(gauges), failed, time.Since(start))
}
