package services

import (
	"context"
	"log"
	"time"

	"qcc-stakevault/internal/config"

	"github.com/robfig/cron/v3"
)

// jobTimeout caps one scheduled pass; both jobs make many sequential network
// calls, so this stays generous.
const jobTimeout = 30 * time.Minute

// CronService schedules the background passes: the expiry sweep and the two
// reconciliation scans. Each entry is also manually triggerable over the
// admin API; the conditional status updates keep a manual trigger racing a
// scheduled pass harmless.
type CronService struct {
	cron      *cron.Cron
	sweep     *SweepService
	reconcile *ReconcileService
	cfg       config.CronConfig
}

// NewCronService creates a new cron service
func NewCronService(sweep *SweepService, reconcile *ReconcileService, cfg config.CronConfig) *CronService {
	return &CronService{
		cron:      cron.New(),
		sweep:     sweep,
		reconcile: reconcile,
		cfg:       cfg,
	}
}

// Start registers and launches all scheduled jobs
func (s *CronService) Start() {
	s.mustAdd("expiry sweep", s.cfg.SweepSpec, func(ctx context.Context) error {
		_, err := s.sweep.SweepExpired(ctx)
		return err
	})
	s.mustAdd("recent deposit scan", s.cfg.ScanRecentSpec, func(ctx context.Context) error {
		_, err := s.reconcile.ScanRecent(ctx)
		return err
	})
	s.mustAdd("stale quarantine scan", s.cfg.ScanStaleSpec, func(ctx context.Context) error {
		_, err := s.reconcile.ScanStale(ctx)
		return err
	})

	s.cron.Start()
	log.Println("🚀 CronService started")
}

// Stop halts the scheduler, waiting for a running job to finish
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 CronService stopped")
}

func (s *CronService) mustAdd(name, spec string, job func(context.Context) error) {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		log.Printf("⏰ Scheduled %s starting", name)
		if err := job(ctx); err != nil {
			log.Printf("❌ Scheduled %s failed: %v", name, err)
			return
		}
		log.Printf("✅ Scheduled %s finished", name)
	})
	if err != nil {
		log.Fatalf("❌ Invalid cron spec for %s (%q): %v", name, spec, err)
	}
}
