package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-battle/internal/battle"
)

// Battler runs a battle between two cities.
type Battler interface {
	Battle(ctx context.Context, cityA, cityB string) (battle.Result, error)
}

// Scheduler periodically battles the configured pair of cities.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Battler
	cities    [2]string
	interval  time.Duration
	timeout   time.Duration
	logger    *slog.Logger
}

// New creates a new Scheduler.
func New(cities [2]string, interval time.Duration, service Battler, logger *slog.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		cities:    cities,
		interval:  interval,
		timeout:   30 * time.Second,
		logger:    logger.With("component", "scheduler"),
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 60
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce battles the configured cities and logs the outcome.
func (s *Scheduler) RunOnce(ctx context.Context) (battle.Result, error) {
	s.logger.Info("running scheduled battle", "city_1", s.cities[0], "city_2", s.cities[1])

	res, err := s.service.Battle(ctx, s.cities[0], s.cities[1])
	if err != nil {
		s.logger.Error("scheduled battle failed", "error", err)
		return battle.Result{}, err
	}

	s.logger.Info("scheduled battle completed",
		"run_id", res.RunID,
		"winner", res.Decision.Winner,
		"criterion", res.Decision.Criterion,
	)
	return res, nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
