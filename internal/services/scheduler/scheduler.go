// Package services запускает ежедневную проверку истёкших подписок по расписанию cron.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/fithub/membership-service/internal/lib/sl"
)

var parser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Sweeper переводит истёкшие подписки в EXPIRED.
type Sweeper interface {
	ExpireSubscriptions(ctx context.Context) (int, error)
}

// SchedulerService вызывает Sweeper по расписанию. Запуски не перекрываются:
// если предыдущий ещё идёт, очередной пропускается.
type SchedulerService struct {
	sweeper  Sweeper
	spec     string
	schedule cron.Schedule
	cron     *cron.Cron
	log      *slog.Logger
}

// NewSchedulerService создает новый экземпляр SchedulerService. spec задаётся
// в формате cron с секундами, например "0 0 2 * * *".
func NewSchedulerService(sweeper Sweeper, spec string, loc *time.Location, log *slog.Logger) (*SchedulerService, error) {
	const op = "scheduler.New"

	if loc == nil {
		loc = time.UTC
	}
	logger := cronLogger{log: log}
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLocation(loc),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	tzSpec := spec
	if !strings.HasPrefix(spec, "CRON_TZ=") && !strings.HasPrefix(spec, "TZ=") {
		tzSpec = "CRON_TZ=" + loc.String() + " " + spec
	}
	schedule, err := parser.Parse(tzSpec)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid expiry cron %q: %w", op, spec, err)
	}

	return &SchedulerService{
		sweeper:  sweeper,
		spec:     spec,
		schedule: schedule,
		cron:     c,
		log:      log,
	}, nil
}

// RunOnce выполняет одну проверку и возвращает её ошибку.
func (s *SchedulerService) RunOnce(ctx context.Context) error {
	s.log.Info("starting expiry sweep")
	start := time.Now()

	n, err := s.sweeper.ExpireSubscriptions(ctx)
	if err != nil {
		s.log.Error("expiry sweep failed", slog.Int("expired", n), sl.Err(err))
		return err
	}
	s.log.Info("expiry sweep done", slog.Int("expired", n), slog.Duration("took", time.Since(start)))
	return nil
}

// Start регистрирует задачу и блокируется до отмены ctx. После отмены
// дожидается завершения уже запущенной проверки.
func (s *SchedulerService) Start(ctx context.Context) {
	// ошибка уже записана в лог
	s.cron.Schedule(s.schedule, cron.FuncJob(func() { _ = s.RunOnce(ctx) }))
	s.cron.Start()
	s.log.Info("scheduler started", slog.String("cron", s.spec))

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// cronLogger направляет служебный лог cron в slog.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append([]any{sl.Err(err)}, keysAndValues...)...)
}
