package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultRefreshSchedule период фоновой перезагрузки выбранного месяца
const DefaultRefreshSchedule = "@every 1m"

// Refresher периодически перезагружает выбранный месяц, чтобы оптимистичные
// изменения и бронирования других клиентов сходились с сервером
type Refresher struct {
	cron    *cron.Cron
	machine *StateMachine
	timeout time.Duration
	logger  Logger
}

// NewRefresher создает фоновый обновлятель; timeout ограничивает один проход
func NewRefresher(machine *StateMachine, timeout time.Duration, logger Logger) *Refresher {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &Refresher{
		cron:    cron.New(),
		machine: machine,
		timeout: timeout,
		logger:  logger,
	}
}

// Start регистрирует задачу по cron-выражению expr (формат robfig/cron) и запускает планировщик
func (r *Refresher) Start(expr string) error {
	if expr == "" {
		expr = DefaultRefreshSchedule
	}
	if _, err := r.cron.AddFunc(expr, r.Run); err != nil {
		return fmt.Errorf("calendar: invalid refresh schedule %q: %w", expr, err)
	}
	r.cron.Start()
	r.logger.Info("calendar: background refresh scheduled %q", expr)
	return nil
}

// Stop останавливает планировщик и ждёт завершения текущего прохода
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
}

// Run выполняет один проход обновления
func (r *Refresher) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.machine.RefreshMonth(ctx); err != nil {
		r.logger.Warn("calendar: background refresh failed: %v", err)
	}
}
