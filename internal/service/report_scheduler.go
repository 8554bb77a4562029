package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/yourusername/coffee-audit-api/internal/domain/repository"
)

// ReportSender - то, что планировщик вызывает по расписанию
type ReportSender interface {
	SendPeriodReport(ctx context.Context, period repository.ReportPeriod, now time.Time) (int, error)
}

// ReportScheduler раз в интервал проверяет, не пора ли отправить отчеты.
// Daily - каждый день, weekly - по понедельникам, monthly - первого числа, не раньше sendHour.
type ReportScheduler struct {
	sender   ReportSender
	sendHour int
	interval time.Duration
	location *time.Location

	mu   sync.Mutex
	last map[repository.ReportPeriod]string // дата последней отправки, YYYY-MM-DD
	now  func() time.Time
}

// NewReportScheduler создает новый планировщик отчетов
func NewReportScheduler(sender ReportSender, sendHour int, interval time.Duration, location *time.Location) *ReportScheduler {
	if sendHour < 0 || sendHour > 23 {
		sendHour = 7
	}
	if interval <= 0 {
		interval = time.Minute
	}
	if location == nil {
		location = time.Local
	}
	return &ReportScheduler{
		sender:   sender,
		sendHour: sendHour,
		interval: interval,
		location: location,
		last:     make(map[repository.ReportPeriod]string),
		now:      time.Now,
	}
}

// Run блокируется до отмены ctx
func (s *ReportScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("[ReportScheduler] Запуск планировщика отчетов (проверка каждые %s, отправка после %02d:00)", s.interval, s.sendHour)

	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
		case <-ctx.Done():
			log.Println("[ReportScheduler] Завершение работы планировщика отчетов")
			return
		}
	}
}

func (s *ReportScheduler) tick(ctx context.Context) {
	now := s.now().In(s.location)

	s.mu.Lock()
	due := dueReports(now, s.sendHour, s.last)
	s.mu.Unlock()

	for _, period := range due {
		if _, err := s.sender.SendPeriodReport(ctx, period, now); err != nil {
			log.Printf("[ReportScheduler] Ошибка отправки %s отчета: %v", period, err)
			continue // повторим на следующем тике
		}
		s.mu.Lock()
		s.last[period] = now.Format("2006-01-02")
		s.mu.Unlock()
	}
}

// dueReports возвращает периоды, по которым отчет положен сегодня и еще не отправлен
func dueReports(now time.Time, sendHour int, last map[repository.ReportPeriod]string) []repository.ReportPeriod {
	if now.Hour() < sendHour {
		return nil
	}
	today := now.Format("2006-01-02")

	candidates := []repository.ReportPeriod{repository.ReportDaily}
	if now.Weekday() == time.Monday {
		candidates = append(candidates, repository.ReportWeekly)
	}
	if now.Day() == 1 {
		candidates = append(candidates, repository.ReportMonthly)
	}

	var due []repository.ReportPeriod
	for _, p := range candidates {
		if last[p] != today {
			due = append(due, p)
		}
	}
	return due
}
