package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/yourusername/coffee-audit-api/internal/domain/repository"
)

type MockReportSender struct {
	mock.Mock
}

func (m *MockReportSender) SendPeriodReport(ctx context.Context, period repository.ReportPeriod, now time.Time) (int, error) {
	args := m.Called(period)
	return args.Int(0), args.Error(1)
}

func TestDueReports(t *testing.T) {
	// 2026-06-01 - понедельник и первое число месяца
	monday1st := time.Date(2026, time.June, 1, 8, 0, 0, 0, time.UTC)
	tuesday := time.Date(2026, time.June, 2, 8, 0, 0, 0, time.UTC)
	monday := time.Date(2026, time.June, 8, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		last map[repository.ReportPeriod]string
		want []repository.ReportPeriod
	}{
		{
			name: "до часа отправки",
			now:  time.Date(2026, time.June, 2, 6, 59, 0, 0, time.UTC),
			want: nil,
		},
		{
			name: "обычный день",
			now:  tuesday,
			want: []repository.ReportPeriod{repository.ReportDaily},
		},
		{
			name: "понедельник",
			now:  monday,
			want: []repository.ReportPeriod{repository.ReportDaily, repository.ReportWeekly},
		},
		{
			name: "понедельник и первое число",
			now:  monday1st,
			want: []repository.ReportPeriod{repository.ReportDaily, repository.ReportWeekly, repository.ReportMonthly},
		},
		{
			name: "уже отправлено сегодня",
			now:  monday,
			last: map[repository.ReportPeriod]string{repository.ReportDaily: "2026-06-08", repository.ReportWeekly: "2026-06-08"},
			want: nil,
		},
		{
			name: "вчерашняя отправка не считается",
			now:  tuesday,
			last: map[repository.ReportPeriod]string{repository.ReportDaily: "2026-06-01"},
			want: []repository.ReportPeriod{repository.ReportDaily},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			last := tt.last
			if last == nil {
				last = map[repository.ReportPeriod]string{}
			}
			assert.Equal(t, tt.want, dueReports(tt.now, 7, last))
		})
	}
}

func TestReportScheduler_TickSendsOncePerDay(t *testing.T) {
	// Arrange
	sender := new(MockReportSender)
	sender.On("SendPeriodReport", repository.ReportDaily).Return(2, nil)
	s := NewReportScheduler(sender, 7, time.Minute, time.UTC)
	s.now = func() time.Time { return time.Date(2026, time.June, 2, 9, 0, 0, 0, time.UTC) }

	// Act
	s.tick(context.Background())
	s.tick(context.Background())

	// Assert
	sender.AssertNumberOfCalls(t, "SendPeriodReport", 1)
}

func TestReportScheduler_TickRetriesAfterFailure(t *testing.T) {
	// Arrange
	sender := new(MockReportSender)
	sender.On("SendPeriodReport", repository.ReportDaily).Return(0, errors.New("db down")).Once()
	sender.On("SendPeriodReport", repository.ReportDaily).Return(1, nil).Once()
	s := NewReportScheduler(sender, 7, time.Minute, time.UTC)
	s.now = func() time.Time { return time.Date(2026, time.June, 2, 9, 0, 0, 0, time.UTC) }

	// Act
	s.tick(context.Background())
	s.tick(context.Background())
	s.tick(context.Background())

	// Assert
	sender.AssertNumberOfCalls(t, "SendPeriodReport", 2)
}

func TestReportScheduler_RunStopsOnCancel(t *testing.T) {
	s := NewReportScheduler(new(MockReportSender), 7, time.Hour, time.UTC)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run не завершился после отмены контекста")
	}
}
