package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/coffee-audit-api/internal/domain/entity"
	"github.com/yourusername/coffee-audit-api/internal/domain/repository"
	apperrors "github.com/yourusername/coffee-audit-api/internal/pkg/errors"
)

var kpiNow = time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)

func newKPIServiceForTest(repo *MockKPIRepository, cache *MockCacheRepository) *KPIService {
	var c repository.CacheRepository
	if cache != nil {
		c = cache
	}
	s := NewKPIService(repo, c, time.Minute, 0)
	s.now = func() time.Time { return kpiNow }
	return s
}

// allTime совпадает с фильтром без ограничения по дате
func allTime(f repository.AuditFilter) bool { return f.From == nil }

// thisMonth совпадает с фильтром, начинающимся с первого числа текущего месяца
func thisMonth(f repository.AuditFilter) bool {
	return f.From != nil && f.From.Equal(time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))
}

func TestKPIService_DefaultThreshold(t *testing.T) {
	s := NewKPIService(new(MockKPIRepository), nil, 0, 0)
	assert.Equal(t, 80.0, s.ComplianceThreshold())

	s = NewKPIService(new(MockKPIRepository), nil, 0, 90)
	assert.Equal(t, 90.0, s.ComplianceThreshold())
}

func TestKPIService_GetKPI_ViewerWithoutCoffee(t *testing.T) {
	// Arrange
	repo := new(MockKPIRepository)
	repo.On("CountCoffees", false).Return(int64(4), nil)
	s := newKPIServiceForTest(repo, nil)

	// Act
	kpi, err := s.GetKPI(context.Background(), entity.Actor{UserID: 30, Role: entity.RoleViewer})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(0), kpi.TotalAudits)
	assert.Equal(t, int64(4), kpi.TotalCoffeeShops)
	assert.NotNil(t, kpi.RecentTrend)
	assert.Empty(t, kpi.RecentTrend)
	assert.Nil(t, kpi.TopPerformer)
	repo.AssertNotCalled(t, "Stats", mock.Anything)
}

func TestKPIService_GetKPI_UnknownRole(t *testing.T) {
	s := newKPIServiceForTest(new(MockKPIRepository), nil)

	_, err := s.GetKPI(context.Background(), entity.Actor{UserID: 1, Role: entity.Role("GUEST")})

	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
}

func TestKPIService_Snapshot_NoAudits(t *testing.T) {
	// Arrange
	repo := new(MockKPIRepository)
	repo.On("CountCoffees", false).Return(int64(2), nil)
	repo.On("Stats", repository.AuditFilter{}).Return(repository.ScoreStats{}, nil)
	s := newKPIServiceForTest(repo, nil)

	// Act
	kpi, err := s.Snapshot(repository.AuditFilter{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(0), kpi.TotalAudits)
	assert.Equal(t, 0.0, kpi.ComplianceRate)
	assert.Equal(t, int64(2), kpi.TotalCoffeeShops)
	repo.AssertNotCalled(t, "CountAtLeast", mock.Anything, mock.Anything)
}

func TestKPIService_Snapshot_ComputesRoundedValues(t *testing.T) {
	// Arrange
	repo := new(MockKPIRepository)
	repo.On("CountCoffees", false).Return(int64(4), nil)
	repo.On("Stats", mock.MatchedBy(allTime)).Return(repository.ScoreStats{Count: 3, Average: 71.116666}, nil)
	repo.On("Stats", mock.MatchedBy(thisMonth)).Return(repository.ScoreStats{Count: 1, Average: 90.004}, nil)
	repo.On("CountAtLeast", mock.MatchedBy(allTime), 80.0).Return(int64(1), nil)
	repo.On("RecentScores", mock.MatchedBy(allTime), recentTrendLimit).Return([]float64{90.004, 66.666, 56.68}, nil)
	repo.On("TopCoffee", mock.MatchedBy(allTime)).Return(&repository.CoffeeAverage{CoffeeID: 1, CoffeeName: "ANFA", Average: 90, Count: 1}, nil)
	s := newKPIServiceForTest(repo, nil)

	// Act
	kpi, err := s.Snapshot(repository.AuditFilter{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(3), kpi.TotalAudits)
	assert.Equal(t, 71.12, kpi.AverageScore)
	assert.Equal(t, 33.33, kpi.ComplianceRate)
	assert.Equal(t, []float64{90, 66.67, 56.68}, kpi.RecentTrend)
	require.NotNil(t, kpi.TopPerformer)
	assert.Equal(t, "ANFA", *kpi.TopPerformer)
	assert.Equal(t, int64(1), kpi.AuditsThisMonth)
	assert.Equal(t, 90.0, kpi.AverageScoreThisMonth)
	repo.AssertExpectations(t)
}

func TestKPIService_Snapshot_RepositoryError(t *testing.T) {
	repo := new(MockKPIRepository)
	repo.On("CountCoffees", false).Return(int64(0), errors.New("db down"))
	s := newKPIServiceForTest(repo, nil)

	_, err := s.Snapshot(repository.AuditFilter{})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "count coffees")
}

func TestKPIService_GetKPI_CacheHit(t *testing.T) {
	// Arrange
	repo := new(MockKPIRepository)
	cache := new(MockCacheRepository)
	cache.On("Get", kpiVersionKey).Return("7", nil)
	cache.On("GetJSON", "kpi:v7:2026-03:all", mock.AnythingOfType("*entity.KPI")).
		Run(func(args mock.Arguments) {
			dest := args.Get(1).(*entity.KPI)
			dest.TotalAudits = 12
			dest.AverageScore = 81.5
		}).
		Return(nil)
	s := newKPIServiceForTest(repo, cache)

	// Act
	kpi, err := s.GetKPI(context.Background(), entity.Actor{UserID: 1, Role: entity.RoleAdmin})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(12), kpi.TotalAudits)
	assert.Equal(t, 81.5, kpi.AverageScore)
	repo.AssertNotCalled(t, "Stats", mock.Anything)
}

func TestKPIService_GetKPI_CacheMissStoresSnapshotPerScope(t *testing.T) {
	// Arrange
	coffeeID := uint(2)
	scope := repository.AuditFilter{CoffeeID: &coffeeID}

	repo := new(MockKPIRepository)
	repo.On("CountCoffees", false).Return(int64(4), nil)
	repo.On("Stats", scope).Return(repository.ScoreStats{}, nil)

	cache := new(MockCacheRepository)
	cache.On("Get", kpiVersionKey).Return("", apperrors.ErrNotFound)
	cache.On("GetJSON", "kpi:v0:2026-03:coffee:2", mock.Anything).Return(apperrors.ErrNotFound)
	cache.On("SetJSON", "kpi:v0:2026-03:coffee:2", mock.AnythingOfType("*entity.KPI"), time.Minute).Return(nil)
	s := newKPIServiceForTest(repo, cache)

	// Act
	kpi, err := s.GetKPI(context.Background(), entity.Actor{UserID: 30, Role: entity.RoleViewer, CoffeeID: &coffeeID})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(4), kpi.TotalCoffeeShops)
	repo.AssertCalled(t, "Stats", scope)
	cache.AssertExpectations(t)
}

func TestKPIService_GetKPI_CacheUnavailableFallsBackToDB(t *testing.T) {
	// Arrange
	repo := new(MockKPIRepository)
	repo.On("CountCoffees", false).Return(int64(1), nil)
	repo.On("Stats", mock.Anything).Return(repository.ScoreStats{}, nil)

	cache := new(MockCacheRepository)
	cache.On("Get", kpiVersionKey).Return("", errors.New("connection refused"))
	s := newKPIServiceForTest(repo, cache)

	// Act
	kpi, err := s.GetKPI(context.Background(), entity.Actor{UserID: 10, Role: entity.RoleAuditor})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(1), kpi.TotalCoffeeShops)
	cache.AssertNotCalled(t, "SetJSON", mock.Anything, mock.Anything, mock.Anything)
}

func TestKPIService_OnAuditChanged_BumpsVersion(t *testing.T) {
	cache := new(MockCacheRepository)
	cache.On("Increment", kpiVersionKey).Return(int64(8), nil)
	s := newKPIServiceForTest(new(MockKPIRepository), cache)

	s.OnAuditChanged(entity.AuditEvent{Type: entity.AuditCreated, AuditID: 5})

	cache.AssertCalled(t, "Increment", kpiVersionKey)
}

func TestKPIService_OnAuditChanged_WithoutCache(t *testing.T) {
	s := newKPIServiceForTest(new(MockKPIRepository), nil)

	assert.NotPanics(t, func() {
		s.OnAuditChanged(entity.AuditEvent{Type: entity.AuditDeleted, AuditID: 5})
	})
}
