package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/coffee-audit-api/internal/domain/entity"
	"github.com/yourusername/coffee-audit-api/internal/domain/repository"
	"github.com/yourusername/coffee-audit-api/internal/service/scoring"
)

const (
	kpiVersionKey    = "kpi:version"
	recentTrendLimit = 10
)

// KPIService считает агрегированные показатели по аудитам, видимым вызывающему.
// Результат кешируется в Redis; любое изменение аудита сбрасывает кеш через версию ключа.
type KPIService struct {
	kpiRepo             repository.KPIRepository
	cache               repository.CacheRepository // может быть nil
	cacheTTL            time.Duration
	complianceThreshold float64
	now                 func() time.Time
}

// NewKPIService создает новый сервис показателей
func NewKPIService(kpiRepo repository.KPIRepository, cache repository.CacheRepository, cacheTTL time.Duration, complianceThreshold float64) *KPIService {
	if complianceThreshold <= 0 {
		complianceThreshold = 80
	}
	return &KPIService{
		kpiRepo:             kpiRepo,
		cache:               cache,
		cacheTTL:            cacheTTL,
		complianceThreshold: complianceThreshold,
		now:                 time.Now,
	}
}

// GetKPI возвращает показатели в области видимости вызывающего
func (s *KPIService) GetKPI(ctx context.Context, actor entity.Actor) (*entity.KPI, error) {
	filter, ok, err := AuditScopeFor(actor)
	if err != nil {
		return nil, err
	}
	if !ok {
		coffees, err := s.kpiRepo.CountCoffees(false)
		if err != nil {
			return nil, err
		}
		return emptyKPI(coffees), nil
	}

	key := s.cacheKey(filter)
	if key != "" {
		var cached entity.KPI
		if err := s.cache.GetJSON(key, &cached); err == nil {
			return &cached, nil
		} else if !IsNotFoundErr(err) {
			log.Printf("[KPIService] Ошибка чтения кеша %s: %v", key, err)
		}
	}

	kpi, err := s.Snapshot(filter)
	if err != nil {
		return nil, err
	}

	if key != "" {
		if err := s.cache.SetJSON(key, kpi, s.cacheTTL); err != nil {
			log.Printf("[KPIService] Ошибка записи кеша %s: %v", key, err)
		}
	}
	return kpi, nil
}

// Snapshot считает показатели по фильтру без кеша
func (s *KPIService) Snapshot(filter repository.AuditFilter) (*entity.KPI, error) {
	coffees, err := s.kpiRepo.CountCoffees(false)
	if err != nil {
		return nil, fmt.Errorf("count coffees: %w", err)
	}

	stats, err := s.kpiRepo.Stats(filter)
	if err != nil {
		return nil, fmt.Errorf("audit stats: %w", err)
	}
	if stats.Count == 0 {
		return emptyKPI(coffees), nil
	}

	compliant, err := s.kpiRepo.CountAtLeast(filter, s.complianceThreshold)
	if err != nil {
		return nil, fmt.Errorf("compliance count: %w", err)
	}

	recent, err := s.kpiRepo.RecentScores(filter, recentTrendLimit)
	if err != nil {
		return nil, fmt.Errorf("recent scores: %w", err)
	}
	trend := make([]float64, len(recent))
	for i, v := range recent {
		trend[i] = scoring.Round2(v)
	}

	top, err := s.kpiRepo.TopCoffee(filter)
	if err != nil {
		return nil, fmt.Errorf("top coffee: %w", err)
	}
	var topName *string
	if top != nil {
		name := top.CoffeeName
		topName = &name
	}

	monthFilter := filter
	monthStart := repository.MonthStart(s.now())
	monthFilter.From = &monthStart
	month, err := s.kpiRepo.Stats(monthFilter)
	if err != nil {
		return nil, fmt.Errorf("month stats: %w", err)
	}

	return &entity.KPI{
		TotalAudits:           stats.Count,
		AverageScore:          scoring.Round2(stats.Average),
		TopPerformer:          topName,
		RecentTrend:           trend,
		ComplianceRate:        scoring.Round2(float64(compliant) / float64(stats.Count) * 100),
		TotalCoffeeShops:      coffees,
		AuditsThisMonth:       month.Count,
		AverageScoreThisMonth: scoring.Round2(month.Average),
	}, nil
}

// ComplianceThreshold возвращает порог оценки, с которого аудит считается соответствующим
func (s *KPIService) ComplianceThreshold() float64 {
	return s.complianceThreshold
}

// OnAuditChanged реализует AuditObserver: сдвигает версию, старые ключи истекают сами
func (s *KPIService) OnAuditChanged(event entity.AuditEvent) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Increment(kpiVersionKey); err != nil {
		log.Printf("[KPIService] Не удалось сбросить кеш KPI после %s аудита #%d: %v", event.Type, event.AuditID, err)
	}
}

// cacheKey возвращает пустую строку, если кеш недоступен
func (s *KPIService) cacheKey(filter repository.AuditFilter) string {
	if s.cache == nil || s.cacheTTL <= 0 {
		return ""
	}
	version, err := s.cache.Get(kpiVersionKey)
	if err != nil {
		if !IsNotFoundErr(err) {
			log.Printf("[KPIService] Кеш недоступен: %v", err)
			return ""
		}
		version = "0"
	}
	// месяц входит в ключ: показатели "за этот месяц" не должны пережить его смену
	return fmt.Sprintf("kpi:v%s:%s:%s", version, s.now().Format("2006-01"), scopeKey(filter))
}

func emptyKPI(coffees int64) *entity.KPI {
	return &entity.KPI{
		RecentTrend:      []float64{},
		TotalCoffeeShops: coffees,
	}
}
