package entity

// KPI - агрегированные показатели по видимым вызывающему аудитам
type KPI struct {
	TotalAudits           int64     `json:"total_audits"`
	AverageScore          float64   `json:"average_score"`
	TopPerformer          *string   `json:"top_performer"`
	RecentTrend           []float64 `json:"recent_trend"`
	ComplianceRate        float64   `json:"compliance_rate"`
	TotalCoffeeShops      int64     `json:"total_coffee_shops"`
	AuditsThisMonth       int64     `json:"audits_this_month"`
	AverageScoreThisMonth float64   `json:"average_score_this_month"`
}
