package service

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/yourusername/coffee-audit-api/internal/domain/entity"
	"github.com/yourusername/coffee-audit-api/internal/domain/repository"
	"github.com/yourusername/coffee-audit-api/internal/service/scoring"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportWindow - полуинтервал [From, To) периода отчета
type ReportWindow struct {
	Period repository.ReportPeriod
	From   time.Time
	To     time.Time
}

// WindowFor возвращает завершившийся период, предшествующий моменту now:
// вчера для daily, прошлая неделя (пн-вс) для weekly, прошлый месяц для monthly.
func WindowFor(period repository.ReportPeriod, now time.Time) (ReportWindow, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch period {
	case repository.ReportDaily:
		return ReportWindow{Period: period, From: today.AddDate(0, 0, -1), To: today}, nil
	case repository.ReportWeekly:
		// time.Weekday: воскресенье = 0, неделя начинается с понедельника
		offset := (int(today.Weekday()) + 6) % 7
		monday := today.AddDate(0, 0, -offset)
		return ReportWindow{Period: period, From: monday.AddDate(0, 0, -7), To: monday}, nil
	case repository.ReportMonthly:
		start := repository.MonthStart(today)
		return ReportWindow{Period: period, From: start.AddDate(0, -1, 0), To: start}, nil
	}
	return ReportWindow{}, fmt.Errorf("unknown report period %q", period)
}

// ReportService собирает KPI за период и рассылает их подписанным пользователям.
// Каждый получатель видит только аудиты в своей области видимости.
type ReportService struct {
	kpiService *KPIService
	kpiRepo    repository.KPIRepository
	userRepo   repository.UserRepository
	email      EmailService
}

// NewReportService создает новый сервис отчетов
func NewReportService(kpiService *KPIService, kpiRepo repository.KPIRepository, userRepo repository.UserRepository, email EmailService) *ReportService {
	if email == nil {
		email = &NoopEmailService{}
	}
	return &ReportService{kpiService: kpiService, kpiRepo: kpiRepo, userRepo: userRepo, email: email}
}

// periodReport - данные одного отчета, общие для получателей с одинаковой областью видимости
type periodReport struct {
	kpi      *entity.KPI
	averages []repository.CoffeeAverage
	xlsx     []byte
}

// SendPeriodReport рассылает отчет за завершившийся период. Возвращает число отправленных писем.
// Ошибка отправки одному получателю не прерывает рассылку остальным.
func (s *ReportService) SendPeriodReport(ctx context.Context, period repository.ReportPeriod, now time.Time) (int, error) {
	window, err := WindowFor(period, now)
	if err != nil {
		return 0, err
	}

	recipients, err := s.userRepo.ListReportRecipients(period)
	if err != nil {
		return 0, fmt.Errorf("list %s report recipients: %w", period, err)
	}
	if len(recipients) == 0 {
		log.Printf("[ReportService] Нет подписчиков на %s отчет", period)
		return 0, nil
	}

	reports := make(map[string]*periodReport)
	sent, failed := 0, 0
	var lastErr error
	for i := range recipients {
		user := &recipients[i]
		if err := ctx.Err(); err != nil {
			return sent, err
		}

		filter, ok, err := AuditScopeFor(user.Actor())
		if err != nil || !ok {
			log.Printf("[ReportService] Пропуск %s: нет области видимости аудитов", user.Email)
			continue
		}
		filter.From = &window.From
		filter.To = &window.To

		key := scopeKey(filter)
		report, found := reports[key]
		if !found {
			report, err = s.buildReport(window, filter)
			if err != nil {
				return sent, err
			}
			reports[key] = report
		}

		msg := composeReportEmail(user, window, report)
		if err := s.email.Send(ctx, msg); err != nil {
			log.Printf("[ReportService] Ошибка отправки %s отчета на %s: %v", period, user.Email, err)
			failed++
			lastErr = err
			continue
		}
		sent++
	}

	log.Printf("[ReportService] %s отчет за %s - %s отправлен %d из %d получателей",
		period, window.From.Format("2006-01-02"), window.To.Format("2006-01-02"), sent, len(recipients))
	// Период остается неотправленным и повторяется целиком; ключ идемпотентности
	// не даст уже получившим письмо адресатам получить его второй раз.
	if failed > 0 {
		return sent, fmt.Errorf("%s report: %d of %d sends failed: %w", period, failed, sent+failed, lastErr)
	}
	return sent, nil
}

func (s *ReportService) buildReport(window ReportWindow, filter repository.AuditFilter) (*periodReport, error) {
	kpi, err := s.kpiService.Snapshot(filter)
	if err != nil {
		return nil, fmt.Errorf("report kpi: %w", err)
	}
	averages, err := s.kpiRepo.AveragesByCoffee(filter)
	if err != nil {
		return nil, fmt.Errorf("report averages: %w", err)
	}
	xlsx, err := BuildReportWorkbook(window, kpi, averages)
	if err != nil {
		return nil, err
	}
	return &periodReport{kpi: kpi, averages: averages, xlsx: xlsx}, nil
}

// BuildReportWorkbook формирует xlsx: лист со сводкой KPI и лист со средними по кофейням
func BuildReportWorkbook(window ReportWindow, kpi *entity.KPI, averages []repository.CoffeeAverage) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	summary := "Synthèse"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	top := "-"
	if kpi.TopPerformer != nil {
		top = SanitizeForExcel(*kpi.TopPerformer)
	}
	rows := [][]interface{}{
		{"Période", fmt.Sprintf("%s - %s", window.From.Format("02/01/2006"), window.To.AddDate(0, 0, -1).Format("02/01/2006"))},
		{"Nombre d'audits", kpi.TotalAudits},
		{"Score moyen (%)", kpi.AverageScore},
		{"Taux de conformité (%)", kpi.ComplianceRate},
		{"Meilleur café", top},
		{"Nombre de cafés", kpi.TotalCoffeeShops},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summary, cell, &row); err != nil {
			return nil, fmt.Errorf("write summary row %d: %w", i+1, err)
		}
	}

	details := "Cafés"
	if _, err := f.NewSheet(details); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(details)
	if err != nil {
		return nil, fmt.Errorf("create stream writer: %w", err)
	}
	if err := sw.SetRow("A1", []interface{}{"Café", "Audits", "Score moyen (%)"}); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, a := range averages {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{SanitizeForExcel(a.CoffeeName), a.Count, scoring.Round2(a.Average)}
		if err := sw.SetRow(cell, row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("flush: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func composeReportEmail(user *entity.User, window ReportWindow, report *periodReport) EmailMessage {
	title := map[repository.ReportPeriod]string{
		repository.ReportDaily:   "Rapport quotidien",
		repository.ReportWeekly:  "Rapport hebdomadaire",
		repository.ReportMonthly: "Rapport mensuel",
	}[window.Period]
	from := window.From.Format("02/01/2006")

	name := user.FullName
	if name == "" {
		name = user.Email
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Bonjour %s,\n\n", name)
	fmt.Fprintf(&text, "%s des audits à partir du %s.\n", title, from)
	fmt.Fprintf(&text, "Nombre d'audits : %d\n", report.kpi.TotalAudits)
	fmt.Fprintf(&text, "Score moyen : %.2f%%\n", report.kpi.AverageScore)
	fmt.Fprintf(&text, "Taux de conformité : %.2f%%\n", report.kpi.ComplianceRate)
	for _, a := range report.averages {
		fmt.Fprintf(&text, "  - %s : %.2f%% (%d audits)\n", a.CoffeeName, scoring.Round2(a.Average), a.Count)
	}

	var body strings.Builder
	fmt.Fprintf(&body, "<p>Bonjour %s,</p>", html.EscapeString(name))
	fmt.Fprintf(&body, "<p>%s des audits à partir du %s.</p>", title, from)
	fmt.Fprintf(&body, "<p><b>Nombre d'audits :</b> %d<br><b>Score moyen :</b> %.2f%%<br><b>Taux de conformité :</b> %.2f%%</p>",
		report.kpi.TotalAudits, report.kpi.AverageScore, report.kpi.ComplianceRate)

	return EmailMessage{
		To:      user.Email,
		Subject: fmt.Sprintf("%s - audits Caribou Coffee (%s)", title, from),
		Text:    text.String(),
		HTML:    body.String(),
		Attachments: []EmailAttachment{{
			Filename:    fmt.Sprintf("rapport-%s-%s.xlsx", window.Period, window.From.Format("2006-01-02")),
			ContentType: xlsxContentType,
			Content:     report.xlsx,
		}},
		IdempotencyKey: fmt.Sprintf("report-%s-%s-%d", window.Period, window.From.Format("2006-01-02"), user.ID),
	}
}

func scopeKey(filter repository.AuditFilter) string {
	switch {
	case filter.AuditorID != nil:
		return fmt.Sprintf("auditor:%d", *filter.AuditorID)
	case filter.CoffeeID != nil:
		return fmt.Sprintf("coffee:%d", *filter.CoffeeID)
	}
	return "all"
}

// SanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func SanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}
