package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/yourusername/coffee-audit-api/internal/domain/entity"
	"github.com/yourusername/coffee-audit-api/internal/domain/repository"
	"github.com/yourusername/coffee-audit-api/internal/handler/dto"
	apperrors "github.com/yourusername/coffee-audit-api/internal/pkg/errors"
	"github.com/yourusername/coffee-audit-api/internal/pkg/optional"
	"github.com/yourusername/coffee-audit-api/internal/service/scoring"
	"github.com/yourusername/coffee-audit-api/internal/storage"
)

// AuditObserver получает уведомления об аудитах после успешного коммита
type AuditObserver interface {
	OnAuditChanged(event entity.AuditEvent)
}

// AuditService управляет жизненным циклом аудита: создание, замена ответов,
// удаление и фильтрация чтения по роли. Аудит, его ответы и оценка всегда
// пишутся одной транзакцией.
type AuditService struct {
	auditRepo repository.AuditRepository
	images    storage.ImageStore
	observers []AuditObserver
}

// NewAuditService создает новый сервис аудитов
func NewAuditService(auditRepo repository.AuditRepository, images storage.ImageStore, observers ...AuditObserver) *AuditService {
	return &AuditService{
		auditRepo: auditRepo,
		images:    images,
		observers: observers,
	}
}

// AddObserver подписывает наблюдателя на изменения аудитов
func (s *AuditService) AddObserver(o AuditObserver) {
	s.observers = append(s.observers, o)
}

// AuditScopeFor строит фильтр чтения для вызывающего.
// ok == false означает "видеть нечего" (наблюдатель без кофейни).
func AuditScopeFor(actor entity.Actor) (filter repository.AuditFilter, ok bool, err error) {
	switch actor.Role {
	case entity.RoleAdmin:
		return repository.AuditFilter{}, true, nil
	case entity.RoleAuditor:
		id := actor.UserID
		return repository.AuditFilter{AuditorID: &id}, true, nil
	case entity.RoleViewer:
		if actor.CoffeeID == nil {
			return repository.AuditFilter{}, false, nil
		}
		coffeeID := *actor.CoffeeID
		return repository.AuditFilter{CoffeeID: &coffeeID}, true, nil
	}
	return repository.AuditFilter{}, false, fmt.Errorf("%w: unknown role %q", apperrors.ErrForbidden, actor.Role)
}

// ListAudits возвращает страницу аудитов, видимых вызывающему.
// Наблюдатель без назначенной кофейни получает пустой список без ошибки.
func (s *AuditService) ListAudits(ctx context.Context, actor entity.Actor, page, pageSize int) ([]entity.Audit, int64, error) {
	filter, ok, err := AuditScopeFor(actor)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return []entity.Audit{}, 0, nil
	}
	page, pageSize = normalizePage(page, pageSize)

	audits, total, err := s.auditRepo.List(filter, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("list audits: %w", err)
	}
	if audits == nil {
		audits = []entity.Audit{}
	}
	return audits, total, nil
}

// ListAllVisible возвращает все видимые вызывающему аудиты без ответов (для выгрузки)
func (s *AuditService) ListAllVisible(ctx context.Context, actor entity.Actor) ([]entity.Audit, error) {
	filter, ok, err := AuditScopeFor(actor)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []entity.Audit{}, nil
	}
	return s.auditRepo.ListAll(filter)
}

// GetAudit возвращает аудит, если вызывающему разрешено его видеть
func (s *AuditService) GetAudit(ctx context.Context, actor entity.Actor, id uint) (*entity.Audit, error) {
	audit, err := s.auditRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !actor.CanViewAudit(audit) {
		return nil, fmt.Errorf("%w: audit #%d is not visible to user #%d", apperrors.ErrForbidden, id, actor.UserID)
	}
	return audit, nil
}

// CreateAudit создает аудит вместе с ответами и итоговой оценкой
func (s *AuditService) CreateAudit(ctx context.Context, actor entity.Actor, req dto.CreateAuditRequest) (*entity.Audit, error) {
	if !actor.CanCreateAudit() {
		return nil, fmt.Errorf("%w: role %s cannot create audits", apperrors.ErrForbidden, actor.Role)
	}
	if req.CoffeeID == 0 {
		return nil, fmt.Errorf("%w: coffee_id is required", apperrors.ErrValidation)
	}
	if err := validateAnswers(req.Answers); err != nil {
		return nil, err
	}

	uploads := &uploadSet{store: s.images}
	var created *entity.Audit

	err := s.auditRepo.Transaction(ctx, func(tx repository.AuditTx) error {
		exists, err := tx.CoffeeExists(req.CoffeeID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: coffee #%d", apperrors.ErrNotFound, req.CoffeeID)
		}

		photoURL, err := uploads.save(req.PhotoData)
		if err != nil {
			return err
		}

		// Оценка считается до вставки: аудит никогда не бывает виден с заглушкой вместо score
		answers, result, err := s.scoreAnswers(tx, req.Answers, uploads, nil)
		if err != nil {
			return err
		}

		audit := &entity.Audit{
			CoffeeID:          req.CoffeeID,
			AuditorID:         actor.UserID,
			Shift:             req.Shift,
			StaffPresent:      req.StaffPresent,
			CorrectiveActions: req.CorrectiveActions,
			TrainingNeeds:     req.TrainingNeeds,
			Purchases:         req.Purchases,
			PhotoURL:          photoURL,
			Score:             result.Percentage,
		}
		if err := tx.CreateAudit(audit); err != nil {
			return fmt.Errorf("create audit: %w", err)
		}

		for i := range answers {
			answers[i].AuditID = audit.ID
		}
		if err := tx.CreateAnswers(answers); err != nil {
			return fmt.Errorf("create answers for audit #%d: %w", audit.ID, err)
		}

		created, err = tx.GetAudit(audit.ID)
		return err
	})
	if err != nil {
		uploads.rollback()
		return nil, err
	}

	log.Printf("[AuditService] Аудит #%d создан пользователем #%d, кофейня #%d, оценка %.2f (ответов: %d)",
		created.ID, actor.UserID, created.CoffeeID, created.Score, len(created.Answers))
	s.notify(entity.AuditCreated, created)
	return created, nil
}

// UpdateAudit частично обновляет аудит. Контекстные поля меняются только если переданы.
// Если передан набор ответов, старые ответы удаляются и оценка пересчитывается в той же транзакции.
// Если ответы не переданы, ответы и оценка не меняются.
func (s *AuditService) UpdateAudit(ctx context.Context, actor entity.Actor, id uint, req dto.UpdateAuditRequest) (*entity.Audit, error) {
	var newAnswers []dto.AnswerRequest
	if req.Answers.Present() {
		newAnswers, _ = req.Answers.Value() // null трактуется как пустой набор
		if err := validateAnswers(newAnswers); err != nil {
			return nil, err
		}
	}
	if req.CoffeeID.IsNull() {
		return nil, fmt.Errorf("%w: coffee_id cannot be null", apperrors.ErrValidation)
	}
	if coffeeID, ok := req.CoffeeID.Value(); ok && coffeeID == 0 {
		return nil, fmt.Errorf("%w: coffee_id is required", apperrors.ErrValidation)
	}

	uploads := &uploadSet{store: s.images}
	var (
		updated  *entity.Audit
		orphaned []string
	)

	err := s.auditRepo.Transaction(ctx, func(tx repository.AuditTx) error {
		current, err := tx.GetAuditForUpdate(id)
		if err != nil {
			return err
		}
		if !actor.CanModifyAudit(current) {
			return fmt.Errorf("%w: user #%d cannot modify audit #%d", apperrors.ErrForbidden, actor.UserID, id)
		}

		fields := make(map[string]interface{})
		if coffeeID, ok := req.CoffeeID.Value(); ok && coffeeID != current.CoffeeID {
			exists, err := tx.CoffeeExists(coffeeID)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("%w: coffee #%d", apperrors.ErrNotFound, coffeeID)
			}
			fields["coffee_id"] = coffeeID
		}
		patchText(fields, "shift", req.Shift)
		patchText(fields, "staff_present", req.StaffPresent)
		patchText(fields, "corrective_actions", req.CorrectiveActions)
		patchText(fields, "training_needs", req.TrainingNeeds)
		patchText(fields, "purchases", req.Purchases)

		if req.PhotoData.Present() {
			photoURL, err := uploads.save(req.PhotoData.Ptr())
			if err != nil {
				return err
			}
			fields["photo_url"] = photoURL
			if current.PhotoURL != nil {
				orphaned = append(orphaned, *current.PhotoURL)
			}
		}

		if err := tx.UpdateFields(id, fields); err != nil {
			return fmt.Errorf("update audit #%d: %w", id, err)
		}

		if req.Answers.Present() {
			kept := answerPhotoURLs(current.Answers)
			answers, result, err := s.scoreAnswers(tx, newAnswers, uploads, kept)
			if err != nil {
				return err
			}
			if err := tx.DeleteAnswers(id); err != nil {
				return fmt.Errorf("delete answers of audit #%d: %w", id, err)
			}
			for i := range answers {
				answers[i].AuditID = id
			}
			if err := tx.CreateAnswers(answers); err != nil {
				return fmt.Errorf("create answers for audit #%d: %w", id, err)
			}
			if err := tx.UpdateScore(id, result.Percentage); err != nil {
				return fmt.Errorf("update score of audit #%d: %w", id, err)
			}
			orphaned = append(orphaned, unusedPhotos(kept, answers)...)
		}

		updated, err = tx.GetAudit(id)
		return err
	})
	if err != nil {
		uploads.rollback()
		return nil, err
	}

	s.removeFiles(orphaned)
	log.Printf("[AuditService] Аудит #%d обновлен пользователем #%d (ответы заменены: %t), оценка %.2f",
		id, actor.UserID, req.Answers.Present(), updated.Score)
	s.notify(entity.AuditUpdated, updated)
	return updated, nil
}

// DeleteAudit удаляет аудит вместе со всеми ответами
func (s *AuditService) DeleteAudit(ctx context.Context, actor entity.Actor, id uint) error {
	var (
		deleted  *entity.Audit
		orphaned []string
	)

	err := s.auditRepo.Transaction(ctx, func(tx repository.AuditTx) error {
		current, err := tx.GetAuditForUpdate(id)
		if err != nil {
			return err
		}
		if !actor.CanModifyAudit(current) {
			return fmt.Errorf("%w: user #%d cannot delete audit #%d", apperrors.ErrForbidden, actor.UserID, id)
		}
		if err := tx.DeleteAnswers(id); err != nil {
			return fmt.Errorf("delete answers of audit #%d: %w", id, err)
		}
		if err := tx.DeleteAudit(id); err != nil {
			return fmt.Errorf("delete audit #%d: %w", id, err)
		}

		if current.PhotoURL != nil {
			orphaned = append(orphaned, *current.PhotoURL)
		}
		for url := range answerPhotoURLs(current.Answers) {
			orphaned = append(orphaned, url)
		}
		deleted = current
		return nil
	})
	if err != nil {
		return err
	}

	s.removeFiles(orphaned)
	log.Printf("[AuditService] Аудит #%d удален пользователем #%d", id, actor.UserID)
	s.notify(entity.AuditDeleted, deleted)
	return nil
}

// scoreAnswers читает снимок каталога внутри транзакции, считает оценку
// и собирает сущности ответов. Ответы на неизвестные вопросы сохраняются с value = 0.
func (s *AuditService) scoreAnswers(tx repository.AuditTx, reqs []dto.AnswerRequest, uploads *uploadSet, keepable map[string]struct{}) ([]entity.AuditAnswer, scoring.Result, error) {
	ids := make([]uint, 0, len(reqs))
	seen := make(map[uint]struct{}, len(reqs))
	submitted := make([]scoring.SubmittedAnswer, len(reqs))
	for i, r := range reqs {
		submitted[i] = scoring.SubmittedAnswer{QuestionID: r.QuestionID}
		if r.Choice != nil {
			submitted[i].Choice = *r.Choice
		}
		if _, dup := seen[r.QuestionID]; !dup {
			seen[r.QuestionID] = struct{}{}
			ids = append(ids, r.QuestionID)
		}
	}

	questions, err := tx.QuestionsByIDs(ids)
	if err != nil {
		return nil, scoring.Result{}, fmt.Errorf("load question catalog: %w", err)
	}
	result := scoring.ScoreAudit(submitted, scoring.NewMapCatalog(questions))

	answers := make([]entity.AuditAnswer, len(reqs))
	for i, r := range reqs {
		photoURL, err := uploads.save(r.PhotoData)
		if err != nil {
			return nil, scoring.Result{}, err
		}
		if photoURL == nil && r.PhotoURL != nil {
			if _, ok := keepable[*r.PhotoURL]; ok {
				url := *r.PhotoURL
				photoURL = &url
			}
		}
		if !result.Answers[i].Resolved {
			log.Printf("[AuditService] Вопрос #%d не найден в каталоге, ответ сохранен без баллов", r.QuestionID)
		}
		answers[i] = entity.AuditAnswer{
			QuestionID: r.QuestionID,
			Choice:     r.Choice,
			Value:      result.Answers[i].Awarded,
			Comment:    r.Comment,
			PhotoURL:   photoURL,
		}
	}
	return answers, result, nil
}

func (s *AuditService) notify(t entity.AuditEventType, audit *entity.Audit) {
	if audit == nil {
		return
	}
	event := entity.NewAuditEvent(t, audit)
	for _, o := range s.observers {
		o.OnAuditChanged(event)
	}
}

func (s *AuditService) removeFiles(urls []string) {
	if s.images == nil {
		return
	}
	for _, url := range urls {
		if err := s.images.Remove(url); err != nil {
			log.Printf("[AuditService] Не удалось удалить файл %s: %v", url, err)
		}
	}
}

// uploadSet запоминает сохраненные в рамках операции файлы, чтобы удалить их при откате
type uploadSet struct {
	store storage.ImageStore
	saved []string
}

func (u *uploadSet) save(payload *string) (*string, error) {
	if payload == nil || strings.TrimSpace(*payload) == "" {
		return nil, nil
	}
	if u.store == nil {
		return nil, fmt.Errorf("%w: image uploads are disabled", apperrors.ErrValidation)
	}
	url, err := u.store.SaveDataURI(*payload)
	if err != nil {
		return nil, err
	}
	if url != nil {
		u.saved = append(u.saved, *url)
	}
	return url, nil
}

func (u *uploadSet) rollback() {
	for _, url := range u.saved {
		if err := u.store.Remove(url); err != nil {
			log.Printf("[AuditService] Не удалось удалить файл %s после отката: %v", url, err)
		}
	}
	u.saved = nil
}

func validateAnswers(answers []dto.AnswerRequest) error {
	for i, a := range answers {
		if a.QuestionID == 0 {
			return fmt.Errorf("%w: answers[%d].question_id is required", apperrors.ErrValidation, i)
		}
	}
	return nil
}

// patchText переносит поле в набор обновлений только если оно передано; null очищает колонку
func patchText(fields map[string]interface{}, column string, f optional.Field[string]) {
	if !f.Present() {
		return
	}
	fields[column] = f.Ptr()
}

func answerPhotoURLs(answers []entity.AuditAnswer) map[string]struct{} {
	urls := make(map[string]struct{})
	for _, a := range answers {
		if a.PhotoURL != nil && *a.PhotoURL != "" {
			urls[*a.PhotoURL] = struct{}{}
		}
	}
	return urls
}

func unusedPhotos(previous map[string]struct{}, answers []entity.AuditAnswer) []string {
	still := answerPhotoURLs(answers)
	var unused []string
	for url := range previous {
		if _, ok := still[url]; !ok {
			unused = append(unused, url)
		}
	}
	return unused
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
