package service

import (
	"fmt"
	"log"

	"github.com/yourusername/coffee-audit-api/internal/domain/entity"
	"github.com/yourusername/coffee-audit-api/internal/domain/repository"
)

type seedQuestion struct {
	text   string
	weight int
}

type seedCategory struct {
	name        string
	description string
	questions   []seedQuestion
}

var defaultCoffees = []entity.Coffee{
	{Name: "ANFA", Location: "Casablanca", Active: true},
	{Name: "CASA VOYAGEUR", Location: "Casablanca", Active: true},
	{Name: "MAARIF", Location: "Casablanca", Active: true},
	{Name: "RABAT AGDAL", Location: "Rabat", Active: true},
}

var defaultCategories = []seedCategory{
	{
		name:        "Hygiène et Propreté",
		description: "Audit des normes d'hygiène et de propreté",
		questions: []seedQuestion{
			{"Les surfaces de travail sont propres et désinfectées", 2},
			{"Les équipements sont en bon état de fonctionnement", 1},
			{"Le personnel porte des vêtements propres et appropriés", 2},
			{"Les produits alimentaires sont stockés à la bonne température", 3},
			{"Les frigos et congélateurs sont propres, organisés avec thermomètre visible", 2},
			{"Absence de produits périmés en stock ou en zone de préparation", 3},
			{"Tous les produits sont bien emballés et stockés", 1},
			{"Les poubelles sont fermées, propres et vidées", 1},
			{"Le principe du FIFO (First In, First Out) est bien appliqué", 2},
		},
	},
	{
		name:        "Service Client",
		description: "Audit de la qualité du service client",
		questions: []seedQuestion{
			{"L'accueil client est chaleureux et professionnel", 3},
			{"Les commandes sont prises avec précision", 2},
			{"Le temps d'attente est raisonnable", 2},
			{"Le personnel connaît bien le menu et peut conseiller", 2},
			{"Les réclamations sont gérées avec professionnalisme", 3},
		},
	},
	{
		name:        "Qualité des Produits",
		description: "Audit de la qualité et présentation des produits",
		questions: []seedQuestion{
			{"Les boissons sont préparées selon les standards", 3},
			{"La température des boissons est correcte", 2},
			{"La présentation des produits est soignée", 2},
			{"Les ingrédients utilisés sont frais et de qualité", 3},
			{"Les portions respectent les standards établis", 2},
		},
	},
	{
		name:        "Ambiance et Propreté du Local",
		description: "Audit de l'ambiance et de la propreté générale",
		questions: []seedQuestion{
			{"Le local est propre et bien rangé", 2},
			{"Les tables et chaises sont propres", 1},
			{"Les toilettes sont propres et approvisionnées", 2},
			{"L'éclairage est adéquat", 1},
			{"La musique d'ambiance est appropriée", 1},
			{"La température du local est confortable", 1},
		},
	},
}

// SeedService заполняет пустую БД начальными данными при старте.
// Каждый шаг выполняется, только если соответствующая таблица пуста.
type SeedService struct {
	userRepo     repository.UserRepository
	coffeeRepo   repository.CoffeeRepository
	categoryRepo repository.CategoryRepository
	questionRepo repository.QuestionRepository
}

// NewSeedService создает новый сервис начального наполнения
func NewSeedService(userRepo repository.UserRepository, coffeeRepo repository.CoffeeRepository,
	categoryRepo repository.CategoryRepository, questionRepo repository.QuestionRepository) *SeedService {
	return &SeedService{userRepo: userRepo, coffeeRepo: coffeeRepo, categoryRepo: categoryRepo, questionRepo: questionRepo}
}

// Seed создает администратора, кофейни и чек-лист по умолчанию
func (s *SeedService) Seed(adminEmail, adminPassword string) error {
	if err := s.seedAdmin(adminEmail, adminPassword); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if err := s.seedCoffees(); err != nil {
		return fmt.Errorf("seed coffees: %w", err)
	}
	if err := s.seedCatalog(); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	return nil
}

func (s *SeedService) seedAdmin(email, password string) error {
	count, err := s.userRepo.Count()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	admin := &entity.User{
		Email:    normalizeEmail(email),
		Password: password,
		FullName: "Admin",
		Role:     entity.RoleAdmin,
		IsActive: true,
	}
	if err := s.userRepo.Create(admin); err != nil {
		return err
	}
	log.Printf("[SeedService] Создан администратор %s", admin.Email)
	return nil
}

func (s *SeedService) seedCoffees() error {
	count, err := s.coffeeRepo.Count()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, c := range defaultCoffees {
		coffee := c
		if err := s.coffeeRepo.Create(&coffee); err != nil {
			return err
		}
	}
	log.Printf("[SeedService] Создано кофеен: %d", len(defaultCoffees))
	return nil
}

func (s *SeedService) seedCatalog() error {
	count, err := s.questionRepo.Count()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	existing, err := s.categoryRepo.List()
	if err != nil {
		return err
	}
	byName := make(map[string]uint, len(existing))
	for _, c := range existing {
		byName[c.Name] = c.ID
	}

	total := 0
	for _, sc := range defaultCategories {
		categoryID, ok := byName[sc.name]
		if !ok {
			description := sc.description
			category := &entity.Category{Name: sc.name, Description: &description}
			if err := s.categoryRepo.Create(category); err != nil {
				return err
			}
			categoryID = category.ID
		}

		questions := make([]entity.Question, 0, len(sc.questions))
		for _, q := range sc.questions {
			questions = append(questions, entity.Question{
				Text:          q.text,
				Weight:        q.weight,
				CorrectAnswer: entity.ChoiceYes,
				CategoryID:    categoryID,
			})
		}
		if err := s.questionRepo.CreateBatch(questions); err != nil {
			return err
		}
		total += len(questions)
	}
	log.Printf("[SeedService] Создано разделов: %d, вопросов: %d", len(defaultCategories), total)
	return nil
}
