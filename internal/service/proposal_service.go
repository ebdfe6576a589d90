package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/kp-backend/internal/models"
	"github.com/ignatzorin/kp-backend/internal/repository"
)

const (
	maxUserAgentLength = 255
	maxIPAddressLength = 64

	// Сколько раз повторяем вставку при гонке на уникальных полях.
	createAttempts = 3
)

// ValidationError — ошибка входных данных, текст показывается пользователю.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ProposalRepo описывает хранилище предложений.
type ProposalRepo interface {
	UniquenessChecker
	Create(ctx context.Context, p *models.Proposal) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	GetByShareToken(ctx context.Context, token string) (*models.Proposal, error)
	List(ctx context.Context) ([]models.Proposal, error)
	AppendView(ctx context.Context, view *models.ProposalView) error
	CountViews(ctx context.Context, proposalID uuid.UUID) (int, error)
	ViewCounts(ctx context.Context) (map[uuid.UUID]int, error)
}

// ProposalItemInput — позиция предложения на входе.
type ProposalItemInput struct {
	Name           string
	Description    *string
	Quantity       int
	UnitPriceCents int64
}

// CreateProposalInput — данные для создания предложения.
type CreateProposalInput struct {
	Title            string
	ProposalNumber   string
	ClientName       *string
	ClientEmail      *string
	CompanyName      *string
	Summary          *string
	Notes            *string
	ValidUntil       *time.Time
	CoverImageURL    *string
	PreNotesImageURL *string
	Items            []ProposalItemInput
}

// ProposalSummary — предложение со счётчиками для списка.
type ProposalSummary struct {
	models.Proposal
	SubtotalCents int64 `json:"subtotal_cents"`
	ViewCount     int   `json:"view_count"`
}

// ProposalService реализует бизнес-логику предложений.
type ProposalService struct {
	repo ProposalRepo
	ids  *IdentifierGenerator
}

// NewProposalService создаёт сервис предложений.
func NewProposalService(repo ProposalRepo) *ProposalService {
	return &ProposalService{
		repo: repo,
		ids:  NewIdentifierGenerator(repo),
	}
}

// Create валидирует вход, генерирует идентификаторы и сохраняет предложение.
// При конфликте уникальности на вставке перегенерируется только
// столкнувшееся поле, ограниченным числом попыток.
func (s *ProposalService) Create(ctx context.Context, input CreateProposalInput) (*models.Proposal, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, &ValidationError{Message: "Укажите название коммерческого предложения"}
	}

	items := sanitizeItems(input.Items)
	if len(items) == 0 {
		return nil, &ValidationError{Message: "Необходимо добавить хотя бы одну позицию"}
	}

	shareToken, err := s.ids.ShareToken(ctx)
	if err != nil {
		return nil, err
	}

	number := strings.TrimSpace(input.ProposalNumber)
	if number == "" {
		if number, err = s.ids.ProposalNumber(ctx); err != nil {
			return nil, err
		}
	}

	var createErr error
	for attempt := 0; attempt < createAttempts; attempt++ {
		proposal := &models.Proposal{
			Title:            title,
			ProposalNumber:   number,
			ShareToken:       shareToken,
			ClientName:       trimOptional(input.ClientName),
			ClientEmail:      trimOptional(input.ClientEmail),
			CompanyName:      trimOptional(input.CompanyName),
			Summary:          trimOptional(input.Summary),
			Notes:            trimOptional(input.Notes),
			ValidUntil:       input.ValidUntil,
			CoverImageURL:    trimOptional(input.CoverImageURL),
			PreNotesImageURL: trimOptional(input.PreNotesImageURL),
			Items:            cloneItems(items),
		}

		createErr = s.repo.Create(ctx, proposal)
		switch {
		case createErr == nil:
			return proposal, nil
		case errors.Is(createErr, repository.ErrDuplicateProposalNumber):
			if number, err = s.ids.ProposalNumber(ctx); err != nil {
				return nil, err
			}
		case errors.Is(createErr, repository.ErrDuplicateShareToken):
			if shareToken, err = s.ids.ShareToken(ctx); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("proposal service: create %w", createErr)
		}
	}

	return nil, fmt.Errorf("proposal service: create %w", createErr)
}

// List возвращает предложения с суммой и числом просмотров.
func (s *ProposalService) List(ctx context.Context) ([]ProposalSummary, error) {
	proposals, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	counts, err := s.repo.ViewCounts(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]ProposalSummary, 0, len(proposals))
	for i := range proposals {
		summaries = append(summaries, ProposalSummary{
			Proposal:      proposals[i],
			SubtotalCents: CalculateTotals(proposals[i].Items),
			ViewCount:     counts[proposals[i].ID],
		})
	}

	return summaries, nil
}

// GetByID возвращает предложение и число его просмотров.
func (s *ProposalService) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, int, error) {
	proposal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	views, err := s.repo.CountViews(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	return proposal, views, nil
}

// GetByShareToken возвращает предложение по публичному токену.
func (s *ProposalService) GetByShareToken(ctx context.Context, token string) (*models.Proposal, error) {
	return s.repo.GetByShareToken(ctx, token)
}

// RecordView добавляет запись о просмотре публичной страницы.
// User-Agent и IP обрезаются до размеров колонок.
func (s *ProposalService) RecordView(ctx context.Context, proposalID uuid.UUID, userAgent, ipAddress string) (*models.ProposalView, error) {
	view := &models.ProposalView{
		ProposalID: proposalID,
		UserAgent:  truncateOptional(userAgent, maxUserAgentLength),
		IPAddress:  truncateOptional(ipAddress, maxIPAddressLength),
	}

	if err := s.repo.AppendView(ctx, view); err != nil {
		return nil, err
	}

	return view, nil
}

// CalculateTotals считает сумму предложения в копейках. Деньги — только
// целые минорные единицы, никакой плавающей точки.
func CalculateTotals(items []models.ProposalItem) int64 {
	var subtotal int64
	for i := range items {
		subtotal += int64(items[i].Quantity) * items[i].UnitPriceCents
	}
	return subtotal
}

// sanitizeItems чистит позиции: пустые имена выбрасываются, количество и
// цена приводятся к допустимым значениям, position нумеруется заново.
func sanitizeItems(items []ProposalItemInput) []models.ProposalItem {
	result := make([]models.ProposalItem, 0, len(items))
	for _, item := range items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}

		quantity := item.Quantity
		if quantity <= 0 {
			quantity = 1
		}

		price := item.UnitPriceCents
		if price < 0 {
			price = 0
		}

		result = append(result, models.ProposalItem{
			Name:           name,
			Description:    trimOptional(item.Description),
			Quantity:       quantity,
			UnitPriceCents: price,
			Position:       len(result),
		})
	}

	return result
}

// cloneItems копирует срез позиций, чтобы повтор вставки не делил состояние.
func cloneItems(items []models.ProposalItem) []models.ProposalItem {
	cloned := make([]models.ProposalItem, len(items))
	copy(cloned, items)
	return cloned
}

// trimOptional обрезает пробелы и превращает пустые строки в nil.
func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// truncateOptional обрезает строку до limit рун, пустую превращает в nil.
func truncateOptional(value string, limit int) *string {
	if value == "" {
		return nil
	}
	runes := []rune(value)
	if len(runes) > limit {
		value = string(runes[:limit])
	}
	return &value
}
