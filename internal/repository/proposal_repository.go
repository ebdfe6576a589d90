package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/kp-backend/internal/models"
	"github.com/ignatzorin/kp-backend/internal/repository/common"
)

// Ошибки репозитория предложений.
var (
	ErrProposalNotFound        = errors.New("proposal not found")
	ErrDuplicateShareToken     = errors.New("share token already exists")
	ErrDuplicateProposalNumber = errors.New("proposal number already exists")
)

// ProposalRepository отвечает за работу с коммерческими предложениями.
type ProposalRepository struct {
	db *sqlx.DB
}

// NewProposalRepository создаёт экземпляр репозитория.
func NewProposalRepository(db *sqlx.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

// Create сохраняет предложение вместе с позициями в одной транзакции.
// При нарушении уникальности номера или токена возвращает
// ErrDuplicateProposalNumber / ErrDuplicateShareToken, чтобы сервис мог
// перегенерировать именно столкнувшееся поле.
func (r *ProposalRepository) Create(ctx context.Context, p *models.Proposal) error {
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO proposals (title, proposal_number, share_token, client_name, client_email,
				company_name, summary, notes, valid_until, cover_image_url, pre_notes_image_url)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id, created_at
		`

		if err := tx.QueryRowxContext(
			ctx,
			query,
			p.Title,
			p.ProposalNumber,
			p.ShareToken,
			p.ClientName,
			p.ClientEmail,
			p.CompanyName,
			p.Summary,
			p.Notes,
			p.ValidUntil,
			p.CoverImageURL,
			p.PreNotesImageURL,
		).Scan(&p.ID, &p.CreatedAt); err != nil {
			return fmt.Errorf("proposal repository: insert proposal %w", err)
		}

		if len(p.Items) == 0 {
			return nil
		}

		// Batch INSERT для позиций (устранение N+1)
		itemQuery := `INSERT INTO proposal_items (proposal_id, name, description, quantity, unit_price_cents, position) VALUES `
		itemValues := make([]interface{}, 0, len(p.Items)*6)

		for i := range p.Items {
			if i > 0 {
				itemQuery += ", "
			}
			itemQuery += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d)", i*6+1, i*6+2, i*6+3, i*6+4, i*6+5, i*6+6)
			itemValues = append(itemValues, p.ID, p.Items[i].Name, p.Items[i].Description,
				p.Items[i].Quantity, p.Items[i].UnitPriceCents, p.Items[i].Position)
		}
		itemQuery += " RETURNING id"

		rows, err := tx.QueryxContext(ctx, itemQuery, itemValues...)
		if err != nil {
			return fmt.Errorf("proposal repository: batch insert items %w", err)
		}
		defer rows.Close()

		for i := 0; rows.Next(); i++ {
			if err := rows.Scan(&p.Items[i].ID); err != nil {
				return fmt.Errorf("proposal repository: scan item id %w", err)
			}
			p.Items[i].ProposalID = p.ID
		}

		return rows.Err()
	})
	if err != nil {
		if constraint, ok := common.UniqueViolation(err); ok {
			if strings.Contains(constraint, "share_token") {
				return ErrDuplicateShareToken
			}
			if strings.Contains(constraint, "proposal_number") {
				return ErrDuplicateProposalNumber
			}
		}
		return err
	}

	return nil
}

// ExistsByShareToken проверяет, занят ли токен.
func (r *ProposalRepository) ExistsByShareToken(ctx context.Context, token string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM proposals WHERE share_token = $1)`
	if err := r.db.GetContext(ctx, &exists, query, token); err != nil {
		return false, fmt.Errorf("proposal repository: exists by share token %w", err)
	}
	return exists, nil
}

// ExistsByProposalNumber проверяет, занят ли номер предложения.
func (r *ProposalRepository) ExistsByProposalNumber(ctx context.Context, number string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM proposals WHERE proposal_number = $1)`
	if err := r.db.GetContext(ctx, &exists, query, number); err != nil {
		return false, fmt.Errorf("proposal repository: exists by number %w", err)
	}
	return exists, nil
}

// GetByID возвращает предложение с позициями в порядке position.
func (r *ProposalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	proposal, err := common.GetByField[models.Proposal](ctx, r.db, "proposals", "id", id, ErrProposalNotFound)
	if err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, proposal); err != nil {
		return nil, err
	}

	return proposal, nil
}

// GetByShareToken возвращает предложение по публичному токену.
func (r *ProposalRepository) GetByShareToken(ctx context.Context, token string) (*models.Proposal, error) {
	proposal, err := common.GetByField[models.Proposal](ctx, r.db, "proposals", "share_token", token, ErrProposalNotFound)
	if err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, proposal); err != nil {
		return nil, err
	}

	return proposal, nil
}

// List возвращает все предложения (новые сверху) с позициями.
func (r *ProposalRepository) List(ctx context.Context) ([]models.Proposal, error) {
	var proposals []models.Proposal
	query := `SELECT * FROM proposals ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &proposals, query); err != nil {
		return nil, fmt.Errorf("proposal repository: list %w", err)
	}

	if len(proposals) == 0 {
		return proposals, nil
	}

	ids := make([]uuid.UUID, 0, len(proposals))
	index := make(map[uuid.UUID]int, len(proposals))
	for i := range proposals {
		ids = append(ids, proposals[i].ID)
		index[proposals[i].ID] = i
	}

	// Одним запросом забираем позиции всех предложений, чтобы не ходить
	// в базу в цикле.
	itemQuery, args, err := sqlx.In(`SELECT * FROM proposal_items WHERE proposal_id IN (?) ORDER BY proposal_id, position`, ids)
	if err != nil {
		return nil, fmt.Errorf("proposal repository: list items query %w", err)
	}

	var items []models.ProposalItem
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(itemQuery), args...); err != nil {
		return nil, fmt.Errorf("proposal repository: list items %w", err)
	}

	for _, item := range items {
		i := index[item.ProposalID]
		proposals[i].Items = append(proposals[i].Items, item)
	}

	return proposals, nil
}

// loadItems подгружает позиции предложения в порядке position.
func (r *ProposalRepository) loadItems(ctx context.Context, p *models.Proposal) error {
	query := `SELECT * FROM proposal_items WHERE proposal_id = $1 ORDER BY position`
	if err := r.db.SelectContext(ctx, &p.Items, query, p.ID); err != nil {
		return fmt.Errorf("proposal repository: load items %w", err)
	}
	return nil
}

// AppendView записывает факт просмотра публичной страницы.
func (r *ProposalRepository) AppendView(ctx context.Context, view *models.ProposalView) error {
	query := `
		INSERT INTO proposal_views (proposal_id, user_agent, ip_address)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(ctx, query, view.ProposalID, view.UserAgent, view.IPAddress).
		Scan(&view.ID, &view.CreatedAt); err != nil {
		return fmt.Errorf("proposal repository: append view %w", err)
	}
	return nil
}

// CountViews возвращает число просмотров предложения.
func (r *ProposalRepository) CountViews(ctx context.Context, proposalID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM proposal_views WHERE proposal_id = $1`
	if err := r.db.GetContext(ctx, &count, query, proposalID); err != nil {
		return 0, fmt.Errorf("proposal repository: count views %w", err)
	}
	return count, nil
}

// ViewCounts возвращает число просмотров по всем предложениям сразу.
func (r *ProposalRepository) ViewCounts(ctx context.Context) (map[uuid.UUID]int, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT proposal_id, COUNT(*) FROM proposal_views GROUP BY proposal_id`)
	if err != nil {
		return nil, fmt.Errorf("proposal repository: view counts %w", err)
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int)
	for rows.Next() {
		var id uuid.UUID
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, fmt.Errorf("proposal repository: view counts scan %w", err)
		}
		counts[id] = count
	}

	return counts, rows.Err()
}
