package models

import (
	"time"

	"github.com/google/uuid"
)

// Proposal описывает коммерческое предложение.
// ProposalNumber и ShareToken уникальны во всей базе.
type Proposal struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	Title            string     `db:"title" json:"title"`
	ProposalNumber   string     `db:"proposal_number" json:"proposal_number"`
	ShareToken       string     `db:"share_token" json:"share_token"`
	ClientName       *string    `db:"client_name" json:"client_name,omitempty"`
	ClientEmail      *string    `db:"client_email" json:"client_email,omitempty"`
	CompanyName      *string    `db:"company_name" json:"company_name,omitempty"`
	Summary          *string    `db:"summary" json:"summary,omitempty"`
	Notes            *string    `db:"notes" json:"notes,omitempty"`
	ValidUntil       *time.Time `db:"valid_until" json:"valid_until,omitempty"`
	CoverImageURL    *string    `db:"cover_image_url" json:"cover_image_url,omitempty"`
	PreNotesImageURL *string    `db:"pre_notes_image_url" json:"pre_notes_image_url,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`

	// Items заполняется репозиторием в порядке position.
	Items []ProposalItem `db:"-" json:"items,omitempty"`
}

// ProposalItem описывает одну позицию предложения.
// Position — плотная нумерация с нуля, совпадает с порядком в списке.
type ProposalItem struct {
	ID             uuid.UUID `db:"id" json:"id"`
	ProposalID     uuid.UUID `db:"proposal_id" json:"proposal_id"`
	Name           string    `db:"name" json:"name"`
	Description    *string   `db:"description" json:"description,omitempty"`
	Quantity       int       `db:"quantity" json:"quantity"`
	UnitPriceCents int64     `db:"unit_price_cents" json:"unit_price_cents"`
	Position       int       `db:"position" json:"position"`
}

// ProposalView — неизменяемая запись о просмотре публичной страницы.
type ProposalView struct {
	ID         uuid.UUID `db:"id" json:"id"`
	ProposalID uuid.UUID `db:"proposal_id" json:"proposal_id"`
	UserAgent  *string   `db:"user_agent" json:"user_agent,omitempty"`
	IPAddress  *string   `db:"ip_address" json:"ip_address,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
