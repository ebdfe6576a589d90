package dto

import (
	"math"
	"time"

	"github.com/ignatzorin/kp-backend/internal/service"
)

// LoginRequest represents the admin login request
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// ProposalItemRequest represents one line item of a proposal
type ProposalItemRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Quantity    int     `json:"quantity"`
	// UnitPrice — цена в основных единицах валюты (рубли),
	// UnitPriceCents имеет приоритет, если задан.
	UnitPrice      float64 `json:"unit_price"`
	UnitPriceCents *int64  `json:"unit_price_cents"`
}

// CreateProposalRequest represents the request to create a proposal
type CreateProposalRequest struct {
	Title            string                `json:"title" binding:"required"`
	ProposalNumber   *string               `json:"proposal_number"`
	ClientName       *string               `json:"client_name"`
	ClientEmail      *string               `json:"client_email"`
	CompanyName      *string               `json:"company_name"`
	Summary          *string               `json:"summary"`
	Notes            *string               `json:"notes"`
	ValidUntil       *string               `json:"valid_until"`
	CoverImageURL    *string               `json:"cover_image_url"`
	PreNotesImageURL *string               `json:"pre_notes_image_url"`
	Items            []ProposalItemRequest `json:"items"`
}

// ToInput преобразует запрос во входные данные сервиса.
// Невалидная дата valid_until молча игнорируется, как в веб-форме.
func (r *CreateProposalRequest) ToInput() service.CreateProposalInput {
	input := service.CreateProposalInput{
		Title:            r.Title,
		ClientName:       r.ClientName,
		ClientEmail:      r.ClientEmail,
		CompanyName:      r.CompanyName,
		Summary:          r.Summary,
		Notes:            r.Notes,
		CoverImageURL:    r.CoverImageURL,
		PreNotesImageURL: r.PreNotesImageURL,
	}

	if r.ProposalNumber != nil {
		input.ProposalNumber = *r.ProposalNumber
	}

	if r.ValidUntil != nil {
		if parsed, err := time.Parse("2006-01-02", *r.ValidUntil); err == nil {
			input.ValidUntil = &parsed
		}
	}

	input.Items = make([]service.ProposalItemInput, 0, len(r.Items))
	for _, item := range r.Items {
		cents := int64(math.Round(item.UnitPrice * 100))
		if item.UnitPriceCents != nil {
			cents = *item.UnitPriceCents
		}

		input.Items = append(input.Items, service.ProposalItemInput{
			Name:           item.Name,
			Description:    item.Description,
			Quantity:       item.Quantity,
			UnitPriceCents: cents,
		})
	}

	return input
}
