package dto

import (
	"github.com/ignatzorin/kp-backend/internal/models"
)

// ProposalResponse represents a proposal with computed counters
type ProposalResponse struct {
	*models.Proposal
	SubtotalCents int64 `json:"subtotal_cents"`
	ViewCount     int   `json:"view_count"`
}

// PublicProposalResponse represents the public share page payload
type PublicProposalResponse struct {
	*models.Proposal
	SubtotalCents int64 `json:"subtotal_cents"`
}

// UploadResponse represents a stored image
type UploadResponse struct {
	URL  string `json:"url"`
	Size int64  `json:"size"`
}
