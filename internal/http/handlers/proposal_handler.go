package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/kp-backend/internal/dto"
	"github.com/ignatzorin/kp-backend/internal/pdf"
	"github.com/ignatzorin/kp-backend/internal/service"
)

// ProposalHandler обслуживает управляющие маршруты предложений.
type ProposalHandler struct {
	proposals *service.ProposalService
	renderer  *pdf.Renderer
}

// NewProposalHandler создаёт новый хэндлер.
func NewProposalHandler(proposals *service.ProposalService, renderer *pdf.Renderer) *ProposalHandler {
	return &ProposalHandler{proposals: proposals, renderer: renderer}
}

// ListProposals обрабатывает GET /api/proposals.
func (h *ProposalHandler) ListProposals(c *gin.Context) {
	summaries, err := h.proposals.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposals": summaries})
}

// CreateProposal обрабатывает POST /api/proposals.
func (h *ProposalHandler) CreateProposal(c *gin.Context) {
	var req dto.CreateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректные данные запроса"})
		return
	}

	proposal, err := h.proposals.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"proposal": proposal})
}

// GetProposal обрабатывает GET /api/proposals/:id.
func (h *ProposalHandler) GetProposal(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "не указан идентификатор предложения"})
		return
	}

	proposal, views, err := h.proposals.GetByID(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposal": dto.ProposalResponse{
		Proposal:      proposal,
		SubtotalCents: service.CalculateTotals(proposal.Items),
		ViewCount:     views,
	}})
}

// DownloadPDF обрабатывает GET /api/proposals/:id/pdf.
// Существование предложения проверяется до начала генерации: когда байты
// уже потекли, ошибку клиенту не вернуть.
func (h *ProposalHandler) DownloadPDF(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "не указан идентификатор предложения"})
		return
	}

	proposal, _, err := h.proposals.GetByID(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	document, err := h.renderer.Render(proposal)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+pdf.Filename(proposal)+`"`)
	c.Data(http.StatusOK, "application/pdf", document)
}
