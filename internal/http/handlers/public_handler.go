package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/kp-backend/internal/dto"
	"github.com/ignatzorin/kp-backend/internal/goroutine"
	"github.com/ignatzorin/kp-backend/internal/logger"
	"github.com/ignatzorin/kp-backend/internal/models"
	"github.com/ignatzorin/kp-backend/internal/service"
	"github.com/ignatzorin/kp-backend/internal/ws"
)

// PublicHandler обслуживает публичную страницу предложения по токену.
type PublicHandler struct {
	proposals *service.ProposalService
	hub       *ws.Hub
}

// NewPublicHandler создаёт новый хэндлер.
func NewPublicHandler(proposals *service.ProposalService, hub *ws.Hub) *PublicHandler {
	return &PublicHandler{proposals: proposals, hub: hub}
}

// GetByShareToken обрабатывает GET /api/public/proposals/:token.
// Каждое открытие страницы записывается как просмотр; сбой записи не
// мешает отдать предложение.
func (h *PublicHandler) GetByShareToken(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "не указан токен предложения"})
		return
	}

	proposal, err := h.proposals.GetByShareToken(c.Request.Context(), token)
	if err != nil {
		_ = c.Error(err)
		return
	}

	view, err := h.proposals.RecordView(c.Request.Context(), proposal.ID, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		if logger.Log != nil {
			logger.Log.WithError(err).Warn("public: не удалось записать просмотр")
		}
	} else if h.hub != nil {
		h.notifyDashboard(proposal, view)
	}

	c.JSON(http.StatusOK, gin.H{"proposal": dto.PublicProposalResponse{
		Proposal:      proposal,
		SubtotalCents: service.CalculateTotals(proposal.Items),
	}})
}

// notifyDashboard рассылает событие просмотра подключённым сессиям дашборда.
func (h *PublicHandler) notifyDashboard(proposal *models.Proposal, view *models.ProposalView) {
	goroutine.SafeGo(func() {
		_ = h.hub.Broadcast("proposal_viewed", gin.H{
			"proposal_id":     proposal.ID,
			"proposal_number": proposal.ProposalNumber,
			"title":           proposal.Title,
			"viewed_at":       view.CreatedAt.Format(time.RFC3339),
		})
	})
}
