package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"kudos/config"
	"kudos/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type handler struct {
	cfg   *config.Config
	users service.UserService
	cards service.CardService
	likes service.LikeService
	stats service.StatsService
}

type createCardRequest struct {
	PrimaryRecipientID     int64   `json:"primaryRecipientId" binding:"required"`
	AdditionalRecipientIDs []int64 `json:"additionalRecipientIds"`
	Message                string  `json:"message" binding:"required"`
	DeclaredPoints         int     `json:"declaredPoints"`
}

func (h *handler) createCard(c *gin.Context) {
	senderID, ok := authenticatedUser(c)
	if !ok {
		return
	}

	var req createCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	card, err := h.cards.CreateCard(c.Request.Context(), senderID, req.PrimaryRecipientID, req.AdditionalRecipientIDs, req.Message, req.DeclaredPoints)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":                     card.ID,
		"senderId":               card.SenderID,
		"primaryRecipientId":     card.PrimaryRecipientID,
		"additionalRecipientIds": card.AdditionalRecipientIDs,
		"message":                card.Message,
		"declaredPoints":         card.DeclaredPoints,
		"createdAt":              card.CreatedAt,
	})
}

func (h *handler) createLike(c *gin.Context) {
	actorID, ok := authenticatedUser(c)
	if !ok {
		return
	}

	cardID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid card id"})
		return
	}

	var idempotencyKey *uuid.UUID
	if raw := c.GetHeader("Idempotency-Key"); raw != "" {
		key, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Idempotency-Key must be a UUID"})
			return
		}
		idempotencyKey = &key
	}

	result, err := h.likes.CreateLike(c.Request.Context(), cardID, actorID, idempotencyKey)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{
		"id":                  result.Like.ID,
		"cardId":              result.Like.CardID,
		"actorId":             result.Like.ActorID,
		"beneficiaryId":       result.Like.BeneficiaryID,
		"pointsDebited":       result.Like.PointsDebited,
		"actorBalance":        result.ActorBalance,
		"senderBalance":       result.SenderBalance,
		"beneficiaryLifetime": result.BeneficiaryLifetime,
		"createdAt":           result.Like.CreatedAt,
	})
}

func (h *handler) getBalance(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	snapshot, err := h.users.GetBalance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userId":           snapshot.UserID,
		"weeklyBalance":    snapshot.WeeklyBalance,
		"lifetimeReceived": snapshot.LifetimeReceived,
		"lastResetAt":      snapshot.LastResetAt,
	})
}

func (h *handler) getDashboard(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	dashboard, err := h.stats.GetDashboardStats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

func (h *handler) getRankings(c *gin.Context) {
	now := time.Now()
	var from time.Time
	switch c.DefaultQuery("window", "weekly") {
	case "weekly":
		from = service.WeekStart(now, h.cfg.Timezone)
	case "monthly":
		from = service.MonthStart(now, h.cfg.Timezone)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "window must be weekly or monthly"})
		return
	}

	limit := h.cfg.RankingLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	rankings, err := h.stats.GetRankings(c.Request.Context(), from, now.Add(time.Second), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rankings)
}

// authenticatedUser reads the user id the identity subsystem put on the
// request. No further authentication happens here.
func authenticatedUser(c *gin.Context) (int64, bool) {
	raw := c.GetHeader("X-User-ID")
	if raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing X-User-ID header"})
		return 0, false
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid X-User-ID header"})
		return 0, false
	}
	return userID, true
}

// respondError maps the service failure taxonomy onto HTTP statuses
func respondError(c *gin.Context, err error) {
	var ve *service.ValidationError

	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
	case errors.Is(err, service.ErrCardNotFound), errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSelfInteraction):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrLikeLimitReached):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInsufficientBalance):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	default:
		// Nothing committed; the client may safely retry
		log.WithField("error", err).Error("Request failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
	}
}
