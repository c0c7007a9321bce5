package api

import (
	"kudos/config"
	"kudos/service"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures the gin engine and wires the ledger routes.
// Authentication lives in front of this service; the authenticated user id
// arrives in the X-User-ID header and is trusted as-is.
func SetupRouter(cfg *config.Config, users service.UserService, cards service.CardService, likes service.LikeService, stats service.StatsService) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(RequestLogger(), gin.Recovery())

	h := &handler{
		cfg:   cfg,
		users: users,
		cards: cards,
		likes: likes,
		stats: stats,
	}

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/cards", h.createCard)
		apiGroup.POST("/cards/:id/likes", h.createLike)
		apiGroup.GET("/users/:id/balance", h.getBalance)
		apiGroup.GET("/users/:id/dashboard", h.getDashboard)
		apiGroup.GET("/rankings", h.getRankings)
	}

	return r
}
