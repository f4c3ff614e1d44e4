// Package api provides the REST surface next to the webhook: the font
// catalog, the game leaderboard, a chat lookup for testing and operator
// reload triggers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nvnfont/nvnfont-bot-go/internal/catalog"
	apperrors "github.com/nvnfont/nvnfont-bot-go/internal/errors"
	"github.com/nvnfont/nvnfont-bot-go/internal/logger"
	"github.com/nvnfont/nvnfont-bot-go/internal/storage"
)

// Looker matches free text against the catalog.
type Looker interface {
	Lookup(text string) catalog.Match
}

// Reloader refreshes in-memory state from storage.
type Reloader func(ctx context.Context) error

// Config holds the API collaborators.
type Config struct {
	Fonts     storage.FontRepository
	Games     storage.GameRepository
	Catalog   Looker
	JWTSecret string
	Logger    *logger.Logger

	// ReloadCatalog runs after font writes and on /admin/reload.
	ReloadCatalog Reloader
	// ReloadState refreshes the admin list and global switch on /admin/reload.
	ReloadState Reloader
}

// Handler serves the REST routes.
type Handler struct {
	fonts         storage.FontRepository
	games         storage.GameRepository
	catalog       Looker
	jwtSecret     string
	log           *logger.Logger
	reloadCatalog Reloader
	reloadState   Reloader
}

// New creates a Handler.
func New(cfg Config) *Handler {
	return &Handler{
		fonts:         cfg.Fonts,
		games:         cfg.Games,
		catalog:       cfg.Catalog,
		jwtSecret:     cfg.JWTSecret,
		log:           cfg.Logger.WithModule("api"),
		reloadCatalog: cfg.ReloadCatalog,
		reloadState:   cfg.ReloadState,
	}
}

// Register mounts every route on r.
func (h *Handler) Register(r gin.IRouter) {
	auth := RequireBearer(h.jwtSecret)

	fonts := r.Group("/fonts")
	fonts.GET("", h.listFonts)
	fonts.GET("/:id", h.getFont)
	fonts.POST("", auth, h.createFont)
	fonts.DELETE("", auth, h.deleteAllFonts)
	fonts.DELETE("/:id", auth, h.deleteFont)

	games := r.Group("/game-vku")
	games.POST("", h.createScore)
	games.POST("/find-by-phone-and-name_game", h.findScore)
	games.GET("", h.listScores)
	games.GET("/find-all-game", h.listGames)
	games.GET("/find-infor-by-phone/:phone", h.findPlayer)
	games.GET("/ranking/:nameGame", h.ranking)
	games.GET("/admin-ranking/:nameGame", h.adminRanking)
	games.GET("/:id", h.getScore)
	games.PATCH("/:id", h.updateScore)
	games.DELETE("/delete-by/:nameGame", h.deleteScoresBy)
	games.DELETE("/:id", h.deleteScore)

	r.POST("/chat", h.chat)
	r.POST("/admin/reload", auth, h.reload)
}

type messageResponse struct {
	Message string `json:"message"`
}

type chatRequest struct {
	Message string `json:"message"`
}

func (h *Handler) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, apperrors.NewValidationError("message", "must be a string"))
		return
	}
	c.JSON(http.StatusOK, h.catalog.Lookup(req.Message))
}

func (h *Handler) reload(c *gin.Context) {
	ctx := c.Request.Context()
	var errs []error
	if h.reloadCatalog != nil {
		errs = append(errs, h.reloadCatalog(ctx))
	}
	if h.reloadState != nil {
		errs = append(errs, h.reloadState(ctx))
	}
	if err := errors.Join(errs...); err != nil {
		h.fail(c, err)
		return
	}

	entry := h.log
	if claims, ok := ClaimsFrom(c); ok {
		entry = entry.WithField("operator", claims.Email)
	}
	entry.InfoContext(ctx, "Reload triggered")
	c.JSON(http.StatusOK, messageResponse{Message: "Reloaded"})
}

// catalogChanged reloads the catalog after a font write. A failed reload
// is logged; the next scheduled reload picks the change up.
func (h *Handler) catalogChanged(ctx context.Context) {
	if h.reloadCatalog == nil {
		return
	}
	if err := h.reloadCatalog(ctx); err != nil {
		h.log.WithError(err).WarnContext(ctx, "Catalog reload after write failed")
	}
}

// fail writes err as a JSON message with the status its chain maps to.
func (h *Handler) fail(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	msg := apperrors.GetUserMessage(err)
	if status == http.StatusInternalServerError {
		h.log.WithError(err).ErrorContext(c.Request.Context(), "API request failed")
		msg = "Internal server error"
	}
	c.JSON(status, messageResponse{Message: msg})
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("id", "must be an integer")
	}
	return id, nil
}
