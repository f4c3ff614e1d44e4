package api

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"

	apperrors "github.com/nvnfont/nvnfont-bot-go/internal/errors"
	"github.com/nvnfont/nvnfont-bot-go/internal/storage"
)

const allGames = "all"

var (
	phonePattern = regexp.MustCompile(`^(\d{3})\d+(\d{3})$`)

	gameErrors       = apperrors.NewWrapper("api", "game")
	errScoreNotFound = gameErrors.Wrap(apperrors.ErrNotFound, "Game not found")
	errPhoneTaken    = gameErrors.Wrap(apperrors.ErrConflict, "Phone already exists")
	errBadConfirm    = gameErrors.Wrap(apperrors.ErrInvalidInput, "Confirm is not correct")
)

// MaskPhone hides the middle digits of a phone number: 0987654321 becomes
// 098****321. Other shapes are returned unchanged.
func MaskPhone(phone string) string {
	return phonePattern.ReplaceAllString(phone, "$1****$2")
}

func masked(scores []*storage.GameScore) []*storage.GameScore {
	for _, s := range scores {
		s.Phone = MaskPhone(s.Phone)
	}
	return scores
}

type scoreRequest struct {
	PlayerName *string  `json:"namePlayer"`
	GameName   *string  `json:"nameGame"`
	Score      *float64 `json:"score"`
	School     *string  `json:"school"`
	Phone      *string  `json:"phone"`
}

func (r scoreRequest) validate() error {
	switch {
	case r.PlayerName == nil:
		return apperrors.NewValidationError("namePlayer", "Name of player must be a string")
	case r.GameName == nil:
		return apperrors.NewValidationError("nameGame", "Name of game must be a string")
	case r.Score == nil:
		return apperrors.NewValidationError("score", "Score must be a number")
	case r.School == nil:
		return apperrors.NewValidationError("school", "School must be a string")
	case r.Phone == nil:
		return apperrors.NewValidationError("phone", "Phone must be a string")
	}
	return nil
}

func (h *Handler) createScore(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, apperrors.NewValidationError("body", err.Error()))
		return
	}
	if err := req.validate(); err != nil {
		h.fail(c, err)
		return
	}

	score, err := h.games.SaveBestScore(c.Request.Context(), &storage.GameScore{
		PlayerName: *req.PlayerName,
		GameName:   *req.GameName,
		Score:      *req.Score,
		School:     *req.School,
		Phone:      *req.Phone,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, score)
}

type findScoreRequest struct {
	Phone    string `json:"phone"`
	GameName string `json:"nameGame"`
}

func (h *Handler) findScore(c *gin.Context) {
	var req findScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, apperrors.NewValidationError("body", err.Error()))
		return
	}
	score, err := h.games.FindScore(c.Request.Context(), req.Phone, req.GameName)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, score)
}

type playerInfo struct {
	Check   bool               `json:"check"`
	Message string             `json:"message,omitempty"`
	Data    *storage.GameScore `json:"data,omitempty"`
}

// findPlayer returns the player registered with a phone, without the
// score fields.
func (h *Handler) findPlayer(c *gin.Context) {
	score, err := h.games.FindScoreByPhone(c.Request.Context(), c.Param("phone"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if score == nil {
		c.JSON(http.StatusOK, playerInfo{Message: "Số điện thoại không tồn tại, vui lòng đăng ký"})
		return
	}
	score.Score = 0
	score.GameName = ""
	c.JSON(http.StatusOK, playerInfo{Check: true, Data: score})
}

func (h *Handler) listScores(c *gin.Context) {
	scores, err := h.games.ListScores(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, masked(scores))
}

func (h *Handler) listGames(c *gin.Context) {
	games, err := h.games.ListGames(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, games)
}

// ranking is public: phones are masked. "all" lists every game ordered by
// name then ascending score; a single game is ranked by descending score.
func (h *Handler) ranking(c *gin.Context) {
	scores, err := h.rank(c, true)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, masked(scores))
}

// adminRanking lists unmasked scores in ascending order.
func (h *Handler) adminRanking(c *gin.Context) {
	scores, err := h.rank(c, false)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, scores)
}

func (h *Handler) rank(c *gin.Context, descending bool) ([]*storage.GameScore, error) {
	game := c.Param("nameGame")
	if game == allGames {
		return h.games.ListScoresGrouped(c.Request.Context())
	}
	return h.games.ListScoresByGame(c.Request.Context(), game, descending)
}

func (h *Handler) getScore(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	score, err := h.games.GetScore(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, score)
}

func (h *Handler) updateScore(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var patch storage.GameScorePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.fail(c, apperrors.NewValidationError("body", err.Error()))
		return
	}

	ctx := c.Request.Context()
	if patch.Phone != nil {
		taken, err := h.games.PhoneUsedByOther(ctx, *patch.Phone, id)
		if err != nil {
			h.fail(c, err)
			return
		}
		if taken {
			h.fail(c, errPhoneTaken)
			return
		}
	}

	score, err := h.games.UpdateScore(ctx, id, &patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	if score == nil {
		h.fail(c, errScoreNotFound)
		return
	}
	c.JSON(http.StatusOK, score)
}

// deleteScoresBy requires ?confirm=yes. "all" clears the leaderboard.
func (h *Handler) deleteScoresBy(c *gin.Context) {
	if c.Query("confirm") != "yes" {
		h.fail(c, errBadConfirm)
		return
	}

	ctx := c.Request.Context()
	game := c.Param("nameGame")
	var n int64
	var err error
	msg := "Game deleted"
	if game == allGames {
		n, err = h.games.DeleteAllScores(ctx)
		msg = "All games deleted"
	} else {
		n, err = h.games.DeleteScoresByGame(ctx, game)
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	h.log.WithField("game", game).WithField("deleted", n).InfoContext(ctx, "Game scores deleted")
	c.JSON(http.StatusOK, messageResponse{Message: msg})
}

func (h *Handler) deleteScore(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	deleted, err := h.games.DeleteScore(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !deleted {
		h.fail(c, errScoreNotFound)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "Game deleted"})
}
