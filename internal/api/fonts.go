package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/nvnfont/nvnfont-bot-go/internal/errors"
	"github.com/nvnfont/nvnfont-bot-go/internal/storage"
)

var errFontNotFound = apperrors.NewWrapper("api", "font").Wrap(apperrors.ErrNotFound, "Font not found")

func (h *Handler) listFonts(c *gin.Context) {
	fonts, err := h.fonts.ListFonts(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, fonts)
}

func (h *Handler) getFont(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	font, err := h.fonts.GetFont(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if font == nil {
		h.fail(c, errFontNotFound)
		return
	}
	c.JSON(http.StatusOK, font)
}

// createFont is idempotent by name: an existing font is returned with 200.
func (h *Handler) createFont(c *gin.Context) {
	var in storage.FontInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.fail(c, apperrors.NewValidationError("body", err.Error()))
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		h.fail(c, apperrors.NewValidationError("name", "is required"))
		return
	}

	ctx := c.Request.Context()
	font, created, err := h.fonts.CreateFont(ctx, &in)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !created {
		c.JSON(http.StatusOK, font)
		return
	}
	h.catalogChanged(ctx)
	c.JSON(http.StatusCreated, font)
}

func (h *Handler) deleteFont(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	ctx := c.Request.Context()
	deleted, err := h.fonts.DeleteFont(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !deleted {
		h.fail(c, errFontNotFound)
		return
	}
	h.catalogChanged(ctx)
	c.JSON(http.StatusOK, messageResponse{Message: "Font deleted"})
}

func (h *Handler) deleteAllFonts(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.fonts.DeleteAllFonts(ctx); err != nil {
		h.fail(c, err)
		return
	}
	h.catalogChanged(ctx)
	c.JSON(http.StatusOK, messageResponse{Message: "All fonts deleted"})
}
