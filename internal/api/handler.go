package api

import (
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"ibadah-companion-backend/config"
	"ibadah-companion-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	cfg     *config.Config
	store   store.Store
	webpush *webpush.Options
	now     func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(cfg *config.Config, s store.Store, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		cfg:     cfg,
		store:   s,
		webpush: webpushOptions,
		now:     time.Now,
	}
}

// locale resolves the :locale_id path parameter, writing a 404 when it is
// not configured.
func (h *Handler) locale(c *gin.Context) (*config.LocaleConfig, bool) {
	l, ok := h.cfg.Locale(c.Param("locale_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown locale"})
		return nil, false
	}
	return l, true
}
