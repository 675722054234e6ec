package api

import (
	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"ibadah-companion-backend/config"
	"ibadah-companion-backend/internal/mw"
	"ibadah-companion-backend/internal/store"
)

// NewRouter creates and configures a new Gin router. cacheStore holds
// responses of the time-independent GET endpoints.
func NewRouter(cfg *config.Config, s store.Store, webpushOptions *webpush.Options, cacheStore mw.ResponseStore, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), mw.RequestLogger(logger))

	corsCfg := cors.DefaultConfig()
	if len(cfg.Server.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.Server.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowMethods = []string{"GET", "PUT", "POST", "DELETE", "OPTIONS"}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, mw.RequestIDHeader)
	corsCfg.ExposeHeaders = []string{mw.RequestIDHeader, "X-Cache"}
	r.Use(cors.New(corsCfg))

	handler := NewHandler(cfg, s, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst, cfg.Server.RequestIPHeader)
	caching := mw.Cache(cacheStore, cfg.CacheTTL())

	// API group
	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/qibla", caching, handler.GetQibla)
		api.GET("/hijri", caching, handler.GetHijri)
		api.GET("/hijri/holidays", caching, handler.GetHijriHolidays)

		api.GET("/locales", caching, handler.GetLocales)
		api.GET("/locales/:locale_id/prayer", handler.GetPrayer)
		api.GET("/locales/:locale_id/banner", handler.GetBanner)
		api.GET("/locales/:locale_id/history", handler.GetHistory)

		api.POST("/zakat/maal", handler.PostZakatMaal)
		api.POST("/zakat/income", handler.PostZakatIncome)
		api.POST("/zakat/fitrah", handler.PostZakatFitrah)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
