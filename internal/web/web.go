// Package web exposes the encryptor session as a local HTTP/JSON API.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hfi/message-encryptor/internal/vault"
)

// Config contains HTTP API settings
type Config struct {
	Listen          string        `yaml:"listen"`
	AllowedOrigins  []string      `yaml:"allowed_origins"` // empty allows all
	RateLimit       float64       `yaml:"rate_limit"`      // requests per second per client, 0 disables
	RateBurst       int           `yaml:"rate_burst"`
	LimiterTTL      time.Duration `yaml:"limiter_ttl"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DefaultConfig returns the default API configuration
func DefaultConfig() Config {
	return Config{
		Listen:          "127.0.0.1:8080",
		RateLimit:       10,
		RateBurst:       20,
		LimiterTTL:      time.Hour,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Server serves one session over HTTP
type Server struct {
	cfg     Config
	session *vault.Session
	logger  zerolog.Logger
	engine  *gin.Engine
	server  *http.Server

	// limiterKey prefixes rate limiter keys; the limiter cache is process wide
	limiterKey string
}

// New builds the router for session
func New(cfg Config, session *vault.Session, logger zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:     cfg,
		session: session,
		logger:  logger.With().Str("component", "web").Logger(),
		engine:  gin.New(),

		limiterKey: uuid.New().String(),
	}

	s.engine.Use(gin.Recovery(), requestID(), accessLog(s.logger), corsMiddleware(cfg.AllowedOrigins))
	if cfg.RateLimit > 0 {
		s.engine.Use(rateLimit(cfg, s.limiterKey))
	}

	api := s.engine.Group("/api")
	{
		api.GET("/state", s.getState)
		api.POST("/mode", s.postMode)
		api.PUT("/encode/input", s.putEncodeInput)
		api.POST("/encode", s.postEncode)
		api.PUT("/lookup/input", s.putLookupInput)
		api.POST("/lookup", s.postLookup)
		api.GET("/history", s.getHistory)
	}

	s.server = &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
	return s
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	config := cors.DefaultConfig()
	if len(origins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	config.AllowHeaders = append(config.AllowHeaders, requestIDHeader)
	config.ExposeHeaders = []string{requestIDHeader}
	return cors.New(config)
}

// Handler returns the HTTP handler for testing
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start serves until Stop is called. A clean shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("api listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
