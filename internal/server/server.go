// Package server wires the HTTP surface: gin router, CORS, the JSON
// API and the SQLite store lifecycle.
package server

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/api"
	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/config"
	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/importer"
	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/store"
)

type Server struct {
	router *gin.Engine
	store  *store.Store
	log    *zap.SugaredLogger
}

// New builds the server: opens the store under the configured data
// directory and mounts the API under /api.
func New(cfg *config.Config, log *zap.SugaredLogger) (*Server, error) {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		dataDir = cfg.Data.DataDir
	}
	st, err := store.New(filepath.Join(dataDir, "cruscotto.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A configured master workbook (config.toml or CRUSCOTTO_MASTER_XLSX)
	// is imported on startup so the service comes up populated.
	if cfg.Excel.MasterPath != "" {
		if _, err := importer.New(cfg, st, log).ImportMaster(cfg.Excel.MasterPath); err != nil {
			log.Warnw("master workbook not imported", "path", cfg.Excel.MasterPath, "error", err)
		}
	}

	s := &Server{
		router: gin.Default(),
		store:  st,
		log:    log,
	}
	s.setupRoutes(cfg)
	return s, nil
}

func (s *Server) setupRoutes(cfg *config.Config) {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	handler := api.NewHandler(cfg, s.store, s.log)
	group := s.router.Group("/api")
	handler.RegisterRoutes(group)

	s.router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": "cruscotto", "api": "/api"})
	})
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	s.log.Infow("http server listening", "addr", addr)
	return s.router.Run(addr)
}

// Router exposes the engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Store exposes the store for tests and shutdown.
func (s *Server) Store() *store.Store {
	return s.store
}

// Close releases the database handle.
func (s *Server) Close() error {
	return s.store.Close()
}
