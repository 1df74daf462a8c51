// Package app boots the admission server from configuration.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quillboard/admission/internal/admission"
	"github.com/quillboard/admission/internal/catalog"
	"github.com/quillboard/admission/internal/config"
	"github.com/quillboard/admission/internal/db"
	"github.com/quillboard/admission/internal/httpapi"
	"github.com/quillboard/admission/internal/store"
	log "github.com/sirupsen/logrus"
)

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	return db.Migrate(conn.WithContext(ctx))
}

// loadCatalog reads the configured catalog file, falling back to the
// bundled catalog for the configured forum type when no file exists.
func loadCatalog(configPath string) (catalog.Catalog, error) {
	catalogPath := catalog.ResolvePath(config.LoadCatalogPath(configPath))
	if _, errStat := os.Stat(catalogPath); errStat == nil {
		log.WithField("catalog", catalogPath).Info("using catalog file")
		return catalog.Load(catalogPath)
	}
	forumType := config.LoadForumType(configPath)
	log.WithField("forum_type", forumType).Info("catalog file not found, using bundled catalog")
	return catalog.Builtin(forumType)
}

// RunServer boots the admission API server with database-backed components.
// The port argument is a default; a server.port config value wins.
func RunServer(ctx context.Context, cfg config.AppConfig, port int) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)

	if level, errLevel := log.ParseLevel(config.LoadLogLevel(configPath)); errLevel == nil {
		log.SetLevel(level)
	}

	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	rules, errCatalog := loadCatalog(configPath)
	if errCatalog != nil {
		// The catalog fails closed: a server with broken rules must not
		// start and silently admit everything.
		return fmt.Errorf("load rule catalog: %w", errCatalog)
	}
	log.WithFields(log.Fields{
		"rules":   len(rules.Rules()),
		"dialect": db.DialectName(conn),
	}).Info("rule catalog loaded")

	svc := admission.NewService(store.New(conn), rules, nil)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	httpapi.RegisterRoutes(engine, conn, svc)

	addr := fmt.Sprintf(":%d", config.LoadServerPort(configPath, port))
	log.Infof("starting admission server on %s", addr)

	srv := &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if errShutdown := srv.Shutdown(shutdownCtx); errShutdown != nil {
			log.Errorf("server shutdown error: %v", errShutdown)
		}
	}()

	if errListen := srv.ListenAndServe(); errListen != nil && errListen != http.ErrServerClosed {
		return errListen
	}
	return nil
}
