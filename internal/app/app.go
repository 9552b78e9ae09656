package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/service-panel/servicepanel/internal/config"
	"github.com/service-panel/servicepanel/internal/db"
	"github.com/service-panel/servicepanel/internal/http/api"
	"github.com/service-panel/servicepanel/internal/logging"
	"github.com/service-panel/servicepanel/internal/models"
	"github.com/service-panel/servicepanel/internal/security"
	"github.com/service-panel/servicepanel/internal/session"
	"github.com/service-panel/servicepanel/internal/settings"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, configPath string) error {
	cfg, errLoad := config.Load(config.ResolveConfigPath(configPath))
	if errLoad != nil {
		return errLoad
	}
	conn, errOpen := db.Open(cfg.Database.DSN)
	if errOpen != nil {
		return errOpen
	}
	return db.Migrate(conn)
}

// RunServer boots the panel server with database-backed components.
func RunServer(ctx context.Context, configPath string) error {
	cfg, errLoad := config.Load(config.ResolveConfigPath(configPath))
	if errLoad != nil {
		return errLoad
	}
	logging.Setup(cfg.Log.Level, cfg.Log.File)

	conn, errOpen := db.Open(cfg.Database.DSN)
	if errOpen != nil {
		return errOpen
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}
	if errRefresh := settings.Refresh(ctx, conn); errRefresh != nil {
		return errRefresh
	}
	if errEnsure := ensureAdminUser(ctx, conn); errEnsure != nil {
		return errEnsure
	}

	store, errStore := buildSessionStore(conn, cfg)
	if errStore != nil {
		return errStore
	}
	sessions := session.NewManager(store, cfg.Session.CookieName, cfg.SessionTTL(), cfg.Session.CookieSecure)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api.RegisterRoutes(engine, conn, sessions)

	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", cfg.Listen)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
			return errShutdown
		}
		return nil
	case errServe := <-errCh:
		if errors.Is(errServe, http.ErrServerClosed) {
			return nil
		}
		return errServe
	}
}

// buildSessionStore picks the Redis store when configured, falling back to
// the relational store.
func buildSessionStore(conn *gorm.DB, cfg config.Config) (session.Store, error) {
	if addr := strings.TrimSpace(cfg.Session.RedisAddr); addr != "" {
		store, errRedis := session.NewRedisStore(addr, os.Getenv("SERVICEPANEL_REDIS_PASSWORD"), cfg.Session.RedisDB)
		if errRedis != nil {
			return nil, errRedis
		}
		log.Infof("session store: redis at %s", addr)
		return store, nil
	}
	return session.NewGormStore(conn), nil
}

// ensureAdminUser creates the initial admin account when no admin exists.
// The password comes from SERVICEPANEL_ADMIN_PASSWORD or is generated and
// logged once.
func ensureAdminUser(ctx context.Context, conn *gorm.DB) error {
	var count int64
	if errCount := conn.WithContext(ctx).Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; errCount != nil {
		return errCount
	}
	if count > 0 {
		return nil
	}

	password := strings.TrimSpace(os.Getenv("SERVICEPANEL_ADMIN_PASSWORD"))
	generated := false
	if password == "" {
		random, errGenerate := security.GenerateSessionID()
		if errGenerate != nil {
			return errGenerate
		}
		password = random[:16]
		generated = true
	}

	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		return errHash
	}
	now := time.Now().UTC()
	admin := models.User{
		Username:  "admin",
		Password:  hash,
		Role:      models.RoleAdmin,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if errCreate := conn.WithContext(ctx).Create(&admin).Error; errCreate != nil {
		return errCreate
	}
	if generated {
		log.Warnf("created initial admin user %q with password %s", admin.Username, password)
	} else {
		log.Infof("created initial admin user %q", admin.Username)
	}
	return nil
}
