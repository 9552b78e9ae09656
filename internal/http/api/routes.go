package api

import (
	"github.com/gin-gonic/gin"
	"github.com/service-panel/servicepanel/internal/http/api/handlers"
	"github.com/service-panel/servicepanel/internal/session"
	"gorm.io/gorm"
)

// RegisterRoutes wires all panel routes onto the engine, grouped by the
// privilege tier required to call them.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, sessions *session.Manager) {
	if r == nil || db == nil || sessions == nil {
		return
	}

	v0 := r.Group("/v0")

	authHandler := handlers.NewAuthHandler(db, sessions)
	verifyHandler := handlers.NewVerifyHandler(db)
	usageHandler := handlers.NewUsageHandler(db)

	// Public tier: no session required.
	v0.POST("/auth/login", authHandler.Login)
	v0.POST("/verify/ability", verifyHandler.VerifyUserAbility)
	v0.POST("/service/usage", usageHandler.Report)
	v0.GET("/config", handlers.GetPublicConfig)

	// Session tier: valid session, user row not loaded.
	sessionTier := v0.Group("")
	sessionTier.Use(SessionAuth(sessions))

	instanceHandler := handlers.NewInstanceHandler(db)
	sessionTier.POST("/auth/logout", authHandler.Logout)
	sessionTier.GET("/instances/:id", instanceHandler.GetByID)

	// User tier: session plus loaded, active user.
	userTier := sessionTier.Group("")
	userTier.Use(UserAuth(db))

	userHandler := handlers.NewUserHandler(db)
	userTier.GET("/users/self", userHandler.GetSelf)
	userTier.PATCH("/users/self", userHandler.UpdateSelf)
	userTier.POST("/users/password", userHandler.ChangePassword)
	userTier.GET("/instances", instanceHandler.ListWithToken)

	// Admin tier: user tier plus the admin role.
	adminTier := userTier.Group("/admin")
	adminTier.Use(AdminOnly())

	grantHandler := handlers.NewGrantHandler(db)
	settingsHandler := handlers.NewSettingsHandler(db)

	adminTier.POST("/users", userHandler.Create)
	adminTier.GET("/users", userHandler.List)
	adminTier.GET("/users/lookup", userHandler.Lookup)

	adminTier.POST("/instances", instanceHandler.Create)
	adminTier.GET("/instances", instanceHandler.ListAdmin)
	adminTier.PATCH("/instances", instanceHandler.Update)
	adminTier.PUT("/instances/data", instanceHandler.UpdateData)
	adminTier.DELETE("/instances/:id", instanceHandler.Delete)
	adminTier.POST("/instances/:id/grant-all", grantHandler.GrantToAllActiveUsers)
	adminTier.GET("/instances/:id/usage", usageHandler.ListForInstance)

	adminTier.GET("/settings", settingsHandler.List)
	adminTier.PUT("/settings", settingsHandler.Update)
}
