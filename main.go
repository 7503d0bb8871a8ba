package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"studioadmin/auth"
	"studioadmin/config"
	"studioadmin/handlers/api"
	"studioadmin/middleware"
	"studioadmin/models"
	"studioadmin/notify"
	"studioadmin/revalidate"
	"studioadmin/settings"
	"studioadmin/storage"
	"studioadmin/utils"
	"studioadmin/validation"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("config.toml")
	if err != nil {
		utils.Log.Fatal("Failed to load config: %v", err)
	}
	utils.Log.SetLevel(utils.ParseLevel(cfg.Server.LogLevel))

	// Initialize i18n system
	if err := utils.InitI18n(cfg.Locale.Dir); err != nil {
		utils.Log.Error("Failed to initialize i18n: %v", err)
	}

	// Open the admin data store
	db, err := storage.InitDB(cfg.Storage.DataDir)
	if err != nil {
		utils.Log.Fatal("Failed to open data store: %v", err)
	}
	defer db.Close()

	settingsStore := storage.NewSettingsStore(db)
	adminStore := storage.NewAdminStore(db)

	// Seed the first administrator if configured and absent
	if err := bootstrapAdmin(adminStore, cfg); err != nil {
		utils.Log.Error("Admin bootstrap failed: %v", err)
	}

	// Identity provider and presentation-layer collaborators
	provider := auth.NewLocalProvider(adminStore, cfg.JWT.Secret,
		time.Duration(cfg.JWT.VerifyLinkHours)*time.Hour, cfg.Server.DashboardURL)
	revalidator := revalidate.New(cfg.Revalidate.URL, cfg.Revalidate.Secret)
	hub := notify.NewHub()

	// Settings action service with its owned token store and cooldown gate
	tokens := settings.NewRollbackStore(cfg.RollbackTTL(), cfg.SweepInterval())
	defer tokens.Close()
	cooldowns := settings.NewCooldownGate(cfg.Cooldown())

	service := settings.NewService(settingsStore, provider, validation.New(),
		tokens, cooldowns, revalidator, hub, utils.Log)

	// Initialize Fiber
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			body := fiber.Map{"success": false, "error": err.Error()}

			// Check for AppError
			if appErr, ok := err.(*utils.AppError); ok {
				code = appErr.Code
				if appErr.Code >= 500 {
					utils.Log.Error("Application error: %v", appErr)
				}
				if len(appErr.Context) > 0 {
					body["details"] = appErr.Context
				}
				body["error"] = appErr.Message
			} else if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			return c.Status(code).JSON(body)
		},
	})

	// Add global middleware
	app.Use(recover.New()) // Recover from panics
	app.Use(logger.New())  // Request logging
	app.Use(compress.New())
	app.Use(helmet.New(helmet.Config{ // Security headers
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
		ReferrerPolicy:     "no-referrer",
	}))
	app.Use(middleware.LocaleMiddleware())
	app.Use(middleware.RateLimiter(cfg.Limits.RequestsPerMinute, time.Minute))

	// Initialize handlers
	authHandler := api.NewAuthHandler(cfg, adminStore, provider)
	settingsHandler := api.NewSettingsHandler(cfg, service)
	i18nHandler := &api.I18nHandler{}

	// Public routes
	app.Post("/api/admin/login", authHandler.HandleLogin)
	app.Get("/api/admin/verify-email", authHandler.HandleVerifyEmail)
	app.Get("/api/i18n/:lang", i18nHandler.GetTranslations)

	// Protected routes group
	protected := app.Group("/api/admin", middleware.RequireAdmin(cfg.JWT.Secret))

	settingsRoutes := protected.Group("/settings")
	{
		settingsRoutes.Get("/", settingsHandler.GetSettings)
		settingsRoutes.Put("/profile", settingsHandler.UpdateProfile)
		settingsRoutes.Post("/email", settingsHandler.ChangeEmail)
		settingsRoutes.Post("/email/verification", settingsHandler.SendVerification)
		settingsRoutes.Put("/notifications", settingsHandler.UpdateNotifications)
		settingsRoutes.Post("/notifications/test", settingsHandler.TestNotification)
		settingsRoutes.Put("/appearance", settingsHandler.UpdateAppearance)
		settingsRoutes.Post("/appearance/reset", settingsHandler.ResetAppearance)
		settingsRoutes.Post("/rollback", settingsHandler.Rollback)
		settingsRoutes.Get("/contrast", settingsHandler.CheckContrast)
	}

	// In-app notification stream
	protected.Use("/notifications/ws", hub.Upgrade())
	protected.Get("/notifications/ws", hub.Handler())

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// 404 Handler for undefined routes
	app.Use(func(c *fiber.Ctx) error {
		return utils.NotFoundError("Route not found", nil)
	})

	// Shut down cleanly on SIGINT/SIGTERM
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		utils.Log.Info("Shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	utils.Log.Info("Starting server on port %d...", cfg.Server.Port)
	if err := app.Listen(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		utils.Log.Error("Error starting server: %v", err)
	}
}

// bootstrapAdmin seeds the first administrator record from config when no
// record with that email exists yet.
func bootstrapAdmin(admins *storage.AdminStore, cfg *config.Config) error {
	email := cfg.Bootstrap.AdminEmail
	password := cfg.Bootstrap.AdminPassword
	if email == "" || password == "" {
		return nil
	}

	if _, err := admins.GetAdminByEmail(email); err == nil {
		return nil
	}

	admin := &models.AdminUser{
		Email:       email,
		DisplayName: "Admin",
		Role:        "admin",
	}
	if err := admins.CreateAdmin(admin, password); err != nil {
		return err
	}
	utils.Log.Info("Bootstrapped administrator %s", email)
	return nil
}
