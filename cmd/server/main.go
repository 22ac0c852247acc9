package main

import (
	"log"
	"net/http"
	"os"
	"sync/atomic"

	"github.com/Kenkanekiqwe/yotaapp/internal/captcha"
	"github.com/Kenkanekiqwe/yotaapp/internal/config"
	"github.com/Kenkanekiqwe/yotaapp/internal/db"
	"github.com/Kenkanekiqwe/yotaapp/internal/handlers"
	"github.com/Kenkanekiqwe/yotaapp/internal/middleware"
	"github.com/Kenkanekiqwe/yotaapp/internal/moderation"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize logger
	logger := log.New(os.Stdout, "forum: ", log.LstdFlags|log.Lshortfile)

	// Initialize repository
	repo, err := db.NewRepository(cfg)
	if err != nil {
		logger.Fatalf("Database initialization error: %v", err)
	}
	defer repo.Close()

	// Migrations run in the background; requests get 503 until the
	// store is ready.
	var ready atomic.Bool
	go func() {
		if err := repo.RunMigrations(); err != nil {
			logger.Fatalf("Migration error: %v", err)
		}
		ready.Store(true)
		logger.Printf("Database ready")
	}()

	captchaStore := captcha.NewStore(captcha.DefaultTTL)
	gate := moderation.NewGate(repo)

	// Create handlers
	authHandler := handlers.NewAuthHandler(repo, captchaStore, logger)
	captchaHandler := handlers.NewCaptchaHandler(captchaStore)
	threadHandler := handlers.NewThreadHandler(repo, gate, logger)
	postHandler := handlers.NewPostHandler(repo, gate, logger)
	userHandler := handlers.NewUserHandler(repo, logger)
	pluginHandler := handlers.NewPluginHandler(repo, gate, logger)
	miscHandler := handlers.NewMiscHandler(repo, logger)
	adminHandler := handlers.NewAdminHandler(repo, logger)

	// Set up routes
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", miscHandler.Health)
	mux.HandleFunc("GET /api/captcha", captchaHandler.Issue)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/auth/verify", authHandler.Verify)
	mux.HandleFunc("POST /api/auth/verify", authHandler.Verify)

	mux.HandleFunc("GET /api/categories", miscHandler.Categories)
	mux.HandleFunc("GET /api/threads", threadHandler.List)
	mux.HandleFunc("POST /api/threads", threadHandler.Create)
	mux.HandleFunc("GET /api/threads/{id}", threadHandler.Detail)
	mux.HandleFunc("POST /api/threads/{id}/posts", postHandler.Reply)
	mux.HandleFunc("GET /api/posts/reactions", postHandler.Reactions)
	mux.HandleFunc("POST /api/posts/{id}/like", postHandler.Like)
	mux.HandleFunc("POST /api/posts/{id}/react", postHandler.React)
	mux.HandleFunc("POST /api/posts/{id}/rep", postHandler.Rep)

	mux.HandleFunc("GET /api/plugins", pluginHandler.List)
	mux.HandleFunc("POST /api/plugins", pluginHandler.Create)
	mux.HandleFunc("GET /api/plugins/{slug}", pluginHandler.Get)

	mux.HandleFunc("GET /api/users", userHandler.List)
	mux.HandleFunc("GET /api/users/{username}", userHandler.Profile)
	mux.HandleFunc("PUT /api/users/{username}", userHandler.Update)
	mux.HandleFunc("GET /api/users/{username}/settings", userHandler.Settings)
	mux.HandleFunc("PUT /api/users/{username}/settings", userHandler.SaveSettings)

	mux.HandleFunc("GET /api/stats", miscHandler.Stats)
	mux.HandleFunc("GET /api/settings/public", miscHandler.PublicSettings)
	mux.HandleFunc("GET /api/banners", miscHandler.Banners)
	mux.HandleFunc("GET /api/notices", miscHandler.Notices)
	mux.HandleFunc("POST /api/reports", miscHandler.CreateReport)

	mux.HandleFunc("GET /api/admin/threads", adminHandler.Threads)
	mux.HandleFunc("GET /api/admin/users", adminHandler.Users)
	mux.HandleFunc("GET /api/admin/plugins", adminHandler.Plugins)
	mux.HandleFunc("GET /api/admin/banners", adminHandler.Banners)
	mux.HandleFunc("GET /api/admin/notices", adminHandler.Notices)
	mux.HandleFunc("GET /api/admin/settings", adminHandler.Settings)
	mux.HandleFunc("GET /api/admin/reports", adminHandler.Reports)
	mux.HandleFunc("GET /api/admin/warnings", adminHandler.Warnings)
	mux.HandleFunc("POST /api/admin/deleteThread", adminHandler.DeleteThread)
	mux.HandleFunc("POST /api/admin/pinThread", adminHandler.PinThread)
	mux.HandleFunc("POST /api/admin/lockThread", adminHandler.LockThread)
	mux.HandleFunc("POST /api/admin/hideThread", adminHandler.HideThread)
	mux.HandleFunc("POST /api/admin/editThread", adminHandler.EditThread)
	mux.HandleFunc("POST /api/admin/editUser", adminHandler.EditUser)
	mux.HandleFunc("POST /api/admin/banUser", adminHandler.BanUser)
	mux.HandleFunc("POST /api/admin/addPlugin", adminHandler.AddPlugin)
	mux.HandleFunc("POST /api/admin/editPlugin", adminHandler.EditPlugin)
	mux.HandleFunc("POST /api/admin/deletePlugin", adminHandler.DeletePlugin)
	mux.HandleFunc("POST /api/admin/addBanner", adminHandler.AddBanner)
	mux.HandleFunc("POST /api/admin/editBanner", adminHandler.EditBanner)
	mux.HandleFunc("POST /api/admin/deleteBanner", adminHandler.DeleteBanner)
	mux.HandleFunc("POST /api/admin/addCategory", adminHandler.AddCategory)
	mux.HandleFunc("POST /api/admin/editCategory", adminHandler.EditCategory)
	mux.HandleFunc("POST /api/admin/deleteCategory", adminHandler.DeleteCategory)
	mux.HandleFunc("POST /api/admin/addNotice", adminHandler.AddNotice)
	mux.HandleFunc("POST /api/admin/editNotice", adminHandler.EditNotice)
	mux.HandleFunc("POST /api/admin/deleteNotice", adminHandler.DeleteNotice)
	mux.HandleFunc("POST /api/admin/toggleNotice", adminHandler.ToggleNotice)
	mux.HandleFunc("POST /api/admin/saveSettings", adminHandler.SaveSettings)
	mux.HandleFunc("POST /api/admin/resolveReport", adminHandler.ResolveReport)
	mux.HandleFunc("POST /api/admin/rejectReport", adminHandler.RejectReport)
	mux.HandleFunc("POST /api/admin/deleteReport", adminHandler.DeleteReport)

	handler := middleware.AccessLog(logger)(
		middleware.CORS(cfg.AllowedOrigins())(
			middleware.DatabaseReady(&ready)(mux)))

	// Start server
	logger.Printf("Server started at http://localhost:%s", cfg.Port)

	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		logger.Fatalf("Server start error: %v", err)
	}
}
