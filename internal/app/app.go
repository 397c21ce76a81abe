package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"

	"github.com/3025972301/scratch-viwe/internal/auth"
	"github.com/3025972301/scratch-viwe/internal/config"
	"github.com/3025972301/scratch-viwe/internal/db"
	"github.com/3025972301/scratch-viwe/internal/health"
	"github.com/3025972301/scratch-viwe/internal/httputil"
	"github.com/3025972301/scratch-viwe/internal/logger"
	"github.com/3025972301/scratch-viwe/internal/metrics"
	"github.com/3025972301/scratch-viwe/internal/middleware"
	"github.com/3025972301/scratch-viwe/internal/project"
	"github.com/3025972301/scratch-viwe/internal/student"
	"github.com/3025972301/scratch-viwe/internal/upload"
)

type App struct {
	config *config.Config
	router chi.Router
	db     *bun.DB
	server *http.Server
	logger *slog.Logger
}

func New() *App {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	slogLogger := logger.NewWithServiceContext(cfg.Env, "scratch-show", "1.0.0")
	slog.SetDefault(slogLogger)
	slogLogger.Info("initializing application", "env", cfg.Env)

	if cfg.Auth.JWTSecret == config.DefaultJWTSecret && cfg.Env != "local" {
		slogLogger.Warn("JWT_SECRET is the insecure default; override it in deployment")
	}

	database, err := db.New(cfg.DB, slogLogger)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	ctx := context.Background()
	if err := db.RunMigrations(ctx, database,
		(*auth.Admin)(nil),
		(*student.Student)(nil),
		(*project.Project)(nil),
	); err != nil {
		log.Fatal("failed to run migrations:", err)
	}

	m, err := metrics.New("scratch-show")
	if err != nil {
		log.Fatal("failed to initialize metrics:", err)
	}

	app := &App{
		config: cfg,
		router: chi.NewRouter(),
		db:     database,
		logger: slogLogger,
	}

	app.router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	// Auth setup, with the default admin seeded so login works at first boot
	authRepo := auth.NewRepository(database)
	authService := auth.NewService(authRepo, cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	if err := authService.EnsureDefaultAdmin(ctx); err != nil {
		log.Fatal("failed to seed admin account:", err)
	}
	authHandler := auth.NewHandler(authService, slogLogger, m)

	studentRepo := student.NewRepository(database)
	studentService := student.NewService(studentRepo)
	studentHandler := student.NewHandler(studentService, slogLogger, m)

	projectRepo := project.NewRepository(database)
	projectService := project.NewService(projectRepo, studentRepo)
	projectHandler := project.NewHandler(projectService, slogLogger, m)

	uploadHandler := upload.NewHandler(cfg.Upload, slogLogger, m)
	if err := uploadHandler.EnsureDirs(); err != nil {
		log.Fatal("failed to create upload directories:", err)
	}

	// Uploaded files are served statically under /uploads
	app.router.Handle("/uploads/*", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(cfg.Upload.Dir))))

	app.router.Route("/api", func(api chi.Router) {
		health.NewHandler().RegisterRoutes(api)
		authHandler.RegisterRoutes(api)

		// Mutations require a valid admin bearer token; reads and the
		// visitor actions (view, like) stay public.
		admin := api.With(auth.Middleware(authService, slogLogger))
		studentHandler.RegisterRoutes(api, admin)
		projectHandler.RegisterRoutes(api, admin)
		uploadHandler.RegisterRoutes(admin)
	})

	app.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondWithError(w, http.StatusNotFound, "not found")
	})

	slogLogger.Info("application initialized successfully")

	return app
}

func (a *App) Run() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.config.Server.IdleTimeout) * time.Second,
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			return err
		}
	}
	db.Close(a.db)
	return nil
}
