package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/DEBABRATA1331/eyeq-iop-tracker/internal/config"
	"github.com/DEBABRATA1331/eyeq-iop-tracker/internal/handler"
	"github.com/DEBABRATA1331/eyeq-iop-tracker/internal/mail"
	"github.com/DEBABRATA1331/eyeq-iop-tracker/internal/middleware"
	"github.com/DEBABRATA1331/eyeq-iop-tracker/internal/repository"
	"github.com/DEBABRATA1331/eyeq-iop-tracker/internal/service"
	"github.com/DEBABRATA1331/eyeq-iop-tracker/internal/session"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := repository.Migrate(context.Background(), db); err != nil {
		slog.Error("database migration failed", "error", err)
		os.Exit(1)
	}

	mailer, err := mail.NewSMTPMailer(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})
	if err != nil {
		slog.Error("smtp client setup failed", "error", err)
		os.Exit(1)
	}

	sessions := session.NewStore(cfg.SessionTTL)
	sessionMgr := middleware.NewSessionManager(sessions, cfg.SessionSecret, cfg.SessionTTL)

	userRepo := repository.NewUserRepository(db)
	readingRepo := repository.NewReadingRepository(db)

	directory := service.NewDirectory(userRepo)
	authService := service.NewAuthService(directory, mailer)
	readingsService := service.NewReadingsService(readingRepo, directory)

	authHandler := handler.NewAuthHandler(authService, directory)
	readingsHandler := handler.NewReadingsHandler(readingsService)

	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Device ingest authenticates by account email, not by session.
	r.Post("/api/v1/readings", readingsHandler.HandleIngest)

	r.Group(func(r chi.Router) {
		r.Use(sessionMgr.LoadSession)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(5, 10))
			r.Post("/api/v1/auth/login", authHandler.HandleLogin)
			r.Post("/api/v1/auth/verify", authHandler.HandleVerify)
			r.Post("/api/v1/auth/resend", authHandler.HandleResend)
		})

		r.Post("/api/v1/auth/logout", authHandler.HandleLogout)
		r.Get("/api/v1/readings/latest", readingsHandler.HandleLatest)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/api/v1/auth/me", authHandler.HandleMe)
			r.Get("/api/v1/dashboard", readingsHandler.HandleDashboard)
			r.Get("/api/v1/history", readingsHandler.HandleHistory)
			r.Get("/api/v1/report", readingsHandler.HandleReport)
		})
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
