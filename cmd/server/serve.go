package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"opinions/internal/db"
	"opinions/internal/router"
	"opinions/internal/services"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// 启动时补齐默认话题
		if n, err := services.NewTopicService(db.DB).Seed(ctx); err != nil {
			slog.Warn("failed to seed topics", "error", err)
		} else if n > 0 {
			slog.Info("seeded default topics", "count", n)
		}

		if !cfg.MailEnabled() {
			slog.Warn("mail service disabled: missing SMTP environment variables, OTP login will fail")
		}
		mailer := services.NewMailService(services.MailConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.SMTPFrom,
		})
		google := services.NewGoogleService(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.SiteURL+"/api/auth/google/callback")

		srv := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router.New(cfg, db.DB, mailer, google),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			slog.Info("opinions server starting", "port", cfg.Port, "env", cfg.Env)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}
