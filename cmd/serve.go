package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sidhant-sriv/gallery-api/auth"
	"github.com/sidhant-sriv/gallery-api/routes"
	"github.com/sidhant-sriv/gallery-api/upload"
)

func newServeCommand(e *env) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the gallery web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				e.cfg.Port = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, e)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides PORT)")
	return cmd
}

func serve(ctx context.Context, e *env) error {
	if err := e.cfg.ValidateServe(); err != nil {
		return err
	}
	if e.cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	if e.store == e.json {
		if err := e.json.EnsureFiles(); err != nil {
			return err
		}
	}

	svc, err := auth.NewService(
		auth.StaticCredentials{Username: e.cfg.AdminUsername, PasswordHash: e.cfg.AdminPassHash},
		e.cfg.SessionSecret,
		e.cfg.SessionTTL,
	)
	if err != nil {
		return err
	}

	h := &routes.Handlers{
		Store:         e.store,
		Uploads:       upload.NewSaver(e.cfg.MaxUploadBytes, e.log),
		Auth:          svc,
		Log:           e.log,
		PublicDir:     e.cfg.PublicDir,
		SecureCookies: e.cfg.GinMode == gin.ReleaseMode,
	}
	router, err := routes.NewRouter(h, e.cfg.DataDir, e.cfg.MaxUploadBytes)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort("", e.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		e.log.Info("server running", zap.String("addr", srv.Addr), zap.String("backend", e.cfg.StoreBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), e.cfg.ShutdownTimeout)
		defer cancel()
		e.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
