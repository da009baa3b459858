package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blasting_tracker/internal/api"
	"blasting_tracker/internal/app"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard JSON API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&listenAddr, "addr", "a", "", "listen address (default from LISTEN_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, src, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer closeSource(src)

	if _, err := sess.Load(ctx); err != nil {
		return err
	}

	addr := cfg.ListenAddr
	if listenAddr != "" {
		addr = listenAddr
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           api.GetRouter(sess, app.InitializeNotificationClient(cfg)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("worksheet", sess.Worksheet()).Msg("Serving dashboard API")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
