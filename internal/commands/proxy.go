package commands

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/botdesk/botusage/internal/config"
	"github.com/botdesk/botusage/internal/logger"
	"github.com/botdesk/botusage/internal/proxy"
)

func NewProxyCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "proxy",
		Short: "Run the backend reverse proxy",
		Long: `Front the auth and RAG backends behind one listener: /api keeps its
prefix toward the auth backend, /api-rag is stripped toward the RAG
backend.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.ProxyAddr = addr
			}

			srv, err := proxy.New(proxy.Config{
				Addr:           cfg.ProxyAddr,
				AuthBackendURL: cfg.AuthBackendURL,
				RAGBackendURL:  cfg.RAGBackendURL,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				logger.Info("shutting down proxy")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Stop(shutdownCtx)
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides PROXY_ADDR)")

	return cmd
}
