package cli

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lehmann314159/rango/internal/handlers"
	"github.com/lehmann314159/rango/internal/search"
	"github.com/lehmann314159/rango/internal/server"
	"github.com/lehmann314159/rango/web"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web application",
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveAddr != "" {
			cfg.Addr = serveAddr
		}

		store, closeStore, err := openStore(cfg, logger)
		if err != nil {
			logger.Error("Failed to open catalog store", zap.Error(err))
			return err
		}
		defer closeStore()

		tmpl, err := handlers.ParseTemplates(web.Templates)
		if err != nil {
			logger.Error("Failed to parse templates", zap.Error(err))
			return err
		}

		searcher := newSearchClient()
		handler := server.Routes(store, searcher, tmpl, logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(server.Config{
			Addr:            cfg.Addr,
			ShutdownTimeout: cfg.Server.ShutdownTimeout,
			ReadTimeout:     cfg.Server.ReadTimeout,
			WriteTimeout:    cfg.Server.WriteTimeout,
		}, handler, logger)
		return srv.Run(ctx)
	},
}

func newSearchClient() *search.Client {
	return search.New(search.Config{
		Endpoint: cfg.Search.Endpoint,
		Key:      cfg.Search.Key,
		KeyFile:  cfg.Search.KeyFile,
	}, &http.Client{Timeout: cfg.Search.Timeout}, logger)
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
