package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/local/scoresplit/internal/config"
	"github.com/local/scoresplit/internal/dispatcher"
	"github.com/local/scoresplit/internal/metrics"
	"github.com/local/scoresplit/internal/queue"
	"github.com/local/scoresplit/internal/server"
	"github.com/local/scoresplit/internal/store"
)

var serveNoWorker bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the split service: HTTP API plus queue workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		metrics.Init()

		rq, err := queue.NewRedisQueue(cfg.Queue.RedisURL, cfg.Queue.Stream, cfg.Queue.Group)
		if err != nil {
			return err
		}
		defer rq.Close()

		rs, err := store.NewRedisStatus(cfg.Queue.RedisURL)
		if err != nil {
			return err
		}
		defer rs.Close()

		vocabulary, err := config.LoadVocabulary(cfg.ConfigDir)
		if err != nil {
			return err
		}

		mux := http.NewServeMux()
		server.New(rq, rs).RegisterRoutes(mux)

		if !serveNoWorker {
			disp := dispatcher.New(cfg, vocabulary, rq, rs)
			disp.Start()
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = disp.Stop(ctx)
			}()
		}

		srv := &http.Server{Addr: ":" + cfg.Server.Port, Handler: mux}
		go func() {
			log.Info().Msgf("HTTP server listening on :%s", cfg.Server.Port)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatal().Err(err).Msg("http server error")
			}
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("http shutdown")
		}
		log.Info().Msg("shutdown complete")
		return nil
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveNoWorker, "no-worker", false, "serve the API without starting queue workers")
	rootCmd.AddCommand(serveCmd)
}
