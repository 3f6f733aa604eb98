package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"line-quiz-bot/internal/app"
	"line-quiz-bot/internal/config"
	"line-quiz-bot/internal/imaging"
	"line-quiz-bot/internal/infra/line"
	transport "line-quiz-bot/internal/transport/http"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the bot server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	if cfg.Line.ChannelAccessToken == "" {
		return fmt.Errorf("line channel access token not configured")
	}
	messenger, err := line.NewMessenger(cfg.Line.ChannelAccessToken, cfg.Line.MaxContentBytes)
	if err != nil {
		return err
	}

	ec, err := engineConfig(cfg)
	if err != nil {
		return err
	}
	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	engine := app.NewEngine(app.Deps{
		Quizzes:   b.quizzes,
		Ledger:    b.ledger,
		Images:    b.images,
		Sessions:  b.sessions,
		Matcher:   imaging.NewGallery(b.images),
		Messenger: messenger,
	}, ec)

	runCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	go engine.RunSweeper(runCtx, config.TTLDuration(cfg.Sweep.Interval, 0))

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(engine),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.WithField("port", finalPort).Info("starting quiz bot")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
