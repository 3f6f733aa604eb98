package cli

import (
	"context"

	"line-quiz-bot/internal/app"
	"line-quiz-bot/internal/imaging"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewSweepCmd deletes expired quizzes once, for external schedulers.
func NewSweepCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete quizzes whose deadline has passed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(cmd.Context(), *configPath)
		},
	}
}

func runSweep(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
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
		Quizzes:  b.quizzes,
		Ledger:   b.ledger,
		Images:   b.images,
		Sessions: b.sessions,
		Matcher:  imaging.NewGallery(b.images),
	}, ec)

	report, err := engine.Sweep(ctx)
	if err != nil {
		return err
	}
	if report.Failed > 0 {
		log.WithField("failed", report.Failed).Warn("some expired quizzes could not be deleted")
	}
	return nil
}
