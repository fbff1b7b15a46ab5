package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"jobtracker/internal/application/tracker"
	"jobtracker/internal/domain/email"
	"jobtracker/internal/infrastructure/config"
	"jobtracker/internal/infrastructure/gmail"
	"jobtracker/internal/infrastructure/logger"
	"jobtracker/internal/infrastructure/persistence/ledger"
	"jobtracker/internal/infrastructure/persistence/processed"
	"jobtracker/internal/infrastructure/persistence/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Error("Run failed", zap.Error(err))
		_ = appLogger.Sync()
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	credentials := gmail.NewCredentialManager(gmail.AuthConfig{
		CredentialsPath: cfg.CredentialsPath,
		TokenPath:       cfg.TokenPath,
		Scopes:          []string{cfg.Scope},
	}, log.Named("oauth"))

	gmailService, err := credentials.NewService(ctx)
	if err != nil {
		return err
	}
	gmailClient := gmail.NewClient(gmailService, cfg.SearchQuery)
	log.Debug("Gmail client ready", zap.String("query", gmailClient.Query()))

	jobLedger := ledger.New(cfg.LedgerPath)
	defer func() {
		if err := jobLedger.Close(); err != nil {
			log.Error("Failed to close ledger", zap.Error(err))
		}
	}()

	var archive tracker.EmailArchive
	var repo *sqlite.EmailRepository
	if cfg.DatabasePath != "" {
		repo, err = sqlite.NewEmailRepository(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer func() {
			if err := repo.Close(); err != nil {
				log.Error("Failed to close repository", zap.Error(err))
			}
		}()
		archive = repo
	}

	uc := tracker.NewTrackApplicationsUseCase(
		gmailClient,
		processed.NewStore(cfg.ProcessedIDsPath),
		jobLedger,
		archive,
		log.Named("tracker"),
	)

	res, err := uc.Execute(ctx)
	if err != nil {
		return err
	}

	fields := []zap.Field{
		zap.Int("found", res.Found),
		zap.Int("skipped", res.Skipped),
		zap.Int("written", res.Written),
		zap.String("ledger", jobLedger.Path()),
	}
	for _, outcome := range email.Outcomes {
		if n := res.Outcomes[outcome]; n > 0 {
			fields = append(fields, zap.Int(outcome.String(), n))
		}
	}
	log.Info("Run complete", fields...)

	if repo != nil {
		totals, err := repo.CountByOutcome(ctx)
		if err != nil {
			return err
		}
		log.Info("Archive totals", outcomeFields(totals)...)
	}

	return nil
}

func outcomeFields(counts map[email.Outcome]int) []zap.Field {
	fields := make([]zap.Field, 0, len(email.Outcomes))
	for _, outcome := range email.Outcomes {
		fields = append(fields, zap.Int(outcome.String(), counts[outcome]))
	}
	return fields
}
