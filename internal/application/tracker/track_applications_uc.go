package tracker

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"jobtracker/internal/domain/email"
)

type Result struct {
	Found    int
	Skipped  int
	Written  int
	Outcomes map[email.Outcome]int
}

type TrackApplicationsUseCase struct {
	gmailService GmailService
	processed    ProcessedStore
	ledger       Ledger
	archive      EmailArchive
	log          *zap.Logger
}

func NewTrackApplicationsUseCase(
	gmailService GmailService,
	processed ProcessedStore,
	ledger Ledger,
	archive EmailArchive,
	log *zap.Logger,
) *TrackApplicationsUseCase {
	return &TrackApplicationsUseCase{
		gmailService: gmailService,
		processed:    processed,
		ledger:       ledger,
		archive:      archive,
		log:          log,
	}
}

// Execute runs one search, fetch, classify and append cycle. Messages whose ID
// is already in the processed set are neither fetched nor written. The
// processed set is saved on every exit after it was loaded, including failed
// runs, and holds exactly the IDs that have a ledger row.
func (uc *TrackApplicationsUseCase) Execute(ctx context.Context) (res *Result, err error) {
	ids, err := uc.processed.Load()
	if err != nil {
		return nil, errors.Wrap(err, "load processed ids")
	}

	res = &Result{Outcomes: make(map[email.Outcome]int)}

	defer func() {
		if saveErr := uc.processed.Save(ids); saveErr != nil {
			if err == nil {
				err = errors.Wrap(saveErr, "save processed ids")
			} else {
				uc.log.Error("Failed to save processed ids", zap.Error(saveErr))
			}
		}
	}()

	messageIDs, err := uc.gmailService.SearchMessages(ctx)
	if err != nil {
		return res, errors.Wrap(err, "search messages")
	}
	res.Found = len(messageIDs)
	uc.log.Info("Search complete", zap.Int("found", res.Found), zap.Int("known", len(ids)))

	if err := uc.ledger.Open(); err != nil {
		return res, errors.Wrap(err, "open ledger")
	}

	for _, gmailID := range messageIDs {
		if ids.Has(gmailID) {
			res.Skipped++
			uc.log.Debug("Already processed, skipping", zap.String("gmail_id", gmailID))
			continue
		}

		if err := uc.process(ctx, gmailID, ids, res); err != nil {
			return res, err
		}
	}

	return res, nil
}

func (uc *TrackApplicationsUseCase) process(ctx context.Context, gmailID string, ids email.IDSet, res *Result) error {
	e, err := uc.gmailService.FetchEmail(ctx, gmailID)
	if err != nil {
		return errors.Wrap(err, "fetch email")
	}
	e.GmailID = gmailID

	outcome := e.Classify()

	if err := uc.ledger.Append(e); err != nil {
		return errors.Wrap(err, "append ledger row")
	}
	ids.Add(gmailID)
	res.Written++
	res.Outcomes[outcome]++

	if uc.archive != nil {
		if err := uc.archive.Save(ctx, e); err != nil {
			return errors.Wrap(err, "archive email")
		}
	}

	uc.log.Info("OK",
		zap.String("gmail_id", gmailID),
		zap.String("subject", e.Subject),
		zap.String("outcome", outcome.String()),
	)
	return nil
}
