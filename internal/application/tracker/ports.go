package tracker

import (
	"context"

	"jobtracker/internal/domain/email"
)

type GmailService interface {
	SearchMessages(ctx context.Context) ([]string, error)
	FetchEmail(ctx context.Context, messageID string) (*email.Email, error)
}

type ProcessedStore interface {
	Load() (email.IDSet, error)
	Save(ids email.IDSet) error
}

// Ledger is opened once the search succeeded, so a failed search leaves no
// ledger file behind.
type Ledger interface {
	Open() error
	Append(e *email.Email) error
}

// EmailArchive is optional; a nil archive disables archiving.
type EmailArchive interface {
	Save(ctx context.Context, e *email.Email) error
}
