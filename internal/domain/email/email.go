package email

import "time"

type Email struct {
	GmailID   string
	Date      string
	From      string
	Subject   string
	Body      string
	Snippet   string
	Outcome   Outcome
	CreatedAt time.Time
}

func NewEmail(gmailID, date, from, subject, body, snippet string) *Email {
	return &Email{
		GmailID:   gmailID,
		Date:      date,
		From:      from,
		Subject:   subject,
		Body:      body,
		Snippet:   snippet,
		CreatedAt: time.Now(),
	}
}

// Classify sets the outcome from the body text and returns it.
func (e *Email) Classify() Outcome {
	e.Outcome = Classify(e.Body)
	return e.Outcome
}

// LedgerRow returns the ledger columns in header order.
func (e *Email) LedgerRow() []string {
	return []string{e.Date, e.From, e.Subject, e.Snippet, e.Outcome.String()}
}

// LedgerHeader is the fixed column order of the CSV ledger.
var LedgerHeader = []string{"Date", "Sender", "Subject", "Snippet", "Outcome"}
