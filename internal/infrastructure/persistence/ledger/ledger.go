package ledger

import (
	"encoding/csv"
	"os"

	"github.com/pkg/errors"

	"jobtracker/internal/domain/email"
)

// Ledger appends classified emails to a CSV file. Existing rows are never
// rewritten. The file is not touched until Open or the first Append.
type Ledger struct {
	path string
	file *os.File
	w    *csv.Writer
}

func New(path string) *Ledger {
	return &Ledger{path: path}
}

// Open opens the ledger for appending. The header row is written only when
// the file did not exist before. Calling Open on an open ledger is a no-op.
func (l *Ledger) Open() error {
	if l.file != nil {
		return nil
	}

	_, err := os.Stat(l.path)
	exists := err == nil
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "stat ledger %s", l.path)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, "open ledger %s", l.path)
	}

	w := csv.NewWriter(f)
	// Also turns a bare \n inside a quoted field into \r\n.
	w.UseCRLF = true
	l.file, l.w = f, w

	if !exists {
		if err := l.write(email.LedgerHeader); err != nil {
			_ = f.Close()
			l.file, l.w = nil, nil
			return errors.Wrap(err, "write ledger header")
		}
	}

	return nil
}

// Append writes one row for e and flushes it to disk.
func (l *Ledger) Append(e *email.Email) error {
	if err := l.Open(); err != nil {
		return err
	}
	if err := l.write(e.LedgerRow()); err != nil {
		return errors.Wrapf(err, "append %s to ledger", e.GmailID)
	}
	return nil
}

func (l *Ledger) write(record []string) error {
	if err := l.w.Write(record); err != nil {
		return err
	}
	l.w.Flush()
	return l.w.Error()
}

func (l *Ledger) Path() string {
	return l.path
}

func (l *Ledger) Close() error {
	if l.file == nil {
		return nil
	}
	defer func() { l.file, l.w = nil, nil }()

	l.w.Flush()
	if err := l.w.Error(); err != nil {
		_ = l.file.Close()
		return errors.Wrapf(err, "flush ledger %s", l.path)
	}
	return l.file.Close()
}
