package ledger

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtracker/internal/domain/email"
)

func readRows(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func classified(id, body string) *email.Email {
	e := email.NewEmail(id, "Mon, 1 Jan 2024 10:00:00 +0000", "HR, Acme <hr@acme.io>", "Re: \"Engineer\" role", body, "snippet, with comma")
	e.Classify()
	return e
}

func TestOpen_WritesHeaderOnCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job_applications.csv")

	l := New(path)
	require.NoError(t, l.Open())
	require.NoError(t, l.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Date,Sender,Subject,Snippet,Outcome\r\n", string(content))
}

func TestLedger_AppendAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job_applications.csv")

	l := New(path)
	require.NoError(t, l.Open())
	require.NoError(t, l.Append(classified("a", "Unfortunately, no.")))
	require.NoError(t, l.Close())

	l = New(path)
	require.NoError(t, l.Open())
	require.NoError(t, l.Append(classified("b", "We'd like to schedule an interview")))
	require.NoError(t, l.Close())

	rows := readRows(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, email.LedgerHeader, rows[0])
	assert.Equal(t, []string{"Mon, 1 Jan 2024 10:00:00 +0000", "HR, Acme <hr@acme.io>", "Re: \"Engineer\" role", "snippet, with comma", "Rejected"}, rows[1])
	assert.Equal(t, "Interview", rows[2][4])
}

func TestOpen_ExistingEmptyFileGetsNoHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job_applications.csv")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	l := New(path)
	require.NoError(t, l.Open())
	require.NoError(t, l.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, content)
}

func TestOpen_MissingDirectory(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "nope", "ledger.csv"))
	assert.Error(t, l.Open())
	assert.Error(t, l.Append(classified("a", "hello")))
	assert.NoError(t, l.Close())
}

func TestNew_DoesNotCreateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job_applications.csv")

	l := New(path)
	require.NoError(t, l.Close())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestAppend_OpensLazily(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job_applications.csv")

	l := New(path)
	require.NoError(t, l.Append(classified("a", "Unfortunately, no.")))
	require.NoError(t, l.Open())
	require.NoError(t, l.Append(classified("b", "offer letter attached")))
	require.NoError(t, l.Close())

	rows := readRows(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, email.LedgerHeader, rows[0])
	assert.Equal(t, "Rejected", rows[1][4])
	assert.Equal(t, "Offer", rows[2][4])
}

func TestAppend_NewlineInFieldWrittenAsCRLF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job_applications.csv")

	e := classified("a", "thanks")
	e.Snippet = "line one\nline two"

	l := New(path)
	require.NoError(t, l.Append(e))
	require.NoError(t, l.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "\"line one\r\nline two\"")

	rows := readRows(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, "line one\nline two", rows[1][3])
}
