package processed

import (
	"bufio"
	"os"
	"strings"

	"github.com/pkg/errors"

	"jobtracker/internal/domain/email"
)

// Store persists the processed message IDs as a flat file, one ID per line.
// The file is read whole at start and rewritten whole at the end of a run.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns the persisted IDs. A missing file yields an empty set.
func (s *Store) Load() (email.IDSet, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return email.NewIDSet(), nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "open processed ids %s", s.path)
	}
	defer f.Close()

	ids := email.NewIDSet()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if id := strings.TrimSpace(scanner.Text()); id != "" {
			ids.Add(id)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "read processed ids %s", s.path)
	}

	return ids, nil
}

// Save overwrites the file with every ID in the set.
func (s *Store) Save(ids email.IDSet) error {
	var b strings.Builder
	for _, id := range ids.Sorted() {
		b.WriteString(id)
		b.WriteByte('\n')
	}

	if err := os.WriteFile(s.path, []byte(b.String()), 0644); err != nil {
		return errors.Wrapf(err, "write processed ids %s", s.path)
	}
	return nil
}
