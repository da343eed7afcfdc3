package recorder

import (
	"encoding/csv"
	"errors"
	"os"
)

// CSVSink streams records to a CSV file, syncing after every row.
type CSVSink struct {
	path string
	file *os.File
	w    *csv.Writer
}

// OpenCSV creates the results stream at path and writes the header row.
// An existing file is refused unless force is set, in which case it is
// truncated.
func OpenCSV(path string, force bool) (*CSVSink, error) {
	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, &PersistenceError{Op: "create", Path: path, Err: errors.New("results file already exists (use --force to overwrite)")}
		}
		return nil, &PersistenceError{Op: "create", Path: path, Err: err}
	}

	s := &CSVSink{path: path, file: f, w: csv.NewWriter(f)}
	if err := s.write(Columns); err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

// Path returns the location of the stream.
func (s *CSVSink) Path() string { return s.path }

func (s *CSVSink) Append(rec Record) error {
	return s.write(rec.row())
}

func (s *CSVSink) write(row []string) error {
	if err := s.w.Write(row); err != nil {
		return &PersistenceError{Op: "write", Path: s.path, Err: err}
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return &PersistenceError{Op: "write", Path: s.path, Err: err}
	}
	if err := s.file.Sync(); err != nil {
		return &PersistenceError{Op: "sync", Path: s.path, Err: err}
	}
	return nil
}

func (s *CSVSink) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	if err != nil {
		return &PersistenceError{Op: "close", Path: s.path, Err: err}
	}
	return nil
}
