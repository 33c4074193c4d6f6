package checkpoint

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"codeberg.org/snonux/decktranslate/internal"
)

// DefaultFileName is the checkpoint file name used next to the dataset.
const DefaultFileName = ".translate_progress.json"

// ErrCorrupt matches any CorruptError via errors.Is.
var ErrCorrupt = errors.New("corrupt checkpoint")

// CorruptError reports a checkpoint file that exists but cannot be parsed.
// Progress is never discarded silently; the operator decides.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt checkpoint %s: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrCorrupt) true for every CorruptError.
func (e *CorruptError) Is(target error) bool {
	return target == ErrCorrupt
}

// Store reads and writes a checkpoint file.
type Store struct {
	path   string
	logger *logrus.Logger
}

// NewStore creates a store for the checkpoint at path.
func NewStore(path string, logger *logrus.Logger) *Store {
	if logger == nil {
		logger = logrus.New()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the checkpoint file path.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether a checkpoint file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads the checkpoint. A missing file yields an empty checkpoint; an
// unreadable one yields a *CorruptError.
func (s *Store) Load() (Checkpoint, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.WithField("path", s.path).Debug("No checkpoint found, starting fresh")
			return New(), nil
		}
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	cp, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &CorruptError{Path: s.path, Err: err}
	}

	s.logger.WithFields(logrus.Fields{
		"path":      s.path,
		"languages": len(cp),
	}).Info("Loaded checkpoint")
	return cp, nil
}

// Save replaces the checkpoint file atomically.
func (s *Store) Save(cp Checkpoint) error {
	err := internal.WriteFileAtomic(s.path, 0644, func(w io.Writer) error {
		return Encode(w, cp)
	})
	if err != nil {
		return fmt.Errorf("saving checkpoint: %w", err)
	}
	return nil
}

// Clear removes the checkpoint file. A missing file is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", s.path, err)
	}
	return nil
}

// Encode writes cp as JSON. Non-ASCII text is written verbatim.
func Encode(w io.Writer, cp Checkpoint) error {
	if cp == nil {
		cp = New()
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(cp); err != nil {
		return fmt.Errorf("encoding checkpoint: %w", err)
	}
	return nil
}

// Decode parses and validates a checkpoint.
func Decode(r io.Reader) (Checkpoint, error) {
	var cp Checkpoint
	if err := json.NewDecoder(r).Decode(&cp); err != nil {
		return nil, err
	}
	if cp == nil {
		return New(), nil
	}

	for code, p := range cp {
		if p == nil {
			cp[code] = NewProgress()
			continue
		}
		p.init()
		for _, m := range []map[string]string{p.Meanings, p.Examples} {
			for k := range m {
				if row, err := strconv.Atoi(k); err != nil || row < 0 {
					return nil, fmt.Errorf("language %q: invalid row index %q", code, k)
				}
			}
		}
	}
	return cp, nil
}
