// Package store implements the client directory as a fixed-record binary
// file: an append-ordered concatenation of encoded records with linear-scan
// search and in-place phone updates.
package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/smileynet/rolodex/internal/record"
)

// ErrNotFound indicates no record matched the (last, first) key. It is a
// result variant of Find and UpdatePhone, not a failure.
var ErrNotFound = errors.New("store: client not found")

// Store is a handle on one directory file. All operations serialize on an
// internal mutex: find-then-update is a two-step sequence whose offsets
// must not move between the steps.
type Store struct {
	mu   sync.Mutex
	f    *os.File
	path string
}

// Open opens the directory file at path read-write, creating it when it
// does not exist. Callers that cannot proceed without a store should treat
// an error here as fatal.
func Open(path string) (*Store, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", path, err)
	}
	return &Store{f: f, path: path}, nil
}

// Close releases the underlying file.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.f.Close(); err != nil {
		return fmt.Errorf("store: closing %s: %w", s.path, err)
	}
	return nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Append writes one new record at the end-of-data offset. Names beyond
// capacity are truncated per the record encoding. Duplicate keys are
// accepted; no uniqueness check is made.
func (s *Store) Append(last, first string, phone int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, off, _, _, err := s.scanLocked(neverMatch)
	if err != nil {
		return err
	}

	b := record.Encode(record.Client{LastName: last, FirstName: first, Phone: phone})
	if _, err := s.f.WriteAt(b[:], off); err != nil {
		return fmt.Errorf("store: appending to %s: %w", s.path, err)
	}
	return nil
}

// List returns every record in scan (append) order.
func (s *Store) List() ([]record.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []record.Client
	_, _, _, _, err := s.scanLocked(func(c record.Client) bool {
		all = append(all, c)
		return false
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

// Count returns the number of complete records in the store.
func (s *Store) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, _, n, _, err := s.scanLocked(neverMatch)
	return n, err
}

// Find returns the first record in scan order whose (last, first) key
// matches, or ErrNotFound.
func (s *Store) Find(last, first string) (record.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, _, _, found, err := s.scanLocked(func(c record.Client) bool {
		return c.Key(last, first)
	})
	if err != nil {
		return record.Client{}, err
	}
	if !found {
		return record.Client{}, fmt.Errorf("%w: %s %s", ErrNotFound, last, first)
	}
	return c, nil
}

// UpdatePhone overwrites the phone number of the first record matching the
// (last, first) key. The rewrite targets the exact byte offset seen during
// the scan, under the same lock, so only that one record block changes.
func (s *Store) UpdatePhone(last, first string, phone int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, off, _, found, err := s.scanLocked(func(c record.Client) bool {
		return c.Key(last, first)
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s %s", ErrNotFound, last, first)
	}

	c.Phone = phone
	b := record.Encode(c)
	if _, err := s.f.WriteAt(b[:], off); err != nil {
		return fmt.Errorf("store: updating %s: %w", s.path, err)
	}
	return nil
}

// SortByName reorders the store by (last name, first name) using a
// selection sort, rewriting the file in place. Any partial trailing block
// is dropped.
func (s *Store) SortByName() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []record.Client
	_, _, _, _, err := s.scanLocked(func(c record.Client) bool {
		all = append(all, c)
		return false
	})
	if err != nil {
		return err
	}

	selectionSort(all)

	for i, c := range all {
		b := record.Encode(c)
		if _, err := s.f.WriteAt(b[:], int64(i)*record.Size); err != nil {
			return fmt.Errorf("store: rewriting %s: %w", s.path, err)
		}
	}
	if err := s.f.Truncate(int64(len(all)) * record.Size); err != nil {
		return fmt.Errorf("store: truncating %s: %w", s.path, err)
	}
	return nil
}

// selectionSort orders records by (LastName, FirstName) in place.
func selectionSort(recs []record.Client) {
	for i := range recs {
		min := i
		for j := i + 1; j < len(recs); j++ {
			if nameLess(recs[j], recs[min]) {
				min = j
			}
		}
		recs[i], recs[min] = recs[min], recs[i]
	}
}

func nameLess(a, b record.Client) bool {
	if a.LastName != b.LastName {
		return a.LastName < b.LastName
	}
	return a.FirstName < b.FirstName
}

// neverMatch is the consume-all predicate used by List, Count, and Append.
func neverMatch(record.Client) bool { return false }

// scanLocked reads records sequentially from the start of the file until a
// record satisfies match or end-of-data is reached. It returns the matched
// record with its byte offset, the number of records read, and whether a
// match occurred. A partial trailing block marks end-of-data and is never
// an error. The caller must hold s.mu.
func (s *Store) scanLocked(match func(record.Client) bool) (record.Client, int64, int, bool, error) {
	var buf [record.Size]byte
	var off int64
	n := 0
	for {
		read, err := s.f.ReadAt(buf[:], off)
		if read < record.Size {
			if err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return record.Client{}, off, n, false, nil
			}
			return record.Client{}, off, n, false, fmt.Errorf("store: reading %s: %w", s.path, err)
		}

		c, err := record.Decode(buf[:])
		if err != nil {
			// Unreachable with a full block, but a short decode still
			// means end-of-data.
			if errors.Is(err, record.ErrShortRecord) {
				return record.Client{}, off, n, false, nil
			}
			return record.Client{}, off, n, false, fmt.Errorf("store: decoding %s: %w", s.path, err)
		}

		n++
		if match(c) {
			return c, off, n, true, nil
		}
		off += record.Size
	}
}
