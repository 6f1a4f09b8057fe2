// Package store persists each user's closet as a single JSON document on
// disk. Updates to one user are serialized under a per-user lock and every
// write goes through a temp-file rename, so a crash can never leave a
// half-written document behind.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/raushankrgupta/fitly-closet/models"
)

const attributesFile = "image_attributes.json"

// ErrNotFound is returned by Lookup when no item has the given fingerprint.
var ErrNotFound = errors.New("item not found")

// ErrInvalidUserID is returned when a user id is empty or unsafe as a path.
var ErrInvalidUserID = errors.New("invalid user id")

// DuplicateFingerprintError is returned by Insert when the fingerprint is
// already present in the user's closet.
type DuplicateFingerprintError struct {
	Fingerprint string
}

func (e *DuplicateFingerprintError) Error() string {
	return fmt.Sprintf("fingerprint %s already exists", e.Fingerprint)
}

// Store maps user ids to closet documents under a root data directory.
type Store struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Open ensures the data directory exists and returns a Store rooted at it.
func Open(dir string) (*Store, error) {
	p := filepath.Clean(dir)
	if err := os.MkdirAll(p, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", p, err)
	}
	return &Store{dir: p, locks: make(map[string]*sync.Mutex)}, nil
}

var unsafeUserIDChars = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)

// NormalizeUserID makes a user id safe for filesystem use. Path traversal and
// absolute paths are rejected; remaining disallowed characters are replaced
// with underscores.
func NormalizeUserID(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", ErrInvalidUserID
	}
	if strings.HasPrefix(userID, "/") || strings.HasPrefix(userID, `\`) || strings.Contains(userID, "..") {
		return "", fmt.Errorf("%w: path traversal not allowed", ErrInvalidUserID)
	}
	safe := unsafeUserIDChars.ReplaceAllString(userID, "_")
	if strings.Trim(safe, "_.") == "" {
		return "", fmt.Errorf("%w: empty after normalization", ErrInvalidUserID)
	}
	return safe, nil
}

// Lookup returns the item with the given fingerprint, or ErrNotFound.
func (s *Store) Lookup(userID, fingerprint string) (models.ClothingItem, error) {
	uid, err := NormalizeUserID(userID)
	if err != nil {
		return models.ClothingItem{}, err
	}

	lock := s.userLock(uid)
	lock.Lock()
	defer lock.Unlock()

	doc, err := s.load(uid)
	if err != nil {
		return models.ClothingItem{}, err
	}
	item, ok := doc.Images[fingerprint]
	if !ok {
		return models.ClothingItem{}, ErrNotFound
	}
	return item, nil
}

// Insert adds a new item to the user's closet, creating the closet document
// lazily. The whole read-merge-write runs under the user's lock so concurrent
// inserts for the same user never lose an update.
func (s *Store) Insert(userID string, item models.ClothingItem) error {
	uid, err := NormalizeUserID(userID)
	if err != nil {
		return err
	}

	lock := s.userLock(uid)
	lock.Lock()
	defer lock.Unlock()

	doc, err := s.load(uid)
	if err != nil {
		return err
	}
	if _, exists := doc.Images[item.Fingerprint]; exists {
		return &DuplicateFingerprintError{Fingerprint: item.Fingerprint}
	}

	item.Seq = nextSeq(doc)
	doc.Images[item.Fingerprint] = item
	doc.Metadata.TotalImages = len(doc.Images)
	doc.Metadata.LastUpdated = time.Now().UTC()

	return s.persist(uid, doc)
}

// ListAll returns the user's items in insertion order. An unknown user yields
// an empty slice, not an error.
func (s *Store) ListAll(userID string) ([]models.ClothingItem, error) {
	uid, err := NormalizeUserID(userID)
	if err != nil {
		return nil, err
	}

	lock := s.userLock(uid)
	lock.Lock()
	defer lock.Unlock()

	doc, err := s.load(uid)
	if err != nil {
		return nil, err
	}

	items := make([]models.ClothingItem, 0, len(doc.Images))
	for _, item := range doc.Images {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Seq < items[j].Seq })
	return items, nil
}

func (s *Store) userLock(uid string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[uid]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[uid] = lock
	}
	return lock
}

func (s *Store) docPath(uid string) string {
	return filepath.Join(s.dir, uid, attributesFile)
}

// load reads the user's document. A missing file means an empty closet; a
// corrupt file is an error, never silently replaced.
func (s *Store) load(uid string) (models.UserCloset, error) {
	data, err := os.ReadFile(s.docPath(uid))
	if err != nil {
		if os.IsNotExist(err) {
			return models.NewUserCloset(), nil
		}
		return models.UserCloset{}, fmt.Errorf("failed to read closet for %s: %w", uid, err)
	}

	var doc models.UserCloset
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.UserCloset{}, fmt.Errorf("corrupt closet document for %s: %w", uid, err)
	}
	if doc.Images == nil {
		doc.Images = make(map[string]models.ClothingItem)
	}
	return doc, nil
}

// persist writes the document to a temp file in the user's directory and
// renames it into place.
func (s *Store) persist(uid string, doc models.UserCloset) error {
	path := s.docPath(uid)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create user directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode closet document: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), attributesFile+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write closet document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace closet document: %w", err)
	}
	return nil
}

func nextSeq(doc models.UserCloset) int64 {
	var max int64
	for _, item := range doc.Images {
		if item.Seq > max {
			max = item.Seq
		}
	}
	return max + 1
}
