package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raushankrgupta/fitly-closet/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	return s
}

func testItem(fingerprint, filename string) models.ClothingItem {
	return models.ClothingItem{
		Fingerprint: fingerprint,
		Filename:    filename,
		ContentType: "image/jpeg",
		SizeBytes:   1024,
		Attributes: &models.Attributes{
			Image:      filename,
			Identifier: "blue shirt",
			Category:   "top",
		},
		ProcessedTimestamp: time.Now().UTC(),
	}
}

func TestInsertAndLookup(t *testing.T) {
	s := newTestStore(t)

	item := testItem("abc123", "shirt.jpg")
	require.NoError(t, s.Insert("alice", item))

	got, err := s.Lookup("alice", "abc123")
	require.NoError(t, err)
	assert.Equal(t, "shirt.jpg", got.Filename)
	assert.Equal(t, "blue shirt", got.Attributes.Identifier)
}

func TestLookupMissingFingerprint(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Insert("alice", testItem("abc123", "shirt.jpg")))

	_, err := s.Lookup("alice", "does-not-exist")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestInsertDuplicateFingerprint(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Insert("alice", testItem("abc123", "shirt.jpg")))

	err := s.Insert("alice", testItem("abc123", "same-shirt.jpg"))
	var dup *DuplicateFingerprintError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "abc123", dup.Fingerprint)

	// Original item is untouched.
	got, err := s.Lookup("alice", "abc123")
	require.NoError(t, err)
	assert.Equal(t, "shirt.jpg", got.Filename)
}

func TestListAllPreservesInsertionOrder(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 5; i++ {
		fp := fmt.Sprintf("fp-%d", i)
		require.NoError(t, s.Insert("alice", testItem(fp, fp+".jpg")))
	}

	items, err := s.ListAll("alice")
	require.NoError(t, err)
	require.Len(t, items, 5)
	for i, item := range items {
		assert.Equal(t, fmt.Sprintf("fp-%d", i), item.Fingerprint)
	}
}

func TestListAllUnknownUser(t *testing.T) {
	s := newTestStore(t)

	items, err := s.ListAll("nobody")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestUsersAreIsolated(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Insert("alice", testItem("abc123", "shirt.jpg")))

	_, err := s.Lookup("bob", "abc123")
	assert.True(t, errors.Is(err, ErrNotFound))

	// Same fingerprint under another user is not a duplicate.
	require.NoError(t, s.Insert("bob", testItem("abc123", "shirt.jpg")))
}

func TestConcurrentInsertsSameUser(t *testing.T) {
	s := newTestStore(t)

	const n = 20
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			fp := fmt.Sprintf("fp-%02d", i)
			errs[i] = s.Insert("alice", testItem(fp, fp+".jpg"))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "insert %d", i)
	}

	items, err := s.ListAll("alice")
	require.NoError(t, err)
	assert.Len(t, items, n)
}

func TestDocumentIsValidJSONOnDisk(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, s.Insert("alice", testItem("abc123", "shirt.jpg")))

	data, err := os.ReadFile(filepath.Join(dir, "alice", "image_attributes.json"))
	require.NoError(t, err)

	var doc models.UserCloset
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, 1, doc.Metadata.TotalImages)
	assert.Contains(t, doc.Images, "abc123")
	assert.False(t, doc.Metadata.LastUpdated.IsZero())
}

func TestCorruptDocumentIsNeverOverwritten(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	userDir := filepath.Join(dir, "alice")
	require.NoError(t, os.MkdirAll(userDir, 0755))
	docPath := filepath.Join(userDir, "image_attributes.json")
	require.NoError(t, os.WriteFile(docPath, []byte("{not json"), 0644))

	err = s.Insert("alice", testItem("abc123", "shirt.jpg"))
	require.Error(t, err)

	data, err := os.ReadFile(docPath)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data))
}

func TestNormalizeUserID(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"plain", "alice", "alice", false},
		{"email", "alice@example.com", "alice_example.com", false},
		{"spaces", "  alice  ", "alice", false},
		{"unsafe chars", "a b/c", "a_b_c", false},
		{"empty", "", "", true},
		{"whitespace only", "   ", "", true},
		{"traversal", "../etc", "", true},
		{"absolute", "/etc/passwd", "", true},
		{"only symbols", "@#$", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeUserID(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidUserID))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
