// Package assets stores uploaded CV binaries and hands back a public locator for each.
package assets

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

var (
	// ErrInvalidAsset is returned when the content fails the type or size constraints.
	ErrInvalidAsset = errors.New("invalid asset")
	// ErrStorageUnavailable is returned when the backend cannot persist the bytes.
	ErrStorageUnavailable = errors.New("asset storage unavailable")
)

// DefaultMaxBytes is the CV size cap, inclusive.
const DefaultMaxBytes int64 = 5 << 20

// CVNamespace is the prefix every CV key is stored under.
const CVNamespace = "cvs"

// Backend persists raw bytes under a key and knows how to address them publicly.
type Backend interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Constraints restricts what Store accepts.
type Constraints struct {
	MaxBytes int64
	Allowed  []Category
}

// CVConstraints allows PDF, DOC and DOCX up to maxBytes (DefaultMaxBytes when <= 0).
func CVConstraints(maxBytes int64) Constraints {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return Constraints{MaxBytes: maxBytes, Allowed: []Category{CategoryPDF, CategoryDOC, CategoryDOCX}}
}

// Asset describes a stored object.
type Asset struct {
	Key         string
	Locator     string
	Category    Category
	ContentType string
	Size        int64
}

// Store validates and writes assets under a namespace.
type Store struct {
	backend   Backend
	namespace string
	now       func() time.Time
	suffix    func() string
}

// NewStore creates a Store writing to backend under namespace.
func NewStore(backend Backend, namespace string) *Store {
	return &Store{
		backend:   backend,
		namespace: strings.Trim(namespace, "/"),
		now:       time.Now,
		suffix:    func() string { return strings.ReplaceAll(uuid.NewString(), "-", "")[:8] },
	}
}

// Validate applies the size and type constraints without touching the backend.
func (s *Store) Validate(data []byte, originalName string, c Constraints) error {
	_, _, err := check(data, originalName, c)
	return err
}

func check(data []byte, originalName string, c Constraints) (Category, string, error) {
	if len(data) == 0 {
		return "", "", fmt.Errorf("%w: file is empty", ErrInvalidAsset)
	}
	if c.MaxBytes > 0 && int64(len(data)) > c.MaxBytes {
		return "", "", fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidAsset, c.MaxBytes)
	}
	return Classify(originalName, data, c.Allowed)
}

// Store checks data against the constraints and persists it. Nothing is written when validation fails.
func (s *Store) Store(ctx context.Context, data []byte, originalName string, c Constraints) (*Asset, error) {
	category, contentType, err := check(data, originalName, c)
	if err != nil {
		return nil, err
	}

	name := s.newKey(originalName)
	key := path.Join(s.namespace, name)
	if err := s.backend.Put(ctx, key, data, contentType); err != nil {
		log.Printf("Assets: Error writing %s: %v", key, err)
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	log.Printf("Assets: Stored %s (%d bytes, %s)", key, len(data), category)
	return &Asset{
		Key:         key,
		Locator:     s.backend.URL(key),
		Category:    category,
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

// Delete removes a previously stored asset.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.backend.Delete(ctx, key); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// newKey is "{unixMillis}-{8 random hex}-{sanitized name}".
func (s *Store) newKey(originalName string) string {
	return fmt.Sprintf("%d-%s-%s", s.now().UnixMilli(), s.suffix(), SanitizeFileName(originalName))
}

const maxNameLength = 100

// SanitizeFileName strips any directory part and keeps letters, digits, marks and "._-"
// from any script. Everything else, spaces and control characters included, becomes "_".
// The result is at most maxNameLength runes.
func SanitizeFileName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" {
		base = ""
	}

	var b strings.Builder
	for _, r := range base {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsMark(r), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := []rune(strings.TrimLeft(b.String(), "."))

	if len(out) > maxNameLength {
		ext := []rune(filepath.Ext(string(out)))
		if len(ext) >= maxNameLength {
			ext = nil
		}
		out = append(out[:maxNameLength-len(ext)], ext...)
	}
	if len(out) == 0 {
		return "file"
	}
	return string(out)
}

// escapeKey percent-encodes each segment of key for use in a URL path.
func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
