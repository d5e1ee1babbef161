package assets

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// LocalBackend writes assets to a directory that the HTTP server exposes statically.
type LocalBackend struct {
	fs           afero.Fs
	publicPrefix string
}

// NewLocalBackend roots the backend at dir on the OS filesystem.
func NewLocalBackend(dir, publicPrefix string) (*LocalBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", dir, err)
	}
	return NewLocalBackendFs(afero.NewBasePathFs(afero.NewOsFs(), dir), publicPrefix), nil
}

// NewLocalBackendFs uses the given filesystem, e.g. afero.NewMemMapFs in tests.
func NewLocalBackendFs(fs afero.Fs, publicPrefix string) *LocalBackend {
	return &LocalBackend{fs: fs, publicPrefix: strings.TrimRight(publicPrefix, "/")}
}

var _ Backend = (*LocalBackend)(nil)

// Put creates the file exclusively so an existing asset is never overwritten.
func (b *LocalBackend) Put(ctx context.Context, key string, data []byte, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.fs.MkdirAll(path.Dir(key), 0o755); err != nil {
		return err
	}
	f, err := b.fs.OpenFile(key, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = b.fs.Remove(key)
		return err
	}
	return f.Close()
}

func (b *LocalBackend) Delete(_ context.Context, key string) error {
	if err := b.fs.Remove(key); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (b *LocalBackend) URL(key string) string {
	return b.publicPrefix + "/" + escapeKey(key)
}

// Open returns the stored bytes; used by tests and tooling.
func (b *LocalBackend) Open(key string) ([]byte, error) {
	return afero.ReadFile(b.fs, key)
}

// FileSystem exposes the stored assets for static serving under the public prefix.
func (b *LocalBackend) FileSystem() http.FileSystem {
	return afero.NewHttpFs(b.fs).Dir("/")
}

// PublicPrefix is the URL path assets are served under.
func (b *LocalBackend) PublicPrefix() string {
	return b.publicPrefix
}
