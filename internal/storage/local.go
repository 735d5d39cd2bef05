package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/fpang/image-variants/internal/errs"
)

// Local writes objects to the local filesystem under a root directory. It
// is the backend the resize CLI uses; content type and cache control have
// no filesystem equivalent and are ignored.
type Local struct {
	root string
	perm os.FileMode
}

// NewLocal creates a Local backend rooted at dir, creating it if needed.
func NewLocal(dir string) (*Local, error) {
	if dir == "" {
		return nil, errs.Config("local.new", "output directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.Storage("local.mkdir", fmt.Errorf("mkdir %s: %w", dir, err))
	}
	abs, err := filepath.Abs(dir)
	if err == nil {
		dir = abs
	}
	return &Local{root: dir, perm: 0o644}, nil
}

// Put writes the body to {root}/{key}, creating intermediate directories.
// The returned URL is the absolute file path.
func (l *Local) Put(ctx context.Context, key string, body io.Reader, opts PutOptions) (StoredObject, error) {
	if err := ctx.Err(); err != nil {
		return StoredObject{}, errs.Storage("local.put", err)
	}

	dest := filepath.Join(l.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return StoredObject{}, errs.Storage("local.put", fmt.Errorf("mkdir for %q: %w", key, err))
	}

	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, l.perm)
	if err != nil {
		return StoredObject{}, errs.Storage("local.put", fmt.Errorf("create %q: %w", dest, err))
	}

	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(dest) // no partial files on failure
		return StoredObject{}, errs.Storage("local.put", fmt.Errorf("write %q: %w", dest, err))
	}
	if err := f.Close(); err != nil {
		os.Remove(dest)
		return StoredObject{}, errs.Storage("local.put", fmt.Errorf("close %q: %w", dest, err))
	}

	log.Debug().Str("path", dest).Msg("Variant written to disk")

	return StoredObject{Key: key, URL: dest}, nil
}
