// Package storage keeps uploaded files (gym logos) on the local disk and serves
// them under a public URL prefix.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/falconilham/gym-nexus-sub000/pkg/utils"
)

// URLPrefix is where the API mounts the upload directory.
const URLPrefix = "/uploads"

type Local struct {
	root string
}

func NewLocal(root string) (*Local, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{root: abs}, nil
}

// Root is the directory served at URLPrefix.
func (l *Local) Root() string { return l.root }

// Save writes r to <root>/<dir>/<uuid><ext> and returns its public URL.
// A partially written file is removed when r fails.
func (l *Local) Save(ctx context.Context, dir, ext string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir = cleanSegment(dir)
	if dir == "" {
		return "", errors.New("storage: empty directory")
	}
	if err := os.MkdirAll(filepath.Join(l.root, dir), 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	name := uuid.NewString() + strings.ToLower(ext)
	path := filepath.Join(l.root, dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close file: %w", err)
	}
	return URLPrefix + "/" + dir + "/" + name, nil
}

// Delete removes a file previously returned by Save. Unknown or foreign URLs are ignored.
func (l *Local) Delete(_ context.Context, url string) error {
	rel, ok := strings.CutPrefix(url, URLPrefix+"/")
	if !ok || rel == "" {
		return nil
	}
	path := filepath.Join(l.root, filepath.FromSlash(rel))
	if !strings.HasPrefix(path, l.root+string(filepath.Separator)) {
		utils.Log.Warnf("storage: refusing to delete %q outside upload dir", url)
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", rel, err)
	}
	return nil
}

func cleanSegment(dir string) string {
	dir = strings.Trim(filepath.ToSlash(filepath.Clean("/"+dir)), "/")
	return strings.ReplaceAll(dir, "..", "")
}
