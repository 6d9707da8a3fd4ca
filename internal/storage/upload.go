// Package storage persists uploaded report images on local disk. Files land
// under the configured upload directory and are served back via the static
// /uploads route.
package storage

import (
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxImageBytes caps uploaded report images at 5 MiB.
const MaxImageBytes = 5 << 20

var allowedExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// ErrBadImage is returned for uploads that are too large or have an
// unsupported extension.
var ErrBadImage = errors.New("storage: unsupported or oversized image")

// Uploads writes report images below root. The zero value is unusable; build
// one with New.
type Uploads struct {
	root string
}

func New(root string) *Uploads { return &Uploads{root: root} }

// SaveReportImage stores one multipart image under <root>/reports with a
// random filename and returns the public URL path for it.
func (u *Uploads) SaveReportImage(fh *multipart.FileHeader) (string, error) {
	if fh.Size > MaxImageBytes {
		return "", ErrBadImage
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExt[ext] {
		return "", ErrBadImage
	}

	dir := filepath.Join(u.root, "reports")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := uuid.NewString() + ext
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(src, MaxImageBytes)); err != nil {
		return "", err
	}
	return "/uploads/reports/" + name, nil
}

// Remove deletes a previously stored image given its public URL path. Paths
// outside /uploads are ignored.
func (u *Uploads) Remove(urlPath string) {
	rel, ok := strings.CutPrefix(urlPath, "/uploads/")
	if !ok || strings.Contains(rel, "..") {
		return
	}
	_ = os.Remove(filepath.Join(u.root, filepath.FromSlash(rel)))
}
