// Package upload stores operator-supplied images in a category's asset directory.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sidhant-sriv/gallery-api/models"
)

var (
	ErrNotImage = errors.New("only image files are allowed")
	ErrTooLarge = errors.New("image exceeds the upload size limit")
)

var extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,8}$`)

type Saver struct {
	maxBytes int64
	now      func() time.Time
	log      *zap.Logger
}

func NewSaver(maxBytes int64, log *zap.Logger) *Saver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Saver{maxBytes: maxBytes, now: time.Now, log: log}
}

// SaveMultipart validates an uploaded form file and writes it into the category's
// asset directory. The returned name is relative to that directory.
func (s *Saver) SaveMultipart(cat models.Category, fh *multipart.FileHeader) (string, error) {
	if declared := fh.Header.Get("Content-Type"); declared != "" && !strings.HasPrefix(declared, "image/") {
		return "", fmt.Errorf("%w: declared %s", ErrNotImage, declared)
	}
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return "", ErrTooLarge
	}
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("opening upload: %w", err)
	}
	defer src.Close()
	return s.save(cat, src, fh.Filename)
}

// SaveFile copies a local image into the category's asset directory.
func (s *Saver) SaveFile(cat models.Category, path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return "", err
	}
	if s.maxBytes > 0 && info.Size() > s.maxBytes {
		return "", ErrTooLarge
	}
	return s.save(cat, src, filepath.Base(path))
}

// Discard removes a stored asset.
func (s *Saver) Discard(cat models.Category, filename string) error {
	return os.Remove(filepath.Join(cat.AssetDir, filepath.Base(filename)))
}

func (s *Saver) save(cat models.Category, src io.ReadSeeker, original string) (string, error) {
	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("detecting content type: %w", err)
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", fmt.Errorf("%w: detected %s", ErrNotImage, mtype.String())
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewinding upload: %w", err)
	}

	if err := os.MkdirAll(cat.AssetDir, 0o755); err != nil {
		return "", fmt.Errorf("creating asset directory: %w", err)
	}
	name := s.filename(original, mtype)
	dst, err := os.OpenFile(filepath.Join(cat.AssetDir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating asset: %w", err)
	}

	var r io.Reader = src
	if s.maxBytes > 0 {
		r = io.LimitReader(src, s.maxBytes+1)
	}
	n, err := io.Copy(dst, r)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err == nil && s.maxBytes > 0 && n > s.maxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(dst.Name())
		if errors.Is(err, ErrTooLarge) {
			return "", err
		}
		return "", fmt.Errorf("writing asset: %w", err)
	}

	s.log.Info("asset stored",
		zap.String("category", cat.Name),
		zap.String("file", name),
		zap.String("type", mtype.String()),
		zap.Int64("bytes", n))
	return name, nil
}

// filename is "<unix millis>-<8 hex chars><ext>"; the random part keeps two uploads in
// the same millisecond apart.
func (s *Saver) filename(original string, mtype *mimetype.MIME) string {
	ext := strings.ToLower(filepath.Ext(original))
	if !extPattern.MatchString(ext) {
		ext = mtype.Extension()
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), suffix, ext)
}
