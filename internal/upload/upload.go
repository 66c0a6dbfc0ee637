// Package upload turns a user's file selection into an encoded image.
package upload

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/quocvuong92/leafify/internal/logging"
)

var (
	// ErrNoFiles is returned when the selection is empty
	ErrNoFiles = errors.New("no file selected")
	// ErrUnreadableFile is returned when the selected file cannot be read
	ErrUnreadableFile = errors.New("could not read the selected file")
)

// SelectedImage is the current image chosen by the user. A new selection
// replaces it wholesale.
type SelectedImage struct {
	Name     string
	MIMEType string
	Raw      []byte
	Encoded  string // data:<mime>;base64,<payload>
}

// Handler reads selected files
type Handler struct {
	logger *logging.FieldLogger
}

// NewHandler creates a handler; a nil logger disables logging
func NewHandler(logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Handler{logger: logger.Component("upload")}
}

// Select reads the first path of the selection. Extra paths are ignored.
// The file type and size are not validated.
func (h *Handler) Select(ctx context.Context, paths []string) (*SelectedImage, error) {
	if len(paths) == 0 {
		return nil, ErrNoFiles
	}
	if len(paths) > 1 {
		h.logger.Debug("multiple files selected, using the first", logging.Fields{
			"ignored": len(paths) - 1,
		})
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := strings.TrimSpace(paths[0])
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrUnreadableFile, path)
	}

	raw, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}

	img := Encode(filepath.Base(absPath), raw)
	h.logger.Debug("image selected", logging.Fields{
		"name":  img.Name,
		"mime":  img.MIMEType,
		"bytes": len(raw),
	})
	return img, nil
}

// SelectAsync runs Select on its own goroutine and reports through done
func (h *Handler) SelectAsync(ctx context.Context, paths []string, done func(*SelectedImage, error)) {
	go func() {
		img, err := h.Select(ctx, paths)
		done(img, err)
	}()
}

// Encode builds a SelectedImage from raw bytes. The MIME type is sniffed
// from the content only to label the data URL.
func Encode(name string, raw []byte) *SelectedImage {
	mime := http.DetectContentType(raw)
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return &SelectedImage{
		Name:     name,
		MIMEType: mime,
		Raw:      raw,
		Encoded:  "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(raw),
	}
}
