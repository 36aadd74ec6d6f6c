package compose

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrNotImage = errors.New("please select an image file")
	ErrTooLarge = errors.New("image is too large")
)

// EncodeImage sniffs data and returns it as a data URL together with the
// detected MIME type. maxBytes <= 0 disables the size check.
func EncodeImage(data []byte, maxBytes int64) (dataURL, mime string, err error) {
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", "", fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, len(data), maxBytes)
	}
	mt := mimetype.Detect(data)
	mime = mt.String()
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	if !strings.HasPrefix(mime, "image/") {
		return "", "", fmt.Errorf("%w (got %s)", ErrNotImage, mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), mime, nil
}

// ReadImage loads path and encodes it with EncodeImage. The size limit is
// checked before the file is read.
func ReadImage(path string, maxBytes int64) (dataURL, mime string, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", "", fmt.Errorf("stat image: %w", err)
	}
	if info.IsDir() {
		return "", "", fmt.Errorf("%w: %s is a directory", ErrNotImage, path)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return "", "", fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, info.Size(), maxBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("read image: %w", err)
	}
	return EncodeImage(data, maxBytes)
}
