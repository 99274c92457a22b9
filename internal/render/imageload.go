package render

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"strings"

	_ "golang.org/x/image/webp"
)

// maxImageBytes caps remote downloads.
const maxImageBytes = 32 << 20

// FetchImage reads and decodes a PNG, JPEG or WebP image from a local path
// or an http(s) URL.
func FetchImage(ctx context.Context, src string) (image.Image, error) {
	var r io.ReadCloser
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create image request: %w", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to download image: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
		}
		r = resp.Body
	} else {
		f, err := os.Open(src)
		if err != nil {
			return nil, fmt.Errorf("failed to open image: %w", err)
		}
		r = f
	}
	defer r.Close()

	img, _, err := image.Decode(io.LimitReader(r, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", src, err)
	}
	return img, nil
}
