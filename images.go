package spacetraveling

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
)

const (
	maxBannerWidth = 1200
	jpegQuality    = 80
	uploadsSubdir  = "uploads"
)

// processImage decodes an image from src, downscales it to maxBannerWidth
// when wider, and encodes it as JPEG.
func processImage(src io.Reader) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxBannerWidth {
		newH := h * maxBannerWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxBannerWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// importBanner converts the image file at srcPath into a JPEG under
// <staticDir>/uploads named after uid, and returns its public URL.
// Re-importing the same uid overwrites the previous file.
func importBanner(srcPath, staticDir, uid string) (string, error) {
	f, err := os.Open(srcPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := processImage(f)
	if err != nil {
		return "", fmt.Errorf("banner %s: %w", srcPath, err)
	}

	name := Slugify(uid)
	if name == "" {
		name = "banner"
	}
	filename := name + ".jpg"

	dir := filepath.Join(staticDir, uploadsSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("write banner: %w", err)
	}
	return "/public/" + uploadsSubdir + "/" + filename, nil
}
