package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Options controls Compress.
type Options struct {
	MaxDimension int // longest side in pixels
	Quality      int // JPEG quality 1-100
}

func DefaultOptions() Options {
	return Options{MaxDimension: 1200, Quality: 80}
}

// Compress decodes an image, scales it down so neither side exceeds MaxDimension
// and re-encodes it as JPEG. Smaller images keep their size.
func Compress(data []byte, opts Options) ([]byte, error) {
	if opts.MaxDimension <= 0 || opts.Quality <= 0 {
		opts = DefaultOptions()
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image (format: %s): %w", format, err)
	}

	bounds := img.Bounds()
	newWidth, newHeight := fit(bounds.Dx(), bounds.Dy(), opts.MaxDimension)

	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	// JPEG has no alpha; flatten transparent pixels onto white
	draw.Draw(resized, resized.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// fit scales (w, h) so the longest side is at most max, keeping the aspect ratio.
func fit(w, h, max int) (int, int) {
	switch {
	case w >= h && w > max:
		return max, atLeastOne(int(float64(h) * float64(max) / float64(w)))
	case h > w && h > max:
		return atLeastOne(int(float64(w) * float64(max) / float64(h))), max
	}
	return w, h
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
