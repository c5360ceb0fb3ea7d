package commands

import (
	"fmt"
	"image"
	"image/png"
	"os"
)

// savePNG writes tightly packed RGBA8 pixels, as produced by image
// readbacks, to a PNG file.
func savePNG(path string, pixels []byte, width, height int) error {
	if len(pixels) < width*height*4 {
		return fmt.Errorf("pixel data is %d bytes, image needs %d", len(pixels), width*height*4)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	copy(img.Pix, pixels[:width*height*4])

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return nil
}
