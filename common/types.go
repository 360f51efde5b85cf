// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
)

// ImageData holds decoded RGBA pixels ready for GPU upload.
type ImageData struct {
	// Pixels is tightly packed RGBA, 4 bytes per pixel, row-major.
	Pixels []byte
	Width  int
	Height int
}

// ImageSource identifies an image either by embedded bytes (e.g. a GLB buffer view) or by path.
type ImageSource struct {
	// Name is an identifier used in diagnostics.
	Name string

	// Path is the file path for external images (empty for embedded).
	Path string

	// Data contains raw encoded bytes (PNG/JPEG) for embedded images.
	Data []byte
}

// Decode decodes the image to raw RGBA pixel data.
// Uses either embedded Data bytes or loads from Path on disk.
// Supports PNG and JPEG formats.
// Reference: https://pkg.go.dev/image
//
// Returns:
//   - ImageData: the decoded pixels and dimensions
//   - error: error if decoding fails
func (s ImageSource) Decode() (ImageData, error) {
	var img image.Image
	var err error

	switch {
	case len(s.Data) > 0:
		img, _, err = image.Decode(bytes.NewReader(s.Data))
		if err != nil {
			return ImageData{}, fmt.Errorf("failed to decode embedded image %q: %w", s.Name, err)
		}
	case s.Path != "":
		file, fileErr := os.Open(s.Path)
		if fileErr != nil {
			return ImageData{}, fmt.Errorf("failed to open image file %s: %w", s.Path, fileErr)
		}
		defer file.Close()

		img, _, err = image.Decode(file)
		if err != nil {
			return ImageData{}, fmt.Errorf("failed to decode image file %s: %w", s.Path, err)
		}
	default:
		return ImageData{}, fmt.Errorf("image %q has neither data nor path", s.Name)
	}

	return ToRGBA(img), nil
}

// ToRGBA converts any image into tightly packed RGBA pixels.
func ToRGBA(img image.Image) ImageData {
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return ImageData{Pixels: rgba.Pix, Width: bounds.Dx(), Height: bounds.Dy()}
}

// SolidImage returns a w×h image filled with one RGBA color.
func SolidImage(w, h int, rgba [4]uint8) ImageData {
	pix := make([]byte, w*h*4)
	for i := 0; i < len(pix); i += 4 {
		copy(pix[i:i+4], rgba[:])
	}
	return ImageData{Pixels: pix, Width: w, Height: h}
}
