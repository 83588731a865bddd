package visualize

import (
	"image"

	"github.com/nfnt/resize"
)

// Thumbnail shrinks img to fit maxWidth x maxHeight, keeping the aspect
// ratio. Images that already fit are returned unchanged.
func Thumbnail(img image.Image, maxWidth, maxHeight uint) image.Image {
	return resize.Thumbnail(maxWidth, maxHeight, img, resize.Lanczos3)
}

// ThumbnailPNG encodes a thumbnail of img as PNG.
func ThumbnailPNG(img image.Image, maxWidth, maxHeight uint) ([]byte, error) {
	return Encode(Thumbnail(img, maxWidth, maxHeight))
}
