package preprocess

import "errors"

var (
	// ErrImageDecode reports bytes that cannot be parsed as a raster image.
	ErrImageDecode = errors.New("image decode failed")

	// ErrEmptyImage reports an image with a zero width or height.
	ErrEmptyImage = errors.New("image has zero dimension")
)
