package media

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// SupportedExtension reports whether the pipeline can encode images with the extension
// ext must be lowercase and without the leading dot
func SupportedExtension(ext string) bool {
	switch ext {
	case "jpg", "jpeg", "png", "gif", "bmp":
		return true
	default:
		return false
	}
}

// Fit returns the size of a width x height image scaled into box.
// Portrait images (height > width) are scaled to the box height, all others to the box width;
// the other side follows the aspect ratio. Images smaller than the box are enlarged.
func Fit(width, height int, box Box) (int, int) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}

	var w, h int
	if height > width {
		h = box.Height
		w = int(math.Round(float64(width) * float64(box.Height) / float64(height)))
	} else {
		w = box.Width
		h = int(math.Round(float64(height) * float64(box.Width) / float64(width)))
	}
	return max(w, 1), max(h, 1)
}

// Scale resamples src to exactly width x height
func Scale(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// Encode writes img in the format named by ext
func Encode(w io.Writer, img image.Image, ext string, jpegQuality int) error {
	switch ext {
	case "jpg", "jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
	case "png":
		return png.Encode(w, img)
	case "gif":
		return gif.Encode(w, img, nil)
	case "bmp":
		return bmp.Encode(w, img)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}
}
