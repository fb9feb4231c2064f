package media

import "github.com/sitepanel/backend/internal/config"

// Box is a (maxWidth, maxHeight) bounding box of a resize
type Box struct {
	Width  int
	Height int
}

// Config describes where and how the pipeline stores artifacts
type Config struct {
	// Directory is the sub-directory of the store that receives the artifacts
	Directory string
	// PublicBaseURL is the URL under which the store root is served, without trailing slash
	PublicBaseURL  string
	Large          Box
	Thumb          Box
	OriginalSuffix string
	ThumbSuffix    string
	JPEGQuality    int
	// MaxPixels bounds width*height of an accepted upload; zero disables the check
	MaxPixels int64
}

// DefaultConfig returns the default size policy and suffix conventions
func DefaultConfig() Config {
	return Config{
		Directory:      "images",
		Large:          Box{Width: 1024, Height: 768},
		Thumb:          Box{Width: 320, Height: 240},
		OriginalSuffix: "-original",
		ThumbSuffix:    "-thumb",
		JPEGQuality:    90,
		MaxPixels:      40_000_000,
	}
}

// ConfigFromPolicy builds the pipeline configuration of a configured media policy
func ConfigFromPolicy(p config.MediaPolicy, publicBaseURL string) Config {
	return Config{
		Directory:      p.Directory,
		PublicBaseURL:  publicBaseURL,
		Large:          Box{Width: p.Large.Width, Height: p.Large.Height},
		Thumb:          Box{Width: p.Thumb.Width, Height: p.Thumb.Height},
		OriginalSuffix: p.OriginalSuffix,
		ThumbSuffix:    p.ThumbSuffix,
		JPEGQuality:    p.JPEGQuality,
		MaxPixels:      p.MaxPixels,
	}
}
