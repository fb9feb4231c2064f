package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Policies applied when an uploaded media file cannot be decoded as an image
const (
	UnreadablePolicySkip   = "skip"
	UnreadablePolicyReject = "reject"
)

const (
	defaultMaxUploadBytes = 10 * 1024 * 1024 // 10MB
	defaultMaxPixels      = 40_000_000       // 40 megapixels
)

// Box is a (width, height) bounding box of a resized image variant
type Box struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// MediaPolicy describes how uploaded images are stored.
// It can be read from a YAML file; environment variables override file values.
type MediaPolicy struct {
	Directory      string `yaml:"directory"`
	Large          Box    `yaml:"large"`
	Thumb          Box    `yaml:"thumb"`
	OriginalSuffix string `yaml:"original_suffix"`
	ThumbSuffix    string `yaml:"thumb_suffix"`
	JPEGQuality    int    `yaml:"jpeg_quality"`
	MaxPixels      int64  `yaml:"max_pixels"`
}

// MediaConfig holds settings of the public image store and the ingestion pipeline
type MediaConfig struct {
	BasePath         string
	BaseURL          string
	MaxUploadBytes   int64
	UnreadablePolicy string
	Policy           MediaPolicy
}

// DefaultMediaPolicy returns the policy used when neither a file nor the environment set a value
func DefaultMediaPolicy() MediaPolicy {
	return MediaPolicy{
		Directory:      "images",
		Large:          Box{Width: 1024, Height: 768},
		Thumb:          Box{Width: 320, Height: 240},
		OriginalSuffix: "-original",
		ThumbSuffix:    "-thumb",
		JPEGQuality:    90,
		MaxPixels:      defaultMaxPixels,
	}
}

// loadMediaConfig reads media settings: defaults, then MEDIA_POLICY_FILE, then environment variables
func loadMediaConfig(serverPort int) (*MediaConfig, error) {
	cfg := &MediaConfig{}

	basePath := os.Getenv("MEDIA_BASE_PATH")
	if basePath == "" {
		return nil, fmt.Errorf("MEDIA_BASE_PATH is required")
	}
	cfg.BasePath = basePath

	baseURL := os.Getenv("MEDIA_BASE_URL")
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://localhost:%d/uploads", serverPort)
	}
	cfg.BaseURL = strings.TrimRight(baseURL, "/")

	cfg.MaxUploadBytes = defaultMaxUploadBytes
	if raw := os.Getenv("MEDIA_MAX_UPLOAD_BYTES"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid MEDIA_MAX_UPLOAD_BYTES: %q", raw)
		}
		cfg.MaxUploadBytes = n
	}

	policy := os.Getenv("MEDIA_UNREADABLE_POLICY")
	switch policy {
	case "":
		cfg.UnreadablePolicy = UnreadablePolicySkip
	case UnreadablePolicySkip, UnreadablePolicyReject:
		cfg.UnreadablePolicy = policy
	default:
		return nil, fmt.Errorf("invalid MEDIA_UNREADABLE_POLICY: %q", policy)
	}

	p, err := LoadMediaPolicy(os.Getenv("MEDIA_POLICY_FILE"))
	if err != nil {
		return nil, err
	}
	if err := applyPolicyEnv(&p); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	cfg.Policy = p

	return cfg, nil
}

// LoadMediaPolicy returns the default policy overlaid with the YAML file at path.
// An empty path returns the defaults.
func LoadMediaPolicy(path string) (MediaPolicy, error) {
	p := DefaultMediaPolicy()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read media policy %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse media policy %q: %w", path, err)
	}
	return p, nil
}

// Validate checks that the policy can produce three distinct, non-empty variants
func (p MediaPolicy) Validate() error {
	if p.Directory == "" {
		return fmt.Errorf("media directory is required")
	}
	if p.Large.Width <= 0 || p.Large.Height <= 0 {
		return fmt.Errorf("invalid large size %dx%d", p.Large.Width, p.Large.Height)
	}
	if p.Thumb.Width <= 0 || p.Thumb.Height <= 0 {
		return fmt.Errorf("invalid thumb size %dx%d", p.Thumb.Width, p.Thumb.Height)
	}
	if p.OriginalSuffix == "" || p.ThumbSuffix == "" || p.OriginalSuffix == p.ThumbSuffix {
		return fmt.Errorf("original and thumb suffixes must be distinct and non-empty")
	}
	if p.JPEGQuality < 1 || p.JPEGQuality > 100 {
		return fmt.Errorf("invalid jpeg quality %d", p.JPEGQuality)
	}
	if p.MaxPixels <= 0 {
		return fmt.Errorf("invalid max pixels %d", p.MaxPixels)
	}
	return nil
}

func applyPolicyEnv(p *MediaPolicy) error {
	if v := os.Getenv("MEDIA_DIRECTORY"); v != "" {
		p.Directory = v
	}
	if v := os.Getenv("MEDIA_LARGE_SIZE"); v != "" {
		box, err := ParseBox(v)
		if err != nil {
			return fmt.Errorf("invalid MEDIA_LARGE_SIZE: %w", err)
		}
		p.Large = box
	}
	if v := os.Getenv("MEDIA_THUMB_SIZE"); v != "" {
		box, err := ParseBox(v)
		if err != nil {
			return fmt.Errorf("invalid MEDIA_THUMB_SIZE: %w", err)
		}
		p.Thumb = box
	}
	if v := os.Getenv("MEDIA_JPEG_QUALITY"); v != "" {
		q, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MEDIA_JPEG_QUALITY: %w", err)
		}
		p.JPEGQuality = q
	}
	if v := os.Getenv("MEDIA_MAX_PIXELS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MEDIA_MAX_PIXELS: %w", err)
		}
		p.MaxPixels = n
	}
	return nil
}

// ParseBox parses a "WIDTHxHEIGHT" string such as "1024x768"
func ParseBox(s string) (Box, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return Box{}, fmt.Errorf("expected WIDTHxHEIGHT, got %q", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return Box{}, fmt.Errorf("invalid width in %q: %w", s, err)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return Box{}, fmt.Errorf("invalid height in %q: %w", s, err)
	}
	if width <= 0 || height <= 0 {
		return Box{}, fmt.Errorf("size must be positive, got %q", s)
	}
	return Box{Width: width, Height: height}, nil
}
