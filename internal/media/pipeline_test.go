package media

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sitepanel/backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// encodePNG returns a width x height PNG
func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// encodeGrayPNG returns an all-black width x height grayscale PNG, which compresses to a few bytes per row
func encodeGrayPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, width, height))))
	return buf.Bytes()
}

// withDeclaredSize rewrites the IHDR dimensions of a PNG without touching its pixel data
func withDeclaredSize(t *testing.T, data []byte, width, height uint32) []byte {
	t.Helper()
	require.Equal(t, "IHDR", string(data[12:16]))
	out := bytes.Clone(data)
	binary.BigEndian.PutUint32(out[16:20], width)
	binary.BigEndian.PutUint32(out[20:24], height)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

// decodeSize returns the dimensions of a stored image
func decodeSize(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

// listFiles returns every regular file under root, relative to root
func listFiles(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, _ := filepath.Rel(root, path)
			files = append(files, rel)
		}
		return nil
	})
	require.NoError(t, err)
	return files
}

func setupPipeline(t *testing.T, opts ...Option) (*Pipeline, string) {
	t.Helper()
	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.PublicBaseURL = "http://localhost:8080/uploads"
	return NewPipeline(cfg, storage.NewLocalStorage(root), zap.NewNop(), opts...), root
}

// recordingObserver collects ingestion results
type recordingObserver struct {
	results []string
	bytes   int64
}

func (o *recordingObserver) ObserveIngest(result string, _ time.Duration, bytes int64) {
	o.results = append(o.results, result)
	o.bytes += bytes
}

func TestPipeline_Ingest_Dimensions(t *testing.T) {
	tests := []struct {
		name        string
		width       int
		height      int
		largeWidth  int
		largeHeight int
		thumbWidth  int
		thumbHeight int
	}{
		{
			name:  "landscape scales on width",
			width: 2000, height: 1000,
			largeWidth: 1024, largeHeight: 512,
			thumbWidth: 320, thumbHeight: 160,
		},
		{
			name:  "portrait scales on height",
			width: 1000, height: 2000,
			largeWidth: 384, largeHeight: 768,
			thumbWidth: 120, thumbHeight: 240,
		},
		{
			name:  "square scales on width",
			width: 500, height: 500,
			largeWidth: 1024, largeHeight: 1024,
			thumbWidth: 320, thumbHeight: 320,
		},
		{
			name:  "small landscape is enlarged",
			width: 100, height: 50,
			largeWidth: 1024, largeHeight: 512,
			thumbWidth: 320, thumbHeight: 160,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, root := setupPipeline(t)

			asset, err := p.Ingest(context.Background(), Upload{
				Reader:    bytes.NewReader(encodePNG(t, tt.width, tt.height)),
				Extension: ".png",
			})
			require.NoError(t, err)

			dir := filepath.Join(root, "images")
			w, h := decodeSize(t, filepath.Join(dir, asset.Filename))
			assert.Equal(t, tt.largeWidth, w)
			assert.Equal(t, tt.largeHeight, h)

			w, h = decodeSize(t, filepath.Join(dir, asset.ThumbName))
			assert.Equal(t, tt.thumbWidth, w)
			assert.Equal(t, tt.thumbHeight, h)

			w, h = decodeSize(t, filepath.Join(dir, asset.OriginalName))
			assert.Equal(t, tt.width, w)
			assert.Equal(t, tt.height, h)
		})
	}
}

func TestPipeline_Ingest_Artifacts(t *testing.T) {
	observer := &recordingObserver{}
	p, root := setupPipeline(t, WithTokenGenerator(func() string { return "abc123" }), WithObserver(observer))
	data := encodePNG(t, 640, 480)

	asset, err := p.Ingest(context.Background(), Upload{Reader: bytes.NewReader(data), Extension: "PNG"})

	require.NoError(t, err)
	assert.Equal(t, "abc123", asset.Token)
	assert.Equal(t, "png", asset.Extension)
	assert.Equal(t, "abc123.png", asset.Filename)
	assert.Equal(t, "abc123-original.png", asset.OriginalName)
	assert.Equal(t, "abc123-thumb.png", asset.ThumbName)
	assert.ElementsMatch(t, []string{
		filepath.Join("images", "abc123.png"),
		filepath.Join("images", "abc123-original.png"),
		filepath.Join("images", "abc123-thumb.png"),
	}, listFiles(t, root))

	original, err := os.ReadFile(filepath.Join(root, "images", asset.OriginalName))
	require.NoError(t, err)
	assert.Equal(t, data, original, "original is stored byte for byte")

	assert.Equal(t, []string{ResultSuccess}, observer.results)
	assert.Equal(t, asset.Bytes, observer.bytes)
	assert.Greater(t, asset.Bytes, int64(len(data)))
}

func TestPipeline_Ingest_JPEG(t *testing.T) {
	p, root := setupPipeline(t)
	img := image.NewRGBA(image.Rect(0, 0, 300, 900))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))

	asset, err := p.Ingest(context.Background(), Upload{Reader: &buf, Extension: "jpg"})

	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(asset.Filename, ".jpg"))
	w, h := decodeSize(t, filepath.Join(root, "images", asset.Filename))
	assert.Equal(t, 256, w)
	assert.Equal(t, 768, h)
}

func TestPipeline_Ingest_UniqueTokens(t *testing.T) {
	p, _ := setupPipeline(t)
	data := encodePNG(t, 20, 10)

	first, err := p.Ingest(context.Background(), Upload{Reader: bytes.NewReader(data), Extension: "png"})
	require.NoError(t, err)
	second, err := p.Ingest(context.Background(), Upload{Reader: bytes.NewReader(data), Extension: "png"})
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)
}

func TestPipeline_Ingest_Unreadable(t *testing.T) {
	observer := &recordingObserver{}
	p, root := setupPipeline(t, WithObserver(observer))

	asset, err := p.Ingest(context.Background(), Upload{
		Reader:    strings.NewReader("%PDF-1.4 definitely not an image"),
		Extension: "jpg",
	})

	assert.Nil(t, asset)
	assert.ErrorIs(t, err, ErrUnreadableImage)
	assert.Empty(t, listFiles(t, root))
	assert.Equal(t, []string{ResultUnreadable}, observer.results)
}

func TestPipeline_Ingest_PixelLimit(t *testing.T) {
	tests := []struct {
		name        string
		maxPixels   int64
		data        func(t *testing.T) []byte
		expectedErr error
	}{
		{
			name:        "compressed upload above the limit",
			maxPixels:   1_000_000,
			data:        func(t *testing.T) []byte { return encodeGrayPNG(t, 2000, 2000) },
			expectedErr: ErrImageTooLarge,
		},
		{
			name:      "declared 12000x12000 above the default limit",
			maxPixels: DefaultConfig().MaxPixels,
			data: func(t *testing.T) []byte {
				return withDeclaredSize(t, encodeGrayPNG(t, 1, 1), 12000, 12000)
			},
			expectedErr: ErrImageTooLarge,
		},
		{
			name:      "exactly at the limit",
			maxPixels: 100 * 100,
			data:      func(t *testing.T) []byte { return encodeGrayPNG(t, 100, 100) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			cfg := DefaultConfig()
			cfg.MaxPixels = tt.maxPixels
			observer := &recordingObserver{}
			p := NewPipeline(cfg, storage.NewLocalStorage(root), zap.NewNop(), WithObserver(observer))
			data := tt.data(t)

			asset, err := p.Ingest(context.Background(), Upload{Reader: bytes.NewReader(data), Extension: "png"})

			if tt.expectedErr != nil {
				assert.Nil(t, asset)
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Empty(t, listFiles(t, root))
				assert.Equal(t, []string{ResultTooLarge}, observer.results)
				return
			}
			require.NoError(t, err)
			assert.Len(t, listFiles(t, root), 3)
		})
	}
}

func TestPipeline_Ingest_UnsupportedExtension(t *testing.T) {
	p, root := setupPipeline(t)

	asset, err := p.Ingest(context.Background(), Upload{
		Reader:    bytes.NewReader(encodePNG(t, 10, 10)),
		Extension: "webp",
	})

	assert.Nil(t, asset)
	assert.ErrorIs(t, err, ErrUnsupportedExtension)
	assert.Empty(t, listFiles(t, root))
}

// failingStorage wraps a real store and fails selected operations
type failingStorage struct {
	Storage
	failCreate  string
	failPromote string
	writeErr    bool
}

func (s *failingStorage) Create(name, directory string) (io.WriteCloser, error) {
	if name == s.failCreate {
		return nil, errors.New("disk full")
	}
	wc, err := s.Storage.Create(name, directory)
	if err != nil || !s.writeErr {
		return wc, err
	}
	return &brokenWriter{WriteCloser: wc}, nil
}

func (s *failingStorage) Promote(name, directory string) error {
	if name == s.failPromote {
		return errors.New("rename failed")
	}
	return s.Storage.Promote(name, directory)
}

type brokenWriter struct {
	io.WriteCloser
}

func (w *brokenWriter) Write(p []byte) (int, error) {
	return 0, errors.New("write failed")
}

func TestPipeline_Ingest_StorageFailureLeavesNoArtifacts(t *testing.T) {
	tests := []struct {
		name    string
		storage func(Storage) Storage
	}{
		{
			name: "create of thumb fails",
			storage: func(s Storage) Storage {
				return &failingStorage{Storage: s, failCreate: "tok-thumb.png"}
			},
		},
		{
			name: "write fails",
			storage: func(s Storage) Storage {
				return &failingStorage{Storage: s, writeErr: true}
			},
		},
		{
			name: "promote of thumb fails after others were published",
			storage: func(s Storage) Storage {
				return &failingStorage{Storage: s, failPromote: "tok-thumb.png"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			store := tt.storage(storage.NewLocalStorage(root))
			p := NewPipeline(DefaultConfig(), store, zap.NewNop(), WithTokenGenerator(func() string { return "tok" }))

			asset, err := p.Ingest(context.Background(), Upload{
				Reader:    bytes.NewReader(encodePNG(t, 64, 32)),
				Extension: "png",
			})

			assert.Nil(t, asset)
			assert.ErrorIs(t, err, ErrStorageWrite)
			assert.Empty(t, listFiles(t, root))
		})
	}
}

func TestPipeline_Naming(t *testing.T) {
	p, _ := setupPipeline(t)

	v := p.Variants("abc.jpg")
	assert.Equal(t, Variants{Original: "abc-original.jpg", Large: "abc.jpg", Thumb: "abc-thumb.jpg"}, v)

	urls := p.URLs("abc.jpg")
	assert.Equal(t, "http://localhost:8080/uploads/images/abc.jpg", urls.Large)
	assert.Equal(t, "http://localhost:8080/uploads/images/abc-thumb.jpg", urls.Thumb)
	assert.Equal(t, "http://localhost:8080/uploads/images/abc-original.jpg", urls.Original)
}

func TestPipeline_Remove(t *testing.T) {
	p, root := setupPipeline(t)
	asset, err := p.Ingest(context.Background(), Upload{
		Reader:    bytes.NewReader(encodePNG(t, 40, 30)),
		Extension: "png",
	})
	require.NoError(t, err)
	// a missing artifact does not make removal fail
	require.NoError(t, os.Remove(filepath.Join(root, "images", asset.ThumbName)))

	err = p.Remove(asset.Filename)

	assert.NoError(t, err)
	assert.Empty(t, listFiles(t, root))
	assert.Error(t, p.Remove("../etc/passwd"))
	assert.Error(t, p.Remove(""))
}

func TestPipeline_Ingest_TakenTokenIsRegenerated(t *testing.T) {
	tokens := []string{"taken", "free"}
	p, root := setupPipeline(t, WithTokenGenerator(func() string {
		token := tokens[0]
		tokens = tokens[1:]
		return token
	}))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "images"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "images", "taken.png"), []byte("existing"), 0644))

	asset, err := p.Ingest(context.Background(), Upload{Reader: bytes.NewReader(encodePNG(t, 20, 10)), Extension: "png"})

	require.NoError(t, err)
	assert.Equal(t, "free.png", asset.Filename)
	existing, err := os.ReadFile(filepath.Join(root, "images", "taken.png"))
	require.NoError(t, err)
	assert.Equal(t, "existing", string(existing))
}
