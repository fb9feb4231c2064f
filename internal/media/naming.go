package media

import (
	"errors"
	"io/fs"
	"path"
	"strings"
)

// Variants names the three artifacts of one canonical filename
type Variants struct {
	Original string
	Large    string
	Thumb    string
}

// Variants derives the artifact names of a canonical filename by suffix convention
func (p *Pipeline) Variants(filename string) Variants {
	ext := path.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	return Variants{
		Original: base + p.cfg.OriginalSuffix + ext,
		Large:    filename,
		Thumb:    base + p.cfg.ThumbSuffix + ext,
	}
}

// URL returns the public URL of a stored file name
func (p *Pipeline) URL(name string) string {
	return p.cfg.PublicBaseURL + "/" + p.cfg.Directory + "/" + name
}

// URLs returns the public URLs of the artifacts of a canonical filename
func (p *Pipeline) URLs(filename string) Variants {
	v := p.Variants(filename)
	return Variants{
		Original: p.URL(v.Original),
		Large:    p.URL(v.Large),
		Thumb:    p.URL(v.Thumb),
	}
}

// Remove deletes the artifact set of a canonical filename.
// Artifacts that are already gone are ignored.
func (p *Pipeline) Remove(filename string) error {
	if filename == "" || filename != path.Base(filename) {
		return errors.New("invalid media filename")
	}

	v := p.Variants(filename)
	var errs []error
	for _, name := range []string{v.Original, v.Large, v.Thumb} {
		if err := p.storage.Delete(name, p.cfg.Directory); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
