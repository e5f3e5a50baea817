package assets

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"strings"

	// Decoders for pre-extracted texture images.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// imageExts are tried in order when looking for the decoded image of a
// texture key.
var imageExts = []string{".png", ".webp", ".jpg", ".jpeg", ".bmp"}

// TextureUploader turns a decoded image into a cached texture.
// *Uploader implements it; tests substitute their own.
type TextureUploader interface {
	Upload(key string, img image.Image) (*Texture, error)
}

// LoadTextures decodes and uploads the texture of every material in ix.
//
// The raw texture container format is not decoded here: each texture key
// ("materials/tree.tex") is expected to have a decoded sibling image with
// the same stem ("materials/tree.png", ".webp", ...). Keys with no image are
// returned in missing rather than failing the load.
func LoadTextures(fsys fs.FS, ix *Index, up TextureUploader) (cache *Cache, missing []string, err error) {
	cache = NewCache()
	for _, material := range ix.Materials() {
		key := TextureKey(material)
		if _, ok := cache.Lookup(key); ok {
			continue
		}
		img, err := decodeSibling(fsys, key)
		if errors.Is(err, fs.ErrNotExist) {
			missing = append(missing, key)
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		tex, err := up.Upload(key, img)
		if err != nil {
			return nil, nil, err
		}
		cache.Put(tex)
	}
	return cache, missing, nil
}

func decodeSibling(fsys fs.FS, key string) (image.Image, error) {
	stem := strings.TrimSuffix(key, TextureExt)
	for _, ext := range imageExts {
		f, err := fsys.Open(stem + ext)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("assets: open %s: %w", stem+ext, err)
		}
		img, _, err := image.Decode(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("assets: decode %s: %w", stem+ext, err)
		}
		return img, nil
	}
	return nil, fmt.Errorf("assets: no image for %s: %w", key, fs.ErrNotExist)
}
