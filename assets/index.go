package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/wallscene/document"
)

// TextureExt is the extension texture keys carry.
const TextureExt = ".tex"

// ErrEmptyMaterial is returned when a model file names no material.
var ErrEmptyMaterial = errors.New("assets: model has no material")

// Index maps the image path an object names to the material path of its model.
type Index struct {
	paths map[string]string
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{paths: make(map[string]string)}
}

// Add records that image resolves to material.
func (ix *Index) Add(image, material string) {
	ix.paths[normalizeKey(image)] = normalizeKey(material)
}

// Lookup returns the material path recorded for image.
func (ix *Index) Lookup(image string) (string, bool) {
	if ix == nil {
		return "", false
	}
	m, ok := ix.paths[normalizeKey(image)]
	return m, ok
}

// Len returns the number of indexed images.
func (ix *Index) Len() int { return len(ix.paths) }

// Materials returns every distinct material path in the index, sorted.
func (ix *Index) Materials() []string {
	seen := make(map[string]struct{}, len(ix.paths))
	out := make([]string, 0, len(ix.paths))
	for _, m := range ix.paths {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// TextureKey derives the texture key for a material path by replacing its
// extension with ".tex". A path without an extension gains one.
func TextureKey(material string) string {
	material = normalizeKey(material)
	ext := path.Ext(material)
	return strings.TrimSuffix(material, ext) + TextureExt
}

// IndexScene reads the model file of every object image in root from fsys
// and indexes its material. Objects whose model cannot be read are skipped
// and returned in missing; the renderer drops them at resolution time.
func IndexScene(fsys fs.FS, root *document.Root) (ix *Index, missing []string, err error) {
	ix = NewIndex()
	if root == nil {
		return ix, nil, nil
	}
	for i := range root.Objects {
		img := root.Objects[i].Image
		if img == nil || *img == "" {
			continue
		}
		if _, ok := ix.Lookup(*img); ok {
			continue
		}
		material, err := readMaterial(fsys, normalizeKey(*img))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) || errors.Is(err, ErrEmptyMaterial) {
				missing = append(missing, *img)
				continue
			}
			return nil, nil, err
		}
		ix.Add(*img, material)
	}
	return ix, missing, nil
}

func readMaterial(fsys fs.FS, name string) (string, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return "", fmt.Errorf("assets: open model %s: %w", name, err)
	}
	defer f.Close()

	m, err := document.LoadModel(f)
	if err != nil {
		return "", fmt.Errorf("assets: model %s: %w", name, err)
	}
	if m.Material == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyMaterial, name)
	}
	return m.Material, nil
}

// normalizeKey makes asset keys comparable across producers: NFC unicode,
// forward slashes, no leading "./".
func normalizeKey(k string) string {
	k = norm.NFC.String(k)
	k = strings.ReplaceAll(k, "\\", "/")
	if k == "" {
		return k
	}
	return path.Clean(k)
}
