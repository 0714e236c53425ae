package finder

import (
	"bytes"
	"context"
	"path"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/editorconfig/editorconfig-core-go/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// DefaultInclude matches every reStructuredText source under the root.
var DefaultInclude = []string{"**/*.rst"}

// SourceFinder discovers the documentation sources of a build
type SourceFinder interface {
	// FindSources returns the sources under root, sorted by path
	FindSources(ctx context.Context, root string) ([]*Source, error)
}

// Source is one discovered document
type Source struct {
	// Path is slash separated and relative to the root
	Path string
	// Document is Path without its extension, the document name used in the registry
	Document string
	Content  []byte
	// TabWidth comes from .editorconfig, zero when unset
	TabWidth int
}

// DefaultFinder globs sources on an afero filesystem
type DefaultFinder struct {
	Fs      afero.Fs
	Include []string
	Exclude []string
}

// NewDefaultFinder creates a new DefaultFinder
func NewDefaultFinder(fs afero.Fs, include, exclude []string) *DefaultFinder {
	if len(include) == 0 {
		include = DefaultInclude
	}
	return &DefaultFinder{Fs: fs, Include: include, Exclude: exclude}
}

// FindSources implements SourceFinder
func (f *DefaultFinder) FindSources(ctx context.Context, root string) ([]*Source, error) {
	logger := zerolog.Ctx(ctx)

	ok, err := afero.DirExists(f.Fs, root)
	if err != nil {
		return nil, errors.Errorf("checking root %s: %w", root, err)
	}
	if !ok {
		return nil, errors.Errorf("source root %s is not a directory", root)
	}

	base := afero.NewBasePathFs(f.Fs, root)
	fsys := afero.NewIOFS(base)

	var paths []string
	for _, pattern := range f.Include {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Errorf("globbing %q: %w", pattern, err)
		}
		for _, m := range matches {
			excluded, err := f.excluded(m)
			if err != nil {
				return nil, err
			}
			if !excluded && !slices.Contains(paths, m) {
				paths = append(paths, m)
			}
		}
	}
	slices.Sort(paths)

	configs := map[string]*editorconfig.Editorconfig{}
	sources := make([]*Source, 0, len(paths))
	for _, p := range paths {
		content, err := afero.ReadFile(base, p)
		if err != nil {
			return nil, errors.Errorf("reading %s: %w", p, err)
		}

		width, err := tabWidth(base, configs, p)
		if err != nil {
			return nil, err
		}

		sources = append(sources, &Source{
			Path:     p,
			Document: strings.TrimSuffix(p, path.Ext(p)),
			Content:  content,
			TabWidth: width,
		})
	}

	logger.Debug().Str("root", root).Int("sources", len(sources)).Msg("found sources")

	return sources, nil
}

func (f *DefaultFinder) excluded(p string) (bool, error) {
	for _, pattern := range f.Exclude {
		ok, err := doublestar.Match(pattern, p)
		if err != nil {
			return false, errors.Errorf("matching exclude %q: %w", pattern, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// tabWidth applies the .editorconfig files from the root down to the source's
// directory. Deeper files win; a file marked root discards the ones above it.
func tabWidth(fs afero.Fs, cache map[string]*editorconfig.Editorconfig, p string) (int, error) {
	var dirs []string
	for dir := path.Dir(p); dir != "."; dir = path.Dir(dir) {
		dirs = append(dirs, dir)
	}
	dirs = append(dirs, ".")
	slices.Reverse(dirs)

	width := 0
	for _, dir := range dirs {
		ec, err := loadEditorconfig(fs, cache, dir)
		if err != nil {
			return 0, err
		}
		if ec == nil {
			continue
		}
		if ec.Root {
			width = 0
		}

		rel := "/" + strings.TrimPrefix(p, dir+"/")
		def, err := ec.GetDefinitionForFilename(rel)
		if err != nil {
			return 0, errors.Errorf("reading editorconfig for %s: %w", p, err)
		}
		if def.TabWidth > 0 {
			width = def.TabWidth
		}
	}

	return width, nil
}

func loadEditorconfig(fs afero.Fs, cache map[string]*editorconfig.Editorconfig, dir string) (*editorconfig.Editorconfig, error) {
	if ec, ok := cache[dir]; ok {
		return ec, nil
	}

	file := path.Join(dir, ".editorconfig")
	data, err := afero.ReadFile(fs, file)
	if err != nil {
		cache[dir] = nil
		return nil, nil
	}

	ec, err := editorconfig.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Errorf("parsing %s: %w", file, err)
	}
	cache[dir] = ec
	return ec, nil
}
