package finder

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFinder_FindSources(t *testing.T) {
	fs := afero.NewMemMapFs()

	files := map[string]string{
		"/docs/index.rst":            "Index",
		"/docs/stdlib/set.rst":       "Sets",
		"/docs/stdlib/str.rst":       "Strings",
		"/docs/_build/out.rst":       "generated",
		"/docs/conf.py":              "project = 'x'",
		"/docs/.editorconfig":        "root = true\n\n[*.rst]\ntab_width = 4\n",
		"/docs/stdlib/.editorconfig": "[set.rst]\ntab_width = 2\n",
	}
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}

	tests := []struct {
		name    string
		include []string
		exclude []string
		want    []string
	}{
		{
			name: "find all sources",
			want: []string{"_build/out.rst", "index.rst", "stdlib/set.rst", "stdlib/str.rst"},
		},
		{
			name:    "exclude build output",
			exclude: []string{"_build/**"},
			want:    []string{"index.rst", "stdlib/set.rst", "stdlib/str.rst"},
		},
		{
			name:    "custom include",
			include: []string{"stdlib/*.rst", "index.rst"},
			want:    []string{"index.rst", "stdlib/set.rst", "stdlib/str.rst"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewDefaultFinder(fs, tt.include, tt.exclude)
			got, err := f.FindSources(context.Background(), "/docs")
			require.NoError(t, err)

			paths := make([]string, len(got))
			for i, s := range got {
				paths[i] = s.Path
			}
			assert.Equal(t, tt.want, paths)
		})
	}
}

func TestDefaultFinder_SourceDetails(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/docs/.editorconfig", []byte("root = true\n\n[*.rst]\ntab_width = 4\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/docs/stdlib/.editorconfig", []byte("[set.rst]\ntab_width = 2\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/docs/stdlib/set.rst", []byte("Sets"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/docs/stdlib/str.rst", []byte("Strings"), 0o644))

	got, err := NewDefaultFinder(fs, nil, nil).FindSources(context.Background(), "/docs")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "stdlib/set", got[0].Document)
	assert.Equal(t, []byte("Sets"), got[0].Content)
	assert.Equal(t, 2, got[0].TabWidth)
	assert.Equal(t, 4, got[1].TabWidth)
}

func TestDefaultFinder_MissingRoot(t *testing.T) {
	_, err := NewDefaultFinder(afero.NewMemMapFs(), nil, nil).FindSources(context.Background(), "/nope")
	assert.Error(t, err)
}
