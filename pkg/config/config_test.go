package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/eqldoc/pkg/construct"
)

func TestLoad(t *testing.T) {
	t.Setenv("EQLDOC_TEST_NS", "cal")

	tests := []struct {
		name     string
		filename string
		content  string
		wantErr  bool
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name:     "hcl_basic",
			filename: "eqldoc.hcl",
			content: `
domain = "eql"
default_namespace = "std"
summary_max_length = 60
sources = ["docs/**/*.rst"]
exclude = ["docs/drafts/**"]
jobs = 4
`,
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "eql", cfg.Domain)
				assert.Equal(t, 60, cfg.SummaryMaxLength)
				assert.Equal(t, []string{"docs/**/*.rst"}, cfg.Sources)
				assert.Equal(t, []string{"docs/drafts/**"}, cfg.Exclude)
				assert.Equal(t, 4, cfg.Jobs)
			},
		},
		{
			name:     "hcl_env",
			filename: "eqldoc.hcl",
			content:  `default_namespace = env.EQLDOC_TEST_NS`,
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "cal", cfg.DefaultNamespace)
			},
		},
		{
			name:     "hcl_vocabulary",
			filename: "eqldoc.hcl",
			content: `
vocabulary "operator" {
  field "operand" {
    names = ["optype"]
    has_arg = true
    type_role = "type"
  }
}
`,
			validate: func(t *testing.T, cfg *Config) {
				require.Len(t, cfg.Vocabularies, 1)
				vb := cfg.Vocabularies[0]
				assert.Equal(t, "operator", vb.Kind)
				require.Len(t, vb.Fields, 1)
				assert.Equal(t, "operand", vb.Fields[0].Name)
				assert.True(t, vb.Fields[0].HasArg)
			},
		},
		{
			name:     "yaml_basic",
			filename: "eqldoc.yaml",
			content: `
domain: eql
default_namespace: sys
sources:
  - "**/*.rst"
vocabularies:
  - kind: clause
    fields:
      - name: returntype
        names: [returntype]
        type_role: type
`,
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "sys", cfg.DefaultNamespace)
				assert.Equal(t, 79, cfg.SummaryMaxLength)
				assert.Equal(t, 1, cfg.Jobs)
				require.Len(t, cfg.Vocabularies, 1)
				assert.Equal(t, "type", cfg.Vocabularies[0].Fields[0].TypeRole)
			},
		},
		{
			name:     "defaults",
			filename: "eqldoc.yml",
			content:  `jobs: 2`,
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "eql", cfg.Domain)
				assert.Equal(t, "std", cfg.DefaultNamespace)
				assert.Equal(t, []string{"**/*.rst"}, cfg.Sources)
				assert.Equal(t, 2, cfg.Jobs)
			},
		},
		{
			name:     "yaml_unknown_field",
			filename: "eqldoc.yaml",
			content:  `colour: blue`,
			wantErr:  true,
		},
		{
			name:     "hcl_syntax_error",
			filename: "eqldoc.hcl",
			content:  `domain = `,
			wantErr:  true,
		},
		{
			name:     "unknown_kind",
			filename: "eqldoc.hcl",
			content: `
vocabulary "macro" {
  field "x" {
    names = ["x"]
  }
}
`,
			wantErr: true,
		},
		{
			name:     "unknown_role",
			filename: "eqldoc.hcl",
			content: `
vocabulary "function" {
  field "x" {
    names = ["x"]
    type_role = "nope"
  }
}
`,
			wantErr: true,
		},
		{
			name:     "duplicate_name",
			filename: "eqldoc.yaml",
			content: `
vocabularies:
  - kind: function
    fields:
      - name: a
        names: [x]
      - name: b
        names: [y]
        type_names: [x]
`,
			wantErr: true,
		},
		{
			name:     "negative_jobs",
			filename: "eqldoc.yaml",
			content:  `jobs: -1`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			p := "/project/" + tt.filename
			require.NoError(t, afero.WriteFile(fs, p, []byte(tt.content), 0o644))

			cfg, err := Load(fs, p)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestFind(t *testing.T) {
	fs := afero.NewMemMapFs()

	cfg, p, err := Find(fs, "/project")
	require.NoError(t, err)
	assert.Empty(t, p)
	assert.Equal(t, Default(), cfg)

	require.NoError(t, afero.WriteFile(fs, "/project/eqldoc.yaml", []byte("jobs: 3"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/project/eqldoc.hcl", []byte("jobs = 5"), 0o644))

	cfg, p, err = Find(fs, "/project")
	require.NoError(t, err)
	assert.Equal(t, "/project/eqldoc.hcl", p)
	assert.Equal(t, 5, cfg.Jobs)
}

func TestApply(t *testing.T) {
	cfg, err := Parse("eqldoc.hcl", []byte(`
domain = "edb"
summary_max_length = 40

vocabulary "keyword" {
  field "since" {
    label = "Since"
    names = ["since"]
  }
}
`))
	require.NoError(t, err)

	d, err := cfg.NewDomain()
	require.NoError(t, err)
	assert.Equal(t, "edb", d.Name)
	assert.Equal(t, 40, d.SummaryMaxLength)

	kw := d.Kinds["keyword"]
	require.NotNil(t, kw)
	spec, isType, ok := kw.Vocabulary.Lookup("since")
	require.True(t, ok)
	assert.False(t, isType)
	assert.Equal(t, "Since", spec.Label)

	// untouched kinds keep the built-in fields
	_, _, ok = d.Kinds["function"].Vocabulary.Lookup("param")
	assert.True(t, ok)
	assert.Equal(t, construct.Function, d.Kinds["function"].Kind)
}
