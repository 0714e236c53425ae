// Package config loads the eqldoc.hcl or eqldoc.yaml project file.
package config

import (
	"bytes"
	"os"
	"path"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// FileNames are looked up in this order by Find.
var FileNames = []string{"eqldoc.hcl", "eqldoc.yaml", "eqldoc.yml"}

var ErrInvalid = errors.New("invalid configuration")

// Config is the project configuration
type Config struct {
	// Domain is the prefix of directives and roles, "eql" by default
	Domain           string   `json:"domain,omitempty" hcl:"domain,optional" yaml:"domain,omitempty"`
	DefaultNamespace string   `json:"default_namespace,omitempty" hcl:"default_namespace,optional" yaml:"default_namespace,omitempty"`
	SummaryMaxLength int      `json:"summary_max_length,omitempty" hcl:"summary_max_length,optional" yaml:"summary_max_length,omitempty"`
	Sources          []string `json:"sources,omitempty" hcl:"sources,optional" yaml:"sources,omitempty"`
	Exclude          []string `json:"exclude,omitempty" hcl:"exclude,optional" yaml:"exclude,omitempty"`
	// Jobs bounds how many documents are processed at once
	Jobs int `json:"jobs,omitempty" hcl:"jobs,optional" yaml:"jobs,omitempty"`
	// TabWidth applies to sources .editorconfig says nothing about
	TabWidth int `json:"tab_width,omitempty" hcl:"tab_width,optional" yaml:"tab_width,omitempty"`

	Vocabularies []*VocabularyBlock `json:"vocabularies,omitempty" hcl:"vocabulary,block" yaml:"vocabularies,omitempty"`
}

// VocabularyBlock replaces the field vocabulary of one construct kind
type VocabularyBlock struct {
	Kind   string        `json:"kind" hcl:"kind,label" yaml:"kind"`
	Fields []*FieldBlock `json:"fields" hcl:"field,block" yaml:"fields"`
}

type FieldBlock struct {
	Name      string   `json:"name" hcl:"name,label" yaml:"name"`
	Label     string   `json:"label,omitempty" hcl:"label,optional" yaml:"label,omitempty"`
	Names     []string `json:"names" hcl:"names,attr" yaml:"names"`
	TypeNames []string `json:"type_names,omitempty" hcl:"type_names,optional" yaml:"type_names,omitempty"`
	HasArg    bool     `json:"has_arg,omitempty" hcl:"has_arg,optional" yaml:"has_arg,omitempty"`
	TypeRole  string   `json:"type_role,omitempty" hcl:"type_role,optional" yaml:"type_role,omitempty"`
}

// Default returns the configuration used when no file is found
func Default() *Config {
	cfg := &Config{}
	cfg.withDefaults()
	return cfg
}

func (cfg *Config) withDefaults() {
	if cfg.Domain == "" {
		cfg.Domain = "eql"
	}
	if cfg.DefaultNamespace == "" {
		cfg.DefaultNamespace = "std"
	}
	if cfg.SummaryMaxLength == 0 {
		cfg.SummaryMaxLength = 79
	}
	if len(cfg.Sources) == 0 {
		cfg.Sources = []string{"**/*.rst"}
	}
	if cfg.Jobs == 0 {
		cfg.Jobs = 1
	}
}

// Find loads the first config file present in dir, or the defaults
func Find(fs afero.Fs, dir string) (*Config, string, error) {
	for _, name := range FileNames {
		p := path.Join(dir, name)
		ok, err := afero.Exists(fs, p)
		if err != nil {
			return nil, "", errors.Errorf("checking %s: %w", p, err)
		}
		if ok {
			cfg, err := Load(fs, p)
			return cfg, p, err
		}
	}
	return Default(), "", nil
}

// Load reads a config file (supports YAML and HCL)
func Load(fs afero.Fs, p string) (*Config, error) {
	data, err := afero.ReadFile(fs, p)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(p, data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes data, picking the format from the file name
func Parse(filename string, data []byte) (*Config, error) {
	var cfg Config

	if strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml") {
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, errors.Errorf("parsing YAML: %w", err)
		}
	} else {
		parser := hclparse.NewParser()
		hclFile, diags := parser.ParseHCL(data, filename)
		if diags.HasErrors() {
			return nil, errors.Errorf("parsing HCL: %s", diags.Error())
		}

		diags = gohcl.DecodeBody(hclFile.Body, evalContext(), &cfg)
		if diags.HasErrors() {
			return nil, errors.Errorf("decoding HCL: %s", diags.Error())
		}
	}

	cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// evalContext exposes the environment as env.NAME
func evalContext() *hcl.EvalContext {
	env := map[string]cty.Value{}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && hclIdent(k) {
			env[k] = cty.StringVal(v)
		}
	}

	vars := map[string]cty.Value{}
	if len(env) > 0 {
		vars["env"] = cty.ObjectVal(env)
	} else {
		vars["env"] = cty.EmptyObjectVal
	}
	return &hcl.EvalContext{Variables: vars}
}

func hclIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r == '-' || r >= '0' && r <= '9'):
		default:
			return false
		}
	}
	return true
}
