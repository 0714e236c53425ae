package build

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/eqldoc/pkg/config"
	"github.com/walteh/eqldoc/pkg/inventory"
	"gitlab.com/tozd/go/errors"
)

// ProjectOptions are the command line overrides of a project.
type ProjectOptions struct {
	// ConfigPath is used instead of looking up eqldoc.hcl / eqldoc.yaml in the root
	ConfigPath string
	// Imports are inventory files whose objects can be referenced
	Imports []string
	// Jobs overrides the configured parallelism when positive
	Jobs int
}

// OpenProject loads the configuration of root and creates a session with the
// requested inventories imported.
func OpenProject(ctx context.Context, fs afero.Fs, root string, opts ProjectOptions) (*Session, error) {
	logger := zerolog.Ctx(ctx)

	var (
		cfg  *config.Config
		path = opts.ConfigPath
		err  error
	)
	if path != "" {
		cfg, err = config.Load(fs, path)
	} else {
		cfg, path, err = config.Find(fs, root)
	}
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}
	if opts.Jobs > 0 {
		cfg.Jobs = opts.Jobs
	}

	logger.Debug().Str("config", path).Int("jobs", cfg.Jobs).Strs("sources", cfg.Sources).Msg("loaded config")

	s, err := NewSession(fs, cfg)
	if err != nil {
		return nil, err
	}

	for _, p := range opts.Imports {
		inv, err := inventory.Load(fs, p, cfg.Domain)
		if err != nil {
			return nil, errors.Errorf("loading inventory %s: %w", p, err)
		}
		if err := s.Import(ctx, inv); err != nil {
			return nil, err
		}
	}

	return s, nil
}
