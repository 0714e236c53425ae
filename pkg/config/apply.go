package config

import (
	"strings"

	"github.com/walteh/eqldoc/pkg/construct"
	"github.com/walteh/eqldoc/pkg/domain"
	"github.com/walteh/eqldoc/pkg/fields"
	"gitlab.com/tozd/go/errors"
)

// Validate checks the values decoding cannot
func (cfg *Config) Validate() error {
	if strings.ContainsAny(cfg.Domain, ": \t") {
		return errors.Errorf("%w: domain %q must be a plain name", ErrInvalid, cfg.Domain)
	}
	if cfg.SummaryMaxLength < 0 {
		return errors.Errorf("%w: summary_max_length must not be negative", ErrInvalid)
	}
	if cfg.Jobs < 0 {
		return errors.Errorf("%w: jobs must not be negative", ErrInvalid)
	}
	if cfg.TabWidth < 0 {
		return errors.Errorf("%w: tab_width must not be negative", ErrInvalid)
	}

	seen := map[construct.Kind]bool{}
	for _, vb := range cfg.Vocabularies {
		kind, err := construct.ParseKind(vb.Kind)
		if err != nil {
			return errors.Errorf("%w: vocabulary: %s", ErrInvalid, err.Error())
		}
		if seen[kind] {
			return errors.Errorf("%w: vocabulary %q declared twice", ErrInvalid, vb.Kind)
		}
		seen[kind] = true

		if _, err := vb.vocabulary(); err != nil {
			return err
		}
	}
	return nil
}

func (vb *VocabularyBlock) vocabulary() (fields.Vocabulary, error) {
	names := map[string]string{}
	vocab := make(fields.Vocabulary, 0, len(vb.Fields))

	for _, fb := range vb.Fields {
		if len(fb.Names) == 0 {
			return nil, errors.Errorf("%w: field %q of %s has no names", ErrInvalid, fb.Name, vb.Kind)
		}
		for _, n := range append(append([]string{}, fb.Names...), fb.TypeNames...) {
			if other, ok := names[n]; ok {
				return nil, errors.Errorf("%w: field name %q of %s is used by both %q and %q", ErrInvalid, n, vb.Kind, other, fb.Name)
			}
			names[n] = fb.Name
		}

		spec := &fields.Spec{
			Name:      fb.Name,
			Label:     fb.Label,
			Names:     fb.Names,
			TypeNames: fb.TypeNames,
			HasArg:    fb.HasArg,
		}
		if spec.Label == "" {
			spec.Label = fb.Name
		}
		if fb.TypeRole != "" {
			role := construct.Role(fb.TypeRole)
			if _, err := construct.KindForRole(role); err != nil {
				return nil, errors.Errorf("%w: field %q of %s: %s", ErrInvalid, fb.Name, vb.Kind, err.Error())
			}
			spec.TypeRole = role
		}
		vocab = append(vocab, spec)
	}
	return vocab, nil
}

// NewDomain builds the directive domain this configuration describes
func (cfg *Config) NewDomain() (*domain.Domain, error) {
	d := domain.New()
	if err := cfg.Apply(d); err != nil {
		return nil, err
	}
	return d, nil
}

// Apply copies the domain settings and vocabulary overrides onto d
func (cfg *Config) Apply(d *domain.Domain) error {
	if cfg.Domain != "" {
		d.Name = cfg.Domain
	}
	if cfg.SummaryMaxLength > 0 {
		d.SummaryMaxLength = cfg.SummaryMaxLength
	}

	for _, vb := range cfg.Vocabularies {
		kind, err := construct.ParseKind(vb.Kind)
		if err != nil {
			return errors.Errorf("%w: vocabulary: %s", ErrInvalid, err.Error())
		}
		vocab, err := vb.vocabulary()
		if err != nil {
			return err
		}
		for _, ks := range d.Kinds {
			if ks.Kind == kind {
				ks.Vocabulary = vocab
			}
		}
	}
	return nil
}
