package fields

import (
	"fmt"
	"slices"

	"github.com/walteh/eqldoc/pkg/rst"
	"gitlab.com/tozd/go/errors"
)

var (
	ErrUnknownField       = errors.New("found unknown field")
	ErrFieldsAfterContent = errors.New("fields must be specified before all other content")
)

// FieldError reports a field the vocabulary does not accept.
type FieldError struct {
	Field  *rst.Field
	Reason string
}

func (e *FieldError) Error() string {
	msg := fmt.Sprintf("found unknown field '%s'", e.Field.Name)
	if e.Reason != "" {
		msg += "\n\nPossible reason: " + e.Reason
	}
	return msg
}

func (e *FieldError) Is(target error) bool {
	return target == ErrUnknownField
}

// Leading returns the field list a directive body starts with, if any.
func Leading(body []rst.Node) *rst.FieldList {
	if len(body) == 0 {
		return nil
	}
	fl, _ := body[0].(*rst.FieldList)
	return fl
}

// Validate checks that only a leading field list is present and that every one
// of its fields is known and has an argument exactly when its spec wants one.
func Validate(vocab Vocabulary, body []rst.Node) error {
	for _, n := range body[min(1, len(body)):] {
		if _, ok := n.(*rst.FieldList); ok {
			return errors.Errorf("%w", ErrFieldsAfterContent)
		}
	}

	fl := Leading(body)
	if fl == nil {
		return nil
	}

	for _, f := range fl.Fields {
		spec, _, ok := vocab.Lookup(f.Name)
		if !ok {
			spec, ok = vocab.Canonical(f.Name)
		}
		switch {
		case !ok:
			return &FieldError{Field: f, Reason: fmt.Sprintf(
				"field '%s' is not supported by the directive; is there a typo?", f.Name)}
		case f.Arg != "" && !spec.HasArg:
			return &FieldError{Field: f, Reason: fmt.Sprintf(
				"field '%s' is specified with an argument '%s', but the directive expects it without one.", f.Name, f.Arg)}
		case f.Arg == "" && spec.HasArg:
			return &FieldError{Field: f, Reason: fmt.Sprintf(
				"field '%s' expects an argument but did not receive it; check your source.", f.Name)}
		case !slices.Contains(spec.Names, f.Name) && !slices.Contains(spec.TypeNames, f.Name):
			// the canonical name is not a source name, e.g. :parameter: for :param:
			return &FieldError{Field: f, Reason: fmt.Sprintf(
				"field '%s' is not supported by the directive; is there a typo?", f.Name)}
		}
	}

	return nil
}
