// Package summary extracts the one-line description every declaration starts with.
package summary

import (
	"fmt"

	"github.com/apparentlymart/go-textseg/v13/textseg"
	"github.com/walteh/eqldoc/pkg/rst"
	"gitlab.com/tozd/go/errors"
)

// DefaultMaxLength keeps summaries shorter than 80 characters.
const DefaultMaxLength = 79

var (
	ErrMissingDescription = errors.New("the directive must include a description")
	ErrNotParagraph       = errors.New("there must be a short text paragraph after directive fields")
	ErrTooLong            = errors.New("summary is too long")
)

// LengthError reports a summary over the limit.
type LengthError struct {
	Text   string
	Length int
	Max    int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("first paragraph is expected to be shorter than %d characters, got %d: %q", e.Max+1, e.Length, e.Text)
}

func (e *LengthError) Is(target error) bool {
	return target == ErrTooLong
}

// Extract returns the flattened first paragraph after the leading field list.
// Length is counted in grapheme clusters. A max of zero uses DefaultMaxLength.
func Extract(body []rst.Node, max int) (string, error) {
	if max <= 0 {
		max = DefaultMaxLength
	}

	var first rst.Node
	for _, n := range body {
		if _, ok := n.(*rst.FieldList); ok && first == nil {
			continue
		}
		first = n
		break
	}

	if first == nil {
		return "", errors.Errorf("%w", ErrMissingDescription)
	}

	para, ok := first.(*rst.Paragraph)
	if !ok {
		return "", errors.Errorf("%w", ErrNotParagraph)
	}

	text := rst.Flatten(para.Text)
	if text == "" {
		return "", errors.Errorf("%w", ErrMissingDescription)
	}

	n, err := Length(text)
	if err != nil {
		return "", err
	}
	if n > max {
		return "", &LengthError{Text: text, Length: n, Max: max}
	}

	return text, nil
}

// Length counts the user-perceived characters of s.
func Length(s string) (int, error) {
	n, err := textseg.TokenCount([]byte(s), textseg.ScanGraphemeClusters)
	if err != nil {
		return 0, errors.Errorf("counting characters: %w", err)
	}
	return n, nil
}
