package signature

import (
	"strings"

	"gitlab.com/tozd/go/errors"
)

var (
	ErrTemplate = errors.New(`signature must match "NAME: SIGNATURE" template`)
	ErrInvalid  = errors.New("invalid signature")
)

// SplitNamed splits "PLUS: A + B" on the first colon. The id is lower-cased,
// the display signature is kept verbatim apart from surrounding whitespace.
func SplitNamed(sig string) (id, display string, err error) {
	left, right, ok := strings.Cut(sig, ":")
	if !ok {
		return "", "", errors.Errorf("%w: %q", ErrTemplate, sig)
	}

	id = strings.ToLower(strings.TrimSpace(left))
	display = strings.TrimSpace(right)
	if id == "" || display == "" {
		return "", "", errors.Errorf("%w: %q", ErrInvalid, sig)
	}

	return id, display, nil
}
