package rst

import (
	"regexp"
	"strings"

	"github.com/walteh/eqldoc/pkg/position"
)

// Role is an inline role such as :eql:type:`array<int>`.
type Role struct {
	Location position.Location
	Domain   string
	Name     string
	// Text is the content between the backticks, whitespace collapsed
	Text     string
	Title    string
	Target   string
	Explicit bool
}

// FullName is "domain:name", or just the name for roles without a domain.
func (r *Role) FullName() string {
	if r.Domain == "" {
		return r.Name
	}
	return r.Domain + ":" + r.Name
}

var (
	roleRe          = regexp.MustCompile(":(?:([\\w-]+):)?([\\w-]+):`((?:\\\\.|[^`\\\\])+)`")
	literalRe       = regexp.MustCompile("``([^`]+)``")
	explicitTitleRe = regexp.MustCompile(`(?s)^(.+?)\s+<(.+)>$`)
	spaceRe         = regexp.MustCompile(`\s+`)
)

// escaped angle brackets are masked so they never delimit a target
var (
	maskBrackets   = strings.NewReplacer(`\<`, "\x00", `\>`, "\x01")
	unmaskBrackets = strings.NewReplacer("\x00", "<", "\x01", ">")
)

// SplitTitle splits "title <target>". The "<" must follow whitespace, so
// "array<int>" is a plain target, and the target may itself hold brackets as
// in "array of \<int\> <array<int>>". Escaped angle brackets are unescaped.
func SplitTitle(text string) (title, target string, explicit bool) {
	text = maskBrackets.Replace(CollapseSpace(text))
	if m := explicitTitleRe.FindStringSubmatch(text); m != nil {
		return unescape(m[1]), unescape(m[2]), true
	}
	text = unescape(text)
	return text, text, false
}

func unescape(s string) string {
	s = unmaskBrackets.Replace(s)
	return strings.NewReplacer(`\<`, "<", `\>`, ">", "\\`", "`", `\\`, `\`).Replace(s)
}

// CollapseSpace trims s and replaces every whitespace run with one space.
func CollapseSpace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// findRoles scans raw, which starts at loc, for inline roles.
func findRoles(raw string, loc position.Location) []*Role {
	var roles []*Role
	for _, m := range roleRe.FindAllStringSubmatchIndex(raw, -1) {
		r := &Role{
			Location: loc.Advance(raw, position.NewBasicPosition(raw, m[0])),
			Name:     raw[m[4]:m[5]],
			Text:     CollapseSpace(raw[m[6]:m[7]]),
		}
		if m[2] >= 0 {
			r.Domain = raw[m[2]:m[3]]
		}
		r.Title, r.Target, r.Explicit = SplitTitle(r.Text)
		roles = append(roles, r)
	}
	return roles
}

// Flatten renders inline markup as plain text: roles become their titles and
// literal markers are dropped. Whitespace is collapsed.
func Flatten(text string) string {
	text = roleRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := roleRe.FindStringSubmatch(m)
		title, _, _ := SplitTitle(sub[3])
		return title
	})
	text = literalRe.ReplaceAllString(text, "$1")
	return CollapseSpace(text)
}
