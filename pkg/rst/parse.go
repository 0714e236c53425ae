package rst

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/walteh/eqldoc/pkg/position"
	"gitlab.com/tozd/go/errors"
)

var ErrInvalidEncoding = errors.New("source is not valid UTF-8")

// DefaultTabWidth matches docutils.
const DefaultTabWidth = 8

type Options struct {
	TabWidth int
	// ContentOnly reports directives that take neither arguments nor options,
	// their body starts on the line after the directive marker.
	ContentOnly func(domain, name string) bool
}

var (
	directiveRe = regexp.MustCompile(`^\.\.\s+([\w-]+(?::[\w-]+)?)::(?:\s+(.*))?$`)
	commentRe   = regexp.MustCompile(`^\.\.(?:\s|$)`)
	optionRe    = regexp.MustCompile(`^:([\w-]+):(?:\s+(.*))?$`)
	fieldRe     = regexp.MustCompile(`^:([^:\s\\](?:\\.|[^:\\])*):(?:\s+(.*))?$`)
	adornRe     = regexp.MustCompile(`^[=\-~^"'` + "`" + `#*+<>_:.]{2,}\s*$`)
)

type line struct {
	num    int
	indent int
	text   string
	full   string
}

func (l line) blank() bool {
	return l.indent < 0
}

type parser struct {
	doc  *Document
	opts Options
}

// Parse reads src into a document tree. Malformed markup never fails the parse,
// it degrades to paragraphs the way docutils reports it as plain text.
func Parse(ctx context.Context, name, file string, src []byte, opts Options) (*Document, error) {
	if !utf8.Valid(src) {
		return nil, errors.Errorf("%w", ErrInvalidEncoding)
	}

	width := opts.TabWidth
	if width <= 0 {
		width = DefaultTabWidth
	}

	text := strings.ReplaceAll(string(src), "\r\n", "\n")
	raw := strings.Split(text, "\n")
	lines := make([]line, len(raw))
	for i, r := range raw {
		full := strings.TrimRight(position.ExpandTabs(r, width), " \t")
		trimmed := strings.TrimLeft(full, " ")
		l := line{num: i + 1, text: trimmed, full: full, indent: len(full) - len(trimmed)}
		if trimmed == "" {
			l.indent = -1
		}
		lines[i] = l
	}

	p := &parser{doc: &Document{Name: name, File: file}, opts: opts}
	p.doc.Children = p.parseBlock(lines)

	zerolog.Ctx(ctx).Trace().Str("document", name).Int("lines", len(lines)).Int("nodes", len(p.doc.Children)).Msg("parsed document")

	return p.doc, nil
}

func (p *parser) loc(l line) position.Location {
	return position.Location{
		Document: p.doc.Name,
		File:     p.doc.File,
		Line:     l.num,
		Column:   l.indent + 1,
	}
}

// indented returns the end of the run starting at start whose lines are blank or
// indented deeper than base. Trailing blank lines are not part of the run.
func indented(lines []line, start, base int) int {
	end := start
	for end < len(lines) && (lines[end].blank() || lines[end].indent > base) {
		end++
	}
	for end > start && lines[end-1].blank() {
		end--
	}
	return end
}

func minIndent(lines []line) int {
	base := -1
	for _, l := range lines {
		if l.blank() {
			continue
		}
		if base < 0 || l.indent < base {
			base = l.indent
		}
	}
	return base
}

func (p *parser) parseBlock(lines []line) []Node {
	var nodes []Node
	base := minIndent(lines)

	i := 0
	for i < len(lines) {
		l := lines[i]
		if l.blank() {
			i++
			continue
		}

		if l.indent > base {
			end := indented(lines, i, base)
			nodes = append(nodes, &BlockQuote{Location: p.loc(l), Children: p.parseBlock(lines[i:end])})
			i = end
			continue
		}

		if m := directiveRe.FindStringSubmatch(l.text); m != nil {
			var d *Directive
			d, i = p.parseDirective(lines, i, base, m)
			nodes = append(nodes, d)
			continue
		}

		if commentRe.MatchString(l.text) {
			end := indented(lines, i+1, base)
			texts := []string{strings.TrimSpace(strings.TrimPrefix(l.text, ".."))}
			for _, c := range lines[i+1 : end] {
				texts = append(texts, c.text)
			}
			nodes = append(nodes, &Comment{Location: p.loc(l), Text: strings.TrimSpace(strings.Join(texts, "\n"))})
			i = end
			continue
		}

		if fieldRe.MatchString(l.text) {
			var fl *FieldList
			fl, i = p.parseFieldList(lines, i, base)
			nodes = append(nodes, fl)
			continue
		}

		if t, next, ok := p.parseTitle(lines, i, base); ok {
			if t != nil {
				nodes = append(nodes, t)
			}
			i = next
			continue
		}

		var ns []Node
		ns, i = p.parseParagraph(lines, i, base)
		nodes = append(nodes, ns...)
	}

	return nodes
}

func (p *parser) parseDirective(lines []line, i, base int, m []string) (*Directive, int) {
	l := lines[i]
	d := &Directive{
		Location: p.loc(l),
		Argument: strings.TrimSpace(m[2]),
		Options:  map[string]string{},
	}
	if domain, name, ok := strings.Cut(m[1], ":"); ok {
		d.Domain, d.Name = domain, name
	} else {
		d.Name = m[1]
	}

	end := indented(lines, i+1, base)
	body := lines[i+1 : end]

	j := 0
	if p.opts.ContentOnly == nil || !p.opts.ContentOnly(d.Domain, d.Name) {
		j = p.parseHead(d, body)
	}
	for j < len(body) && body[j].blank() {
		j++
	}

	content := body[j:]
	if len(content) > 0 {
		d.ContentLocation = p.loc(content[0])
		indent := minIndent(content)
		for _, c := range content {
			if c.blank() {
				d.Raw = append(d.Raw, "")
				continue
			}
			d.Raw = append(d.Raw, strings.Repeat(" ", c.indent-indent)+c.text)
		}
		d.Body = p.parseBlock(content)
	}

	return d, end
}

// parseHead reads the argument continuation and option lines at the top of a
// directive body and returns where they end.
func (p *parser) parseHead(d *Directive, body []line) int {
	j := 0
	// the argument continues until the first option or blank line
	for j < len(body) && !body[j].blank() && !optionRe.MatchString(body[j].text) {
		d.Argument = strings.TrimSpace(d.Argument + " " + body[j].text)
		j++
	}
	for j < len(body) && !body[j].blank() {
		om := optionRe.FindStringSubmatch(body[j].text)
		if om == nil {
			break
		}
		d.Options[om[1]] = strings.TrimSpace(om[2])
		d.OptionOrder = append(d.OptionOrder, om[1])
		j++
	}
	return j
}

func (p *parser) parseFieldList(lines []line, i, base int) (*FieldList, int) {
	fl := &FieldList{Location: p.loc(lines[i])}

	for i < len(lines) {
		l := lines[i]
		idx := fieldRe.FindStringSubmatchIndex(l.text)
		if l.blank() || l.indent != base || idx == nil {
			break
		}

		marker := strings.Fields(l.text[idx[2]:idx[3]])
		f := &Field{Location: p.loc(l), Name: marker[0], Arg: strings.Join(marker[1:], " ")}

		end := indented(lines, i+1, base)
		raw := ""
		bodyLoc := p.loc(l)
		if idx[4] >= 0 {
			raw = l.text[idx[4]:idx[5]]
			bodyLoc.Column += idx[4]
		} else if end > i+1 {
			bodyLoc = p.loc(lines[i+1])
		}
		texts := []string{}
		if raw != "" {
			texts = append(texts, raw)
		}
		for k, c := range lines[i+1 : end] {
			if raw == "" && k == 0 {
				raw = c.text
			} else {
				raw += "\n" + c.full
			}
			texts = append(texts, c.text)
		}
		f.Body = strings.TrimSpace(strings.Join(texts, "\n"))
		f.Roles = findRoles(raw, bodyLoc)
		fl.Fields = append(fl.Fields, f)

		i = end
		next := i
		for next < len(lines) && lines[next].blank() {
			next++
		}
		if next < len(lines) && lines[next].indent == base && fieldRe.MatchString(lines[next].text) {
			i = next
			continue
		}
		break
	}

	return fl, i
}

// adornment reports whether t is a run of one repeated punctuation character.
func adornment(t string) bool {
	t = strings.TrimSpace(t)
	return adornRe.MatchString(t) && strings.Trim(t, t[:1]) == ""
}

// parseTitle recognizes underlined and over-and-underlined section titles and
// transitions. A transition reports ok with a nil title.
func (p *parser) parseTitle(lines []line, i, base int) (*Title, int, bool) {
	l := lines[i]
	at := func(k int) (line, bool) {
		if k < len(lines) && !lines[k].blank() && lines[k].indent == base {
			return lines[k], true
		}
		return line{}, false
	}

	if adornment(l.text) {
		// the text of an over-and-underlined title may be inset
		if i+1 < len(lines) && !lines[i+1].blank() && lines[i+1].indent >= base {
			txt := lines[i+1]
			if under, ok := at(i + 2); ok && under.text == l.text {
				title := strings.TrimSpace(txt.text)
				return &Title{Location: p.loc(txt), Text: title, Roles: findRoles(title, p.loc(txt))}, i + 3, true
			}
		}
		prevBlank := i == 0 || lines[i-1].blank()
		nextBlank := i+1 >= len(lines) || lines[i+1].blank()
		if prevBlank && nextBlank && utf8.RuneCountInString(l.text) >= 4 {
			return nil, i + 1, true
		}
		return nil, i, false
	}

	under, ok := at(i + 1)
	if !ok || !adornment(under.text) {
		return nil, i, false
	}
	if n := utf8.RuneCountInString(under.text); n < 3 && n < utf8.RuneCountInString(l.text) {
		return nil, i, false
	}
	return &Title{Location: p.loc(l), Text: l.text, Roles: findRoles(l.text, p.loc(l))}, i + 2, true
}

func (p *parser) parseParagraph(lines []line, i, base int) ([]Node, int) {
	first := lines[i]
	end := i
	for end < len(lines) && !lines[end].blank() {
		end++
	}

	texts := make([]string, 0, end-i)
	raw := first.text
	for k, l := range lines[i:end] {
		texts = append(texts, l.text)
		if k > 0 {
			raw += "\n" + l.full
		}
	}

	var nodes []Node
	literal := false
	last := texts[len(texts)-1]
	if strings.HasSuffix(last, "::") {
		literal = true
		switch {
		case last == "::":
			texts = texts[:len(texts)-1]
		case strings.HasSuffix(last, " ::"):
			texts[len(texts)-1] = strings.TrimSuffix(last, " ::")
		default:
			texts[len(texts)-1] = strings.TrimSuffix(last, ":")
		}
	}

	if len(texts) > 0 {
		nodes = append(nodes, &Paragraph{
			Location: p.loc(first),
			Text:     strings.Join(texts, "\n"),
			Roles:    findRoles(raw, p.loc(first)),
		})
	}

	if !literal {
		return nodes, end
	}

	next := end
	for next < len(lines) && lines[next].blank() {
		next++
	}
	if next >= len(lines) || lines[next].indent <= base {
		return nodes, end
	}

	litEnd := indented(lines, next, base)
	block := lines[next:litEnd]
	indent := minIndent(block)
	var sb strings.Builder
	for k, l := range block {
		if k > 0 {
			sb.WriteString("\n")
		}
		if !l.blank() {
			sb.WriteString(strings.Repeat(" ", l.indent-indent) + l.text)
		}
	}
	nodes = append(nodes, &LiteralBlock{Location: p.loc(block[0]), Text: sb.String()})

	return nodes, litEnd
}
