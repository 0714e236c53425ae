// Package build drives a documentation build: it discovers sources, declares
// their constructs in a shared registry and resolves every reference once all
// documents are declared.
package build

import (
	"context"
	"path"
	"slices"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/eqldoc/pkg/config"
	"github.com/walteh/eqldoc/pkg/construct"
	"github.com/walteh/eqldoc/pkg/domain"
	"github.com/walteh/eqldoc/pkg/finder"
	"github.com/walteh/eqldoc/pkg/inventory"
	"github.com/walteh/eqldoc/pkg/position"
	"github.com/walteh/eqldoc/pkg/registry"
	"github.com/walteh/eqldoc/pkg/rst"
	"github.com/walteh/eqldoc/pkg/xref"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

var (
	ErrUnknownDocument = errors.New("document is not part of the build")
	ErrImported        = errors.New("document belongs to an imported inventory")
)

// Session holds the state of one build. Build, Update and Import must not be
// called concurrently.
type Session struct {
	ID       string
	Registry *registry.Registry

	fs     afero.Fs
	cfg    *config.Config
	domain *domain.Domain
	finder finder.SourceFinder

	root     string
	sources  map[string]*finder.Source
	docs     map[string]*domain.Document
	links    map[string][]*construct.Link
	failed   map[string]error
	imported map[string]bool
}

// Result is the outcome of a build. Err aggregates every document failure;
// the documents in Documents are the ones that built cleanly.
type Result struct {
	SessionID string
	Documents []*domain.Document
	Links     []*construct.Link
	Failed    []string
	Err       error
}

func NewSession(fs afero.Fs, cfg *config.Config) (*Session, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	d, err := cfg.NewDomain()
	if err != nil {
		return nil, err
	}

	return &Session{
		ID:       uuid.NewString(),
		Registry: registry.New(),
		fs:       fs,
		cfg:      cfg,
		domain:   d,
		finder:   finder.NewDefaultFinder(fs, cfg.Sources, cfg.Exclude),
		sources:  map[string]*finder.Source{},
		docs:     map[string]*domain.Document{},
		links:    map[string][]*construct.Link{},
		failed:   map[string]error{},
		imported: map[string]bool{},
	}, nil
}

// WithFinder replaces the source finder.
func (s *Session) WithFinder(f finder.SourceFinder) *Session {
	s.finder = f
	return s
}

func (s *Session) Domain() *domain.Domain {
	return s.domain
}

func (s *Session) resolver() *xref.Resolver {
	return xref.New(s.Registry, s.domain.Name, s.cfg.DefaultNamespace)
}

func (s *Session) logger(ctx context.Context) context.Context {
	l := zerolog.Ctx(ctx).With().Str("session", s.ID).Logger()
	return l.WithContext(ctx)
}

// Import merges the entries of an inventory built elsewhere. Imported names
// can be referenced but not redeclared.
func (s *Session) Import(ctx context.Context, inv *inventory.Inventory) error {
	reg, err := inv.Registry()
	if err != nil {
		return err
	}

	docs := inv.Documents()
	for _, doc := range docs {
		if _, local := s.docs[doc]; local {
			return errors.Errorf("importing %s: %w: %s", inv.Project, registry.ErrDuplicate, doc)
		}
	}

	var merr error
	for e := range reg.All() {
		if existing, ok := s.Registry.Lookup(e.Name); ok && !slices.Contains(docs, existing.Document) {
			merr = multierror.Append(merr, &registry.DuplicateError{Entry: e, Existing: existing})
		}
	}
	if merr != nil {
		return errors.Errorf("importing %s: %w", inv.Project, merr)
	}

	s.Registry.Merge(reg, docs)
	for _, doc := range docs {
		s.imported[doc] = true
	}

	zerolog.Ctx(ctx).Debug().Str("session", s.ID).Str("project", inv.Project).Int("entries", len(inv.Entries)).Msg("imported inventory")
	return nil
}

// Inventory snapshots the registry, imported entries excluded.
func (s *Session) Inventory(project string) *inventory.Inventory {
	inv := &inventory.Inventory{Version: inventory.Version, Domain: s.domain.Name, Project: project, Entries: []registry.Entry{}}
	for e := range s.Registry.All() {
		if !s.imported[e.Document] {
			inv.Entries = append(inv.Entries, e)
		}
	}
	return inv
}

// Build processes every source under root. The returned error reports a
// failure to discover sources; document failures are in Result.Err.
func (s *Session) Build(ctx context.Context, root string) (*Result, error) {
	ctx = s.logger(ctx)
	logger := zerolog.Ctx(ctx)

	sources, err := s.finder.FindSources(ctx, root)
	if err != nil {
		return nil, errors.Errorf("finding sources: %w", err)
	}

	for doc := range s.docs {
		s.Registry.UnregisterDocument(doc)
	}
	s.root = root
	s.sources = map[string]*finder.Source{}
	s.docs = map[string]*domain.Document{}
	s.links = map[string][]*construct.Link{}
	s.failed = map[string]error{}

	for _, src := range sources {
		s.sources[src.Document] = src
	}

	if s.cfg.Jobs <= 1 {
		s.declareSequential(ctx, sources)
	} else if err := s.declareParallel(ctx, sources); err != nil {
		return nil, err
	}

	if err := s.resolve(ctx, s.names()); err != nil {
		return nil, err
	}

	res := s.result()
	logger.Info().
		Int("documents", len(res.Documents)).
		Int("failed", len(res.Failed)).
		Int("objects", s.Registry.Len()).
		Msg("build finished")

	return res, nil
}

// Update rebuilds one document from new content and re-resolves the documents
// that depend on it.
func (s *Session) Update(ctx context.Context, docname string, content []byte) (*Result, error) {
	ctx = s.logger(ctx)

	if s.imported[docname] {
		return nil, errors.Errorf("%w: %s", ErrImported, docname)
	}
	src, ok := s.sources[docname]
	if !ok {
		return nil, errors.Errorf("%w: %s", ErrUnknownDocument, docname)
	}

	affected := s.dependents(docname)

	updated := *src
	updated.Content = content
	s.sources[docname] = &updated

	s.Registry.UnregisterDocument(docname)
	delete(s.docs, docname)
	delete(s.failed, docname)
	delete(s.links, docname)

	s.declareOne(ctx, &updated)

	// documents dropped for unresolved references are declared again
	for _, name := range affected {
		if _, ok := s.docs[name]; ok || name == docname {
			continue
		}
		delete(s.failed, name)
		s.declareOne(ctx, s.sources[name])
	}

	if err := s.resolve(ctx, affected); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().Str("document", docname).Strs("resolved", affected).Msg("updated document")
	return s.result(), nil
}

// dependents lists docname and every document whose links point into it or
// whose resolution failed, those may resolve now.
func (s *Session) dependents(docname string) []string {
	out := []string{docname}
	for name, links := range s.links {
		if name == docname {
			continue
		}
		if slices.ContainsFunc(links, func(l *construct.Link) bool { return l.Document == docname }) {
			out = append(out, name)
		}
	}
	for name, err := range s.failed {
		if name != docname && errors.Is(err, xref.ErrUnresolved) {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func (s *Session) file(src *finder.Source) string {
	return path.Join(s.root, src.Path)
}

func (s *Session) parse(ctx context.Context, src *finder.Source) (*rst.Document, error) {
	width := src.TabWidth
	if width == 0 {
		width = s.cfg.TabWidth
	}
	tree, err := rst.Parse(ctx, src.Document, s.file(src), src.Content, rst.Options{TabWidth: width, ContentOnly: s.domain.ContentOnly})
	if err != nil {
		return nil, domain.NewError(position.Location{Document: src.Document, File: s.file(src)}, "", err)
	}
	return tree, nil
}

func (s *Session) declareSequential(ctx context.Context, sources []*finder.Source) {
	for _, src := range sources {
		s.declareOne(ctx, src)
	}
}

func (s *Session) declareOne(ctx context.Context, src *finder.Source) {
	tree, err := s.parse(ctx, src)
	if err != nil {
		s.fail(ctx, src.Document, err)
		return
	}

	doc, err := s.domain.Process(ctx, s.Registry, tree)
	if err != nil {
		s.Registry.UnregisterDocument(src.Document)
		s.fail(ctx, src.Document, err)
		return
	}
	s.docs[src.Document] = doc
}

type partial struct {
	doc *domain.Document
	reg *registry.Registry
	err error
}

// declareParallel processes each document against its own registry, then
// merges the registries in source order. A document redeclaring a name an
// earlier document already merged fails whole, so the first declaration wins
// as it does in a sequential build.
func (s *Session) declareParallel(ctx context.Context, sources []*finder.Source) error {
	parts := make([]partial, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Jobs)
	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tree, err := s.parse(gctx, src)
			if err != nil {
				parts[i] = partial{err: err}
				return nil
			}
			reg := registry.New()
			doc, err := s.domain.Process(gctx, reg, tree)
			parts[i] = partial{doc: doc, reg: reg, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Errorf("declaring documents: %w", err)
	}

	for i, src := range sources {
		p := parts[i]
		if p.err != nil {
			s.fail(ctx, src.Document, p.err)
			continue
		}
		if err := s.conflicts(p.doc, p.reg); err != nil {
			s.Registry.UnregisterDocument(src.Document)
			s.fail(ctx, src.Document, err)
			continue
		}
		s.Registry.Merge(p.reg, []string{src.Document})
		s.docs[src.Document] = p.doc
	}
	return nil
}

// conflicts reports, at its declaration site, every name of doc that another
// document already owns.
func (s *Session) conflicts(doc *domain.Document, reg *registry.Registry) error {
	var merr error
	for _, decl := range doc.Declarations {
		e, ok := reg.Lookup(decl.Name)
		if !ok {
			continue
		}
		existing, ok := s.Registry.Lookup(decl.Name)
		if !ok || existing.Document == doc.Name {
			continue
		}
		dup := &registry.DuplicateError{Entry: e, Existing: existing}
		merr = multierror.Append(merr, domain.NewError(decl.Location, s.domain.Name+":"+decl.Kind.String(), dup))
	}
	return merr
}

// resolve links the named documents in parallel. The registry is only read.
func (s *Session) resolve(ctx context.Context, names []string) error {
	resolver := s.resolver()

	type outcome struct {
		links []*construct.Link
		err   error
	}
	outcomes := make([]outcome, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.cfg.Jobs, 1))
	for i, name := range names {
		doc, ok := s.docs[name]
		if !ok {
			continue
		}
		g.Go(func() error {
			links, err := s.domain.Resolve(gctx, doc, resolver)
			outcomes[i] = outcome{links: links, err: err}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Errorf("resolving references: %w", err)
	}

	var dropped []string
	for i, name := range names {
		if _, ok := s.docs[name]; !ok {
			continue
		}
		if outcomes[i].err != nil {
			s.fail(ctx, name, outcomes[i].err)
			dropped = append(dropped, name)
			continue
		}
		s.links[name] = outcomes[i].links
		delete(s.failed, name)
	}

	// entries of documents that failed to resolve leave only after every
	// document has been resolved against the same registry
	for _, name := range dropped {
		s.Registry.UnregisterDocument(name)
		delete(s.docs, name)
		delete(s.links, name)
	}
	return nil
}

func (s *Session) fail(ctx context.Context, doc string, err error) {
	zerolog.Ctx(ctx).Debug().Err(err).Str("document", doc).Msg("document failed")
	s.failed[doc] = err
}

func (s *Session) names() []string {
	names := make([]string, 0, len(s.docs))
	for name := range s.docs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (s *Session) result() *Result {
	res := &Result{SessionID: s.ID}

	for _, name := range s.names() {
		res.Documents = append(res.Documents, s.docs[name])
		res.Links = append(res.Links, s.links[name]...)
	}

	for name := range s.failed {
		res.Failed = append(res.Failed, name)
	}
	slices.Sort(res.Failed)

	var merr *multierror.Error
	for _, name := range res.Failed {
		merr = multierror.Append(merr, s.failed[name])
	}
	res.Err = merr.ErrorOrNil()

	return res
}
