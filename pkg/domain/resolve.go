package domain

import (
	"context"

	"github.com/walteh/eqldoc/pkg/construct"
	"github.com/walteh/eqldoc/pkg/xref"
)

// Resolve links the references of doc, explicit ones first. Type segments of
// fields get their Link set when they resolve.
func (d *Domain) Resolve(ctx context.Context, doc *Document, resolver *xref.Resolver) ([]*construct.Link, error) {
	var links []*construct.Link

	for _, ref := range doc.References {
		link, err := resolver.Resolve(ctx, ref)
		if err != nil {
			return nil, NewError(ref.Location, ":"+d.Name+":"+string(ref.Role)+":", err)
		}
		links = append(links, link)
	}

	for _, decl := range doc.Declarations {
		for _, f := range decl.Fields {
			for _, seg := range f.Segments {
				if seg.Ref == nil {
					continue
				}
				link, err := resolver.Resolve(ctx, seg.Ref)
				if err != nil {
					loc := seg.Ref.Location
					if loc.IsZero() {
						loc = decl.Location
					}
					return nil, NewError(loc, d.Name+":"+decl.Kind.String(), err)
				}
				seg.Link = link
				if link != nil {
					links = append(links, link)
				}
			}
		}
	}

	return links, nil
}
