package rdf

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	entityDecl = regexp.MustCompile(`<!ENTITY\s+([^\s%]+)\s+(?:"([^"]*)"|'([^']*)')\s*>`)
	entityRef  = regexp.MustCompile(`&[A-Za-z_][A-Za-z0-9._-]*;`)
)

// ErrNoRoot is returned for documents without a root element.
var ErrNoRoot = errors.New("rdf: document has no root element")

// Option configures Decode.
type Option func(*decoder)

// WithBlankPrefix sets the prefix of generated blank node identifiers. Callers
// merging several documents into one graph give each document its own prefix
// so that blank nodes never collide.
func WithBlankPrefix(prefix string) Option {
	return func(d *decoder) {
		d.blankPrefix = prefix
	}
}

type scope struct {
	base string
	lang string
}

type decoder struct {
	xd          *xml.Decoder
	blankPrefix string
	seq         int
	triples     []Triple
}

// Decode reads an RDF/XML document and returns its triples in document order.
// base resolves relative IRIs when the document carries no xml:base.
func Decode(r io.Reader, base string, opts ...Option) ([]Triple, error) {
	d := &decoder{
		xd:          xml.NewDecoder(r),
		blankPrefix: "b",
	}
	for _, opt := range opts {
		opt(d)
	}
	d.xd.Entity = map[string]string{}

	for {
		tok, err := d.xd.Token()
		if err == io.EOF {
			return nil, ErrNoRoot
		}
		if err != nil {
			return nil, fmt.Errorf("rdf: decode: %w", err)
		}

		switch t := tok.(type) {
		case xml.Directive:
			d.declareEntities(string(t))
		case xml.StartElement:
			sc := inherit(t, scope{base: base})
			if isRDF(t.Name, "RDF") {
				err = d.nodeElementList(sc)
			} else {
				_, err = d.nodeElement(t, sc)
			}
			if err != nil {
				return nil, fmt.Errorf("rdf: decode: %w", err)
			}
			return d.triples, nil
		}
	}
}

// declareEntities registers the internal DTD entities of a DOCTYPE directive.
func (d *decoder) declareEntities(directive string) {
	if !strings.HasPrefix(strings.TrimSpace(directive), "DOCTYPE") {
		return
	}
	ents := d.xd.Entity
	for _, m := range entityDecl.FindAllStringSubmatch(directive, -1) {
		ents[m[1]] = m[2] + m[3]
	}
	// Entity values may reference earlier entities.
	for range 4 {
		for name, val := range ents {
			ents[name] = entityRef.ReplaceAllStringFunc(val, func(ref string) string {
				if v, ok := ents[ref[1:len(ref)-1]]; ok {
					return v
				}
				return ref
			})
		}
	}
}

func (d *decoder) nodeElementList(sc scope) error {
	for {
		tok, err := d.xd.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if _, err := d.nodeElement(t, inherit(t, sc)); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (d *decoder) nodeElement(el xml.StartElement, sc scope) (Term, error) {
	subj := d.subject(el, sc)
	if !isRDF(el.Name, "Description") {
		d.emit(subj, IRI(RDFType), IRI(nameIRI(el.Name)))
	}
	d.propertyAttrs(subj, el.Attr, sc)

	li := 0
	for {
		tok, err := d.xd.Token()
		if err != nil {
			return Term{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := d.propertyElement(subj, t, inherit(t, sc), &li); err != nil {
				return Term{}, err
			}
		case xml.EndElement:
			return subj, nil
		}
	}
}

func (d *decoder) propertyElement(subj Term, el xml.StartElement, sc scope, li *int) error {
	pred := nameIRI(el.Name)
	if isRDF(el.Name, "li") {
		*li++
		pred = RDFNS + "_" + strconv.Itoa(*li)
	}

	var (
		resource, nodeID, datatype, parseType string
		hasResource, hasNodeID                bool
		props                                 []xml.Attr
	)
	for _, a := range el.Attr {
		switch {
		case isRDF(a.Name, "resource"):
			resource, hasResource = a.Value, true
		case isRDF(a.Name, "nodeID"):
			nodeID, hasNodeID = a.Value, true
		case isRDF(a.Name, "datatype"):
			datatype = a.Value
		case isRDF(a.Name, "parseType"):
			parseType = a.Value
		case !skipAttr(a):
			props = append(props, a)
		}
	}

	switch parseType {
	case "":
	case "Resource":
		obj := d.newBlank()
		d.emit(subj, IRI(pred), obj)
		inner := 0
		for {
			tok, err := d.xd.Token()
			if err != nil {
				return err
			}
			switch t := tok.(type) {
			case xml.StartElement:
				if err := d.propertyElement(obj, t, inherit(t, sc), &inner); err != nil {
					return err
				}
			case xml.EndElement:
				return nil
			}
		}
	case "Collection":
		var items []Term
		for {
			tok, err := d.xd.Token()
			if err != nil {
				return err
			}
			switch t := tok.(type) {
			case xml.StartElement:
				item, err := d.nodeElement(t, inherit(t, sc))
				if err != nil {
					return err
				}
				items = append(items, item)
			case xml.EndElement:
				d.emit(subj, IRI(pred), d.list(items))
				return nil
			}
		}
	default:
		text, err := d.innerXML()
		if err != nil {
			return err
		}
		d.emit(subj, IRI(pred), Literal(text, "", RDFXMLLiteral))
		return nil
	}

	if hasResource || hasNodeID || len(props) > 0 {
		var obj Term
		switch {
		case hasResource:
			obj = IRI(resolve(resource, sc.base))
		case hasNodeID:
			obj = Blank(d.blankPrefix + "id-" + nodeID)
		default:
			obj = d.newBlank()
		}
		d.propertyAttrs(obj, props, sc)
		d.emit(subj, IRI(pred), obj)
		return d.xd.Skip()
	}

	var text strings.Builder
	for {
		tok, err := d.xd.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.StartElement:
			obj, err := d.nodeElement(t, inherit(t, sc))
			if err != nil {
				return err
			}
			d.emit(subj, IRI(pred), obj)
			return d.xd.Skip()
		case xml.EndElement:
			lit := Literal(text.String(), sc.lang, "")
			if datatype != "" {
				lit = Literal(text.String(), "", resolve(datatype, sc.base))
			}
			d.emit(subj, IRI(pred), lit)
			return nil
		}
	}
}

func (d *decoder) propertyAttrs(subj Term, attrs []xml.Attr, sc scope) {
	for _, a := range attrs {
		if skipAttr(a) {
			continue
		}
		if isRDF(a.Name, "type") {
			d.emit(subj, IRI(RDFType), IRI(resolve(a.Value, sc.base)))
			continue
		}
		d.emit(subj, IRI(nameIRI(a.Name)), Literal(a.Value, sc.lang, ""))
	}
}

func (d *decoder) subject(el xml.StartElement, sc scope) Term {
	for _, a := range el.Attr {
		switch {
		case isRDF(a.Name, "about"):
			return IRI(resolve(a.Value, sc.base))
		case isRDF(a.Name, "ID"):
			return IRI(stripFragment(sc.base) + "#" + a.Value)
		case isRDF(a.Name, "nodeID"):
			return Blank(d.blankPrefix + "id-" + a.Value)
		}
	}
	return d.newBlank()
}

// list builds an rdf:first/rdf:rest chain and returns its head.
func (d *decoder) list(items []Term) Term {
	head := IRI(RDFNil)
	for i := len(items) - 1; i >= 0; i-- {
		cell := d.newBlank()
		d.emit(cell, IRI(RDFFirst), items[i])
		d.emit(cell, IRI(RDFRest), head)
		head = cell
	}
	return head
}

// innerXML re-encodes the content of the current element up to its end tag.
func (d *decoder) innerXML() (string, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	depth := 0
	for {
		tok, err := d.xd.Token()
		if err != nil {
			return "", err
		}
		switch tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				if err := enc.Flush(); err != nil {
					return "", err
				}
				return buf.String(), nil
			}
			depth--
		case xml.ProcInst, xml.Directive:
			continue
		}
		if err := enc.EncodeToken(xml.CopyToken(tok)); err != nil {
			return "", err
		}
	}
}

func (d *decoder) newBlank() Term {
	d.seq++
	return Blank(d.blankPrefix + "g" + strconv.Itoa(d.seq))
}

func (d *decoder) emit(s, p, o Term) {
	d.triples = append(d.triples, Triple{Subject: s, Predicate: p, Object: o})
}

func inherit(el xml.StartElement, parent scope) scope {
	sc := parent
	for _, a := range el.Attr {
		if a.Name.Space != XMLNS {
			continue
		}
		switch a.Name.Local {
		case "base":
			sc.base = resolve(a.Value, parent.base)
		case "lang":
			sc.lang = a.Value
		}
	}
	return sc
}

func isRDF(n xml.Name, local string) bool {
	return n.Space == RDFNS && n.Local == local
}

func nameIRI(n xml.Name) string {
	return n.Space + n.Local
}

// skipAttr reports attributes that never become property triples.
func skipAttr(a xml.Attr) bool {
	switch {
	case a.Name.Space == "xmlns", a.Name.Space == "" && a.Name.Local == "xmlns":
		return true
	case a.Name.Space == XMLNS, a.Name.Space == "":
		return true
	case a.Name.Space == RDFNS:
		switch a.Name.Local {
		case "about", "ID", "nodeID", "resource", "datatype", "parseType", "bagID", "aboutEach", "aboutEachPrefix":
			return true
		}
	}
	return false
}

func resolve(ref, base string) string {
	if base == "" {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	if r.IsAbs() {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return base + ref
	}
	return b.ResolveReference(r).String()
}

func stripFragment(iri string) string {
	if i := strings.IndexByte(iri, '#'); i >= 0 {
		return iri[:i]
	}
	return iri
}
