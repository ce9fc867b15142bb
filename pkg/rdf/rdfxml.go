package rdf

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"maps"
	"strconv"
	"strings"
)

const xmlNS = "http://www.w3.org/XML/1998/namespace"

// RDFXMLParser parses RDF/XML. It handles rdf:Description and typed node
// elements, rdf:about/rdf:ID/rdf:nodeID, property attributes, rdf:resource,
// rdf:datatype, xml:lang, xml:base, rdf:li and the Resource and Collection
// parse types. rdf:parseType="Literal" and reification via rdf:ID on
// property elements are rejected.
type RDFXMLParser struct {
	base     string
	prefixes map[string]string
	bnodes   int
	quads    []*Quad
}

// NewRDFXMLParser creates an RDF/XML parser
func NewRDFXMLParser() *RDFXMLParser {
	return &RDFXMLParser{prefixes: make(map[string]string)}
}

// WithBase sets the base used until an xml:base attribute overrides it
func (p *RDFXMLParser) WithBase(base string) *RDFXMLParser {
	p.base = base
	return p
}

// Prefixes returns the xmlns declarations of the root element. The default
// namespace is reported under the empty label.
func (p *RDFXMLParser) Prefixes() map[string]string {
	return maps.Clone(p.prefixes)
}

// Parse parses RDF/XML into default-graph quads
func (p *RDFXMLParser) Parse(reader io.Reader) ([]*Quad, error) {
	decoder := xml.NewDecoder(reader)
	root, err := nextStart(decoder)
	if err != nil {
		return nil, err
	}
	for _, a := range root.Attr {
		switch {
		case a.Name.Space == "xmlns":
			p.prefixes[a.Name.Local] = a.Value
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			p.prefixes[""] = a.Value
		}
	}

	if !isRDF(root.Name, "RDF") {
		if _, err := p.parseNodeElement(decoder, root, p.base, ""); err != nil {
			return nil, err
		}
		return p.quads, nil
	}

	base, lang := scope(root, p.base, "")
	for {
		token, err := decoder.Token()
		if err != nil {
			return nil, fmt.Errorf("XML parse error: %w", err)
		}
		switch t := token.(type) {
		case xml.StartElement:
			if _, err := p.parseNodeElement(decoder, t, base, lang); err != nil {
				return nil, err
			}
		case xml.EndElement:
			return p.quads, nil
		}
	}
}

// parseNodeElement consumes a node element up to its end tag and returns
// its subject
func (p *RDFXMLParser) parseNodeElement(decoder *xml.Decoder, start xml.StartElement, base, lang string) (Term, error) {
	base, lang = scope(start, base, lang)

	var subject Term
	switch {
	case attr(start, rdfNS, "about") != nil:
		iri, err := resolveXMLIRI(base, attr(start, rdfNS, "about").Value)
		if err != nil {
			return nil, err
		}
		subject = NewNamedNode(iri)
	case attr(start, rdfNS, "ID") != nil:
		iri, err := resolveXMLIRI(base, "#"+attr(start, rdfNS, "ID").Value)
		if err != nil {
			return nil, err
		}
		subject = NewNamedNode(iri)
	case attr(start, rdfNS, "nodeID") != nil:
		subject = NewBlankNode(attr(start, rdfNS, "nodeID").Value)
	default:
		subject = p.newBlankNode()
	}

	if !isRDF(start.Name, "Description") {
		p.emit(subject, NewNamedNode(rdfType), NewNamedNode(start.Name.Space+start.Name.Local))
	}
	for _, a := range start.Attr {
		if isSyntaxAttr(a.Name) {
			continue
		}
		if isRDF(a.Name, "type") {
			iri, err := resolveXMLIRI(base, a.Value)
			if err != nil {
				return nil, err
			}
			p.emit(subject, NewNamedNode(rdfType), NewNamedNode(iri))
			continue
		}
		p.emit(subject, NewNamedNode(a.Name.Space+a.Name.Local), plainLiteral(a.Value, lang))
	}

	if err := p.parsePropertyElements(decoder, subject, base, lang); err != nil {
		return nil, err
	}
	return subject, nil
}

// parsePropertyElements consumes property elements until the enclosing end
// tag
func (p *RDFXMLParser) parsePropertyElements(decoder *xml.Decoder, subject Term, base, lang string) error {
	li := 0
	for {
		token, err := decoder.Token()
		if err != nil {
			return fmt.Errorf("XML parse error: %w", err)
		}
		switch t := token.(type) {
		case xml.StartElement:
			predicate := t.Name.Space + t.Name.Local
			if isRDF(t.Name, "li") {
				li++
				predicate = rdfNS + "_" + strconv.Itoa(li)
			}
			if err := p.parsePropertyElement(decoder, t, subject, NewNamedNode(predicate), base, lang); err != nil {
				return fmt.Errorf("property %s: %w", predicate, err)
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (p *RDFXMLParser) parsePropertyElement(decoder *xml.Decoder, start xml.StartElement, subject, predicate Term, base, lang string) error {
	base, lang = scope(start, base, lang)

	if a := attr(start, rdfNS, "resource"); a != nil {
		iri, err := resolveXMLIRI(base, a.Value)
		if err != nil {
			return err
		}
		p.emit(subject, predicate, NewNamedNode(iri))
		return decoder.Skip()
	}
	if a := attr(start, rdfNS, "nodeID"); a != nil {
		p.emit(subject, predicate, NewBlankNode(a.Value))
		return decoder.Skip()
	}

	if a := attr(start, rdfNS, "parseType"); a != nil {
		switch a.Value {
		case "Resource":
			node := p.newBlankNode()
			p.emit(subject, predicate, node)
			return p.parsePropertyElements(decoder, node, base, lang)
		case "Collection":
			return p.parseCollection(decoder, subject, predicate, base, lang)
		default:
			return fmt.Errorf("unsupported rdf:parseType %q", a.Value)
		}
	}

	var text strings.Builder
	var object Term
	for {
		token, err := decoder.Token()
		if err != nil {
			return fmt.Errorf("XML parse error: %w", err)
		}
		switch t := token.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.StartElement:
			if object != nil {
				return errors.New("property element holds more than one node")
			}
			node, err := p.parseNodeElement(decoder, t, base, lang)
			if err != nil {
				return err
			}
			object = node
		case xml.EndElement:
			if object == nil {
				if a := attr(start, rdfNS, "datatype"); a != nil {
					object = NewLiteralWithDatatype(text.String(), NewNamedNode(a.Value))
				} else {
					object = plainLiteral(text.String(), lang)
				}
			}
			p.emit(subject, predicate, object)
			return nil
		}
	}
}

// parseCollection turns the node elements of a Collection property into an
// rdf:first/rdf:rest chain
func (p *RDFXMLParser) parseCollection(decoder *xml.Decoder, subject, predicate Term, base, lang string) error {
	var items []Term
	for {
		token, err := decoder.Token()
		if err != nil {
			return fmt.Errorf("XML parse error: %w", err)
		}
		switch t := token.(type) {
		case xml.StartElement:
			node, err := p.parseNodeElement(decoder, t, base, lang)
			if err != nil {
				return err
			}
			items = append(items, node)
		case xml.EndElement:
			var head Term = NewNamedNode(rdfNil)
			for i := len(items) - 1; i >= 0; i-- {
				cell := p.newBlankNode()
				p.emit(cell, NewNamedNode(rdfFirst), items[i])
				p.emit(cell, NewNamedNode(rdfRest), head)
				head = cell
			}
			p.emit(subject, predicate, head)
			return nil
		}
	}
}

func (p *RDFXMLParser) emit(subject, predicate, object Term) {
	p.quads = append(p.quads, NewQuad(subject, predicate, object, NewDefaultGraph()))
}

func (p *RDFXMLParser) newBlankNode() *BlankNode {
	p.bnodes++
	return NewBlankNode(fmt.Sprintf("b%d", p.bnodes))
}

func nextStart(decoder *xml.Decoder) (xml.StartElement, error) {
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			return xml.StartElement{}, errors.New("empty RDF/XML document")
		}
		if err != nil {
			return xml.StartElement{}, fmt.Errorf("XML parse error: %w", err)
		}
		if start, ok := token.(xml.StartElement); ok {
			return start, nil
		}
	}
}

// scope applies the xml:base and xml:lang attributes of an element
func scope(start xml.StartElement, base, lang string) (string, string) {
	if a := attr(start, xmlNS, "base"); a != nil {
		base = ResolveIRI(base, a.Value)
	}
	if a := attr(start, xmlNS, "lang"); a != nil {
		lang = a.Value
	}
	return base, lang
}

func resolveXMLIRI(base, ref string) (string, error) {
	iri := ResolveIRI(base, ref)
	if !hasScheme(iri) {
		return "", fmt.Errorf("relative IRI without a base: %s", ref)
	}
	return iri, nil
}

func plainLiteral(value, lang string) *Literal {
	if lang != "" {
		return NewLiteralWithLanguage(value, lang)
	}
	return NewLiteral(value)
}

func attr(start xml.StartElement, space, local string) *xml.Attr {
	for i := range start.Attr {
		if start.Attr[i].Name.Space == space && start.Attr[i].Name.Local == local {
			return &start.Attr[i]
		}
	}
	return nil
}

func isRDF(name xml.Name, local string) bool {
	return name.Space == rdfNS && name.Local == local
}

// isSyntaxAttr reports attributes that never become property attributes
func isSyntaxAttr(name xml.Name) bool {
	switch {
	case name.Space == "", name.Space == "xmlns":
		return true
	case name.Space == xmlNS:
		return true
	case name.Space == rdfNS:
		return name.Local == "about" || name.Local == "ID" || name.Local == "nodeID"
	}
	return false
}
