package rdf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"strings"
)

// JSONLDParser parses the common subset of JSON-LD found in ontology
// exports: an inline @context of string term and prefix definitions, node
// objects with @id and @type, value objects with @value/@language/@type,
// @list values and a top-level @graph. Remote contexts, @reverse and
// framing are not supported.
type JSONLDParser struct {
	base     string
	prefixes map[string]string
	bnodes   int
}

// NewJSONLDParser creates a JSON-LD parser
func NewJSONLDParser() *JSONLDParser {
	return &JSONLDParser{prefixes: make(map[string]string)}
}

// WithBase sets the base used for relative @id values
func (p *JSONLDParser) WithBase(base string) *JSONLDParser {
	p.base = base
	return p
}

// Prefixes returns the string entries of the top-level @context
func (p *JSONLDParser) Prefixes() map[string]string {
	return maps.Clone(p.prefixes)
}

// Parse parses a JSON-LD document into default-graph quads
func (p *JSONLDParser) Parse(data []byte) ([]*Quad, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var doc any
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("error parsing JSON: %w", err)
	}

	var quads []*Quad
	switch v := doc.(type) {
	case map[string]any:
		context := p.context(v, nil)
		for k, ns := range context {
			p.prefixes[k] = ns
		}
		nodes := []any{v}
		if graph, ok := v["@graph"].([]any); ok {
			nodes = graph
		}
		for _, node := range nodes {
			obj, ok := node.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("unexpected @graph entry: %T", node)
			}
			if _, err := p.parseNode(obj, p.context(obj, context), &quads); err != nil {
				return nil, err
			}
		}
	case []any:
		for _, item := range v {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("unexpected array entry: %T", item)
			}
			if _, err := p.parseNode(obj, p.context(obj, nil), &quads); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("unexpected JSON-LD structure: %T", doc)
	}
	return quads, nil
}

// context layers the string definitions of obj's @context over parent
func (p *JSONLDParser) context(obj map[string]any, parent map[string]string) map[string]string {
	raw, ok := obj["@context"].(map[string]any)
	if !ok {
		return parent
	}
	context := maps.Clone(parent)
	if context == nil {
		context = make(map[string]string)
	}
	for k, v := range raw {
		ns, ok := v.(string)
		if !ok || strings.HasPrefix(k, "@") || strings.HasPrefix(ns, "@") {
			continue
		}
		context[k] = ns
	}
	return context
}

// parseNode emits the statements of a node object and returns its subject
func (p *JSONLDParser) parseNode(obj map[string]any, context map[string]string, quads *[]*Quad) (Term, error) {
	var subject Term
	if id, ok := obj["@id"].(string); ok {
		subject = p.node(id, context)
	} else {
		subject = p.newBlankNode()
	}

	for _, typ := range asList(obj["@type"]) {
		if s, ok := typ.(string); ok {
			*quads = append(*quads, NewQuad(subject, NewNamedNode(rdfType), p.node(s, context), NewDefaultGraph()))
		}
	}

	for key, value := range obj {
		if strings.HasPrefix(key, "@") {
			continue
		}
		predicate := NewNamedNode(p.expandIRI(key, context))
		for _, item := range asList(value) {
			object, err := p.parseValue(item, context, quads)
			if err != nil {
				return nil, fmt.Errorf("property %s: %w", key, err)
			}
			if object != nil {
				*quads = append(*quads, NewQuad(subject, predicate, object, NewDefaultGraph()))
			}
		}
	}
	return subject, nil
}

// parseValue turns a property value into an object term. Nested node
// objects and lists emit their own statements first.
func (p *JSONLDParser) parseValue(value any, context map[string]string, quads *[]*Quad) (Term, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return NewLiteral(v), nil
	case bool:
		return NewLiteralWithDatatype(fmt.Sprint(v), NewNamedNode(xsdNS+"boolean")), nil
	case json.Number:
		if strings.ContainsAny(v.String(), ".eE") {
			return NewLiteralWithDatatype(v.String(), NewNamedNode(xsdNS+"double")), nil
		}
		return NewLiteralWithDatatype(v.String(), NewNamedNode(xsdNS+"integer")), nil
	case map[string]any:
		if list, ok := v["@list"]; ok {
			return p.parseList(asList(list), context, quads)
		}
		if val, ok := v["@value"]; ok {
			lexical := fmt.Sprint(val)
			if lang, ok := v["@language"].(string); ok {
				return NewLiteralWithLanguage(lexical, lang), nil
			}
			if typ, ok := v["@type"].(string); ok {
				return NewLiteralWithDatatype(lexical, NewNamedNode(p.expandIRI(typ, context))), nil
			}
			return p.parseValue(val, context, quads)
		}
		if id, ok := v["@id"].(string); ok && len(v) == 1 {
			return p.node(id, context), nil
		}
		return p.parseNode(v, p.context(v, context), quads)
	default:
		return nil, fmt.Errorf("unexpected value: %T", value)
	}
}

func (p *JSONLDParser) parseList(items []any, context map[string]string, quads *[]*Quad) (Term, error) {
	var head Term = NewNamedNode(rdfNil)
	for i := len(items) - 1; i >= 0; i-- {
		item, err := p.parseValue(items[i], context, quads)
		if err != nil {
			return nil, err
		}
		cell := p.newBlankNode()
		*quads = append(*quads,
			NewQuad(cell, NewNamedNode(rdfFirst), item, NewDefaultGraph()),
			NewQuad(cell, NewNamedNode(rdfRest), head, NewDefaultGraph()))
		head = cell
	}
	return head, nil
}

// node maps an @id or @type value to a blank or named node
func (p *JSONLDParser) node(id string, context map[string]string) Term {
	if label, ok := strings.CutPrefix(id, "_:"); ok {
		return NewBlankNode(label)
	}
	return NewNamedNode(p.expandIRI(id, context))
}

func (p *JSONLDParser) newBlankNode() *BlankNode {
	p.bnodes++
	return NewBlankNode(fmt.Sprintf("b%d", p.bnodes))
}

// expandIRI expands terms and compact IRIs using the context. Anything
// else without a scheme is resolved against the base.
func (p *JSONLDParser) expandIRI(iri string, context map[string]string) string {
	if expanded, ok := context[iri]; ok {
		iri = expanded
	}
	if prefix, local, ok := strings.Cut(iri, ":"); ok && !strings.HasPrefix(local, "//") {
		if ns, ok := context[prefix]; ok {
			return ns + local
		}
	}
	if hasScheme(iri) {
		return iri
	}
	return ResolveIRI(p.base, iri)
}

func asList(value any) []any {
	switch v := value.(type) {
	case nil:
		return nil
	case []any:
		return v
	default:
		return []any{v}
	}
}
