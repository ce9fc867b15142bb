package rdf

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrUnsupportedContentType is returned for formats without a codec
var ErrUnsupportedContentType = errors.New("unsupported content type")

// Content types understood by the codecs in this package
const (
	ContentTypeNTriples = "application/n-triples"
	ContentTypeNQuads   = "application/n-quads"
	ContentTypeTurtle   = "text/turtle"
	ContentTypeTriG     = "application/trig"
	ContentTypeJSONLD   = "application/ld+json"
	ContentTypeRDFXML   = "application/rdf+xml"
)

// RDFParser is the interface for parsing RDF data in various formats
type RDFParser interface {
	// Parse parses RDF data from a reader and returns quads
	Parse(reader io.Reader) ([]*Quad, error)

	// ContentType returns the MIME type this parser handles
	ContentType() string
}

// PrefixReporter is implemented by parsers whose syntax declares namespace
// prefixes. Prefixes is valid after Parse returns.
type PrefixReporter interface {
	Prefixes() map[string]string
}

// Serializer writes quads in one concrete syntax
type Serializer interface {
	Serialize(w io.Writer, quads []*Quad) error
	ContentType() string
}

// NewParser creates an RDF parser based on the content type
func NewParser(contentType string) (RDFParser, error) {
	return NewParserWithBase(contentType, "")
}

// NewParserWithBase creates a parser that resolves relative IRIs against base
func NewParserWithBase(contentType, base string) (RDFParser, error) {
	switch normalizeContentType(contentType) {
	case ContentTypeNTriples, "text/plain":
		return &NTriplesIOParser{Base: base}, nil
	case ContentTypeNQuads:
		return &NQuadsIOParser{Base: base}, nil
	case ContentTypeTurtle, "application/x-turtle":
		return &TurtleIOParser{Base: base}, nil
	case ContentTypeTriG:
		return &TriGIOParser{Base: base}, nil
	case ContentTypeJSONLD, "application/json":
		return &JSONLDIOParser{Base: base}, nil
	case ContentTypeRDFXML, "application/xml", "text/xml":
		return &RDFXMLIOParser{Base: base}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedContentType, contentType)
	}
}

// NewSerializer creates a serializer for the content type. prefixes are only
// used by syntaxes that support them (Turtle).
func NewSerializer(contentType string, prefixes map[string]string) (Serializer, error) {
	switch normalizeContentType(contentType) {
	case ContentTypeNTriples, "text/plain":
		return &ntriplesSerializer{}, nil
	case ContentTypeNQuads:
		return &nquadsSerializer{}, nil
	case ContentTypeTurtle, "application/x-turtle":
		return &turtleSerializer{prefixes: prefixes}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedContentType, contentType)
	}
}

func normalizeContentType(contentType string) string {
	// Remove parameters like charset
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(ct, ";"); idx != -1 {
		ct = strings.TrimSpace(ct[:idx])
	}
	return ct
}

// NTriplesIOParser parses N-Triples format (triples only, default graph)
type NTriplesIOParser struct {
	Base string
}

func (p *NTriplesIOParser) ContentType() string {
	return ContentTypeNTriples
}

func (p *NTriplesIOParser) Parse(reader io.Reader) ([]*Quad, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}

	quads, err := NewNTriplesParser(string(data)).WithBase(p.Base).Parse()
	if err != nil {
		return nil, fmt.Errorf("error parsing N-Triples: %w", err)
	}
	return quads, nil
}

// NQuadsIOParser parses N-Quads format (quads with optional graph)
type NQuadsIOParser struct {
	Base string
}

func (p *NQuadsIOParser) ContentType() string {
	return ContentTypeNQuads
}

func (p *NQuadsIOParser) Parse(reader io.Reader) ([]*Quad, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}

	quads, err := NewNQuadsParser(string(data)).WithBase(p.Base).Parse()
	if err != nil {
		return nil, fmt.Errorf("error parsing N-Quads: %w", err)
	}
	return quads, nil
}

// TurtleIOParser parses Turtle and remembers the declared prefixes
type TurtleIOParser struct {
	Base     string
	prefixes map[string]string
}

func (p *TurtleIOParser) ContentType() string {
	return ContentTypeTurtle
}

func (p *TurtleIOParser) Prefixes() map[string]string {
	return p.prefixes
}

func (p *TurtleIOParser) Parse(reader io.Reader) ([]*Quad, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}

	parser := NewTurtleParser(string(data)).WithBase(p.Base)
	quads, err := parser.Parse()
	if err != nil {
		return nil, fmt.Errorf("error parsing Turtle: %w", err)
	}
	p.prefixes = parser.Prefixes()
	return quads, nil
}

// TriGIOParser parses TriG (Turtle plus named graph blocks)
type TriGIOParser struct {
	Base     string
	prefixes map[string]string
}

func (p *TriGIOParser) ContentType() string {
	return ContentTypeTriG
}

func (p *TriGIOParser) Prefixes() map[string]string {
	return p.prefixes
}

func (p *TriGIOParser) Parse(reader io.Reader) ([]*Quad, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}

	parser := NewTriGParser(string(data)).WithBase(p.Base)
	quads, err := parser.Parse()
	if err != nil {
		return nil, fmt.Errorf("error parsing TriG: %w", err)
	}
	p.prefixes = parser.Prefixes()
	return quads, nil
}

// JSONLDIOParser parses JSON-LD; @context string entries are its prefixes
type JSONLDIOParser struct {
	Base     string
	prefixes map[string]string
}

func (p *JSONLDIOParser) ContentType() string {
	return ContentTypeJSONLD
}

func (p *JSONLDIOParser) Prefixes() map[string]string {
	return p.prefixes
}

func (p *JSONLDIOParser) Parse(reader io.Reader) ([]*Quad, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}

	parser := NewJSONLDParser().WithBase(p.Base)
	quads, err := parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("error parsing JSON-LD: %w", err)
	}
	p.prefixes = parser.Prefixes()
	return quads, nil
}

// RDFXMLIOParser parses RDF/XML; root xmlns declarations are its prefixes
type RDFXMLIOParser struct {
	Base     string
	prefixes map[string]string
}

func (p *RDFXMLIOParser) ContentType() string {
	return ContentTypeRDFXML
}

func (p *RDFXMLIOParser) Prefixes() map[string]string {
	return p.prefixes
}

func (p *RDFXMLIOParser) Parse(reader io.Reader) ([]*Quad, error) {
	parser := NewRDFXMLParser().WithBase(p.Base)
	quads, err := parser.Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("error parsing RDF/XML: %w", err)
	}
	p.prefixes = parser.Prefixes()
	return quads, nil
}

type nquadsSerializer struct{}

func (s *nquadsSerializer) ContentType() string { return ContentTypeNQuads }

func (s *nquadsSerializer) Serialize(w io.Writer, quads []*Quad) error {
	return WriteNQuads(w, quads)
}

type ntriplesSerializer struct{}

func (s *ntriplesSerializer) ContentType() string { return ContentTypeNTriples }

func (s *ntriplesSerializer) Serialize(w io.Writer, quads []*Quad) error {
	return WriteNTriples(w, quads)
}

type turtleSerializer struct {
	prefixes map[string]string
}

func (s *turtleSerializer) ContentType() string { return ContentTypeTurtle }

func (s *turtleSerializer) Serialize(w io.Writer, quads []*Quad) error {
	return WriteTurtle(w, quads, s.prefixes)
}

// Format names a concrete syntax detected from a file name
type Format struct {
	ContentType string
	Label       string
}

// DetectFormat maps a file extension to a parseable format
func DetectFormat(fileName string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), ".")) {
	case "nt":
		return Format{ContentType: ContentTypeNTriples, Label: "N-Triples"}, nil
	case "nq":
		return Format{ContentType: ContentTypeNQuads, Label: "N-Quads"}, nil
	case "ttl", "turtle":
		return Format{ContentType: ContentTypeTurtle, Label: "Turtle"}, nil
	case "trig":
		return Format{ContentType: ContentTypeTriG, Label: "TriG"}, nil
	case "jsonld", "json":
		return Format{ContentType: ContentTypeJSONLD, Label: "JSON-LD"}, nil
	case "rdf", "owl", "xml":
		return Format{ContentType: ContentTypeRDFXML, Label: "RDF/XML"}, nil
	default:
		return Format{}, fmt.Errorf("%w: %s", ErrUnsupportedContentType, fileName)
	}
}

// ExtensionFor returns the conventional file extension for a content type
func ExtensionFor(contentType string) string {
	switch normalizeContentType(contentType) {
	case ContentTypeTurtle, "application/x-turtle":
		return ".ttl"
	case ContentTypeNTriples:
		return ".nt"
	case ContentTypeNQuads:
		return ".nq"
	case ContentTypeTriG:
		return ".trig"
	case ContentTypeJSONLD:
		return ".jsonld"
	case ContentTypeRDFXML:
		return ".rdf"
	default:
		return ".txt"
	}
}

// GetSupportedContentTypes returns the content types accepted by NewParser
func GetSupportedContentTypes() []string {
	return []string{
		ContentTypeNTriples,
		ContentTypeNQuads,
		ContentTypeTurtle,
		ContentTypeTriG,
		ContentTypeJSONLD,
		ContentTypeRDFXML,
		"text/plain", // Alias for N-Triples
	}
}
