package rdf

import (
	"testing"
)

// ===== NamedNode Tests =====

func TestNamedNode_Type(t *testing.T) {
	node := NewNamedNode("http://example.org/resource")
	if node.Type() != TermTypeNamedNode {
		t.Errorf("Expected TermTypeNamedNode, got %v", node.Type())
	}
}

func TestNamedNode_String(t *testing.T) {
	tests := []struct {
		iri      string
		expected string
	}{
		{"http://example.org/resource", "<http://example.org/resource>"},
		{"urn:a b", `<urn:a\u0020b>`},
		{"urn:x>y", `<urn:x\u003Ey>`},
	}

	for _, tt := range tests {
		if got := NewNamedNode(tt.iri).String(); got != tt.expected {
			t.Errorf("Expected %s, got %s", tt.expected, got)
		}
	}
}

func TestNamedNode_Equals(t *testing.T) {
	node1 := NewNamedNode("http://example.org/resource")
	node2 := NewNamedNode("http://example.org/resource")
	node3 := NewNamedNode("http://example.org/different")

	if !node1.Equals(node2) {
		t.Error("Expected equal NamedNodes to be equal")
	}
	if node1.Equals(node3) {
		t.Error("Expected different NamedNodes to not be equal")
	}
	if node1.Equals(NewLiteral("http://example.org/resource")) {
		t.Error("NamedNode should not equal Literal with the same lexical value")
	}
}

// ===== BlankNode Tests =====

func TestBlankNode_StringAndEquals(t *testing.T) {
	node := NewBlankNode("b1")
	if node.String() != "_:b1" {
		t.Errorf("Expected _:b1, got %s", node.String())
	}
	if !node.Equals(NewBlankNode("b1")) {
		t.Error("Expected equal BlankNodes to be equal")
	}
	if node.Equals(NewNamedNode("_:b1")) {
		t.Error("BlankNode should not equal NamedNode")
	}
}

// ===== Literal Tests =====

func TestLiteral_String(t *testing.T) {
	tests := []struct {
		name     string
		literal  *Literal
		expected string
	}{
		{"plain", NewLiteral("hello"), `"hello"`},
		{"language", NewLiteralWithLanguage("hello", "en"), `"hello"@en`},
		{"datatype", NewLiteralWithDatatype("42", NewNamedNode("http://www.w3.org/2001/XMLSchema#integer")),
			`"42"^^<http://www.w3.org/2001/XMLSchema#integer>`},
		{"xsd string is implicit", NewLiteralWithDatatype("x", XSDString), `"x"`},
		{"escapes", NewLiteral("a \"q\"\n\\"), `"a \"q\"\n\\"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.literal.String(); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestLiteral_Equals(t *testing.T) {
	dt := NewNamedNode("urn:dt")
	if !NewLiteralWithDatatype("1", dt).Equals(NewLiteralWithDatatype("1", NewNamedNode("urn:dt"))) {
		t.Error("Expected typed literals with same datatype to be equal")
	}
	if NewLiteral("1").Equals(NewLiteralWithDatatype("1", dt)) {
		t.Error("Expected plain and typed literal to differ")
	}
	if NewLiteralWithLanguage("a", "en").Equals(NewLiteralWithLanguage("a", "de")) {
		t.Error("Expected different languages to differ")
	}
}

// ===== Quad Tests =====

func TestQuad_String(t *testing.T) {
	s := NewNamedNode("urn:s")
	p := NewNamedNode("urn:p")
	o := NewLiteral("o")

	if got := NewQuad(s, p, o, NewDefaultGraph()).String(); got != `<urn:s> <urn:p> "o" .` {
		t.Errorf("unexpected default graph quad: %s", got)
	}
	if got := NewQuad(s, p, o, nil).String(); got != `<urn:s> <urn:p> "o" .` {
		t.Errorf("unexpected nil graph quad: %s", got)
	}
	if got := NewQuad(s, p, o, NewNamedNode("urn:g")).String(); got != `<urn:s> <urn:p> "o" <urn:g> .` {
		t.Errorf("unexpected named graph quad: %s", got)
	}
}

func TestQuad_Equals(t *testing.T) {
	s := NewNamedNode("urn:s")
	p := NewNamedNode("urn:p")
	o := NewNamedNode("urn:o")

	if !NewQuad(s, p, o, nil).Equals(NewQuad(s, p, o, NewDefaultGraph())) {
		t.Error("nil graph and default graph should be equal")
	}
	if NewQuad(s, p, o, NewNamedNode("urn:g1")).Equals(NewQuad(s, p, o, NewNamedNode("urn:g2"))) {
		t.Error("different graphs should not be equal")
	}
	if NewQuad(s, p, o, nil).Equals(nil) {
		t.Error("quad should not equal nil")
	}
}
