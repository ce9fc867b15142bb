package rdf

import (
	"strings"
	"testing"
)

func TestNQuadsParser_Basic(t *testing.T) {
	input := `# leading comment
<http://example.org/s> <http://example.org/p> <http://example.org/o> .
<http://example.org/s> <http://example.org/p> "lit"@en <http://example.org/g> .
_:b1 <http://example.org/p> "42"^^<http://www.w3.org/2001/XMLSchema#integer> _:g1 . # trailing
`
	quads, err := NewNQuadsParser(input).Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quads) != 3 {
		t.Fatalf("expected 3 quads, got %d", len(quads))
	}

	if !quads[0].InDefaultGraph() {
		t.Error("first quad should be in the default graph")
	}

	lit, ok := quads[1].Object.(*Literal)
	if !ok || lit.Value != "lit" || lit.Language != "en" {
		t.Errorf("unexpected object: %v", quads[1].Object)
	}
	if g, ok := quads[1].Graph.(*NamedNode); !ok || g.IRI != "http://example.org/g" {
		t.Errorf("unexpected graph: %v", quads[1].Graph)
	}

	if b, ok := quads[2].Subject.(*BlankNode); !ok || b.ID != "b1" {
		t.Errorf("unexpected subject: %v", quads[2].Subject)
	}
	if g, ok := quads[2].Graph.(*BlankNode); !ok || g.ID != "g1" {
		t.Errorf("unexpected graph: %v", quads[2].Graph)
	}
	typed := quads[2].Object.(*Literal)
	if typed.Datatype == nil || typed.Datatype.IRI != "http://www.w3.org/2001/XMLSchema#integer" {
		t.Errorf("unexpected datatype: %v", typed.Datatype)
	}
}

func TestNQuadsParser_Escapes(t *testing.T) {
	input := `<urn:a\u0020b> <urn:p> "line\nbreak \"quoted\" é" .` + "\n"
	quads, err := NewNQuadsParser(input).Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s := quads[0].Subject.(*NamedNode); s.IRI != "urn:a b" {
		t.Errorf("unexpected subject IRI %q", s.IRI)
	}
	if o := quads[0].Object.(*Literal); o.Value != "line\nbreak \"quoted\" é" {
		t.Errorf("unexpected literal value %q", o.Value)
	}
}

func TestNQuadsParser_BlankNodeBeforeDot(t *testing.T) {
	quads, err := NewNQuadsParser("<urn:s> <urn:p> _:b1.\n").Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b := quads[0].Object.(*BlankNode); b.ID != "b1" {
		t.Errorf("unexpected blank node label %q", b.ID)
	}
}

func TestNQuadsParser_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing dot", "<urn:s> <urn:p> <urn:o>\n"},
		{"relative IRI", "<s> <urn:p> <urn:o> .\n"},
		{"literal predicate", `<urn:s> "p" <urn:o> .`},
		{"unclosed literal", `<urn:s> <urn:p> "open .`},
		{"unclosed IRI", "<urn:s> <urn:p> <urn:o .\n"},
		{"bad escape", `<urn:s> <urn:p> "\q" .`},
		{"two statements one line", "<urn:s> <urn:p> <urn:o> . <urn:s> <urn:p> <urn:o> .\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewNQuadsParser(tt.input).Parse(); err == nil {
				t.Errorf("expected error for %q", tt.input)
			}
		})
	}
}

func TestNTriplesParser_RejectsGraph(t *testing.T) {
	_, err := NewNTriplesParser("<urn:s> <urn:p> <urn:o> <urn:g> .\n").Parse()
	if err == nil {
		t.Fatal("expected graph term to be rejected")
	}
	if !strings.Contains(err.Error(), "line 1") {
		t.Errorf("expected line number in error, got %v", err)
	}
}

func TestNQuads_RoundTrip(t *testing.T) {
	input := `<urn:s> <urn:p> "a \"b\"\tc"@en-GB <urn:g> .
_:x <urn:p> <urn:a\u0020b> .
`
	quads, err := NewNQuadsParser(input).Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out strings.Builder
	if err := WriteNQuads(&out, quads); err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}

	again, err := NewNQuadsParser(out.String()).Parse()
	if err != nil {
		t.Fatalf("unexpected reparse error: %v", err)
	}
	if len(again) != len(quads) {
		t.Fatalf("expected %d quads, got %d", len(quads), len(again))
	}
	for i := range quads {
		if !quads[i].Equals(again[i]) {
			t.Errorf("quad %d changed: %s vs %s", i, quads[i], again[i])
		}
	}
}

func TestNQuadsParser_WithBase(t *testing.T) {
	quads, err := NewNQuadsParser("<s> <urn:p> <o> .\n").WithBase("urn:myna:base:").Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s := quads[0].Subject.(*NamedNode); s.IRI != "urn:myna:base:s" {
		t.Errorf("unexpected subject IRI %q", s.IRI)
	}
	if o := quads[0].Object.(*NamedNode); o.IRI != "urn:myna:base:o" {
		t.Errorf("unexpected object IRI %q", o.IRI)
	}
}
