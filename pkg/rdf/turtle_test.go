package rdf

import (
	"strings"
	"testing"
)

func statements(quads []*Quad) []string {
	out := make([]string, len(quads))
	for i, q := range quads {
		out[i] = q.String()
	}
	return out
}

func assertStatements(t *testing.T, quads []*Quad, expected []string) {
	t.Helper()
	got := statements(quads)
	if len(got) != len(expected) {
		t.Fatalf("expected %d statements, got %d:\n%s", len(expected), len(got), strings.Join(got, "\n"))
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("statement %d:\n got  %s\n want %s", i, got[i], expected[i])
		}
	}
}

func TestTurtleParser_Basic(t *testing.T) {
	input := `@prefix ex: <http://example.org/> .
PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#>
# comment
ex:a a ex:Class ;
    rdfs:label "A"@en, "Alpha" ;
    ex:count 42 ;
    ex:ratio 1.5 ;
    ex:big 1e3 ;
    ex:flag true ;
.
`
	p := NewTurtleParser(input)
	quads, err := p.Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	const (
		a   = "<http://example.org/a> "
		xsd = "http://www.w3.org/2001/XMLSchema#"
	)
	assertStatements(t, quads, []string{
		a + "<http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://example.org/Class> .",
		a + `<http://www.w3.org/2000/01/rdf-schema#label> "A"@en .`,
		a + `<http://www.w3.org/2000/01/rdf-schema#label> "Alpha" .`,
		a + `<http://example.org/count> "42"^^<` + xsd + `integer> .`,
		a + `<http://example.org/ratio> "1.5"^^<` + xsd + `decimal> .`,
		a + `<http://example.org/big> "1e3"^^<` + xsd + `double> .`,
		a + `<http://example.org/flag> "true"^^<` + xsd + `boolean> .`,
	})
	for _, q := range quads {
		if !q.InDefaultGraph() {
			t.Errorf("expected default graph: %s", q)
		}
	}

	prefixes := p.Prefixes()
	if len(prefixes) != 2 || prefixes["ex"] != "http://example.org/" || prefixes["rdfs"] != "http://www.w3.org/2000/01/rdf-schema#" {
		t.Errorf("unexpected prefixes: %v", prefixes)
	}
	prefixes["ex"] = "urn:changed:"
	if p.Prefixes()["ex"] != "http://example.org/" {
		t.Error("Prefixes should return a copy")
	}
}

func TestTurtleParser_BlankNodesAndCollections(t *testing.T) {
	input := `@prefix ex: <urn:ex:> .
ex:s ex:p [ ex:q "v" ] ;
     ex:list ( ex:x "y" ) ;
     ex:empty () .
[ ex:r ex:t ] .
_:n1 ex:p _:n2.
`
	quads, err := NewTurtleParser(input).Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	const rdf = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	assertStatements(t, quads, []string{
		`_:genid1 <urn:ex:q> "v" .`,
		`<urn:ex:s> <urn:ex:p> _:genid1 .`,
		`_:genid2 <` + rdf + `first> <urn:ex:x> .`,
		`_:genid2 <` + rdf + `rest> _:genid3 .`,
		`_:genid3 <` + rdf + `first> "y" .`,
		`_:genid3 <` + rdf + `rest> <` + rdf + `nil> .`,
		`<urn:ex:s> <urn:ex:list> _:genid2 .`,
		`<urn:ex:s> <urn:ex:empty> <` + rdf + `nil> .`,
		`_:genid4 <urn:ex:r> <urn:ex:t> .`,
		`_:n1 <urn:ex:p> _:n2 .`,
	})
}

func TestTurtleParser_Literals(t *testing.T) {
	input := `@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .
<urn:s> <urn:p> """multi
line "quoted" """ , 'single\t\u00e9' , "7"^^xsd:int , "x"^^<urn:dt> , '''it's''' .
`
	quads, err := NewTurtleParser(input).Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quads) != 5 {
		t.Fatalf("expected 5 quads, got %d", len(quads))
	}

	expected := []struct {
		value    string
		datatype string
	}{
		{"multi\nline \"quoted\" ", ""},
		{"single\té", ""},
		{"7", "http://www.w3.org/2001/XMLSchema#int"},
		{"x", "urn:dt"},
		{"it's", ""},
	}
	for i, want := range expected {
		lit, ok := quads[i].Object.(*Literal)
		if !ok {
			t.Fatalf("object %d is not a literal: %v", i, quads[i].Object)
		}
		if lit.Value != want.value {
			t.Errorf("literal %d: got %q, want %q", i, lit.Value, want.value)
		}
		got := ""
		if lit.Datatype != nil {
			got = lit.Datatype.IRI
		}
		if got != want.datatype {
			t.Errorf("literal %d datatype: got %q, want %q", i, got, want.datatype)
		}
	}
}

func TestTurtleParser_PrefixedNames(t *testing.T) {
	input := `@prefix ex: <urn:ex:> .
@prefix : <urn:default:> .
ex:a.b ex:p ex:c.
:x ex:p ex:d\. .
ex:e%20f ex:p ex:g .
`
	quads, err := NewTurtleParser(input).Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertStatements(t, quads, []string{
		`<urn:ex:a.b> <urn:ex:p> <urn:ex:c> .`,
		`<urn:default:x> <urn:ex:p> <urn:ex:d.> .`,
		`<urn:ex:e%20f> <urn:ex:p> <urn:ex:g> .`,
	})
}

func TestTurtleParser_Base(t *testing.T) {
	quads, err := NewTurtleParser("<s> <p> <#o> .\n@base <http://other.org/> .\n<x> <p> <y> .\n").
		WithBase("http://ex.org/dir/doc").Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertStatements(t, quads, []string{
		`<http://ex.org/dir/s> <http://ex.org/dir/p> <http://ex.org/dir/doc#o> .`,
		`<http://other.org/x> <http://other.org/p> <http://other.org/y> .`,
	})

	quads, err = NewTurtleParser("<s> <urn:p> <urn:o> .").WithBase("urn:myna:base:").Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s := quads[0].Subject.(*NamedNode); s.IRI != "urn:myna:base:s" {
		t.Errorf("unexpected subject IRI %q", s.IRI)
	}

	if _, err := NewTurtleParser("<s> <urn:p> <urn:o> .").Parse(); err == nil || !strings.Contains(err.Error(), "relative IRI") {
		t.Errorf("expected relative IRI error, got %v", err)
	}
}

func TestTriGParser_Graphs(t *testing.T) {
	input := `@prefix ex: <urn:ex:> .
ex:a ex:p ex:b .
ex:g1 { ex:a ex:p ex:c . ex:a ex:q ex:d }
GRAPH <urn:g2> { ex:a ex:p ex:e }
{ ex:x ex:p ex:y }
_:g3 { [ ex:p ex:f ] }
`
	p := NewTriGParser(input)
	quads, err := p.Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertStatements(t, quads, []string{
		`<urn:ex:a> <urn:ex:p> <urn:ex:b> .`,
		`<urn:ex:a> <urn:ex:p> <urn:ex:c> <urn:ex:g1> .`,
		`<urn:ex:a> <urn:ex:q> <urn:ex:d> <urn:ex:g1> .`,
		`<urn:ex:a> <urn:ex:p> <urn:ex:e> <urn:g2> .`,
		`<urn:ex:x> <urn:ex:p> <urn:ex:y> .`,
		`_:genid1 <urn:ex:p> <urn:ex:f> _:g3 .`,
	})
	if p.Prefixes()["ex"] != "urn:ex:" {
		t.Errorf("unexpected prefixes: %v", p.Prefixes())
	}
}

func TestTurtleParser_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"undefined prefix", "@prefix ex: <urn:ex:> .\nundefined:a ex:p ex:b .", "line 2: subject: undefined prefix"},
		{"missing dot", "<urn:a> <urn:p> <urn:b>", "expected '.'"},
		{"quoted triple", "<< <urn:a> <urn:p> <urn:b> >> <urn:q> <urn:c> .", "quoted triples"},
		{"graph block in turtle", "{ <urn:a> <urn:p> <urn:b> }", "subject"},
		{"unterminated string", `<urn:a> <urn:p> "open .`, "unclosed string"},
		{"bad escape", `<urn:a> <urn:p> "\q" .`, "invalid escape"},
		{"space in IRI", "<urn:a b> <urn:p> <urn:o> .", "invalid character in IRI"},
		{"directive without dot", "@prefix ex: <urn:ex:>\nex:a ex:p ex:b .", "line 2: expected '.' after directive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTurtleParser(tt.input).Parse()
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}

	if _, err := NewTriGParser("<urn:g> { <urn:a> <urn:p> <urn:b> .").Parse(); err == nil {
		t.Error("expected an error for an unclosed graph block")
	}
}

func TestNewParserWithBase_Turtle(t *testing.T) {
	parser, err := NewParserWithBase("text/turtle; charset=utf-8", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	quads, err := parser.Parse(strings.NewReader("@prefix ex: <urn:ex:> .\nex:a ex:p ex:b ."))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quads) != 1 {
		t.Fatalf("expected 1 quad, got %d", len(quads))
	}
	reporter, ok := parser.(PrefixReporter)
	if !ok {
		t.Fatal("Turtle parser should report prefixes")
	}
	if reporter.Prefixes()["ex"] != "urn:ex:" {
		t.Errorf("unexpected prefixes: %v", reporter.Prefixes())
	}

	if _, ok := any(&NQuadsIOParser{}).(PrefixReporter); ok {
		t.Error("N-Quads parser should not report prefixes")
	}
}
