package rdf

import "testing"

func TestLabels_PreferEnglish(t *testing.T) {
	a := NewNamedNode("urn:a")
	b := NewNamedNode("urn:b")
	c := NewNamedNode("urn:c")
	quads := []*Quad{
		NewQuad(a, RDFSLabel, NewLiteralWithLanguage("Ding", "de"), nil),
		NewQuad(a, RDFSLabel, NewLiteralWithLanguage("Thing", "en"), nil),
		NewQuad(a, RDFSLabel, NewLiteralWithLanguage("Other thing", "en"), nil),
		NewQuad(b, RDFSLabel, NewLiteral("first"), nil),
		NewQuad(b, RDFSLabel, NewLiteral("second"), nil),
		NewQuad(c, NewNamedNode("urn:p"), NewLiteral("not a label"), nil),
		NewQuad(NewBlankNode("x"), RDFSLabel, NewLiteral("blank"), nil),
		NewQuad(c, RDFSLabel, NewNamedNode("urn:not-literal"), nil),
	}

	labels := Labels(quads)
	if len(labels) != 2 {
		t.Fatalf("expected 2 labels, got %d: %v", len(labels), labels)
	}
	if labels["urn:a"].Value != "Thing" {
		t.Errorf("expected the first en label, got %q", labels["urn:a"].Value)
	}
	if labels["urn:b"].Value != "first" {
		t.Errorf("expected first label, got %q", labels["urn:b"].Value)
	}
}

func TestComputeStats(t *testing.T) {
	a := NewNamedNode("urn:a")
	quads := []*Quad{
		NewQuad(a, RDFSLabel, NewLiteral("A"), NewNamedNode("urn:g")),
		NewQuad(a, NewNamedNode("urn:p"), NewNamedNode("urn:b"), nil),
		NewQuad(NewBlankNode("x"), NewNamedNode("urn:p"), NewLiteral("urn:looks-like-iri"), nil),
	}

	stats := ComputeStats(quads)
	if stats.TotalQuads != 3 {
		t.Errorf("expected 3 quads, got %d", stats.TotalQuads)
	}
	// urn:a, rdfs:label, urn:p, urn:b; graphs and literals are not counted
	if stats.UniqueIRIs != 4 {
		t.Errorf("expected 4 IRIs, got %d", stats.UniqueIRIs)
	}
	if stats.LabelCount != 1 {
		t.Errorf("expected 1 label, got %d", stats.LabelCount)
	}

	iris := NamedNodeIRIs(quads)
	if iris[0] != "urn:a" || iris[1] != RDFSLabel.IRI {
		t.Errorf("unexpected order %v", iris)
	}
}
