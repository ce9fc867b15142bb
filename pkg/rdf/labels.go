package rdf

// Label is the display label chosen for a resource
type Label struct {
	Value    string
	Language string
}

// Labels collects one rdfs:label per named-node subject. The first label
// seen is kept unless a later one is tagged "en"; once an "en" label is
// chosen it is never replaced.
func Labels(quads []*Quad) map[string]Label {
	labels := make(map[string]Label)
	for _, q := range quads {
		pred, ok := q.Predicate.(*NamedNode)
		if !ok || pred.IRI != RDFSLabel.IRI {
			continue
		}
		subject, ok := q.Subject.(*NamedNode)
		if !ok {
			continue
		}
		lit, ok := q.Object.(*Literal)
		if !ok {
			continue
		}

		cur, seen := labels[subject.IRI]
		if !seen || (cur.Language != "en" && lit.Language == "en") {
			labels[subject.IRI] = Label{Value: lit.Value, Language: lit.Language}
		}
	}
	return labels
}

// NamedNodeIRIs returns the distinct IRIs of named nodes in subject,
// predicate or object position, in first-seen order
func NamedNodeIRIs(quads []*Quad) []string {
	seen := make(map[string]struct{})
	var iris []string
	for _, q := range quads {
		for _, term := range [3]Term{q.Subject, q.Predicate, q.Object} {
			n, ok := term.(*NamedNode)
			if !ok {
				continue
			}
			if _, dup := seen[n.IRI]; dup {
				continue
			}
			seen[n.IRI] = struct{}{}
			iris = append(iris, n.IRI)
		}
	}
	return iris
}

// Stats summarizes a statement set
type Stats struct {
	TotalQuads int `json:"totalQuads" yaml:"totalQuads"`
	UniqueIRIs int `json:"uniqueIris" yaml:"uniqueIris"`
	LabelCount int `json:"labelCount" yaml:"labelCount"`
}

// ComputeStats counts statements, distinct named nodes and labelled resources
func ComputeStats(quads []*Quad) Stats {
	return Stats{
		TotalQuads: len(quads),
		UniqueIRIs: len(NamedNodeIRIs(quads)),
		LabelCount: len(Labels(quads)),
	}
}
