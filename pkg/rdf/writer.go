package rdf

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
)

const rdfType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

// CommonPrefixes are the vocabulary namespaces Turtle output may compact
// against when the input carried no declarations of its own
var CommonPrefixes = map[string]string{
	"rdf":  "http://www.w3.org/1999/02/22-rdf-syntax-ns#",
	"rdfs": "http://www.w3.org/2000/01/rdf-schema#",
	"owl":  "http://www.w3.org/2002/07/owl#",
	"xsd":  "http://www.w3.org/2001/XMLSchema#",
}

// WriteNQuads writes one statement per line, keeping graph terms
func WriteNQuads(w io.Writer, quads []*Quad) error {
	bw := bufio.NewWriter(w)
	for _, q := range quads {
		if _, err := bw.WriteString(q.String() + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteNTriples writes one triple per line, dropping graph terms
func WriteNTriples(w io.Writer, quads []*Quad) error {
	bw := bufio.NewWriter(w)
	for _, q := range quads {
		if _, err := fmt.Fprintf(bw, "%s %s %s .\n", q.Subject, q.Predicate, q.Object); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteTurtle writes the triples of quads (graph terms dropped) as Turtle.
// Named nodes are compacted against prefixes where the local part is a safe
// PN_LOCAL; consecutive statements sharing a subject are joined with ';'.
func WriteTurtle(w io.Writer, quads []*Quad, prefixes map[string]string) error {
	bw := bufio.NewWriter(w)

	labels := make([]string, 0, len(prefixes))
	for label := range prefixes {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		if _, err := fmt.Fprintf(bw, "@prefix %s: <%s> .\n", label, escapeIRI(prefixes[label])); err != nil {
			return err
		}
	}
	if len(labels) > 0 && len(quads) > 0 {
		if _, err := bw.WriteString("\n"); err != nil {
			return err
		}
	}

	tw := turtleTerms{prefixes: prefixes, labels: labels}
	for i, q := range quads {
		var line string
		switch {
		case i > 0 && q.Subject.Equals(quads[i-1].Subject):
			line = fmt.Sprintf(" ;\n    %s %s", tw.predicate(q.Predicate), tw.term(q.Object))
		case i > 0:
			line = fmt.Sprintf(" .\n%s %s %s", tw.term(q.Subject), tw.predicate(q.Predicate), tw.term(q.Object))
		default:
			line = fmt.Sprintf("%s %s %s", tw.term(q.Subject), tw.predicate(q.Predicate), tw.term(q.Object))
		}
		if _, err := bw.WriteString(line); err != nil {
			return err
		}
	}
	if len(quads) > 0 {
		if _, err := bw.WriteString(" .\n"); err != nil {
			return err
		}
	}

	return bw.Flush()
}

type turtleTerms struct {
	prefixes map[string]string
	labels   []string
}

func (t turtleTerms) predicate(term Term) string {
	if n, ok := term.(*NamedNode); ok && n.IRI == rdfType {
		return "a"
	}
	return t.term(term)
}

func (t turtleTerms) term(term Term) string {
	switch v := term.(type) {
	case *NamedNode:
		return t.iri(v.IRI)
	case *Literal:
		if v.Language == "" && v.Datatype != nil && v.Datatype.IRI != XSDString.IRI {
			return `"` + escapeLiteral(v.Value) + `"^^` + t.iri(v.Datatype.IRI)
		}
		return v.String()
	default:
		return term.String()
	}
}

func (t turtleTerms) iri(iri string) string {
	// Longest namespace wins so nested namespaces compact predictably
	best, bestNS := "", ""
	found := false
	for _, label := range t.labels {
		ns := t.prefixes[label]
		if ns == "" || !strings.HasPrefix(iri, ns) || len(ns) < len(bestNS) {
			continue
		}
		if !isSafeTurtleLocal(iri[len(ns):]) {
			continue
		}
		best, bestNS, found = label, ns, true
	}
	if !found {
		return "<" + escapeIRI(iri) + ">"
	}
	return best + ":" + iri[len(bestNS):]
}

func isSafeTurtleLocal(local string) bool {
	if local == "" {
		return true
	}
	if local[0] == '-' || local[0] == '.' || local[len(local)-1] == '.' {
		return false
	}
	for i := 0; i < len(local); i++ {
		ch := local[i]
		if !isLetter(ch) && !(ch >= '0' && ch <= '9') && ch != '_' && ch != '-' && ch != '.' {
			return false
		}
	}
	return true
}
