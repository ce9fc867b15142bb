package workflow

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/aleksaelezovic/myna/pkg/store"
)

var unsafeIDChars = regexp.MustCompile(`[^\w.-]+`)

// MakeRunID builds urn:myna:<kind>:<file>:<time> for RDF runs and
// urn:myna:sparql:<kind>:<file>:<time> for SPARQL runs. Characters outside
// [A-Za-z0-9_.-] in the file name collapse to '_'.
func MakeRunID(domain store.Domain, kind store.RunKind, fileName string, at time.Time) string {
	safe := unsafeIDChars.ReplaceAllString(fileName, "_")
	stamp := at.UTC().Format(time.RFC3339Nano)
	if domain == store.DomainSPARQL {
		return "urn:myna:sparql:" + string(kind) + ":" + safe + ":" + stamp
	}
	return "urn:myna:" + string(kind) + ":" + safe + ":" + stamp
}

// OutputFileName inserts ".mapped" before the extension. A name without
// extension gets ".mapped", or ".mapped.rq" for queries.
func OutputFileName(inputName string, domain store.Domain) string {
	idx := strings.LastIndex(inputName, ".")
	if idx <= 0 {
		if domain == store.DomainSPARQL {
			return inputName + ".mapped.rq"
		}
		return inputName + ".mapped"
	}
	return inputName[:idx] + ".mapped" + inputName[idx:]
}

// EnsureQueryExtension appends ".rq" unless name already ends in .rq or .sparql
func EnsureQueryExtension(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".rq", ".sparql":
		return name
	}
	return name + ".rq"
}

// exportFileName swaps the extension of name for ext
func exportFileName(name, ext string) string {
	if idx := strings.LastIndex(name, "."); idx > 0 {
		name = name[:idx]
	}
	return name + ext
}
