// Command myna rewrites IRIs in RDF data and SPARQL queries from a mapping file.
package main

func main() {
	execute()
}
