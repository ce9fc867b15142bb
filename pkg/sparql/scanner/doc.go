// Package scanner is a conservative lexer for SPARQL text.
//
// It recognizes just enough of the language to find IRI references and
// prefixed names without ever looking inside comments or string literals,
// and resolves PREFIX/BASE declarations. It is not a parser: anything it does
// not understand is passed through as plain text and no input makes it fail.
package scanner
