// Package skimmer provides schema-guided structured data extraction from web
// pages. Given a list of URLs and a schema declaring the fields to extract,
// it fetches each page, reduces it to compact markdown, and asks a language
// model to fill in the schema, returning one outcome per URL.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, trafilatura/, genai/, sqlite/).
package skimmer
