// Package template handles the per-template bootstrap configuration and the
// placeholder substitution in the project manifest.
//
// Templates may ship an optional template.jsonc at the repository root that
// overrides the bootstrap defaults (placeholder token, manifest file,
// auxiliary files, commit message, target branch, legacy script name). The
// file is JSONC — JSON with comments — so template authors can annotate it;
// github.com/tidwall/jsonc strips the comments before parsing with the
// standard encoding/json library.
package template
