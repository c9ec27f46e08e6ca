// Package taxonomy ships the default tag taxonomy and synonym dictionary.
package taxonomy

import _ "embed"

// Synonyms maps free-text phrases to canonical tag slugs.
//
//go:embed synonyms.json
var Synonyms []byte

// Tags is the seed list of canonical tags.
//
//go:embed tags_taxonomy.json
var Tags []byte
