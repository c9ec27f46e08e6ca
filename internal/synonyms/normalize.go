package synonyms

import "strings"

// Normalize trims text, collapses internal whitespace runs to a single space
// and lower-cases the result. It never fails; "" maps to "".
func Normalize(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}
