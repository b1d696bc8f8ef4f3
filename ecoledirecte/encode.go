package ecoledirecte

import "strings"

// encodeString escapes a credential for embedding inside the hand-built
// login body. The body is a JSON-looking string carried in a form-urlencoded
// field, so backslashes have to survive two layers of interpretation; the
// replacement order below matches what the live API accepts and must not be
// reordered.
func encodeString(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "&", "%26")
	s = strings.ReplaceAll(s, "+", "%2B")
	s = strings.ReplaceAll(s, `\`, `\\\`)
	s = strings.ReplaceAll(s, `\\`, `\\\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}
