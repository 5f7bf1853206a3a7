// Package naming turns user-supplied labels into node names and keeps them
// unique within a naming scope.
//
// Names are identifiers: code generators emit them as variable names, so
// they must start with a letter, underscore or dollar sign and contain only
// letters, digits, underscores and dollar signs.
package naming

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength is the longest name accepted by Validate.
const MaxLength = 64

// Validation error codes (E200-E209).
const (
	ErrNameEmpty    = "E201" // name is empty
	ErrNameInvalid  = "E202" // name is not an identifier
	ErrNameReserved = "E203" // name is a reserved word
	ErrNameTooLong  = "E204" // name exceeds MaxLength
	ErrNameTaken    = "E205" // name already used in its naming scope
)

// ValidationError is a user-facing problem with a name. A UI shows Message
// next to the field; Code is stable for programmatic handling.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

var identifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// reserved holds words generated code cannot use as variable names.
var reserved = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true,
	"do": true, "else": true, "enum": true, "export": true, "extends": true,
	"false": true, "finally": true, "for": true, "function": true, "if": true,
	"import": true, "in": true, "instanceof": true, "new": true, "null": true,
	"return": true, "super": true, "switch": true, "this": true, "throw": true,
	"true": true, "try": true, "typeof": true, "var": true, "void": true,
	"while": true, "with": true, "let": true, "static": true, "yield": true,
	"await": true, "undefined": true,
}

// stripMarks removes combining marks after canonical decomposition, so
// "Café" becomes "Cafe".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify converts a free-form label into an identifier in lower camel
// case: "Page 1" becomes "page1", "My Button" becomes "myButton" and
// "2nd step" becomes "_2ndStep". The result is empty when the label holds
// no usable characters.
func Slugify(label string) string {
	plain, _, err := transform.String(stripMarks, label)
	if err != nil {
		plain = label
	}

	words := strings.FieldsFunc(plain, func(r rune) bool {
		return !isIdentRune(r)
	})

	var b strings.Builder
	for i, w := range words {
		if i == 0 {
			b.WriteString(lowerFirst(w))
			continue
		}
		b.WriteString(upperFirst(w))
	}

	out := b.String()
	if out != "" && out[0] >= '0' && out[0] <= '9' {
		out = "_" + out
	}
	if len(out) > MaxLength {
		out = out[:MaxLength]
	}
	return out
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '$' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// lowerFirst lowercases an all-caps word entirely ("URL" -> "url") and
// otherwise only its first letter ("Button" -> "button").
func lowerFirst(w string) string {
	if strings.ToUpper(w) == w {
		return strings.ToLower(w)
	}
	return strings.ToLower(w[:1]) + w[1:]
}

func upperFirst(w string) string {
	return strings.ToUpper(w[:1]) + w[1:]
}

// Validate reports why name cannot be used, or nil.
func Validate(name string) *ValidationError {
	switch {
	case name == "":
		return &ValidationError{Field: "name", Message: "name must not be empty", Code: ErrNameEmpty}
	case len(name) > MaxLength:
		return &ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("name must be at most %d characters", MaxLength),
			Code:    ErrNameTooLong,
		}
	case !identifier.MatchString(name):
		return &ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("%q may only contain letters, digits, \"_\" and \"$\" and must not start with a digit", name),
			Code:    ErrNameInvalid,
		}
	case reserved[name]:
		return &ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("%q is a reserved word", name),
			Code:    ErrNameReserved,
		}
	}
	return nil
}

// Taken returns the error reported when a rename collides in its scope.
func Taken(name string) *ValidationError {
	return &ValidationError{
		Field:   "name",
		Message: fmt.Sprintf("%q is already in use", name),
		Code:    ErrNameTaken,
	}
}

// Propose returns candidate if it is free, otherwise candidate with its
// trailing digits replaced by the smallest positive counter that is free:
// with "button" and "button1" taken, "button" proposes "button2".
// Reserved words are treated as taken. The result is never longer than
// MaxLength: the base is cut to make room for the counter.
func Propose(candidate string, taken map[string]bool) string {
	if !taken[candidate] && !reserved[candidate] {
		return candidate
	}
	base := strings.TrimRight(candidate, "0123456789")
	if base == "" || base == "_" {
		base = candidate
	}
	for i := 1; ; i++ {
		suffix := strconv.Itoa(i)
		name := base + suffix
		if len(name) > MaxLength {
			name = base[:MaxLength-len(suffix)] + suffix
		}
		if !taken[name] {
			return name
		}
	}
}
