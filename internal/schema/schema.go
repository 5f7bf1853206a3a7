// Package schema checks the wire shape of documents and patches against an
// embedded CUE schema before they are decoded.
//
// Shape problems (unknown attribute keys, floats, malformed ids) are
// reported with the JSON path and, when CUE knows it, the line in the input.
// Tree invariants are not checked here; dom.Decode does that.
package schema

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed schema.cue
var schemaSource string

// Validation error codes (E300-E309).
const (
	ErrSchemaInternal  = "E300" // embedded schema failed to build
	ErrSchemaSyntax    = "E301" // input is not valid JSON
	ErrSchemaViolation = "E302" // input does not satisfy the schema
)

// ValidationError is one schema problem in an input document.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// A cue.Context is not safe for concurrent use.
var (
	mu     sync.Mutex
	ctx    *cue.Context
	schema cue.Value
)

func load() (cue.Value, error) {
	if ctx == nil {
		ctx = cuecontext.New()
		schema = ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	}
	return schema, schema.Err()
}

// ValidateDocument checks data against #Document.
func ValidateDocument(data []byte) []ValidationError {
	return validate("document.json", "#Document", data)
}

// ValidatePatch checks data against #Patch.
func ValidatePatch(data []byte) []ValidationError {
	return validate("patch.json", "#Patch", data)
}

func validate(filename, def string, data []byte) []ValidationError {
	mu.Lock()
	defer mu.Unlock()

	s, err := load()
	if err != nil {
		return []ValidationError{{Field: def, Message: err.Error(), Code: ErrSchemaInternal}}
	}

	expr, err := cuejson.Extract(filename, data)
	if err != nil {
		return convert(err, filename, ErrSchemaSyntax)
	}
	value := ctx.BuildExpr(expr)
	if err := value.Err(); err != nil {
		return convert(err, filename, ErrSchemaSyntax)
	}

	unified := s.LookupPath(cue.ParsePath(def)).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return convert(err, filename, ErrSchemaViolation)
	}
	return nil
}

// convert flattens CUE errors, preferring positions inside the input file.
func convert(err error, filename, code string) []ValidationError {
	var out []ValidationError
	seen := make(map[string]bool)
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		ve := ValidationError{
			Field:   strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
			Code:    code,
			Line:    inputLine(e, filename),
		}
		key := ve.Field + "\x00" + ve.Message
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ve)
	}
	if len(out) == 0 {
		out = append(out, ValidationError{Message: err.Error(), Code: code})
	}
	return out
}

func inputLine(e cueerrors.Error, filename string) int {
	positions := append([]token.Pos{e.Position()}, e.InputPositions()...)
	for _, p := range positions {
		if p.IsValid() && p.Filename() == filename {
			return p.Line()
		}
	}
	return 0
}
