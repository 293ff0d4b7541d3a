// Package schema turns schema source text into typed models.
//
// The grammar is line oriented and heuristic:
//
//	model Post {
//	  id        Int      @id @default(autoincrement())
//	  title     String
//	  published Boolean? @default(false)
//	  author    User     @relation("PostAuthor", fields: [authorId], references: [id])
//	  tags      Tag[]
//	}
//
// A `model` line opens a model, a line holding only `}` closes it, and every
// other non-blank line inside a model is a field declaration of the form
// `name type modifiers...`. Anything outside a model is ignored.
package schema

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	modelKeyword     = "model"
	optionalMarker   = "?"
	listMarker       = "[]"
	uniqueModifier   = "@unique"
	idModifier       = "@id"
	defaultModifier  = "@default"
	relationModifier = "@relation"
	blockAttribute   = "@@"
	lineComment      = "//"
	maxLineBytes     = 1 << 20
)

var (
	// ErrMalformedField is returned for a field line with fewer than two tokens.
	ErrMalformedField = errors.New("malformed field declaration")

	// ErrMalformedModel is returned for a model line without a name.
	ErrMalformedModel = errors.New("malformed model declaration")
)

// ParseFailure reports a schema that could not be read or parsed.
type ParseFailure struct {
	Path string // empty when parsing from a reader
	Line int    // zero when the failure is not tied to a line
	Err  error
}

func (e *ParseFailure) Error() string {
	src := e.Path
	if src == "" {
		src = "<input>"
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse schema %s: line %d: %v", src, e.Line, e.Err)
	}
	return fmt.Sprintf("parse schema %s: %v", src, e.Err)
}

func (e *ParseFailure) Unwrap() error { return e.Err }

// ParseFile reads and parses the schema file at path.
func ParseFile(path string) ([]Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseFailure{Path: path, Err: err}
	}
	defer f.Close()

	models, err := Parse(f)
	if err != nil {
		var pf *ParseFailure
		if errors.As(err, &pf) {
			pf.Path = path
			return nil, pf
		}
		return nil, &ParseFailure{Path: path, Err: err}
	}
	return models, nil
}

// ParseString parses schema source held in memory.
func ParseString(src string) ([]Model, error) {
	return Parse(strings.NewReader(src))
}

// Parse reads schema source from r in a single forward pass and returns the
// models in declaration order.
func Parse(r io.Reader) ([]Model, error) {
	var models []Model
	var active *Model

	commit := func() {
		if active != nil {
			models = append(models, *active)
			active = nil
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(stripComment(scanner.Text()))
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		if tokens[0] == modelKeyword {
			commit()
			var name string
			if len(tokens) > 1 {
				name, _, _ = strings.Cut(tokens[1], "{")
			}
			if name == "" {
				return nil, &ParseFailure{Line: lineNo, Err: ErrMalformedModel}
			}
			active = &Model{Name: name}
			continue
		}

		if active == nil {
			continue
		}

		switch {
		case line == "}":
			commit()
			continue
		case strings.Contains(line, "{"):
			continue
		case strings.HasPrefix(line, blockAttribute):
			continue
		}

		field, err := parseField(line, tokens)
		if err != nil {
			return nil, &ParseFailure{Line: lineNo, Err: err}
		}
		active.Fields = append(active.Fields, field)
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseFailure{Line: lineNo, Err: err}
	}

	// A schema that never closed its last model still yields it.
	commit()
	return models, nil
}

func parseField(line string, tokens []string) (Field, error) {
	if len(tokens) < 2 {
		return Field{}, fmt.Errorf("%w: %q", ErrMalformedField, line)
	}

	name, rawType := tokens[0], tokens[1]
	afterName := strings.TrimLeft(line[len(name):], " \t")
	rest := strings.TrimSpace(afterName[len(rawType):])

	f := Field{
		Name:       name,
		Type:       stripFirstMarker(rawType),
		IsRequired: !strings.Contains(rawType, optionalMarker),
		IsList:     strings.Contains(rawType, listMarker),
		Modifiers:  tokens[2:],
	}

	f.IsUnique = hasModifier(rest, uniqueModifier) || hasModifier(rest, idModifier)

	if args, ok := modifierArgs(rest, defaultModifier); ok {
		f.Default = &args
	}

	if args, ok := modifierArgs(rest, relationModifier); ok {
		related := baseType(rawType)
		relName, mapping := splitRelationArgs(args)
		if relName == "" {
			relName = related
		}
		f.Relation = &Relation{
			Name:         relName,
			Type:         ClassifyRelation(f.IsList, mapping),
			RelatedModel: related,
		}
	}

	return f, nil
}

// stripFirstMarker removes the leftmost `?` or `[]`, and only that one, so
// `User[]?` becomes `User?`.
func stripFirstMarker(rawType string) string {
	q := strings.Index(rawType, optionalMarker)
	l := strings.Index(rawType, listMarker)
	switch {
	case q < 0 && l < 0:
		return rawType
	case l < 0 || (q >= 0 && q < l):
		return rawType[:q] + rawType[q+len(optionalMarker):]
	default:
		return rawType[:l] + rawType[l+len(listMarker):]
	}
}

// baseType strips every marker, leaving the referenced model name.
func baseType(rawType string) string {
	t := strings.Replace(rawType, listMarker, "", 1)
	return strings.Replace(t, optionalMarker, "", 1)
}

// splitRelationArgs returns the relation name (first argument) and the
// fields-mapping expression (second argument) of a relation modifier.
func splitRelationArgs(args string) (name, mapping string) {
	parts := splitTopLevel(args)
	if len(parts) > 0 {
		name = relationName(parts[0])
	}
	if len(parts) > 1 {
		mapping = parts[1]
	}
	return name, mapping
}

func relationName(arg string) string {
	arg = strings.TrimSpace(arg)
	if after, ok := strings.CutPrefix(arg, "name:"); ok {
		arg = strings.TrimSpace(after)
	} else if strings.Contains(arg, ":") {
		// keyword argument, the relation is unnamed
		return ""
	}
	return strings.Trim(arg, `"'`)
}
