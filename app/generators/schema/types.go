package schema

// RelationType is the cardinality of a relation field.
type RelationType string

const (
	OneToOne   RelationType = "oneToOne"
	OneToMany  RelationType = "oneToMany"
	ManyToOne  RelationType = "manyToOne"
	ManyToMany RelationType = "manyToMany"
)

// Model is one entity declared in a schema file.
type Model struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"` // declaration order
}

// Field is one attribute of a model.
type Field struct {
	Name       string    `json:"name"`
	Type       string    `json:"type"` // base type, one marker stripped
	IsRequired bool      `json:"isRequired"`
	IsList     bool      `json:"isList"`
	IsUnique   bool      `json:"isUnique"`
	Default    *string   `json:"default,omitempty"`
	Relation   *Relation `json:"relation,omitempty"`
	Modifiers  []string  `json:"modifiers,omitempty"` // raw modifier tokens
}

// Relation describes a reference from a field to another model.
type Relation struct {
	Name         string       `json:"name"`
	Type         RelationType `json:"type"`
	RelatedModel string       `json:"relatedModel"`
}

// HasDefault reports whether a default value was declared.
func (f Field) HasDefault() bool { return f.Default != nil }

// DefaultValue returns the declared default or the empty string.
func (f Field) DefaultValue() string {
	if f.Default == nil {
		return ""
	}
	return *f.Default
}

// IsRelation reports whether the field references another model.
func (f Field) IsRelation() bool { return f.Relation != nil }

// ScalarFields returns the fields that are not relations, in order.
func (m Model) ScalarFields() []Field {
	out := make([]Field, 0, len(m.Fields))
	for _, f := range m.Fields {
		if f.Relation == nil {
			out = append(out, f)
		}
	}
	return out
}

// RelationFields returns the relation fields, in order.
func (m Model) RelationFields() []Field {
	var out []Field
	for _, f := range m.Fields {
		if f.Relation != nil {
			out = append(out, f)
		}
	}
	return out
}

// Field returns the last field with the given name. Later declarations win.
func (m Model) Field(name string) (Field, bool) {
	for i := len(m.Fields) - 1; i >= 0; i-- {
		if m.Fields[i].Name == name {
			return m.Fields[i], true
		}
	}
	return Field{}, false
}
