package schema

import "strings"

// referencesKeyword marks the foreign-key holding side of a relation.
const referencesKeyword = "references"

// ClassifyRelation derives the cardinality of a relation from the shape of
// the field and its fields-mapping expression. mapping is empty when the
// relation modifier carried no mapping.
//
//	isList  references  result
//	true    yes         oneToMany
//	true    no          manyToMany
//	false   yes         manyToOne
//	false   no          oneToOne
//
// This is a heuristic; hand written schemas can be misclassified.
func ClassifyRelation(isList bool, mapping string) RelationType {
	refs := strings.Contains(mapping, referencesKeyword)
	switch {
	case isList && refs:
		return OneToMany
	case isList:
		return ManyToMany
	case refs:
		return ManyToOne
	default:
		return OneToOne
	}
}
