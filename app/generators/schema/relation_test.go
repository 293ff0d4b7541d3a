package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyRelation(t *testing.T) {
	tests := []struct {
		name    string
		isList  bool
		mapping string
		want    RelationType
	}{
		{"list with references", true, "references: [id]", OneToMany},
		{"list without references", true, "fields: [tagIds]", ManyToMany},
		{"list without mapping", true, "", ManyToMany},
		{"single with references", false, "references: [id]", ManyToOne},
		{"single without references", false, "fields: [authorId]", OneToOne},
		{"single without mapping", false, "", OneToOne},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyRelation(tt.isList, tt.mapping))
		})
	}
}
