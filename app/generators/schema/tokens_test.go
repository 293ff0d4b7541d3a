package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModifierArgs(t *testing.T) {
	tests := []struct {
		text     string
		modifier string
		want     string
		found    bool
	}{
		{`@default(false)`, "@default", "false", true},
		{`@id @default(autoincrement())`, "@default", "autoincrement()", true},
		{`@default("a (b) c")`, "@default", `"a (b) c"`, true},
		{`@relation(fields: [a, b], references: [id])`, "@relation", "fields: [a, b], references: [id]", true},
		{`@relation`, "@relation", "", true},
		{`@unique`, "@default", "", false},
		{`@defaultish(1)`, "@default", "", false},
		{`x@default(1)`, "@default", "", false},
		{`@default(1`, "@default", "1", true},
		{`@default("x @relation(a, b)")`, "@relation", "", false},
		{`@map("@unique")`, "@unique", "", false},
		{`@map("@id") @unique`, "@unique", "", true},
		{`@default('@id')`, "@id", "", false},
	}

	for _, tt := range tests {
		got, found := modifierArgs(tt.text, tt.modifier)
		assert.Equal(t, tt.found, found, tt.text)
		assert.Equal(t, tt.want, got, tt.text)
	}
}

func TestSplitTopLevel(t *testing.T) {
	assert.Nil(t, splitTopLevel("  "))
	assert.Equal(t, []string{`"A, B"`, "fields: [a, b]", "references: [id]"},
		splitTopLevel(`"A, B", fields: [a, b], references: [id]`))
}

func TestStripComment(t *testing.T) {
	assert.Equal(t, "title String ", stripComment("title String // the title"))
	assert.Equal(t, `url String @default("http://x")`, stripComment(`url String @default("http://x")`))
}

func TestStripFirstMarker(t *testing.T) {
	assert.Equal(t, "User", stripFirstMarker("User"))
	assert.Equal(t, "User", stripFirstMarker("User?"))
	assert.Equal(t, "User", stripFirstMarker("User[]"))
	assert.Equal(t, "User?", stripFirstMarker("User[]?"))
	assert.Equal(t, "User[]", stripFirstMarker("User?[]"))
}
