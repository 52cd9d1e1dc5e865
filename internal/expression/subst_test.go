package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstitutePrimaryKey(t *testing.T) {
	testCases := []struct {
		name     string
		expr     string
		pkField  string
		expected string
		changed  bool
	}{
		{
			name:     "Bare and quoted references",
			expr:     `gid > 10 AND "gid" < 100`,
			pkField:  "gid",
			expected: `@id > 10 AND @id < 100`,
			changed:  true,
		},
		{
			name:     "Word boundaries protect longer identifiers",
			expr:     `gid = 5 OR idx = 2`,
			pkField:  "id",
			expected: `gid = 5 OR idx = 2`,
			changed:  false,
		},
		{
			name:     "Standalone occurrence of short name",
			expr:     `id = 5`,
			pkField:  "id",
			expected: `@id = 5`,
			changed:  true,
		},
		{
			name:     "Already-rewritten token is left alone",
			expr:     `@id = 5`,
			pkField:  "id",
			expected: `@id = 5`,
			changed:  false,
		},
		{
			name:     "Mixed rewritten and bare references",
			expr:     `@id = 5 OR id = 6`,
			pkField:  "id",
			expected: `@id = 5 OR @id = 6`,
			changed:  true,
		},
		{
			name:     "No reference at all",
			expr:     `"name" IS NOT NULL`,
			pkField:  "gid",
			expected: `"name" IS NOT NULL`,
			changed:  false,
		},
		{
			name:     "Regex metacharacters in field name are literal",
			expr:     `"area(m2)" > 0`,
			pkField:  "area(m2)",
			expected: `@id > 0`,
			changed:  true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, changed := SubstitutePrimaryKey(tc.expr, tc.pkField)
			assert.Equal(t, tc.expected, result)
			assert.Equal(t, tc.changed, changed)
		})
	}
}

func TestSubstituteBool(t *testing.T) {
	testCases := []struct {
		name     string
		expr     string
		field    string
		expected string
		changed  bool
	}{
		{
			name:     "Bare reference",
			expr:     `is_active = true`,
			field:    "is_active",
			expected: `if("is_active", true, false) = true`,
			changed:  true,
		},
		{
			name:     "Quoted reference",
			expr:     `"is_active" = true`,
			field:    "is_active",
			expected: `if("is_active", true, false) = true`,
			changed:  true,
		},
		{
			name:     "Conditional form is left alone",
			expr:     `if("is_active", true, false) = true`,
			field:    "is_active",
			expected: `if("is_active", true, false) = true`,
			changed:  false,
		},
		{
			name:     "Bare reference beside conditional form",
			expr:     `if("is_active", true, false) AND is_active`,
			field:    "is_active",
			expected: `if("is_active", true, false) AND if("is_active", true, false)`,
			changed:  true,
		},
		{
			name:     "Word boundaries",
			expr:     `is_active_old = 1`,
			field:    "is_active",
			expected: `is_active_old = 1`,
			changed:  false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, changed := SubstituteBool(tc.expr, tc.field)
			assert.Equal(t, tc.expected, result)
			assert.Equal(t, tc.changed, changed)
		})
	}
}

func TestSubstituteBool_TwoFieldsDoNotInterfere(t *testing.T) {
	expr := `visible AND selected`

	result, changed := SubstituteBool(expr, "visible")
	assert.True(t, changed)

	result, changed = SubstituteBool(result, "selected")
	assert.True(t, changed)

	assert.Equal(t, `if("visible", true, false) AND if("selected", true, false)`, result)
}

func TestSubstituteBool_Idempotent(t *testing.T) {
	once, changed := SubstituteBool(`is_active OR "is_active"`, "is_active")
	assert.True(t, changed)

	twice, changed := SubstituteBool(once, "is_active")
	assert.False(t, changed)
	assert.Equal(t, once, twice)
}

func TestSubstitutePrimaryKey_Idempotent(t *testing.T) {
	once, changed := SubstitutePrimaryKey(`gid = 1 AND "gid" = 2`, "gid")
	assert.True(t, changed)

	twice, changed := SubstitutePrimaryKey(once, "gid")
	assert.False(t, changed)
	assert.Equal(t, once, twice)
}
