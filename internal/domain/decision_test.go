package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTitle(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		want  string
	}{
		{"Plain", "Should I take the job?", "Should I take the job?"},
		{"LowercasePrefix", "life branch Should I move?", "Should I move?"},
		{"MixedCasePrefix", "Life Branch Should I move?", "Should I move?"},
		{"UppercasePrefix", "LIFE BRANCH go back to school", "go back to school"},
		{"PrefixOnly", "life branch", ""},
		{"PrefixOnlyWithSpaces", "  life branch   ", ""},
		{"Whitespace", "   ", ""},
		{"Empty", "", ""},
		{"PrefixMidTitle", "my life branch decision", "my life branch decision"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeTitle(tc.in))
		})
	}
}

func TestValidConfidence(t *testing.T) {
	assert.False(t, ValidConfidence(0))
	assert.True(t, ValidConfidence(1))
	assert.True(t, ValidConfidence(3))
	assert.True(t, ValidConfidence(5))
	assert.False(t, ValidConfidence(6))
	assert.False(t, ValidConfidence(-1))
}

func TestIsTerminal(t *testing.T) {
	d := Decision{State: StateDraft}
	assert.False(t, d.IsTerminal())
	d.State = StateCommitted
	assert.True(t, d.IsTerminal())
	d.State = StateResolved
	assert.True(t, d.IsTerminal())
}
