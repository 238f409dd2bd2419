package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseExitCode(t *testing.T) {
	cases := []struct {
		output string
		code   int
		ok     bool
	}{
		{"Hello Web!\nExit code: 101\n", 101, true},
		{"Exit code: 0", 0, true},
		{"Exit code: 1 then Exit code: 101", 1, true},
		{"exit code: 101", 0, false},
		{"Exit code: -1", 0, false},
		{"Exit code: ", 0, false},
		{"", 0, false},
		{"Exit code: 99999999999999999999999", 0, false},
	}

	for _, tc := range cases {
		code, ok := ParseExitCode(tc.output)
		assert.Equal(t, tc.ok, ok, "output %q", tc.output)
		assert.Equal(t, tc.code, code, "output %q", tc.output)
	}
}

func TestOutcome_Succeeded(t *testing.T) {
	assert.True(t, NewOutcome(true, "Exit code: 101").Succeeded(101))
	assert.False(t, NewOutcome(false, "Exit code: 101").Succeeded(101), "fail class")
	assert.False(t, NewOutcome(true, "Exit code: 1").Succeeded(101), "wrong code")
	assert.False(t, NewOutcome(true, "no code printed").Succeeded(101), "missing code")
	assert.False(t, NewOutcome(true, "no code printed").Succeeded(0), "missing code is not zero")
}

func TestOutcomeError(t *testing.T) {
	err := &OutcomeError{Outcome: NewOutcome(false, "Exit code: 1"), Expected: 101}
	assert.Equal(t, "test failed: exit code 1 (want 101), pass=false", err.Error())

	err = &OutcomeError{Outcome: NewOutcome(true, ""), Expected: 101}
	assert.Contains(t, err.Error(), "exit code null")
}
