package runner

import (
	"fmt"
	"regexp"
	"strconv"
)

// Page contract: the harness marks ResultSelector with PassClass when the WASM
// program passed and prints "Exit code: N" somewhere in OutputSelector.
const (
	ResultSelector = "#test-result"
	OutputSelector = "#output"
	PassClass      = "pass"
)

var exitCodePattern = regexp.MustCompile(`Exit code: (\d+)`)

// ParseExitCode extracts the first "Exit code: N" from output.
func ParseExitCode(output string) (int, bool) {
	m := exitCodePattern.FindStringSubmatch(output)
	if m == nil {
		return 0, false
	}
	code, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return code, true
}

// Outcome is what the harness page reported.
type Outcome struct {
	Passed      bool
	ExitCode    int
	HasExitCode bool
	Output      string
}

// NewOutcome builds an Outcome from the pass flag and the raw output text.
func NewOutcome(passed bool, output string) Outcome {
	code, ok := ParseExitCode(output)
	return Outcome{
		Passed:      passed,
		ExitCode:    code,
		HasExitCode: ok,
		Output:      output,
	}
}

// Succeeded reports whether the page passed with the expected exit code.
func (o Outcome) Succeeded(expected int) bool {
	return o.Passed && o.HasExitCode && o.ExitCode == expected
}

// ExitCodeString renders the exit code, or "null" when the page printed none.
func (o Outcome) ExitCodeString() string {
	if !o.HasExitCode {
		return "null"
	}
	return strconv.Itoa(o.ExitCode)
}

// OutcomeError reports a completed run whose outcome did not match.
type OutcomeError struct {
	Outcome  Outcome
	Expected int
}

func (e *OutcomeError) Error() string {
	return fmt.Sprintf("test failed: exit code %s (want %d), pass=%t",
		e.Outcome.ExitCodeString(), e.Expected, e.Outcome.Passed)
}
