package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/carepath/generic"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestEvaluateCommand(t *testing.T) {
	// GIVEN: requirements I-III and one initiative per category
	out, err := run(t, "evaluate", "--flags", "I,II,III", "--counts", "1,1,1", "--units", "1000000")

	// THEN: tier I at 16.5%
	require.NoError(t, err)
	assert.Contains(t, out, "処遇改善加算I\n")
	assert.Contains(t, out, "16.5%")
	assert.Contains(t, out, "¥1,650,000")
}

func TestEvaluateCommand_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown requirement", []string{"evaluate", "--flags", "VI"}},
		{"short counts", []string{"evaluate", "--counts", "1,1"}},
		{"non numeric count", []string{"evaluate", "--counts", "a,1,1"}},
		{"negative count", []string{"evaluate", "--counts", "-1,0,0"}},
		{"negative units", []string{"evaluate", "--units", "-5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, exitValidation, exitCode(err))
		})
	}
}

func TestSeedSampleCommand(t *testing.T) {
	out, err := run(t, "seed", "sample", "--db", ":memory:", "--log-level", "silent")
	require.NoError(t, err)
	assert.Contains(t, out, "scenario:    nursing-home")
	assert.Contains(t, out, "staff:       15")
	assert.Contains(t, out, "plan:")

	_, err = run(t, "seed", "sample", "nope", "--db", ":memory:", "--log-level", "silent")
	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCode(err))
}

func TestSeedInitiativesCommand(t *testing.T) {
	out, err := run(t, "seed", "initiatives", "--db", ":memory:", "--log-level", "silent")
	require.NoError(t, err)
	assert.Contains(t, out, "initiatives added: 14")
}

func TestFlagOverridesAreValidated(t *testing.T) {
	_, err := run(t, "seed", "initiatives", "--db", ":memory:", "--log-level", "loud")
	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCode(err))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitDB, exitCode(withCode(exitDB, errors.New("disk"))))
	assert.Equal(t, exitValidation, exitCode(generic.Invalid("x", "bad")))
	assert.Equal(t, 1, exitCode(errors.New("other")))
	assert.Nil(t, withCode(exitDB, nil))
}
