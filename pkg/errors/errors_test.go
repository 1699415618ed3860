package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseErrorWrapsUnderlying(t *testing.T) {
	t.Parallel()

	underlying := fmt.Errorf("unexpected token")
	err := NewParseError("workflow.yaml", 12, underlying)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, "workflow.yaml", parseErr.Path)
	require.Equal(t, 12, parseErr.Line)
	require.True(t, stdErrors.Is(err, underlying))
	require.Contains(t, err.Error(), "workflow.yaml")
	require.True(t, IsConfiguration(err))
}

func TestConfigurationErrorAggregatesFields(t *testing.T) {
	t.Parallel()

	err := NewConfigurationError("steps[1].depends_on", "references unknown step", nil)

	var configErr *ConfigurationError
	require.ErrorAs(t, err, &configErr)
	require.Equal(t, "steps[1].depends_on", configErr.Field)
	require.Contains(t, configErr.Message, "references unknown step")
	require.True(t, IsConfiguration(err))
	require.False(t, IsFatal(err))
}

func TestExecutionErrorIncludesStepContext(t *testing.T) {
	t.Parallel()

	underlying := stdErrors.New("command failed")
	err := NewExecutionError("ingest", underlying)

	var executionErr *ExecutionError
	require.ErrorAs(t, err, &executionErr)
	require.Equal(t, "ingest", executionErr.StepID)
	require.True(t, stdErrors.Is(err, underlying))
}

func TestModuleErrorIncludesModuleName(t *testing.T) {
	t.Parallel()

	underlying := stdErrors.New("not supported")
	err := NewModuleError("enrich", "enrich-step", underlying)

	var moduleErr *ModuleError
	require.ErrorAs(t, err, &moduleErr)
	require.Equal(t, "enrich", moduleErr.Module)
	require.Equal(t, "enrich-step", moduleErr.StepID)
	require.True(t, stdErrors.Is(err, underlying))
	require.True(t, IsConfiguration(err))
}

func TestFatalErrorCategory(t *testing.T) {
	t.Parallel()

	underlying := stdErrors.New("disk full")
	err := NewFatalError("writer", "checkpoint flush failed", underlying)

	var fatalErr *FatalError
	require.ErrorAs(t, err, &fatalErr)
	require.Equal(t, "writer", fatalErr.StepID)
	require.True(t, stdErrors.Is(err, underlying))
	require.True(t, IsFatal(err))
	require.False(t, IsConfiguration(err))
}

func TestCategoryOfUnknownErrorDefaultsToFatal(t *testing.T) {
	t.Parallel()

	require.True(t, IsFatal(stdErrors.New("plain error")))
}
