package manifest_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/ranger/internal/manifest"
)

func TestSecretReferenceResolve(testInstance *testing.T) {
	environment := map[string]string{
		"GITLAB_TOKEN": "glpat-secret",
		"BLANK_TOKEN":  "   ",
	}
	lookup := func(key string) (string, bool) {
		value, present := environment[key]
		return value, present
	}

	testCases := []struct {
		name             string
		reference        manifest.SecretReference
		expectedValue    string
		expectUnresolved bool
		expectedVariable string
	}{
		{name: "environment_reference", reference: "${GITLAB_TOKEN}", expectedValue: "glpat-secret"},
		{name: "literal_value", reference: "my-token-123", expectedValue: "my-token-123"},
		{name: "missing_variable", reference: "${MISSING_TOKEN}", expectUnresolved: true, expectedVariable: "MISSING_TOKEN"},
		{name: "blank_variable", reference: "${BLANK_TOKEN}", expectUnresolved: true, expectedVariable: "BLANK_TOKEN"},
		{name: "empty_literal", reference: "", expectUnresolved: true},
		{name: "partial_reference_is_literal", reference: "${GITLAB_TOKEN", expectedValue: "${GITLAB_TOKEN"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			resolvedValue, resolveError := testCase.reference.Resolve(lookup)
			if !testCase.expectUnresolved {
				require.NoError(testInstance, resolveError)
				require.Equal(testInstance, testCase.expectedValue, resolvedValue)
				return
			}

			var unresolvedError manifest.UnresolvedSecretError
			require.True(testInstance, errors.As(resolveError, &unresolvedError))
			require.Equal(testInstance, testCase.expectedVariable, unresolvedError.VariableName)
			require.Empty(testInstance, resolvedValue)
		})
	}
}

func TestSecretReferenceVariableName(testInstance *testing.T) {
	variableName, isReference := manifest.SecretReference("${MY_VAR}").VariableName()
	require.True(testInstance, isReference)
	require.Equal(testInstance, "MY_VAR", variableName)

	_, literalIsReference := manifest.SecretReference("plain").VariableName()
	require.False(testInstance, literalIsReference)
}
