package manifest

import (
	"fmt"
	"os"
	"strings"
)

const (
	secretReferencePrefixConstant            = "${"
	secretReferenceSuffixConstant            = "}"
	unresolvedVariableSecretTemplateConstant = "environment variable %s is not set"
	emptySecretMessageConstant               = "secret value is empty"
)

// EnvironmentLookup obtains an environment variable value.
type EnvironmentLookup func(key string) (string, bool)

// SecretReference holds either a literal secret or a "${NAME}" reference to an environment variable.
type SecretReference string

// UnresolvedSecretError reports a secret that could not be turned into a usable value.
type UnresolvedSecretError struct {
	VariableName string
}

func (unresolvedError UnresolvedSecretError) Error() string {
	if len(unresolvedError.VariableName) == 0 {
		return emptySecretMessageConstant
	}
	return fmt.Sprintf(unresolvedVariableSecretTemplateConstant, unresolvedError.VariableName)
}

// VariableName reports the referenced environment variable, if any.
func (reference SecretReference) VariableName() (string, bool) {
	rawValue := string(reference)
	if !strings.HasPrefix(rawValue, secretReferencePrefixConstant) || !strings.HasSuffix(rawValue, secretReferenceSuffixConstant) {
		return "", false
	}
	variableName := strings.TrimSuffix(strings.TrimPrefix(rawValue, secretReferencePrefixConstant), secretReferenceSuffixConstant)
	if len(variableName) == 0 {
		return "", false
	}
	return variableName, true
}

// Resolve returns the secret value. References read the environment through lookup
// (os.LookupEnv when nil); unset or blank variables and empty literals yield UnresolvedSecretError.
func (reference SecretReference) Resolve(lookup EnvironmentLookup) (string, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	variableName, isReference := reference.VariableName()
	if !isReference {
		literalValue := strings.TrimSpace(string(reference))
		if len(literalValue) == 0 {
			return "", UnresolvedSecretError{}
		}
		return literalValue, nil
	}

	resolvedValue, present := lookup(variableName)
	resolvedValue = strings.TrimSpace(resolvedValue)
	if !present || len(resolvedValue) == 0 {
		return "", UnresolvedSecretError{VariableName: variableName}
	}
	return resolvedValue, nil
}
