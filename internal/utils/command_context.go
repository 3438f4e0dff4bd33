package utils

import "context"

type commandContextKey string

// ContextValue stores and retrieves one typed value in command execution contexts.
type ContextValue[T any] struct {
	key commandContextKey
}

// NewContextValue constructs a ContextValue keyed by name.
func NewContextValue[T any](name string) ContextValue[T] {
	return ContextValue[T]{key: commandContextKey(name)}
}

// With attaches the value to the provided context.
func (contextValue ContextValue[T]) With(parentContext context.Context, value T) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, contextValue.key, value)
}

// From extracts the value from the provided context.
func (contextValue ContextValue[T]) From(executionContext context.Context) (T, bool) {
	var zeroValue T
	if executionContext == nil {
		return zeroValue, false
	}
	value, available := executionContext.Value(contextValue.key).(T)
	if !available {
		return zeroValue, false
	}
	return value, true
}

// ConfigurationFilePath carries the configuration file that was actually loaded.
var ConfigurationFilePath = NewContextValue[string]("configurationFilePath")
