package config

import (
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/temirov/gitmigrate/internal/credentials"
)

const listSeparatorConstant = ","

var (
	tokenSourceType  = reflect.TypeOf(credentials.TokenSource{})
	providerNameType = reflect.TypeOf(credentials.ProviderName(""))
)

// DecodeHook converts textual configuration values into typed fields: token
// source declarations, normalized provider names, and comma separated lists
// supplied through environment variables.
func DecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		tokenSourceDecodeHook,
		providerNameDecodeHook,
		mapstructure.StringToSliceHookFunc(listSeparatorConstant),
	)
}

func tokenSourceDecodeHook(sourceType reflect.Type, targetType reflect.Type, data any) (any, error) {
	if targetType != tokenSourceType || sourceType.Kind() != reflect.String {
		return data, nil
	}
	declaration := strings.TrimSpace(data.(string))
	if len(declaration) == 0 {
		return credentials.TokenSource{}, nil
	}
	return credentials.ParseTokenSource(declaration)
}

func providerNameDecodeHook(sourceType reflect.Type, targetType reflect.Type, data any) (any, error) {
	if targetType != providerNameType || sourceType.Kind() != reflect.String {
		return data, nil
	}
	return credentials.ProviderName(data.(string)).Normalize(), nil
}
