package environment

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// ParseEnvTags fills a struct from environment variables using struct tags.
// Fields without a value in the environment receive their `default` tag.
//
//	type Options struct {
//	    Level string `env:"LOG_LEVEL" default:"INFO"`
//	}
func ParseEnvTags(prefix string, cfg any) error {
	return walkEnvTags(prefix, cfg, true)
}

// OverlayEnvTags only sets the fields whose variable is present in the
// environment, leaving every other field untouched. It is used to layer the
// environment over values that came from a config file.
func OverlayEnvTags(prefix string, cfg any) error {
	return walkEnvTags(prefix, cfg, false)
}

// ApplyDefaults sets every field carrying a `default` tag to that default.
func ApplyDefaults(cfg any) error {
	v, err := structValue(cfg)
	if err != nil {
		return err
	}
	t := v.Type()
	for i := range v.NumField() {
		field := v.Field(i)
		def, ok := t.Field(i).Tag.Lookup("default")
		if !field.CanSet() || !ok {
			continue
		}
		if err := setFieldValue(field, def, t.Field(i).Tag.Get("separator")); err != nil {
			return fmt.Errorf("error setting field %s: %w", t.Field(i).Name, err)
		}
	}
	return nil
}

func structValue(cfg any) (reflect.Value, error) {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, errors.New("cfg must be a pointer to a struct")
	}
	return v.Elem(), nil
}

func walkEnvTags(prefix string, cfg any, useDefaults bool) error {
	v, err := structValue(cfg)
	if err != nil {
		return err
	}
	t := v.Type()

	for i := range v.NumField() {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.CanSet() {
			continue
		}

		envKey := fieldType.Tag.Get("env")
		if envKey == "" {
			continue
		}
		separator := fieldType.Tag.Get("separator")
		required := fieldType.Tag.Get("required") == "true"

		ek := GetEnvKeyPrefix(prefix, envKey)
		value, set := os.LookupEnv(ek)
		if !set || value == "" {
			if !useDefaults {
				continue
			}
			if required {
				return fmt.Errorf("required environment variable %s is not set", ek)
			}
			value = fieldType.Tag.Get("default")
		}

		if err := setFieldValue(field, value, separator); err != nil {
			return fmt.Errorf("error setting field %s: %w", fieldType.Name, err)
		}
	}

	return nil
}

// setFieldValue sets a reflect.Value based on its type
func setFieldValue(field reflect.Value, value, separator string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		if value == "" {
			return nil
		}
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			duration, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("cannot parse duration: %w", err)
			}
			field.SetInt(int64(duration))
			return nil
		}
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("cannot parse int: %w", err)
		}
		field.SetInt(intVal)

	case reflect.Bool:
		if value == "" {
			return nil
		}
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("cannot parse bool: %w", err)
		}
		field.SetBool(boolVal)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type())
		}
		if value == "" {
			return nil
		}
		if separator == "" {
			separator = ","
		}
		parts := strings.Split(value, separator)
		stringSlice := make([]string, len(parts))
		for i, part := range parts {
			stringSlice[i] = strings.TrimSpace(part)
		}
		field.Set(reflect.ValueOf(stringSlice))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}
