package configparser

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

var ErrNoFilePath = errors.New("no file path provided")

// LoadAndParseYaml loads .env (if present) and the YAML file into the
// environment, then populates cfg from its env/default tags.
func LoadAndParseYaml(filepath string, cfg any) error {
	// .env is optional; variables already exported win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("could not load .env: %w", err)
	}

	if filepath != "" {
		if err := LoadYamlFile(filepath); err != nil {
			return err
		}
	}

	return ParseEnv(cfg)
}

// LoadYamlFile reads a YAML file and loads variables into the environment.
// Nested keys are joined with '_' and upper-cased: database.host -> DATABASE_HOST.
func LoadYamlFile(filepath string) error {
	if filepath == "" {
		return ErrNoFilePath
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return fmt.Errorf("could not open YAML file: %w", err)
	}

	vars, err := FlattenYaml(data)
	if err != nil {
		return err
	}

	// Set the environment variable only if it's not already set
	for key, value := range vars {
		if os.Getenv(key) != "" {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("could not set env var %s: %w", key, err)
		}
	}

	return nil
}

// FlattenYaml decodes YAML and returns the flattened env-style key/value pairs.
func FlattenYaml(data []byte) (map[string]string, error) {
	var root yaml.MapSlice
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("error reading YAML file: %w", err)
	}

	out := make(map[string]string)
	flatten(nil, root, out)
	return out, nil
}

func flatten(prefix []string, node yaml.MapSlice, out map[string]string) {
	for _, item := range node {
		key := fmt.Sprint(item.Key)
		path := append(append([]string{}, prefix...), key)

		switch v := item.Value.(type) {
		case yaml.MapSlice:
			flatten(path, v, out)
		case nil:
			// empty values don't represent environment variables
		case []any:
			parts := make([]string, 0, len(v))
			for _, p := range v {
				parts = append(parts, expand(fmt.Sprint(p)))
			}
			out[envKey(path)] = strings.Join(parts, ",")
		default:
			out[envKey(path)] = expand(fmt.Sprint(v))
		}
	}
}

func envKey(path []string) string {
	return strings.ToUpper(strings.Join(path, "_"))
}

// expand handles the ${VAR:-default} substitution syntax.
func expand(value string) string {
	if !strings.HasPrefix(value, "${") || !strings.HasSuffix(value, "}") {
		return value
	}
	inner := value[2 : len(value)-1]
	name, def, _ := strings.Cut(inner, ":-")
	if envValue := os.Getenv(strings.TrimSpace(name)); envValue != "" {
		return envValue
	}
	return strings.TrimSpace(def)
}

// Keys returns the sorted keys of a flattened config, for diagnostics.
func Keys(vars map[string]string) []string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
