package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides the configuration file search.
const EnvConfigPath = "CHATLIST_CONFIG"

// placeholder is ${NAME} or ${NAME:-fallback}. The fallback may contain
// backslash-escaped characters, including "\}".
var placeholder = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-((?:[^}\\]|\\.)*))?\}`)

// Load reads the file at path. Variables from a .env file in the same
// directory are added to the environment first, without replacing ones
// that are already set.
func Load(path string) (*Config, error) {
	if err := LoadDotEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse substitutes environment placeholders and decodes the result.
// Unknown top-level keys are rejected; module sections are decoded later
// by their modules.
func Parse(raw []byte) (*Config, error) {
	expanded, err := expandEnv(raw)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parsing: %w", err)
	}
	return &cfg, nil
}

// LoadDotEnv adds the variables of each existing file to the environment.
// Variables that are already set keep their value.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		err := godotenv.Load(p)
		switch {
		case err == nil, errors.Is(err, fs.ErrNotExist):
		default:
			return fmt.Errorf("config: loading %s: %w", p, err)
		}
	}
	return nil
}

// ResolvePath picks the configuration file: explicit, else
// $CHATLIST_CONFIG, else the first of searchPaths that exists.
func ResolvePath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	candidates := searchPaths()
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("config: no configuration file found in %s", strings.Join(candidates, ", "))
}

// searchPaths lists ./chatlist.yaml, then config.yaml under the XDG config
// directory.
func searchPaths() []string {
	paths := []string{"chatlist.yaml"}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return paths
		}
		base = filepath.Join(home, ".config")
	}
	return append(paths, filepath.Join(base, "chatlist", "config.yaml"))
}

// expandEnv substitutes every placeholder. A variable that is unset and
// has no fallback is an error; all of them are named at once.
func expandEnv(raw []byte) ([]byte, error) {
	var (
		out     bytes.Buffer
		missing []string
		last    int
	)
	for _, m := range placeholder.FindAllSubmatchIndex(raw, -1) {
		out.Write(raw[last:m[0]])
		last = m[1]

		name := string(raw[m[2]:m[3]])
		if v, ok := os.LookupEnv(name); ok {
			out.WriteString(v)
			continue
		}
		if m[4] >= 0 {
			out.Write(raw[m[4]:m[5]])
			continue
		}
		out.Write(raw[m[0]:m[1]])
		if !slices.Contains(missing, name) {
			missing = append(missing, name)
		}
	}
	out.Write(raw[last:])

	if len(missing) > 0 {
		return nil, fmt.Errorf("unresolved variables: %s", strings.Join(missing, ", "))
	}
	return out.Bytes(), nil
}
