// Package redact keeps configured secrets (gateway tokens, webhook keys)
// out of log output.
package redact

import (
	"regexp"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Placeholder replaces every redacted value.
const Placeholder = "***REDACTED***"

// secretKey matches configuration keys whose values are secrets.
var secretKey = regexp.MustCompile(`(?i)(secret|token|password|pass$|api_key|credential)`)

var defaultPatterns = []*regexp.Regexp{
	// Authorization header values.
	regexp.MustCompile(`(?i)\b(bearer|basic)\s+[A-Za-z0-9._~+/=-]{8,}`),
	// Webhook signatures.
	regexp.MustCompile(`sha256=[0-9a-f]{64}`),
}

// Redactor replaces known secrets in strings. It is safe for concurrent use.
type Redactor struct {
	mu       sync.RWMutex
	patterns []*regexp.Regexp
	literals []string
}

// New returns a redactor with the default header and signature patterns.
func New() *Redactor {
	return &Redactor{patterns: slices.Clone(defaultPatterns)}
}

// SetLiterals replaces the literal secrets. Empty values are dropped, and
// longer values are replaced first so a secret containing another is
// hidden whole.
func (r *Redactor) SetLiterals(secrets []string) {
	lits := slices.DeleteFunc(slices.Clone(secrets), func(s string) bool { return s == "" })
	slices.SortFunc(lits, func(a, b string) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return strings.Compare(a, b)
	})
	lits = slices.Compact(lits)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.literals = lits
}

// Redact returns s with every pattern match and literal secret replaced.
func (r *Redactor) Redact(s string) string {
	if s == "" {
		return s
	}
	r.mu.RLock()
	patterns, literals := r.patterns, r.literals
	r.mu.RUnlock()

	for _, lit := range literals {
		s = strings.ReplaceAll(s, lit, Placeholder)
	}
	for _, p := range patterns {
		s = p.ReplaceAllString(s, Placeholder)
	}
	return s
}

// Secrets walks module configuration nodes and returns the scalar values
// stored under secret-looking keys, e.g. auth.bearer_token or a webhook
// secret.
func Secrets(modules map[string]yaml.Node) []string {
	var out []string
	for _, node := range modules {
		collect(&node, false, &out)
	}
	return out
}

func collect(n *yaml.Node, secret bool, out *[]string) {
	switch n.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, c := range n.Content {
			collect(c, secret, out)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			collect(n.Content[i+1], secret || secretKey.MatchString(n.Content[i].Value), out)
		}
	case yaml.ScalarNode:
		if secret && n.Value != "" {
			*out = append(*out, n.Value)
		}
	}
}
