// Package responses holds the user-facing message catalog. Every key maps to one or more
// variants; placeholders are written {0}, {1}, ... and filled positionally.
package responses

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sdvdiscord/sideshow/internal/rules"
)

//go:embed strings.yaml
var defaultStrings []byte

// Catalog is immutable after loading and safe for concurrent use.
type Catalog struct {
	entries map[string][]string
}

// variants accepts either a single string or a list of strings.
type variants []string

func (v *variants) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*v = variants{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*v = list
		return nil
	}
	return fmt.Errorf("line %d: expected string or list", node.Line)
}

// Parse builds a catalog from YAML.
func Parse(data []byte) (*Catalog, error) {
	raw := make(map[string]variants)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse responses: %w", err)
	}
	c := &Catalog{entries: make(map[string][]string, len(raw))}
	for k, v := range raw {
		c.entries[k] = []string(v)
	}
	return c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultStrings)
	if err != nil {
		panic(err)
	}
	return c
}

// Load reads a catalog file and layers it over the built-in strings. An empty path
// returns the defaults.
func Load(path string) (*Catalog, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read responses: %w", err)
	}
	override, err := Parse(data)
	if err != nil {
		return nil, err
	}
	for k, v := range override.entries {
		c.entries[k] = v
	}
	return c, nil
}

// Len reports how many variants key has.
func (c *Catalog) Len(key string) int {
	return len(c.entries[key])
}

// Has reports whether key exists.
func (c *Catalog) Has(key string) bool {
	_, ok := c.entries[key]
	return ok
}

// Get returns variant index of key, clamped to the list; the key itself when missing.
func (c *Catalog) Get(key string, index int) string {
	list := c.entries[key]
	if len(list) == 0 {
		return key
	}
	return list[min(max(index, 0), len(list)-1)]
}

// Random returns a variant chosen by src.
func (c *Catalog) Random(key string, src rules.Source) string {
	n := len(c.entries[key])
	if n == 0 {
		return key
	}
	return c.Get(key, src.Intn(n))
}

// Format fills {n} placeholders. Unused arguments are ignored and placeholders without an
// argument are left as written.
func Format(template string, args ...any) string {
	if len(args) == 0 || !strings.Contains(template, "{") {
		return template
	}
	var b strings.Builder
	for {
		open := strings.IndexByte(template, '{')
		if open < 0 {
			b.WriteString(template)
			break
		}
		end := strings.IndexByte(template[open:], '}')
		if end < 0 {
			b.WriteString(template)
			break
		}
		end += open
		n, err := strconv.Atoi(template[open+1 : end])
		b.WriteString(template[:open])
		if err != nil || n < 0 || n >= len(args) {
			b.WriteString(template[open : end+1])
		} else {
			fmt.Fprint(&b, args[n])
		}
		template = template[end+1:]
	}
	return b.String()
}

// Text renders one variant of key with args.
func (c *Catalog) Text(key string, src rules.Source, args ...any) string {
	return Format(c.Random(key, src), args...)
}

// Render turns an outcome into message lines: the main response followed by any extras.
func (c *Catalog) Render(out rules.Outcome, src rules.Source) string {
	if out.Silent() {
		return ""
	}
	var tpl string
	if out.Indexed {
		tpl = c.Get(out.Key, out.Index)
	} else {
		tpl = c.Random(out.Key, src)
	}
	lines := []string{Format(tpl, out.Args...)}
	for _, key := range out.Extras {
		lines = append(lines, c.Text(key, src, out.Args...))
	}
	return strings.Join(lines, "\n")
}

// OnOff renders a toggle state.
func (c *Catalog) OnOff(enabled bool) string {
	if enabled {
		return c.Get("on", 0)
	}
	return c.Get("off", 0)
}
