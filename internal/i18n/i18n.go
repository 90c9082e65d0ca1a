package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFiles embed.FS

// DefaultLanguage is the fallback catalog.
const DefaultLanguage = "en"

// Catalog holds translation catalogs keyed by language
type Catalog struct {
	messages map[string]map[string]string
}

// Load parses the embedded locale files
func Load() (*Catalog, error) {
	c := &Catalog{messages: make(map[string]map[string]string)}

	entries, err := fs.ReadDir(localeFiles, "locales")
	if err != nil {
		return nil, fmt.Errorf("failed to read locales: %w", err)
	}

	for _, e := range entries {
		lang := strings.TrimSuffix(e.Name(), ".yaml")
		raw, err := fs.ReadFile(localeFiles, "locales/"+e.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read locale %s: %w", lang, err)
		}

		msgs := make(map[string]string)
		if err := yaml.Unmarshal(raw, &msgs); err != nil {
			return nil, fmt.Errorf("failed to parse locale %s: %w", lang, err)
		}
		c.messages[lang] = msgs
	}

	if _, ok := c.messages[DefaultLanguage]; !ok {
		return nil, fmt.Errorf("default locale %q is missing", DefaultLanguage)
	}

	return c, nil
}

// Languages lists loaded languages
func (c *Catalog) Languages() []string {
	langs := make([]string, 0, len(c.messages))
	for l := range c.messages {
		langs = append(langs, l)
	}
	return langs
}

// T resolves a key in the given language, falling back to the default
// language and finally to the key itself. Params substitute {name}
// placeholders.
func (c *Catalog) T(lang, key string, params map[string]string) string {
	msg, ok := c.messages[lang][key]
	if !ok {
		msg, ok = c.messages[DefaultLanguage][key]
	}
	if !ok {
		return key
	}

	for name, value := range params {
		msg = strings.ReplaceAll(msg, "{"+name+"}", value)
	}
	return msg
}
