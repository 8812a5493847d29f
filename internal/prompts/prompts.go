// Package prompts holds the catalog of analysis prompt templates. Each sender
// is configured with a prompt key; resolving that key yields the system
// instructions and a user template with an {email_content} placeholder.
package prompts

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"mailsift/internal/services"
)

//go:embed default_prompts.toml
var defaultCatalog []byte

// Placeholder marks where the combined batch text is inserted into a user
// template.
const Placeholder = "{email_content}"

// Prompt is one resolved template pair.
type Prompt struct {
	System       string `toml:"system"`
	UserTemplate string `toml:"user_template"`
}

// Format substitutes the batch content into the user template.
func (p Prompt) Format(emailContent string) string {
	return strings.ReplaceAll(p.UserTemplate, Placeholder, emailContent)
}

// Catalog maps prompt keys to templates.
type Catalog struct {
	prompts map[string]Prompt
}

type catalogFile struct {
	Prompts map[string]Prompt `toml:"prompts"`
}

// Load reads a prompt catalog from path, or the embedded defaults when path
// is empty.
func Load(path string) (*Catalog, error) {
	data := defaultCatalog
	if strings.TrimSpace(path) != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "prompts", "read catalog", path, err)
		}
	}

	var file catalogFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "prompts", "parse catalog", path, err)
	}
	if len(file.Prompts) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "prompts", "parse catalog", "catalog defines no prompts", nil)
	}
	for key, prompt := range file.Prompts {
		if strings.TrimSpace(prompt.UserTemplate) == "" {
			return nil, services.Wrap(services.ErrConfiguration, "prompts", "validate catalog",
				fmt.Sprintf("prompt %q has an empty user_template", key), nil)
		}
		if !strings.Contains(prompt.UserTemplate, Placeholder) {
			return nil, services.Wrap(services.ErrConfiguration, "prompts", "validate catalog",
				fmt.Sprintf("prompt %q user_template is missing the %s placeholder", key, Placeholder), nil)
		}
	}
	return &Catalog{prompts: file.Prompts}, nil
}

// Lookup resolves a prompt key. A missing key is a configuration error; the
// orchestrator surfaces it before any fetch begins.
func (c *Catalog) Lookup(key string) (Prompt, error) {
	prompt, ok := c.prompts[key]
	if !ok {
		return Prompt{}, services.Wrap(services.ErrConfiguration, "prompts", "lookup",
			fmt.Sprintf("unknown prompt key %q", key), nil)
	}
	return prompt, nil
}

// Keys returns the catalog's prompt keys.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.prompts))
	for key := range c.prompts {
		keys = append(keys, key)
	}
	return keys
}
