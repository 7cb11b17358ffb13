// Package prompts holds the LLM prompt templates, embedded as JSON objects of key to template.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// EnhancementFile holds the resume enhancement prompts.
const EnhancementFile = "enhancement.json"

// loaded is one parsed prompt file; once guards the parse.
type loaded struct {
	once    sync.Once
	prompts map[string]string
	err     error
}

var files sync.Map // filename -> *loaded

// Get returns the template stored under key in filename.
func Get(filename, key string) (string, error) {
	prompts, err := loadFile(filename)
	if err != nil {
		return "", err
	}
	prompt, ok := prompts[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return prompt, nil
}

// MustGet is Get for prompts the binary cannot run without.
func MustGet(filename, key string) string {
	prompt, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return prompt
}

// Render formats the template under key with data.
func Render(filename, key string, data map[string]string) (string, error) {
	prompt, err := Get(filename, key)
	if err != nil {
		return "", err
	}
	return Format(prompt, data), nil
}

// Format replaces {{.Key}} placeholders with values from data in a single pass, so
// placeholders inside substituted values are left alone. Unknown placeholders are kept.
func Format(template string, data map[string]string) string {
	if len(data) == 0 {
		return template
	}
	pairs := make([]string, 0, 2*len(data))
	for key, value := range data {
		pairs = append(pairs, "{{."+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func loadFile(filename string) (map[string]string, error) {
	v, _ := files.LoadOrStore(filename, &loaded{})
	f := v.(*loaded)
	f.once.Do(func() {
		data, err := promptFiles.ReadFile(filename)
		if err != nil {
			f.err = fmt.Errorf("failed to read prompt file %s: %w", filename, err)
			return
		}
		if err := json.Unmarshal(data, &f.prompts); err != nil {
			f.err = fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
		}
	})
	return f.prompts, f.err
}

// ClearCache forgets every parsed file.
func ClearCache() {
	files.Range(func(key, _ any) bool {
		files.Delete(key)
		return true
	})
}

// List returns the sorted prompt keys of filename.
func List(filename string) ([]string, error) {
	prompts, err := loadFile(filename)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(prompts))
	for key := range prompts {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys, nil
}
