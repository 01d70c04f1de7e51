package config

import (
	"embed"
	"fmt"
)

//go:embed data
var defaultsFS embed.FS

// defaultContent returns the embedded default file for a content kind.
func defaultContent(name string) ([]byte, error) {
	data, err := defaultsFS.ReadFile("data/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("no embedded default for %s: %w", name, err)
	}
	return data, nil
}
