package core

import (
	"fmt"

	"github.com/emberstone/vitrine/pkg/hub"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// Snippet builds ready-to-paste server configuration fragments enabling
// the plugin, in both formats Emberstone servers read.
func Snippet(p hub.Plugin) (map[string]interface{}, error) {
	conf := map[string]interface{}{
		"plugins": map[string]interface{}{
			p.Name: map[string]interface{}{
				"version": p.Version,
				"enabled": true,
			},
		},
	}

	yamlSnip, err := yaml.Marshal(conf)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal (YAML): %w", err)
	}

	tomlSnip, err := toml.Marshal(conf)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal (TOML): %w", err)
	}

	return map[string]interface{}{
		"yaml": string(yamlSnip),
		"toml": string(tomlSnip),
	}, nil
}
