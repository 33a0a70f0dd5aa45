package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// secretKeys are masked by Marshal.
var secretKeys = map[string]bool{
	"oauth.client_secret": true,
	"redis.password":      true,
}

// WriteDefault writes the built-in defaults to path as TOML. An existing
// file is kept unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}
	v := viper.New()
	SetDefaults(v)
	data, err := Marshal(v, false)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Marshal renders the settings of v as TOML. Durations are written as
// strings such as "10m0s"; mask replaces non-empty secrets with "****".
func Marshal(v *viper.Viper, mask bool) ([]byte, error) {
	settings := v.AllSettings()
	normalize(settings, "", mask)
	return toml.Marshal(settings)
}

func normalize(m map[string]any, prefix string, mask bool) {
	for k, val := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch x := val.(type) {
		case map[string]any:
			normalize(x, key, mask)
		case time.Duration:
			m[k] = x.String()
		case string:
			if mask && secretKeys[key] && x != "" {
				m[k] = "****"
			}
		}
	}
}
