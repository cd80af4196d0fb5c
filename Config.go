/*
File Name:  Config.go

Configuration is a small YAML file (gopkg.in/yaml.v3), falling back to an
embedded default when the file does not exist or is empty, mirroring the
teacher's LoadConfig/Settings.go pattern.
*/

package core

import (
	_ "embed" // required for embedding the default config file
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all runtime-configurable settings of a chat node.
type Config struct {
	Port        int          `yaml:"Port"`        // TCP port to listen on and dial peers on.
	InitialPeer string       `yaml:"InitialPeer"` // Optional host/IP to dial at startup.
	LogFile     string       `yaml:"LogFile"`     // Log file path. Empty means stdout only.
	ReusePort   bool         `yaml:"ReusePort"`   // Bind the listener with SO_REUSEADDR/SO_REUSEPORT.
	Webapi      WebapiConfig `yaml:"Webapi"`
}

// WebapiConfig controls the optional HTTP status/dashboard API.
type WebapiConfig struct {
	Enabled bool   `yaml:"Enabled"`
	Listen  string `yaml:"Listen"`
}

//go:embed config-default.yaml
var defaultConfig []byte

// LoadConfig reads the YAML configuration file at filename. If the file
// does not exist or is empty, the embedded default configuration is used
// instead.
func LoadConfig(filename string) (cfg *Config, err error) {
	var configData []byte

	stats, statErr := os.Stat(filename)
	switch {
	case statErr != nil && os.IsNotExist(statErr):
		configData = defaultConfig
	case statErr != nil:
		return nil, statErr
	case stats.Size() == 0:
		configData = defaultConfig
	default:
		if configData, err = os.ReadFile(filename); err != nil {
			return nil, err
		}
	}

	cfg = &Config{}
	if err = yaml.Unmarshal(configData, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
