package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLConfig represents the structure of the optional config.yaml file.
// Deployment-specific overrides that are easier to manage in YAML than env vars.
type YAMLConfig struct {
	News     NewsConfig     `yaml:"news"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// NewsConfig overrides news provider settings.
type NewsConfig struct {
	BaseURL  string `yaml:"base_url,omitempty"`
	PageSize int    `yaml:"page_size,omitempty"`
	Language string `yaml:"language,omitempty"` // fallback language for articles that carry none
}

// DefaultsConfig overrides defaults applied to new user profiles.
type DefaultsConfig struct {
	KeywordQuota int `yaml:"keyword_quota,omitempty"`
}

// LoadYAMLConfig loads the YAML configuration file.
// Path is determined by CONFIG_FILE env var, defaulting to "config.yaml".
// Returns nil without error if the config file doesn't exist.
func LoadYAMLConfig() (*YAMLConfig, error) {
	path := getEnv("CONFIG_FILE", "config.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file is optional
			return nil, nil
		}
		return nil, err
	}

	var cfg YAMLConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Apply merges non-zero YAML overrides into the environment-derived config.
func (y *YAMLConfig) Apply(c *Config) {
	if y == nil {
		return
	}
	if y.News.BaseURL != "" {
		c.NewsAPIBaseURL = y.News.BaseURL
	}
	if y.News.PageSize > 0 {
		c.NewsPageSize = y.News.PageSize
	}
	if y.News.Language != "" {
		c.NewsDefaultLanguage = y.News.Language
	}
	if y.Defaults.KeywordQuota > 0 {
		c.DefaultKeywordQuota = y.Defaults.KeywordQuota
	}
}
