// Package config resolves the credentials and model defaults of a run from
// .env files, the CLI config files and the environment.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"SupportCrew/pkg/types"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"
)

const (
	EnvOpenAIAPIKey  = "OPENAI_API_KEY"
	EnvSerperAPIKey  = "SERPER_API_KEY"
	EnvOpenAIBaseURL = "OPENAI_BASE_URL"
	EnvModelName     = "OPENAI_MODEL_NAME"

	configDir       = ".supportcrew"
	configFile      = "config.yaml"
	localConfigFile = ".supportcrew.yaml"
)

// FileConfig is the on-disk CLI configuration.
type FileConfig struct {
	APIKey       string `yaml:"api_key,omitempty"`
	BaseURL      string `yaml:"base_url,omitempty"`
	Model        string `yaml:"model,omitempty"`
	SerperAPIKey string `yaml:"serper_api_key,omitempty"`
	Embedder     string `yaml:"embedder,omitempty"`
}

// Settings are the resolved values passed explicitly to model and tool
// constructors. The process environment is never modified.
type Settings struct {
	OpenAIAPIKey  string
	OpenAIBaseURL string
	ModelName     string // Overrides the model of the default model definition
	SerperAPIKey  string
	Embedder      string
}

// GlobalConfigPath returns ~/.supportcrew/config.yaml.
func GlobalConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, configDir, configFile)
}

// LocalConfigPath returns ./.supportcrew.yaml.
func LocalConfigPath() string {
	return localConfigFile
}

// LoadConfigFile reads a config file. A missing file yields an empty config.
func LoadConfigFile(path string) (FileConfig, error) {
	var cfg FileConfig
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SaveConfigFile writes cfg to path with owner-only permissions.
func SaveConfigFile(path string, cfg FileConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// LoadEffectiveConfig merges the global config with the local one; local
// values win.
func LoadEffectiveConfig(globalPath, localPath string) (FileConfig, error) {
	cfg, err := LoadConfigFile(globalPath)
	if err != nil {
		return cfg, err
	}
	local, err := LoadConfigFile(localPath)
	if err != nil {
		return cfg, err
	}
	merge(&cfg, local)
	return cfg, nil
}

func merge(dst *FileConfig, src FileConfig) {
	if src.APIKey != "" {
		dst.APIKey = src.APIKey
	}
	if src.BaseURL != "" {
		dst.BaseURL = src.BaseURL
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.SerperAPIKey != "" {
		dst.SerperAPIKey = src.SerperAPIKey
	}
	if src.Embedder != "" {
		dst.Embedder = src.Embedder
	}
}

// Loader resolves Settings. Getenv defaults to os.Getenv.
type Loader struct {
	EnvFiles   []string // .env files, loaded in order; missing files are skipped
	GlobalPath string
	LocalPath  string
	Getenv     func(string) string
}

func NewLoader(envFiles ...string) *Loader {
	return &Loader{
		EnvFiles:   envFiles,
		GlobalPath: GlobalConfigPath(),
		LocalPath:  LocalConfigPath(),
	}
}

// Load resolves settings: config files first, then .env values, then the
// process environment.
func (l *Loader) Load() (*Settings, error) {
	fileCfg, err := LoadEffectiveConfig(l.GlobalPath, l.LocalPath)
	if err != nil {
		return nil, err
	}

	dotenv := map[string]string{}
	for _, path := range l.EnvFiles {
		values, err := godotenv.Read(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		for k, v := range values {
			dotenv[k] = v
		}
		klog.V(4).Infof("[config] loaded %d values from %s", len(values), path)
	}

	getenv := l.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	lookup := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		if v := strings.TrimSpace(dotenv[key]); v != "" {
			return v
		}
		return fallback
	}

	return &Settings{
		OpenAIAPIKey:  lookup(EnvOpenAIAPIKey, fileCfg.APIKey),
		OpenAIBaseURL: lookup(EnvOpenAIBaseURL, fileCfg.BaseURL),
		ModelName:     lookup(EnvModelName, fileCfg.Model),
		SerperAPIKey:  lookup(EnvSerperAPIKey, fileCfg.SerperAPIKey),
		Embedder:      fileCfg.Embedder,
	}, nil
}

// ApplyModels fills missing credentials and endpoints of OpenAI model
// definitions from the settings and returns the updated copy.
func (s *Settings) ApplyModels(models map[string]types.Model) map[string]types.Model {
	out := make(map[string]types.Model, len(models)+1)
	for name, m := range models {
		out[name] = m
	}
	if _, ok := out[types.DefaultModelName]; !ok {
		out[types.DefaultModelName] = types.Model{Provider: "openai", Model: "gpt-4o-mini"}
	}

	for name, m := range out {
		if m.Provider != "openai" && m.Provider != "" {
			continue
		}
		if m.APIKey == "" {
			m.APIKey = s.OpenAIAPIKey
		}
		if m.Endpoint == "" {
			m.Endpoint = s.OpenAIBaseURL
		}
		if name == types.DefaultModelName && s.ModelName != "" {
			m.Model = s.ModelName
		}
		out[name] = m
	}
	return out
}

// Mask hides all but the last four characters of a secret.
func Mask(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 8 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", 8) + secret[len(secret)-4:]
}
