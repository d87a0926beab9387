package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sigboard/sigboard/pkg/filetypes"
	"github.com/sigboard/sigboard/pkg/signals"
	"github.com/sigboard/sigboard/pkg/util"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

var (
	SigboardEnvVarPrefix string = "SIGBOARD_"
)

type SigboardConfiguration struct {
	HttpPort           uint              `json:"http_port,omitempty" mapstructure:"http_port" yaml:"http_port,omitempty" validate:"min=1,max=65535"`
	OverwriteOnRefresh bool              `json:"overwrite_on_refresh" mapstructure:"overwrite_on_refresh" yaml:"overwrite_on_refresh"`
	DefaultFileType    string            `json:"default_file_type,omitempty" mapstructure:"default_file_type" yaml:"default_file_type,omitempty" validate:"required,filetype"`
	LoadedWorkspace    string            `json:"loaded_workspace,omitempty" mapstructure:"loaded_workspace" yaml:"loaded_workspace,omitempty"`
	HiddenColumns      []string          `json:"hidden_columns,omitempty" mapstructure:"hidden_columns" yaml:"hidden_columns,omitempty" validate:"dive,property"`
	ResolutionFactor   float64           `json:"resolution_factor,omitempty" mapstructure:"resolution_factor" yaml:"resolution_factor,omitempty" validate:"gt=0"`
	Watch              bool              `json:"watch" mapstructure:"watch" yaml:"watch"`
	DefaultPaths       map[string]string `json:"default_paths,omitempty" mapstructure:"default_paths" yaml:"default_paths,omitempty" validate:"dive,keys,filetype,endkeys"`
}

func LoadDefaultConfiguration() *SigboardConfiguration {
	return &SigboardConfiguration{
		HttpPort:         8000,
		DefaultFileType:  "CSV",
		ResolutionFactor: signals.DefaultResolutionFactor,
		Watch:            true,
	}
}

// LoadRuntimeConfiguration reads <appDir>/.sigboard/config.yaml, writing the defaults when it
// does not exist. SIGBOARD_* environment variables override top-level keys and are expanded
// inside the file.
func LoadRuntimeConfiguration(v *viper.Viper, appDir string) (*SigboardConfiguration, error) {
	sigboardPath := filepath.Join(appDir, appDirName)
	v.AddConfigPath(sigboardPath)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvPrefix(strings.TrimSuffix(SigboardEnvVarPrefix, "_"))
	v.AutomaticEnv()

	defaults := LoadDefaultConfiguration()
	v.SetDefault("http_port", defaults.HttpPort)
	v.SetDefault("overwrite_on_refresh", defaults.OverwriteOnRefresh)
	v.SetDefault("default_file_type", defaults.DefaultFileType)
	v.SetDefault("loaded_workspace", defaults.LoadedWorkspace)
	v.SetDefault("resolution_factor", defaults.ResolutionFactor)
	v.SetDefault("watch", defaults.Watch)

	configPath := ""
	if _, err := os.Stat(filepath.Join(sigboardPath, "config.yaml")); err == nil {
		configPath = filepath.Join(sigboardPath, "config.yaml")
	} else if _, err := os.Stat(filepath.Join(sigboardPath, "config.yml")); err == nil {
		configPath = filepath.Join(sigboardPath, "config.yml")
	}

	if configPath != "" {
		configBytes, err := util.ReplaceEnvVariablesFromPath(configPath, SigboardEnvVarPrefix)
		if err != nil {
			return nil, err
		}

		err = v.ReadConfig(bytes.NewBuffer(configBytes))
		if err != nil {
			return nil, fmt.Errorf("error reading %s: %w", configPath, err)
		}
	} else {
		// No config file found, use defaults
		if err := SaveConfiguration(appDir, defaults); err != nil {
			return nil, fmt.Errorf("error initializing .sigboard/config.yaml: %w", err)
		}
	}

	var config *SigboardConfiguration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// SaveConfiguration persists settings changed at runtime, e.g. the loaded workspace
func SaveConfiguration(appDir string, config *SigboardConfiguration) error {
	marshalledConfig, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	return util.WriteFileAtomic(filepath.Join(appDir, appDirName, "config.yaml"), marshalledConfig, 0644)
}

func (rtConfig *SigboardConfiguration) Validate() error {
	if err := newValidator().Struct(rtConfig); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (rtConfig *SigboardConfiguration) ServerBaseUrl() string {
	return fmt.Sprintf("http://localhost:%d", rtConfig.HttpPort)
}

// VisiblePropertyKeys returns the signal summary properties not listed in HiddenColumns
func (rtConfig *SigboardConfiguration) VisiblePropertyKeys() []string {
	hidden := make(map[string]struct{}, len(rtConfig.HiddenColumns))
	for _, key := range rtConfig.HiddenColumns {
		hidden[key] = struct{}{}
	}

	var keys []string
	for _, key := range signals.PropertyKeys {
		if _, ok := hidden[key]; !ok {
			keys = append(keys, key)
		}
	}
	return keys
}

// DefaultPath returns the last directory used for a file type, or the app path
func (rtConfig *SigboardConfiguration) DefaultPath(fileTypeKey string) string {
	if path, ok := rtConfig.DefaultPaths[fileTypeKey]; ok && path != "" {
		return path
	}
	return AppPath()
}

func newValidator() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("filetype", func(fl validator.FieldLevel) bool {
		_, err := filetypes.NewFileType(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("property", func(fl validator.FieldLevel) bool {
		for _, key := range signals.PropertyKeys {
			if key == fl.Field().String() {
				return true
			}
		}
		return false
	})

	// Use yaml tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}
