package utils

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	environmentKeySeparatorOldConstant              = "."
	environmentKeySeparatorNewConstant              = "_"
	configurationReadErrorTemplateConstant          = "failed to read configuration: %w"
	configurationUnmarshalErrorTemplateConstant     = "failed to parse configuration: %w"
	embeddedConfigurationMergeErrorTemplateConstant = "failed to merge embedded configuration: %w"
	configurationInvalidTemplateConstant            = "invalid configuration: %s"
	validationFailureTemplateConstant               = "%s failed %s"
	validationFailureWithParameterTemplateConstant  = "%s failed %s=%s"
	validationFailureSeparatorConstant              = "; "
)

// ConfigurationValidationError reports every field that failed validation.
type ConfigurationValidationError struct {
	Failures []string
	Cause    error
}

// Error lists the failing fields.
func (validationError ConfigurationValidationError) Error() string {
	return fmt.Sprintf(configurationInvalidTemplateConstant, strings.Join(validationError.Failures, validationFailureSeparatorConstant))
}

// Unwrap exposes the validator error.
func (validationError ConfigurationValidationError) Unwrap() error {
	return validationError.Cause
}

// ConfigurationLoader layers embedded defaults, an optional configuration file, and environment overrides through viper.
type ConfigurationLoader struct {
	configurationName         string
	configurationType         string
	environmentPrefix         string
	searchPaths               []string
	environmentKeyReplacer    *strings.Replacer
	embeddedConfiguration     []byte
	embeddedConfigurationType string
	validator                 *validator.Validate
}

// LoadedConfiguration surfaces metadata about the resolved configuration.
type LoadedConfiguration struct {
	ConfigFileUsed string
}

// NewConfigurationLoader creates a loader that searches the given paths and honors an environment prefix.
func NewConfigurationLoader(configurationName string, configurationType string, environmentPrefix string, searchPaths []string) *ConfigurationLoader {
	return &ConfigurationLoader{
		configurationName:      configurationName,
		configurationType:      configurationType,
		environmentPrefix:      environmentPrefix,
		searchPaths:            append([]string{}, searchPaths...),
		environmentKeyReplacer: strings.NewReplacer(environmentKeySeparatorOldConstant, environmentKeySeparatorNewConstant),
		validator:              validator.New(validator.WithRequiredStructEnabled()),
	}
}

// SetEmbeddedConfiguration stores configuration merged before any user-provided file.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(configurationData []byte, configurationType string) {
	if loader == nil {
		return
	}
	loader.embeddedConfigurationType = strings.TrimSpace(configurationType)
	loader.embeddedConfiguration = append([]byte(nil), configurationData...)
}

// LoadConfiguration decodes the layered configuration into targetConfiguration and validates its struct tags.
func (loader *ConfigurationLoader) LoadConfiguration(configurationFilePath string, defaultValues map[string]any, targetConfiguration any) (LoadedConfiguration, error) {
	viperInstance := viper.New()
	viperInstance.SetConfigName(loader.configurationName)
	viperInstance.SetConfigType(loader.configurationType)

	if len(loader.embeddedConfiguration) > 0 {
		if len(loader.embeddedConfigurationType) > 0 {
			viperInstance.SetConfigType(loader.embeddedConfigurationType)
		}
		if mergeError := viperInstance.MergeConfig(bytes.NewReader(loader.embeddedConfiguration)); mergeError != nil {
			return LoadedConfiguration{}, fmt.Errorf(embeddedConfigurationMergeErrorTemplateConstant, mergeError)
		}
		viperInstance.SetConfigType(loader.configurationType)
	}

	for _, searchPath := range loader.searchPaths {
		viperInstance.AddConfigPath(searchPath)
	}

	viperInstance.SetEnvPrefix(loader.environmentPrefix)
	viperInstance.SetEnvKeyReplacer(loader.environmentKeyReplacer)
	viperInstance.AutomaticEnv()

	for defaultKey, defaultValue := range defaultValues {
		viperInstance.SetDefault(defaultKey, defaultValue)
	}

	if len(strings.TrimSpace(configurationFilePath)) > 0 {
		viperInstance.SetConfigFile(configurationFilePath)
	}

	if readError := viperInstance.MergeInConfig(); readError != nil {
		var notFoundError viper.ConfigFileNotFoundError
		if !errors.As(readError, &notFoundError) {
			return LoadedConfiguration{}, fmt.Errorf(configurationReadErrorTemplateConstant, readError)
		}
	}

	if unmarshalError := viperInstance.Unmarshal(targetConfiguration); unmarshalError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationUnmarshalErrorTemplateConstant, unmarshalError)
	}

	if validationError := loader.validate(targetConfiguration); validationError != nil {
		return LoadedConfiguration{}, validationError
	}

	return LoadedConfiguration{ConfigFileUsed: viperInstance.ConfigFileUsed()}, nil
}

func (loader *ConfigurationLoader) validate(targetConfiguration any) error {
	validationError := loader.validator.Struct(targetConfiguration)
	if validationError == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(validationError, &fieldErrors) {
		return ConfigurationValidationError{Failures: []string{validationError.Error()}, Cause: validationError}
	}

	failures := make([]string, 0, len(fieldErrors))
	for _, fieldError := range fieldErrors {
		if len(fieldError.Param()) > 0 {
			failures = append(failures, fmt.Sprintf(validationFailureWithParameterTemplateConstant, fieldError.Namespace(), fieldError.Tag(), fieldError.Param()))
			continue
		}
		failures = append(failures, fmt.Sprintf(validationFailureTemplateConstant, fieldError.Namespace(), fieldError.Tag()))
	}
	return ConfigurationValidationError{Failures: failures, Cause: validationError}
}
