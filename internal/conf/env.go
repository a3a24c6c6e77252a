// env.go - environment variable bindings for latcat configuration
package conf

import "github.com/spf13/viper"

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string // Viper config key
	EnvVar    string // Environment variable name
}

// getEnvBindings returns all environment variable bindings
func getEnvBindings() []envBinding {
	return []envBinding{
		{"dataroot", EnvDataDir},
		{"debug", "LATCAT_DEBUG"},
		{"logfile", "LATCAT_LOG_FILE"},
	}
}

// bindEnvVars sets up environment variable bindings (internal)
func bindEnvVars() {
	for _, binding := range getEnvBindings() {
		// BindEnv only fails on empty arguments, which cannot happen here.
		_ = viper.BindEnv(binding.ConfigKey, binding.EnvVar)
	}
}
