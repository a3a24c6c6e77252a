// conf/defaults.go default values for settings
package conf

import (
	"os"

	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)
	viper.SetDefault("dataroot", os.Getenv(EnvDataDir))
	viper.SetDefault("logfile", "")
}
