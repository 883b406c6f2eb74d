package cli

import (
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// InitConfig wires settings from flags and DESKPAPER_* environment
// variables. There is no config file; the wallpaper directory is the only
// thing the agent really needs.
func InitConfig() {
	viper.SetDefault("debug", false)
	viper.SetDefault("background", false)
	viper.SetDefault("extensions", []string{"png"})
	viper.SetDefault("socket", "")

	viper.SetEnvPrefix("deskpaper")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read environment variables that match

	if viper.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}
}
