package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func RegisterFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("socket", "", "IPC socket (default is $XDG_RUNTIME_DIR/deskpaper.sock)")
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("socket", rootCmd.PersistentFlags().Lookup("socket"))

	rootCmd.Flags().BoolP("background", "b", false, "Run as a daemon")
	rootCmd.Flags().StringSliceP("extensions", "e", []string{"png"}, "Wallpaper file extensions, tried in order")
	viper.BindPFlag("background", rootCmd.Flags().Lookup("background"))
	viper.BindPFlag("extensions", rootCmd.Flags().Lookup("extensions"))

	rootCmd.Flags().Bool("show-config", false, "Dump resolved settings")
	rootCmd.Flags().BoolP("version", "v", false, "Print version")
}
