/*
Copyright © 2025 Nathan Ollerenshaw <chrome@stupendous.net>
*/
package cli

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/matjam/deskpaper"
	"github.com/matjam/deskpaper/internal/cli/cmd"
	"github.com/matjam/deskpaper/internal/cli/cmd/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "deskpaper <dir>",
	Short: "A per-desktop wallpaper agent for X11",
	Long: `Deskpaper watches the active virtual desktop and sets the root window
background to <dir>/<desktop name>-<width>x<height>.png whenever it changes.
Decoded wallpapers are kept in X server pixmaps so switching back is instant.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if infoOnly(cmd) {
			return nil
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	Run: func(c *cobra.Command, args []string) {
		if v, err := c.Flags().GetBool("show-config"); err == nil && v {
			log.Infof("All settings:")
			utils.PrintJSONColored(viper.AllSettings())
			return
		}

		babyBlue := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
		yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
		green := lipgloss.NewStyle().Foreground(lipgloss.Color("76"))
		if v, err := c.Flags().GetBool("version"); err == nil && v {
			log.Infof("%v version %v © 2025 %v",
				babyBlue.Render("deskpaper "),
				green.Render(strings.Trim(deskpaper.Version, "\n\r ")),
				yellow.Render("Nathan Ollerenshaw"))
			return
		}

		dir, err := utils.AbsPath(args[0])
		if err != nil {
			log.Fatalf("Invalid wallpaper directory: %v", err)
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			log.Warnf("Wallpaper directory %s is not readable yet, wallpapers will be picked up when it appears", dir)
		}

		cmd.StartManager(dir)
	},
}

func infoOnly(c *cobra.Command) bool {
	for _, name := range []string{"version", "show-config"} {
		if v, err := c.Flags().GetBool(name); err == nil && v {
			return true
		}
	}
	return false
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(InitConfig)

	RegisterFlags(rootCmd)

	rootCmd.AddCommand(
		cmd.NewStatusCmd(),
		cmd.NewRefreshCmd(),
		cmd.NewStopCmd(),
		cmd.NewGenManCmd(rootCmd),
	)
}
