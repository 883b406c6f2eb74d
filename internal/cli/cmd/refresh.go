package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/matjam/deskpaper/internal/ipc"
	"github.com/spf13/cobra"
)

func NewRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Re-resolve the wallpaper for the current desktop",
		Long: `Asks the running agent to look up the wallpaper for the current desktop
again. Useful after adding a wallpaper file that was missing.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if err := ipc.SendRefresh(); err != nil {
				log.Fatalf("Failed to send 'refresh' command: %v", err)
			}
			log.Info("Refresh command sent")
		},
	}
}
