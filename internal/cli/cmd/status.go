package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/matjam/deskpaper/internal/cli/cmd/utils"
	"github.com/matjam/deskpaper/internal/ipc"
	"github.com/spf13/cobra"
)

func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Get deskpaper status",
		Long:  `Returns the current status of the running deskpaper agent.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			response, err := ipc.SendStatus()
			if err != nil {
				log.Fatalf("Error getting status: %v", err)
			}

			utils.PrintJSONColored(response)
		},
	}
}
