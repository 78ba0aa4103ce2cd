package uninstall

import (
	"github.com/spf13/cobra"

	"ssdeploy/cmd/root"
	"ssdeploy/services"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Stop the service and remove every installed artifact",
	Long:  `The 'uninstall' command stops and deregisters the service unit, then removes the unit file, the service config and the installed binary. Each removal is best-effort.`,

	Run: func(cmd *cobra.Command, args []string) {
		services.GetInstallManager().Uninstall()
	},
}

func init() {
	root.RootCmd.AddCommand(uninstallCmd)

	uninstallCmd.Example = `  ssdeploy uninstall`
}
