package status

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ssdeploy/cmd/root"
	"ssdeploy/internal/env"
	"ssdeploy/internal/models"
	"ssdeploy/internal/sbconfig"
	"ssdeploy/internal/supervise"
	"ssdeploy/internal/utils"
	"ssdeploy/services"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report installed artifacts and service reachability",

	Run: func(cmd *cobra.Command, args []string) {
		binPath := services.GetInstallManager().InstalledBinary()
		if binPath != "" {
			fmt.Printf("binary:  %s\n", binPath)
		} else {
			fmt.Println("binary:  not installed")
		}

		doc, err := sbconfig.NewWriter(env.ConfigPath()).Read()
		if err != nil {
			fmt.Printf("config:  %v\n", err)
		} else {
			in := doc.Inbounds[0]
			fmt.Printf("config:  %s (method=%s port=%d)\n", env.ConfigPath(), in.Method, in.ListenPort)
			if utils.CheckPortListening(in.ListenPort) {
				fmt.Printf("port:    %d listening\n", in.ListenPort)
			} else {
				fmt.Printf("port:    %d not listening\n", in.ListenPort)
			}
		}

		runner := utils.NewRunner()
		for _, fam := range []models.OSFamily{models.FamilyAlpine, models.FamilyDebian} {
			sup := supervise.ForFamily(fam, runner, "/")
			if _, err := os.Stat(sup.UnitPath()); err == nil {
				fmt.Printf("unit:    %s (%s)\n", sup.UnitPath(), sup.Kind())
			}
		}
	},
}

func init() {
	root.RootCmd.AddCommand(statusCmd)

	statusCmd.Example = `  ssdeploy status`
}
