package link

import (
	"fmt"

	"github.com/spf13/cobra"

	"ssdeploy/cmd/root"
	"ssdeploy/internal/env"
	"ssdeploy/internal/logger"
	"ssdeploy/internal/pubip"
	"ssdeploy/internal/sbconfig"
	"ssdeploy/internal/sslink"
)

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Re-emit connection links from the existing config",

	Run: func(cmd *cobra.Command, args []string) {
		doc, err := sbconfig.NewWriter(env.ConfigPath()).Read()
		if err != nil {
			logger.Fatalf("No usable service config: %v", err)
		}
		in := doc.Inbounds[0]

		host, known := pubip.NewResolver().PublicIP()
		if !known {
			fmt.Printf("Public address unknown; replace %s with the server address.\n", pubip.Placeholder)
		}
		l := sslink.Encode(in.Method, in.Password, host, in.ListenPort, in.Tag)
		fmt.Println(l.SIP002)
		fmt.Println(l.Legacy)
	},
}

func init() {
	root.RootCmd.AddCommand(linkCmd)

	linkCmd.Example = `  ssdeploy link`
}
