package root

import (
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "ssdeploy",
	Short: "Unattended Shadowsocks-2022 server provisioning",
	Long:  `ssdeploy provisions a sing-box Shadowsocks-2022 proxy on this host: platform detection, binary download, credential generation, service registration and shareable connection links`,
}
