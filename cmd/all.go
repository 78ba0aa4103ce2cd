package cmd

import (
	_ "ssdeploy/cmd/install"
	_ "ssdeploy/cmd/link"
	_ "ssdeploy/cmd/root"
	_ "ssdeploy/cmd/status"
	_ "ssdeploy/cmd/uninstall"
)
