package install

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ssdeploy/cmd/root"
	"ssdeploy/internal/logger"
	"ssdeploy/internal/models"
	"ssdeploy/internal/pubip"
	"ssdeploy/services"
)

var optPort string
var optPassword string
var optSkipDeps bool
var optNoPrompt bool

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Provision the proxy service on this host",
	Long:  `The 'install' command runs the full pipeline: detect the platform, install prerequisites, download the release binary, generate credentials, write the config, register the service and print connection links`,

	Run: func(cmd *cobra.Command, args []string) {
		opts := services.InstallOptions{
			Port:     optPort,
			Password: optPassword,
			SkipDeps: optSkipDeps,
		}
		if !optNoPrompt && isatty.IsTerminal(os.Stdin.Fd()) {
			promptMissing(&opts)
		}

		ctx, err := services.GetInstallManager().Run(opts)
		if err != nil {
			logger.Fatalf("Installation failed: %v", err)
		}
		printSummary(ctx)
	},
}

// promptMissing asks for the port and password on an attached terminal.
// Empty answers mean auto-generate; a non-digit port is rejected later in
// the pipeline as fatal.
func promptMissing(opts *services.InstallOptions) {
	reader := bufio.NewReader(os.Stdin)
	if opts.Port == "" {
		fmt.Print("Listening port (empty = random): ")
		line, _ := reader.ReadString('\n')
		opts.Port = strings.TrimSpace(line)
	}
	if opts.Password == "" {
		fmt.Print("Password (empty = generate): ")
		pw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err == nil {
			opts.Password = strings.TrimSpace(string(pw))
		}
	}
}

func printSummary(ctx *services.PipelineContext) {
	fmt.Println()
	fmt.Printf("Method:  %s\n", ctx.Descriptor.Method)
	fmt.Printf("Port:    %d\n", ctx.Descriptor.Port)
	fmt.Printf("Service: %s (%s)\n", ctx.Unit.Kind, ctx.Unit.Outcome)
	if ctx.Credential.Origin == models.OriginWeakFallback {
		fmt.Println("WARNING: the generated PSK is timestamp-derived and weak; replace it.")
	}
	if !ctx.HostKnown {
		fmt.Printf("Public address unknown; replace %s with the server address.\n", pubip.Placeholder)
	}
	fmt.Println()
	fmt.Println(ctx.Link.SIP002)
	fmt.Println(ctx.Link.Legacy)
}

func init() {
	installCmd.Flags().SortFlags = false
	installCmd.Flags().StringVarP(&optPort, "port", "p", "", "Listening port (10000-60000, empty = random)")
	installCmd.Flags().StringVarP(&optPassword, "password", "k", "", "Pre-shared key (empty = generate, or set SSDEPLOY_PSK)")
	installCmd.Flags().BoolVar(&optSkipDeps, "skip-deps", false, "Skip prerequisite package installation")
	installCmd.Flags().BoolVar(&optNoPrompt, "no-prompt", false, "Never prompt, even on a terminal")
	root.RootCmd.AddCommand(installCmd)

	installCmd.Example = `  ssdeploy install
  ssdeploy install --port 28443 --no-prompt
  SSDEPLOY_PSK=... ssdeploy install --no-prompt`
}
