package services

import (
	"fmt"
	"os"

	"ssdeploy/internal/config"
	"ssdeploy/internal/cred"
	"ssdeploy/internal/env"
	"ssdeploy/internal/logger"
	"ssdeploy/internal/models"
	"ssdeploy/internal/pkgmgr"
	"ssdeploy/internal/pubip"
	"ssdeploy/internal/release"
	"ssdeploy/internal/sbconfig"
	"ssdeploy/internal/sslink"
	"ssdeploy/internal/supervise"
	"ssdeploy/internal/sysinfo"
	"ssdeploy/internal/utils"
)

// InstallOptions carries operator inputs into the pipeline.
type InstallOptions struct {
	Port     string
	Password string
	SkipDeps bool
}

// PipelineContext threads every stage's output to the later stages; no
// stage reaches back into an earlier one and nothing is stored globally.
type PipelineContext struct {
	Profile    models.SystemProfile
	Release    models.ReleaseCandidate
	Fetch      models.FetchResult
	Credential models.Credential
	Descriptor models.ServiceDescriptor
	Unit       models.ServiceUnit
	Host       string
	HostKnown  bool
	Link       models.ConnectionLink
}

/**
 * Install manager runs the provisioning pipeline: profile the host,
 * install prerequisites, fetch the release binary, generate credentials,
 * write the config, register the service, resolve the public address and
 * encode the connection links
 */
type InstallManager struct {
	runner   utils.Runner
	profiler *sysinfo.Profiler
	deps     *pkgmgr.Installer
	resolver *release.Resolver
	fetcher  *release.Fetcher
	writer   *sbconfig.Writer
	addr     *pubip.Resolver
	root     string
}

var installManager *InstallManager

// GetInstallManager returns the process-wide install manager instance
func GetInstallManager() *InstallManager {
	if installManager != nil {
		return installManager
	}
	installManager = NewInstallManager(utils.NewRunner(), "/")
	return installManager
}

// NewInstallManager builds a manager with an injectable runner and
// filesystem root, used directly by tests.
func NewInstallManager(r utils.Runner, root string) *InstallManager {
	return &InstallManager{
		runner:   r,
		profiler: sysinfo.NewProfiler(r),
		deps:     pkgmgr.NewInstaller(r),
		resolver: release.NewResolver(),
		fetcher:  release.NewFetcher(),
		writer:   sbconfig.NewWriter(env.ConfigPath()),
		addr:     pubip.NewResolver(),
		root:     root,
	}
}

/**
 * Run the full provisioning pipeline once
 * @param {InstallOptions} opts - operator-supplied port/password inputs
 * @returns {*PipelineContext, error} Completed context, or a fatal error;
 * side effects already applied (binary, config, unit) are left in place
 * on failure, by design
 * @description Stage order is fixed: Profiler, DependencyInstaller,
 * ArtifactFetcher (skipped when the binary is already installed),
 * CredentialGenerator, ConfigWriter, ServiceRegistrar,
 * PublicAddressResolver, LinkEncoder
 */
func (m *InstallManager) Run(opts InstallOptions) (*PipelineContext, error) {
	ctx := &PipelineContext{}
	cfg := config.App()

	ctx.Profile = m.profiler.Profile()

	if opts.SkipDeps {
		logger.Info("Skipping prerequisite installation (--skip-deps)")
	} else if err := m.deps.InstallPrerequisites(ctx.Profile.PackageManager); err != nil {
		// Non-fatal: later stages re-check what they actually need.
		logger.Warnf("Prerequisite installation skipped: %v", err)
	}

	binPath := m.InstalledBinary()
	if binPath != "" {
		logger.Infof("Binary already installed at %s, skipping download", binPath)
	} else {
		ctx.Release = m.fetcher.Resolve(m.resolver.LatestVersion(), ctx.Profile.Arch)
		fetched, err := m.fetcher.Fetch(ctx.Release)
		if err != nil {
			return ctx, fmt.Errorf("fetch %s: %w", env.BinaryName, err)
		}
		ctx.Fetch = fetched
		binPath = fetched.InstalledPath
	}

	gen := cred.NewGenerator(m.runner, binPath)
	port, err := gen.Port(opts.Port)
	if err != nil {
		return ctx, err
	}
	secret, origin := gen.Secret(m.secretOverride(opts.Password))
	ctx.Credential = models.Credential{Port: port, Secret: secret, Origin: origin}

	ctx.Descriptor = models.ServiceDescriptor{
		BinaryPath:    binPath,
		ListenAddress: cfg.Inbound.Listen,
		Port:          port,
		Method:        cfg.Inbound.Method,
		Secret:        secret,
		Tag:           cfg.Inbound.Tag,
	}
	if err := m.writer.Write(ctx.Descriptor); err != nil {
		return ctx, err
	}
	logger.Infof("Wrote service config to %s", m.writer.Path)

	if err := checkExecutable(binPath); err != nil {
		return ctx, err
	}
	ctx.Unit = supervise.ForFamily(ctx.Profile.OSFamily, m.runner, m.root).Register(ctx.Descriptor)

	ctx.Host, ctx.HostKnown = m.addr.PublicIP()
	ctx.Link = sslink.Encode(ctx.Descriptor.Method, secret, ctx.Host, port, ctx.Descriptor.Tag)
	return ctx, nil
}

/**
 * Remove every artifact a prior run may have left behind
 * @description Best-effort per item: stops and removes whichever unit
 * kind exists, then the config file, then the binary from both canonical
 * paths. Warnings only, no fatal outcomes.
 */
func (m *InstallManager) Uninstall() {
	for _, sup := range []supervise.Supervisor{
		supervise.ForFamily(models.FamilyAlpine, m.runner, m.root),
		supervise.ForFamily(models.FamilyDebian, m.runner, m.root),
	} {
		if _, err := os.Stat(sup.UnitPath()); err == nil {
			logger.Infof("Removing %s unit %s", sup.Kind(), sup.UnitPath())
			sup.Unregister()
		}
	}
	for _, path := range []string{env.ConfigPath(), env.PrimaryBinaryPath(), env.SecondaryBinaryPath()} {
		if err := os.Remove(path); err != nil {
			if !os.IsNotExist(err) {
				logger.Warnf("Remove '%s' failed: %v", path, err)
			}
			continue
		}
		logger.Infof("Removed %s", path)
	}
}

// InstalledBinary returns the canonical path holding an executable proxy
// binary, or empty when none is installed.
func (m *InstallManager) InstalledBinary() string {
	for _, path := range []string{env.PrimaryBinaryPath(), env.SecondaryBinaryPath()} {
		if checkExecutable(path) == nil {
			return path
		}
	}
	return ""
}

// secretOverride prefers the explicit flag, then the SSDEPLOY_PSK-backed
// config value.
func (m *InstallManager) secretOverride(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return config.App().Password
}

func checkExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("binary '%s' missing: %v", path, err)
	}
	if !info.Mode().IsRegular() || info.Mode()&0111 == 0 {
		return fmt.Errorf("binary '%s' is not executable", path)
	}
	return nil
}
