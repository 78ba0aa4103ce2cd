package pkgmgr

import (
	"errors"
	"fmt"

	"ssdeploy/internal/logger"
	"ssdeploy/internal/models"
	"ssdeploy/internal/utils"
)

var ErrNoPackageManager = errors.New("no supported package manager")

// Prerequisites is the fixed package set the pipeline wants present:
// certificate store, transfer tool, archive tool, cryptographic tool.
// Later stages re-check individual tools before use, so installation
// failure is survivable.
var Prerequisites = []string{"ca-certificates", "curl", "tar", "openssl"}

// Installer issues one batched install through the detected package manager
type Installer struct {
	Runner utils.Runner
}

func NewInstaller(r utils.Runner) *Installer {
	return &Installer{Runner: r}
}

/**
 * Install the prerequisite package set
 * @param {PackageManager} pm - package manager detected by the profiler
 * @returns {error} Non-nil when installation could not complete; callers
 * must treat this as a warning, never as a pipeline abort
 */
func (i *Installer) InstallPrerequisites(pm models.PackageManager) error {
	cmds, err := InstallCommands(pm, Prerequisites)
	if err != nil {
		return err
	}
	for _, cmd := range cmds {
		logger.Infof("Installing prerequisites: %v", cmd)
		if err := i.Runner.Run(cmd[0], cmd[1:]...); err != nil {
			return fmt.Errorf("install prerequisites via %s: %v", pm, err)
		}
	}
	return nil
}

/**
 * Build the batched install command lines for a package manager
 * @returns {[][]string, error} One or two argv slices, in execution order
 */
func InstallCommands(pm models.PackageManager, packages []string) ([][]string, error) {
	switch pm {
	case models.PkgApk:
		return [][]string{
			append([]string{"apk", "add", "--no-cache"}, packages...),
		}, nil
	case models.PkgApt:
		return [][]string{
			{"apt-get", "update"},
			append([]string{"apt-get", "install", "-y"}, packages...),
		}, nil
	case models.PkgDnf:
		return [][]string{
			append([]string{"dnf", "install", "-y"}, packages...),
		}, nil
	case models.PkgYum:
		return [][]string{
			append([]string{"yum", "install", "-y"}, packages...),
		}, nil
	}
	return nil, ErrNoPackageManager
}
