package sysinfo

import (
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"ssdeploy/internal/logger"
	"ssdeploy/internal/models"
	"ssdeploy/internal/utils"
)

// Profiler detects the host OS family, package manager and architecture.
// Detection failures are never fatal: unmatched input degrades to
// unknown/none and an unrecognized machine token defaults to amd64.
type Profiler struct {
	ReleaseFile string
	Runner      utils.Runner
}

// NewProfiler returns a profiler reading the standard os-release file
func NewProfiler(r utils.Runner) *Profiler {
	return &Profiler{
		ReleaseFile: "/etc/os-release",
		Runner:      r,
	}
}

/**
 * Detect the host platform profile
 * @returns {SystemProfile} Profile with family, package manager and arch
 * @description
 * - Parses the os-release ID/ID_LIKE fields, lowercased, against known
 *   family keywords
 * - Picks dnf over yum on rhel when both are present
 * - Maps the kernel machine token to one of four architecture tokens,
 *   warning and defaulting to amd64 when the token is unrecognized
 */
func (p *Profiler) Profile() models.SystemProfile {
	profile := models.SystemProfile{
		OSFamily:       models.FamilyUnknown,
		PackageManager: models.PkgNone,
		Arch:           models.ArchAmd64,
	}

	data, err := os.ReadFile(p.ReleaseFile)
	if err != nil {
		logger.Warnf("Read '%s' failed: %v, OS family unknown", p.ReleaseFile, err)
	} else {
		profile.OSFamily = DetectFamily(string(data))
	}
	profile.PackageManager = p.packageManager(profile.OSFamily)

	machine := machineToken()
	arch, ok := MapArch(machine)
	if !ok {
		logger.Warnf("Unrecognized machine type '%s', assuming %s", machine, models.ArchAmd64)
		profile.ArchGuessed = true
	}
	profile.Arch = arch

	logger.Infof("Detected platform: family=%s pkg=%s arch=%s",
		profile.OSFamily, profile.PackageManager, profile.Arch)
	return profile
}

/**
 * Match os-release content against known family keywords
 * @param {string} data - raw os-release file content
 * @returns {OSFamily} Matched family, FamilyUnknown if nothing matches
 */
func DetectFamily(data string) models.OSFamily {
	ids := ""
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "ID=") || strings.HasPrefix(line, "ID_LIKE=") {
			ids += " " + strings.ToLower(strings.Trim(strings.SplitN(line, "=", 2)[1], `"`))
		}
	}
	switch {
	case strings.Contains(ids, "alpine"):
		return models.FamilyAlpine
	case strings.Contains(ids, "debian"), strings.Contains(ids, "ubuntu"):
		return models.FamilyDebian
	case strings.Contains(ids, "centos"), strings.Contains(ids, "rhel"), strings.Contains(ids, "fedora"):
		return models.FamilyRHEL
	}
	return models.FamilyUnknown
}

// packageManager maps the family to its package manager, probing for dnf
// versus yum on rhel-like systems.
func (p *Profiler) packageManager(family models.OSFamily) models.PackageManager {
	switch family {
	case models.FamilyAlpine:
		return models.PkgApk
	case models.FamilyDebian:
		return models.PkgApt
	case models.FamilyRHEL:
		if _, err := p.Runner.LookPath("dnf"); err == nil {
			return models.PkgDnf
		}
		return models.PkgYum
	}
	return models.PkgNone
}

/**
 * Map a kernel machine token to a supported architecture token
 * @returns {string, bool} Architecture token and whether the input was
 * recognized; unrecognized input returns the amd64 default and false
 */
func MapArch(machine string) (string, bool) {
	switch strings.ToLower(machine) {
	case "x86_64", "amd64":
		return models.ArchAmd64, true
	case "aarch64", "arm64":
		return models.ArchArm64, true
	case "armv7l", "armv7", "armhf":
		return models.ArchArmv7, true
	case "i386", "i486", "i586", "i686", "x86":
		return models.Arch386, true
	}
	return models.ArchAmd64, false
}

// machineToken reports the kernel machine type via uname(2)
func machineToken() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return ""
	}
	return unix.ByteSliceToString(uts.Machine[:])
}
