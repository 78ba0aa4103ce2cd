package models

// OSFamily is the detected operating system family
type OSFamily string

const (
	FamilyAlpine  OSFamily = "alpine"
	FamilyDebian  OSFamily = "debian"
	FamilyRHEL    OSFamily = "rhel"
	FamilyUnknown OSFamily = "unknown"
)

// PackageManager is the package manager matched to the OS family
type PackageManager string

const (
	PkgApk  PackageManager = "apk"
	PkgApt  PackageManager = "apt"
	PkgDnf  PackageManager = "dnf"
	PkgYum  PackageManager = "yum"
	PkgNone PackageManager = "none"
)

// Supported architecture tokens as they appear in release asset names.
const (
	ArchAmd64 = "amd64"
	ArchArm64 = "arm64"
	ArchArmv7 = "armv7"
	Arch386   = "386"
)

/**
 * Host platform profile (created once at startup, immutable afterwards)
 * @property {string} osFamily - alpine/debian/rhel/unknown
 * @property {string} packageManager - apk/apt/dnf/yum/none
 * @property {string} arch - amd64/arm64/armv7/386
 * @property {bool} archGuessed - true when the machine token was not
 * recognized and the amd64 default was applied
 */
type SystemProfile struct {
	OSFamily       OSFamily       `json:"osFamily"`
	PackageManager PackageManager `json:"packageManager"`
	Arch           string         `json:"arch"`
	ArchGuessed    bool           `json:"archGuessed,omitempty"`
}
