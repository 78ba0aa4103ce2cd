package env

import "path/filepath"

// Canonical install/runtime locations for the provisioned proxy.
var BinaryName = "sing-box"
var PrimaryBinDir = "/usr/local/bin"
var SecondaryBinDir = "/usr/bin"
var ConfigDir = "/etc/sing-box"
var PidFile = "/run/sing-box.pid"

/**
 * Get the proxy configuration file path
 * @returns {string} Returns fixed config path under ConfigDir
 */
func ConfigPath() string {
	return filepath.Join(ConfigDir, "config.json")
}

/**
 * Get the primary install target for the proxy binary
 */
func PrimaryBinaryPath() string {
	return filepath.Join(PrimaryBinDir, BinaryName)
}

/**
 * Get the fallback install target for the proxy binary
 */
func SecondaryBinaryPath() string {
	return filepath.Join(SecondaryBinDir, BinaryName)
}
