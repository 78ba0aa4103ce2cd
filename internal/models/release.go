package models

/**
 * Resolved release information
 * @property {string} versionTag - release version without the leading "v";
 * empty when the metadata lookup failed (latest-alias URLs are used instead)
 * @property {[]string} candidateURLs - download URLs ordered most-specific
 * first; always contains at least the latest-based patterns
 */
type ReleaseCandidate struct {
	VersionTag    string   `json:"versionTag,omitempty"`
	CandidateURLs []string `json:"candidateURLs"`
}

// FetchResult records the paths produced by a successful artifact fetch.
// ArchivePath and ExtractedBinaryPath live in the per-run temp directory
// and are gone once the fetch stage returns; InstalledPath survives.
type FetchResult struct {
	ArchivePath         string `json:"archivePath"`
	ExtractedBinaryPath string `json:"extractedBinaryPath"`
	InstalledPath       string `json:"installedPath"`
}
