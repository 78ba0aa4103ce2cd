package release

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"ssdeploy/internal/config"
	"ssdeploy/internal/env"
	"ssdeploy/internal/httpget"
	"ssdeploy/internal/logger"
	"ssdeploy/internal/models"
)

var ErrAllCandidatesFailed = errors.New("all download candidates exhausted")
var ErrBinaryNotInArchive = errors.New("no executable found in archive")

// Fetcher downloads a release archive from an ordered candidate list,
// validates it, and installs the contained executable to a canonical path.
type Fetcher struct {
	DownloadBase string
	Client       *http.Client
	BinaryName   string
	// InstallPaths are tried in order; the first writable target wins.
	InstallPaths []string
}

func NewFetcher() *Fetcher {
	cfg := config.App()
	return &Fetcher{
		DownloadBase: cfg.Download.DownloadBase,
		Client:       &http.Client{Timeout: cfg.Download.ArtifactTimeout},
		BinaryName:   env.BinaryName,
		InstallPaths: []string{env.PrimaryBinaryPath(), env.SecondaryBinaryPath()},
	}
}

/**
 * Build the ordered candidate URL list, most specific first
 * @param {string} base - release asset store base URL
 * @param {string} version - resolved version, empty when lookup failed
 * @param {string} arch - architecture token
 * @description
 * - With a version: tagged URL with version-qualified filename, tagged URL
 *   with plain filename, then the two latest-redirect patterns (the last
 *   covers metadata/asset-naming mismatches)
 * - Without a version: only the two latest-redirect patterns
 */
func CandidateURLs(base, version, arch string) []string {
	name := env.BinaryName
	if version == "" {
		return []string{
			fmt.Sprintf("%s/latest/download/%s-linux-%s.tar.gz", base, name, arch),
			fmt.Sprintf("%s/latest/download/%s-latest-linux-%s.tar.gz", base, name, arch),
		}
	}
	return []string{
		fmt.Sprintf("%s/download/v%s/%s-%s-linux-%s.tar.gz", base, version, name, version, arch),
		fmt.Sprintf("%s/download/v%s/%s-linux-%s.tar.gz", base, version, name, arch),
		fmt.Sprintf("%s/latest/download/%s-linux-%s.tar.gz", base, name, arch),
		fmt.Sprintf("%s/latest/download/%s-%s-linux-%s.tar.gz", base, name, version, arch),
	}
}

// Resolve builds the ReleaseCandidate for a version tag and architecture
func (f *Fetcher) Resolve(version, arch string) models.ReleaseCandidate {
	return models.ReleaseCandidate{
		VersionTag:    version,
		CandidateURLs: CandidateURLs(f.DownloadBase, version, arch),
	}
}

/**
 * Download, validate, extract and install the release binary
 * @param {ReleaseCandidate} cand - ordered candidate URLs to try
 * @returns {FetchResult, error} Installed path on success; a fatal error
 * when every candidate fails or no executable can be installed
 * @description
 * - Candidates are attempted strictly in order; the first archive that
 *   lists cleanly wins and the rest are never tried
 * - A failed candidate is transient: logged and skipped
 * - The temp working directory is removed on both success and failure
 */
func (f *Fetcher) Fetch(cand models.ReleaseCandidate) (models.FetchResult, error) {
	result := models.FetchResult{}

	tmpDir, err := os.MkdirTemp("", "ssdeploy-*")
	if err != nil {
		return result, fmt.Errorf("create temp directory: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	archivePath := filepath.Join(tmpDir, f.BinaryName+".tar.gz")
	downloaded := false
	for _, u := range cand.CandidateURLs {
		logger.Infof("Trying %s", u)
		if err := httpget.GetFile(f.Client, u, archivePath); err != nil {
			logger.Debugf("Candidate failed: %v", err)
			continue
		}
		if err := validateArchive(archivePath); err != nil {
			logger.Debugf("Candidate is not a usable archive: %v", err)
			continue
		}
		downloaded = true
		break
	}
	if !downloaded {
		return result, ErrAllCandidatesFailed
	}
	result.ArchivePath = archivePath

	extractDir := filepath.Join(tmpDir, "extract")
	if err := extractArchive(archivePath, extractDir); err != nil {
		return result, fmt.Errorf("extract archive: %v", err)
	}

	binPath, err := findExecutable(extractDir, f.BinaryName)
	if err != nil {
		return result, err
	}
	result.ExtractedBinaryPath = binPath

	installed, err := f.install(binPath)
	if err != nil {
		return result, err
	}
	result.InstalledPath = installed
	logger.Infof("Installed %s to %s", f.BinaryName, installed)
	return result, nil
}

// validateArchive lists the full archive before extraction so a truncated
// or non-archive download is detected here, not halfway through unpacking.
func validateArchive(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	entries := 0
	for {
		_, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		entries++
	}
	if entries == 0 {
		return errors.New("empty archive")
	}
	return nil
}

func extractArchive(path string, destDir string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		name := filepath.Clean(hdr.Name)
		if strings.HasPrefix(name, "..") || filepath.IsAbs(name) {
			return fmt.Errorf("archive entry escapes extraction root: %s", hdr.Name)
		}
		target := filepath.Join(destDir, name)
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			mode := fs.FileMode(hdr.Mode) & 0777
			out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return err
			}
			out.Close()
		}
	}
}

// findExecutable locates the named executable anywhere under the extraction
// root, falling back to a root-level file of that name without the mode bit.
func findExecutable(root string, name string) (string, error) {
	found := ""
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || found != "" || d.IsDir() {
			return err
		}
		if d.Name() != name {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.Mode()&0111 != 0 {
			found = path
		}
		return nil
	})
	if found != "" {
		return found, nil
	}
	// Some archives ship the binary without the executable bit set.
	rootLevel := filepath.Join(root, name)
	if info, err := os.Stat(rootLevel); err == nil && info.Mode().IsRegular() {
		return rootLevel, nil
	}
	return "", ErrBinaryNotInArchive
}

func (f *Fetcher) install(src string) (string, error) {
	var lastErr error
	for _, target := range f.InstallPaths {
		if err := copyExecutable(src, target); err != nil {
			logger.Warnf("Install to '%s' failed: %v", target, err)
			lastErr = err
			continue
		}
		return target, nil
	}
	return "", fmt.Errorf("install binary: %v", lastErr)
}

// copyExecutable copies rather than renames so the target survives the
// temp directory cleanup, and always carries the executable bit.
func copyExecutable(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0755)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return os.Chmod(dst, 0755)
}
