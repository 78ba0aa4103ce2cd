package release

import (
	"net/http"
	"regexp"
	"strings"

	goversion "github.com/hashicorp/go-version"

	"ssdeploy/internal/config"
	"ssdeploy/internal/httpget"
	"ssdeploy/internal/logger"
)

var tagPattern = regexp.MustCompile(`"tag_name"\s*:\s*"([^"]+)"`)

// Resolver queries the release metadata endpoint for the latest version.
// Lookup failure is transient by design: the resolver returns an empty
// tag and the fetcher falls back to latest-alias URLs.
type Resolver struct {
	APIURL string
	Client *http.Client
}

func NewResolver() *Resolver {
	cfg := config.App()
	return &Resolver{
		APIURL: cfg.Download.ReleaseAPI,
		Client: &http.Client{Timeout: cfg.Download.MetadataTimeout},
	}
}

/**
 * Resolve the latest release version
 * @returns {string} Version without the leading "v", or empty when the
 * endpoint is unreachable, the body has no tag, or the tag is malformed
 */
func (r *Resolver) LatestVersion() string {
	body, err := httpget.GetBytes(r.Client, r.APIURL)
	if err != nil {
		logger.Infof("Release metadata lookup failed, using latest alias: %v", err)
		return ""
	}
	m := tagPattern.FindSubmatch(body)
	if m == nil {
		logger.Info("Release metadata has no tag_name, using latest alias")
		return ""
	}
	tag := strings.TrimPrefix(string(m[1]), "v")
	if _, err := goversion.NewVersion(tag); err != nil {
		logger.Infof("Release tag '%s' is not a valid version, using latest alias", tag)
		return ""
	}
	logger.Infof("Latest release: %s", tag)
	return tag
}
