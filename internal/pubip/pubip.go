package pubip

import (
	"net/http"
	"strings"
	"time"

	"ssdeploy/internal/config"
	"ssdeploy/internal/httpget"
	"ssdeploy/internal/logger"
)

// Placeholder is substituted when every endpoint fails; the operator is
// told to fill in the real address by hand.
const Placeholder = "<SERVER_IP>"

// Resolver queries external address-echo endpoints in a fixed order with
// a short per-attempt timeout.
type Resolver struct {
	Endpoints []string
	Client    *http.Client
}

func NewResolver() *Resolver {
	return &Resolver{
		Endpoints: config.App().Endpoints,
		Client:    &http.Client{Timeout: 5 * time.Second},
	}
}

/**
 * Resolve the host's public address
 * @returns {string, bool} First non-empty whitespace-stripped response
 * and true; Placeholder and false when the list is exhausted
 * @description Endpoint failures are transient: logged at debug level
 * and the next endpoint is tried. Exhaustion is degraded, not fatal.
 */
func (r *Resolver) PublicIP() (string, bool) {
	for _, ep := range r.Endpoints {
		body, err := httpget.GetBytes(r.Client, ep)
		if err != nil {
			logger.Debugf("Address lookup via '%s' failed: %v", ep, err)
			continue
		}
		addr := strings.TrimSpace(string(body))
		if addr == "" {
			logger.Debugf("Address lookup via '%s' returned empty body", ep)
			continue
		}
		return addr, true
	}
	logger.Warnf("Could not determine public address; substitute %s in the links below", Placeholder)
	return Placeholder, false
}
