package sslink

import (
	"encoding/base64"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"ssdeploy/internal/models"
)

/**
 * Encode credentials as the two shareable URI forms
 * @param {string} host - public address or the operator placeholder
 * @returns {ConnectionLink} SIP002 (percent-encoded user-info) and legacy
 * (base64 user-info) renderings of the same tuple
 * @description Both forms embed "<method>:<secret>" as user-info; decoding
 * either form recovers that string exactly
 */
func Encode(method, secret, host string, port int, tag string) models.ConnectionLink {
	hostPort := net.JoinHostPort(host, strconv.Itoa(port))
	fragment := url.PathEscape(tag)

	sip002 := fmt.Sprintf("ss://%s@%s#%s",
		url.UserPassword(method, secret).String(), hostPort, fragment)

	legacy := fmt.Sprintf("ss://%s@%s#%s",
		base64.StdEncoding.EncodeToString([]byte(method+":"+secret)), hostPort, fragment)

	return models.ConnectionLink{SIP002: sip002, Legacy: legacy}
}

/**
 * Recover "<method>:<secret>" from either URI form
 * @param {string} uri - ss:// URI in SIP002 or legacy encoding
 * @returns {string, string, error} Method and secret, or a parse error
 */
func DecodeUserInfo(uri string) (string, string, error) {
	rest, ok := strings.CutPrefix(uri, "ss://")
	if !ok {
		return "", "", fmt.Errorf("not an ss:// URI")
	}
	userinfo, _, ok := strings.Cut(rest, "@")
	if !ok {
		return "", "", fmt.Errorf("URI has no user-info")
	}

	if strings.Contains(userinfo, ":") {
		// SIP002 percent-encoded form keeps the separating colon raw.
		rawMethod, rawSecret, _ := strings.Cut(userinfo, ":")
		method, err := url.PathUnescape(rawMethod)
		if err != nil {
			return "", "", err
		}
		secret, err := url.PathUnescape(rawSecret)
		if err != nil {
			return "", "", err
		}
		return method, secret, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(userinfo)
	if err != nil {
		return "", "", fmt.Errorf("user-info is neither percent-encoded nor base64: %v", err)
	}
	method, secret, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return "", "", fmt.Errorf("decoded user-info has no method separator")
	}
	return method, secret, nil
}
