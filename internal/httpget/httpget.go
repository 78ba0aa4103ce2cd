package httpget

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

/**
 * Fetch a small document from a remote server
 * @param {Client} client - HTTP client carrying the caller's timeout
 * @param {string} urlStr - document URL
 * @returns {[]byte, error} Response body, or error on transport/HTTP failure
 */
func GetBytes(client *http.Client, urlStr string) ([]byte, error) {
	req, err := http.NewRequest("GET", urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("GetBytes: %v", err)
	}

	rsp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GetBytes: %v", err)
	}
	defer rsp.Body.Close()
	if rsp.StatusCode != 200 {
		return nil, fmt.Errorf("GetBytes('%s') code:%d", urlStr, rsp.StatusCode)
	}
	return io.ReadAll(rsp.Body)
}

/**
 * Download a file from a remote server to a local path
 * @description
 * - Creates the destination directory if needed
 * - Streams the body to disk, no in-memory buffering of the archive
 */
func GetFile(client *http.Client, urlStr string, savePath string) error {
	req, err := http.NewRequest("GET", urlStr, nil)
	if err != nil {
		return fmt.Errorf("GetFile('%s') failed: %v", urlStr, err)
	}

	rsp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("GetFile('%s') failed: %v", urlStr, err)
	}
	defer rsp.Body.Close()
	if rsp.StatusCode != 200 {
		return fmt.Errorf("GetFile('%s') code: %d", urlStr, rsp.StatusCode)
	}

	if err = os.MkdirAll(filepath.Dir(savePath), 0755); err != nil {
		return fmt.Errorf("GetFile('%s'): MkdirAll('%s') error:%v", urlStr, savePath, err)
	}
	out, err := os.Create(savePath)
	if err != nil {
		return fmt.Errorf("GetFile('%s'): create('%s') error: %v", urlStr, savePath, err)
	}
	defer out.Close()

	if _, err = io.Copy(out, rsp.Body); err != nil {
		return fmt.Errorf("GetFile('%s'): copy error: %v", urlStr, err)
	}
	return nil
}
