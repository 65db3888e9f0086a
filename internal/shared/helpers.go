// Package shared provides common utility functions used across multiple
// packages in the anypoint-export codebase.
package shared

import (
	"fmt"
	"strings"
)

// HTTPStatusError creates a formatted error for non-2xx HTTP responses.
func HTTPStatusError(status int, url string) error {
	return fmt.Errorf("status=%d url=%s", status, url)
}

// HTTPStatusErrorWithBody creates a formatted error that includes the
// response body for non-2xx HTTP responses.
func HTTPStatusErrorWithBody(status int, url string, body string) error {
	return fmt.Errorf("status=%d url=%s response=%s", status, url, strings.TrimSpace(body))
}

// SanitizeDirName makes an application name safe to use as a directory
// name by replacing path separators and traversal sequences.
func SanitizeDirName(name string) string {
	cleaned := strings.TrimSpace(name)
	replacer := strings.NewReplacer("/", "_", "\\", "_", "..", "_")
	cleaned = replacer.Replace(cleaned)
	if cleaned == "" {
		cleaned = "_"
	}
	return cleaned
}
