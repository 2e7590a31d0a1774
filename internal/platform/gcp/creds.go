package gcp

import (
	"os"
	"strings"

	"google.golang.org/api/option"
)

// ClientOptions builds credential options from an inline JSON blob or a
// file path. Empty creds fall back to GOOGLE_APPLICATION_CREDENTIALS and
// then to application default credentials.
func ClientOptions(creds string) []option.ClientOption {
	creds = strings.TrimSpace(creds)
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}
