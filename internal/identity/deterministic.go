package identity

import (
	"strconv"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// RemoteResponseUUID identifies a cached API response by its request URL.
func RemoteResponseUUID(url string) uuid.UUID {
	return UUID("remote-response:" + strings.TrimSpace(url))
}

// BuildUUID identifies a build run by its output directory and start time.
func BuildUUID(outputDir string, startedUnixNano int64) uuid.UUID {
	return UUID("build:" + strings.TrimSpace(outputDir) + ":" + strconv.FormatInt(startedUnixNano, 10))
}
