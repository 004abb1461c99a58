package registry

import (
	"fmt"
	"slices"
	"strings"

	"github.com/auto-dns/docker-network-attach/internal/domain"
)

func keyBaseForFQDN(prefix, fqdn string) string {
	prefix = strings.TrimRight(prefix, "/")
	trimmed := strings.TrimSuffix(strings.TrimSpace(fqdn), ".")
	parts := strings.Split(trimmed, ".")
	slices.Reverse(parts)
	return fmt.Sprintf("%s/%s", prefix, strings.Join(parts, "/"))
}

// keyForRecord places each container's record under its own leaf so that
// replicas sharing an alias resolve round-robin.
func keyForRecord(prefix string, rec domain.AliasRecord) string {
	return fmt.Sprintf("%s/x%s", keyBaseForFQDN(prefix, rec.Alias), domain.ShortId(rec.ContainerId))
}

// From a full etcd key to FQDN (handles trailing xNN segment)
func fqdnFromKey(prefix, key string) string {
	prefix = strings.TrimRight(prefix, "/")
	path := strings.TrimPrefix(key, prefix)
	path = strings.TrimPrefix(path, "/")
	parts := strings.Split(path, "/")
	if n := len(parts); n > 0 && strings.HasPrefix(parts[n-1], "x") {
		parts = parts[:n-1]
	}
	slices.Reverse(parts)
	return strings.Join(parts, ".")
}
