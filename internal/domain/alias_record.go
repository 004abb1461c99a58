package domain

import (
	"fmt"
	"net"
	"regexp"
)

// AliasRecord binds a derived alias to the address the container holds on
// the managed network.
type AliasRecord struct {
	Alias         string
	IPAddress     string
	ContainerId   string
	ContainerName string
}

func NewAliasRecord(alias, ip, containerId, containerName string) (AliasRecord, error) {
	if !isValidHostname(alias) {
		return AliasRecord{}, fmt.Errorf("invalid alias: %s", alias)
	}
	if net.ParseIP(ip) == nil {
		return AliasRecord{}, fmt.Errorf("invalid IP address for %s: %q", alias, ip)
	}
	return AliasRecord{
		Alias:         alias,
		IPAddress:     ip,
		ContainerId:   containerId,
		ContainerName: containerName,
	}, nil
}

func (r AliasRecord) Render() string {
	return fmt.Sprintf("%s -> %s (container_id=%s, container_name=%s)", r.Alias, r.IPAddress, ShortId(r.ContainerId), r.ContainerName)
}

var hostnameRegexp = regexp.MustCompile(`^[a-zA-Z0-9_](?:[a-zA-Z0-9_-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9_](?:[a-zA-Z0-9_-]{0,61}[a-zA-Z0-9])?)*$`)

func isValidHostname(h string) bool {
	return len(h) > 0 && len(h) <= 255 && hostnameRegexp.MatchString(h)
}
