package registry

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/auto-dns/docker-network-attach/internal/domain"
)

// etcdRecord is the SkyDNS service entry read by CoreDNS's etcd plugin. The
// owner fields are ignored by CoreDNS.
type etcdRecord struct {
	Host               string    `json:"host"`
	OwnerHostname      string    `json:"owner_hostname"`
	OwnerContainerId   string    `json:"owner_container_id"`
	OwnerContainerName string    `json:"owner_container_name"`
	Created            time.Time `json:"created"`
}

func marshalEtcdValue(rec domain.AliasRecord, hostname string, created time.Time) (string, error) {
	wire := etcdRecord{
		Host:               rec.IPAddress,
		OwnerHostname:      hostname,
		OwnerContainerId:   rec.ContainerId,
		OwnerContainerName: rec.ContainerName,
		Created:            created,
	}
	b, err := json.Marshal(wire)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// unmarshalEtcdValue decodes a stored record and reports the hostname that
// wrote it.
func unmarshalEtcdValue(key, raw, prefix string) (domain.AliasRecord, string, error) {
	var wire etcdRecord
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return domain.AliasRecord{}, "", fmt.Errorf("decode etcd value: %w", err)
	}
	rec, err := domain.NewAliasRecord(fqdnFromKey(prefix, key), wire.Host, wire.OwnerContainerId, wire.OwnerContainerName)
	if err != nil {
		return domain.AliasRecord{}, "", err
	}
	return rec, wire.OwnerHostname, nil
}
