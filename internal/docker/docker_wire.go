package docker

import (
	"strings"

	"github.com/auto-dns/docker-network-attach/internal/domain"
	"github.com/docker/docker/api/types/container"
)

func fromInspectResponse(id string, resp container.InspectResponse) domain.Container {
	c := domain.Container{
		Id:       id,
		Labels:   map[string]string{},
		Networks: map[string]domain.Endpoint{},
	}
	if resp.ContainerJSONBase != nil {
		if resp.ID != "" {
			c.Id = resp.ID
		}
		c.Name = strings.TrimPrefix(resp.Name, "/")
	}
	if resp.Config != nil && resp.Config.Labels != nil {
		c.Labels = resp.Config.Labels
	}
	if resp.NetworkSettings != nil {
		for name, ep := range resp.NetworkSettings.Networks {
			if ep == nil {
				c.Networks[name] = domain.Endpoint{}
				continue
			}
			c.Networks[name] = domain.Endpoint{
				NetworkId: ep.NetworkID,
				IPAddress: ep.IPAddress,
				Aliases:   ep.Aliases,
			}
		}
	}
	return c
}
