package core

import (
	"fmt"

	"github.com/auto-dns/docker-network-attach/internal/config"
)

// AliasResolver derives a cluster-local DNS alias from Compose labels.
type AliasResolver struct {
	projectLabel string
	serviceLabel string
	suffix       string
}

func NewAliasResolver(cfg *config.AppConfig) AliasResolver {
	return AliasResolver{
		projectLabel: cfg.ProjectLabel,
		serviceLabel: cfg.ServiceLabel,
		suffix:       cfg.AliasSuffix,
	}
}

// Resolve returns "<service>.<project>.<suffix>" when both labels are set.
func (r AliasResolver) Resolve(labels map[string]string) (string, bool) {
	project := labels[r.projectLabel]
	service := labels[r.serviceLabel]
	if project == "" || service == "" {
		return "", false
	}
	if r.suffix == "" {
		return fmt.Sprintf("%s.%s", service, project), true
	}
	return fmt.Sprintf("%s.%s.%s", service, project, r.suffix), true
}
