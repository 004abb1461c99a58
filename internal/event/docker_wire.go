package event

import (
	"github.com/auto-dns/docker-network-attach/internal/domain"
	"github.com/docker/docker/api/types/events"
)

func fromEventsMessage(msg events.Message) (domain.RuntimeEvent, error) {
	if msg.Type == "" || msg.Action == "" {
		return domain.RuntimeEvent{}, NewUnsupportedEventError(msg.Type, msg.Action)
	}
	return domain.RuntimeEvent{
		Type:       domain.EventType(msg.Type),
		Action:     string(msg.Action),
		ActorId:    msg.Actor.ID,
		Attributes: msg.Actor.Attributes,
	}, nil
}
