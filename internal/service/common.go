package service

import (
	"context"
	"errors"

	"freightdesk/internal/repository"
	"freightdesk/pkg/apperror"

	"github.com/google/uuid"
)

// Notifier receives domain events together with the request context of the change.
// AuditService implements it.
type Notifier interface {
	Publish(ctx context.Context, eventType string, data interface{})
}

// Broadcaster pushes an event to connected clients; the websocket hub implements it.
type Broadcaster interface {
	Publish(eventType string, data interface{})
}

type noopNotifier struct{}

func (noopNotifier) Publish(context.Context, string, interface{}) {}

func notifierOrNoop(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

func parseID(raw, entity string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.Validation("Invalid %s ID", entity)
	}
	return id, nil
}

// repoMessages are the client-facing texts for the typed repository outcomes of one entity.
type repoMessages struct {
	notFound   string
	duplicate  string
	referenced string
}

func (m repoMessages) wrap(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NotFound("%s", m.notFound)
	case errors.Is(err, repository.ErrDuplicate) && m.duplicate != "":
		return apperror.Conflict("%s", m.duplicate)
	case errors.Is(err, repository.ErrReferenced) && m.referenced != "":
		return apperror.Conflict("%s", m.referenced)
	default:
		return apperror.Internal("Failed to "+op, err)
	}
}
