package audit

import (
	"context"
	"encoding/json"

	"salesdesk_backend/platform/logger"

	"github.com/google/uuid"
)

// maxListLimit caps audit listings regardless of the requested page size.
const maxListLimit = 500

// Store defines the data access interface needed by the audit service.
type Store interface {
	Insert(ctx context.Context, userID *uuid.UUID, action, entity, entityID string, details []byte) error
	List(ctx context.Context, filter ListFilter) ([]Entry, error)
}

// Service records and lists audit entries. Recording never fails the caller:
// a lost audit row is logged, the business operation proceeds.
type Service struct {
	store Store
	log   *logger.Logger
}

// NewService creates a new audit service.
func NewService(store Store, log *logger.Logger) *Service {
	return &Service{store: store, log: log}
}

// Record writes an audit entry. Marshal or insert failures are logged and
// swallowed so audit problems cannot break business flows.
func (s *Service) Record(ctx context.Context, userID *uuid.UUID, action, entity, entityID string, details map[string]any) {
	var payload []byte
	if details != nil {
		var err error
		payload, err = json.Marshal(details)
		if err != nil {
			s.log.Error("audit details marshal failed", "action", action, "entity", entity, "error", err)
			payload = nil
		}
	}

	if err := s.store.Insert(context.WithoutCancel(ctx), userID, action, entity, entityID, payload); err != nil {
		s.log.Error("audit record failed",
			"action", action,
			"entity", entity,
			"entity_id", entityID,
			"error", err,
		)
	}
}

// List returns audit entries matching the filter, capped at 500 rows.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	if filter.Limit <= 0 || filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	return s.store.List(ctx, filter)
}
