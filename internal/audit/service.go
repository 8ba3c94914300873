package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/davegutierrez/shoplite-backend/pkg/db/models"
	"github.com/davegutierrez/shoplite-backend/pkg/enums"
	"github.com/davegutierrez/shoplite-backend/pkg/logger"
)

const publishTimeout = 5 * time.Second

// Entry is one audit fact: who did what to which entity.
type Entry struct {
	ActorUserID uuid.UUID
	Action      enums.AuditAction
	EntityType  string
	EntityID    uuid.UUID
	Detail      any
}

// Recorder is the write surface other services depend on. Record is
// best-effort: it never returns an error, because a failed audit write must
// not fail the business operation that already committed.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

// Reader exposes the audit read path for the API.
type Reader interface {
	ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit int) ([]models.AuditLog, error)
}

type publisher interface {
	Publish(ctx context.Context, msg *gcppubsub.Message) *gcppubsub.PublishResult
}

// Service writes audit rows and optionally fans each one out to Pub/Sub.
type Service struct {
	repo Repository
	pub  publisher
	logg *logger.Logger
}

// NewService wires an audit service. The publisher is optional; pass nil to
// keep audit entries database-only.
func NewService(repo Repository, pub *gcppubsub.Publisher, logg *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	svc := &Service{repo: repo, logg: logg}
	if pub != nil {
		svc.pub = pub
	}
	return svc, nil
}

// Record persists the entry and, when configured, publishes it. Failures are
// logged and swallowed.
func (s *Service) Record(ctx context.Context, entry Entry) {
	detail, err := json.Marshal(entry.Detail)
	if err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("audit detail not serializable: %v", err))
		detail = nil
	}

	row := &models.AuditLog{
		ActorUserID: entry.ActorUserID,
		Action:      entry.Action,
		EntityType:  entry.EntityType,
		EntityID:    entry.EntityID,
		Detail:      detail,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logg.Error(ctx, "audit insert failed", err)
		return
	}

	s.publish(ctx, row)
}

// ListByEntity returns the most recent audit entries for one entity.
func (s *Service) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit int) ([]models.AuditLog, error) {
	return s.repo.ListByEntity(ctx, entityType, entityID, limit)
}

func (s *Service) publish(ctx context.Context, row *models.AuditLog) {
	if s.pub == nil {
		return
	}

	payload, err := json.Marshal(map[string]any{
		"id":            row.ID.String(),
		"actor_user_id": row.ActorUserID.String(),
		"action":        row.Action.String(),
		"entity_type":   row.EntityType,
		"entity_id":     row.EntityID.String(),
		"detail":        json.RawMessage(row.Detail),
		"created_at":    row.CreatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		s.logg.Error(ctx, "audit event payload marshal failed", err)
		return
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	result := s.pub.Publish(publishCtx, &gcppubsub.Message{
		Data:       payload,
		Attributes: map[string]string{"action": row.Action.String()},
	})
	if result == nil {
		return
	}
	if _, err := result.Get(publishCtx); err != nil {
		s.logg.Error(ctx, "audit event publish failed", err)
	}
}
