package audit

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/orderdeskhq/orderdesk-backend/pkg/db/models"
	"github.com/orderdeskhq/orderdesk-backend/pkg/enums"
	"github.com/orderdeskhq/orderdesk-backend/pkg/logger"
)

// Recorder writes advisory business-audit entries after successful commits.
// Failures are logged and swallowed; they must never roll back the operation
// they describe.
type Recorder struct {
	repo Repository
	logg *logger.Logger
}

// NewRecorder builds the audit recorder.
func NewRecorder(repo Repository, logg *logger.Logger) *Recorder {
	return &Recorder{repo: repo, logg: logg}
}

// Record persists one audit entry. It returns nothing; a write failure is a
// logged observability gap, not an operation failure.
func (r *Recorder) Record(ctx context.Context, actorID uuid.UUID, action enums.AuditAction, targetType string, targetID uuid.UUID, metadata map[string]any) {
	if r == nil || r.repo == nil {
		return
	}

	var raw json.RawMessage
	if len(metadata) > 0 {
		encoded, err := json.Marshal(metadata)
		if err != nil {
			r.logg.Error(ctx, "marshal audit metadata", err)
		} else {
			raw = encoded
		}
	}

	entry := &models.AuditLog{
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Metadata:   raw,
	}
	if err := r.repo.Create(ctx, entry); err != nil {
		r.logg.Error(ctx, "write audit entry", err)
	}
}
