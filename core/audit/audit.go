// Package audit records who did what, when. Writes are best effort and must
// never fail the operation being audited.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/amss/core"
)

type (
	Log struct {
		ID        string    `json:"id"`
		ActorID   string    `json:"actor_id"`
		Action    string    `json:"action"`
		Detail    string    `json:"detail"`
		CreatedAt time.Time `json:"created_at"`

		ActorName string `json:"actor_name,omitempty"`
	}

	Repository interface {
		CreateLog(ctx context.Context, entry Log, exec ...core.DBExecutor) error
		QueryLogs(ctx context.Context, action string, limit int, exec ...core.DBExecutor) ([]Log, error)
	}

	Service struct {
		repo   Repository
		logger core.Logger
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (svc *Service) Log(ctx context.Context, actorID, action, detail string) {
	entry := Log{
		ID:        uuid.New().String(),
		ActorID:   actorID,
		Action:    action,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}
	if err := svc.repo.CreateLog(ctx, entry); err != nil {
		svc.logger.Error("audit: recording "+action, err)
	}
}

func (svc *Service) Query(ctx context.Context, action string, limit int) ([]Log, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return svc.repo.QueryLogs(ctx, action, limit)
}
