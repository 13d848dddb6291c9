package service

import (
	"context"
	"encoding/json"

	"freightdesk/internal/auth"
	"freightdesk/internal/model"
	"freightdesk/internal/repository"
	"freightdesk/pkg/pagination"

	"go.uber.org/zap"
)

type AuditLogResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Action    string `json:"action"`
	EntityID  string `json:"entityId"`
	Details   string `json:"details"`
	CreatedAt string `json:"createdAt"`
}

type AuditService interface {
	Notifier
	GetAuditLogs(ctx context.Context, p pagination.Params) (pagination.Page[AuditLogResponse], error)
}

type auditService struct {
	repo      repository.AuditRepository
	broadcast Broadcaster
	log       *zap.Logger
}

// NewAuditService records every domain event and then hands it to broadcast (may be nil).
func NewAuditService(repo repository.AuditRepository, broadcast Broadcaster, log *zap.Logger) AuditService {
	return &auditService{repo: repo, broadcast: broadcast, log: log}
}

// Publish never fails the change that produced the event; a lost audit row is logged.
func (s *auditService) Publish(ctx context.Context, eventType string, data interface{}) {
	entry := &model.AuditLog{Action: eventType}
	if id, ok := auth.UserIDFromContext(ctx); ok {
		entry.UserID = &id
	}
	if raw, err := json.Marshal(data); err == nil {
		entry.Details = string(raw)
		var ref struct {
			ID string `json:"id"`
		}
		if json.Unmarshal(raw, &ref) == nil {
			entry.EntityID = ref.ID
		}
	}

	if err := s.repo.Log(ctx, entry); err != nil {
		s.log.Warn("audit entry not recorded", zap.String("action", eventType), zap.Error(err))
	}
	if s.broadcast != nil {
		s.broadcast.Publish(eventType, data)
	}
}

// GetAuditLogs returns the newest entries first with the acting user resolved
func (s *auditService) GetAuditLogs(ctx context.Context, p pagination.Params) (pagination.Page[AuditLogResponse], error) {
	logs, total, err := s.repo.List(ctx, p.Offset, p.Limit)
	if err != nil {
		return pagination.Page[AuditLogResponse]{}, repoMessages{}.wrap("retrieve audit logs", err)
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		username := "System"
		userID := ""
		if l.User != nil {
			username = l.User.Name
		}
		if l.UserID != nil {
			userID = l.UserID.String()
		}

		res = append(res, AuditLogResponse{
			ID:        l.ID.String(),
			UserID:    userID,
			Username:  username,
			Action:    l.Action,
			EntityID:  l.EntityID,
			Details:   l.Details,
			CreatedAt: l.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return pagination.NewPage(res, p, total), nil
}
