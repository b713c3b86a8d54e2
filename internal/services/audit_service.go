package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/menuqr/hotel-menu-backend/internal/database"
	"github.com/menuqr/hotel-menu-backend/internal/models"
	"github.com/menuqr/hotel-menu-backend/internal/utils"
)

// RequestMeta carries caller metadata recorded with audit events
type RequestMeta struct {
	IP        string
	UserAgent string
}

// AuditService records immutable payment events. Audit failures are
// logged and swallowed so they never break a payment flow.
type AuditService struct {
	repo    *database.PaymentAuditRepository
	logger  *logrus.Logger
	enabled bool
}

// NewAuditService creates a new audit service
func NewAuditService(repo *database.PaymentAuditRepository, logger *logrus.Logger, enabled bool) *AuditService {
	return &AuditService{
		repo:    repo,
		logger:  logger,
		enabled: enabled,
	}
}

// Record writes an audit entry, attaching parsed device metadata
func (s *AuditService) Record(ctx context.Context, audit *models.PaymentAudit, meta RequestMeta) {
	if !s.enabled {
		return
	}

	device := utils.ParseUserAgent(meta.UserAgent)
	audit.SetMetadata(meta.IP, meta.UserAgent, device.Label())

	if err := s.repo.Log(ctx, audit); err != nil {
		s.logger.WithError(err).WithField("event_type", audit.EventType).
			Error("Failed to record payment audit event")
	}
}
