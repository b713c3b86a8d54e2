package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/menuqr/hotel-menu-backend/internal/database"
	"github.com/menuqr/hotel-menu-backend/internal/models"
)

// ExpiryService deactivates hotels whose subscriptions have lapsed.
// It runs once at startup and then on a fixed interval; sweep errors are
// logged only, the next tick retries naturally.
type ExpiryService struct {
	hotels   *database.HotelRepository
	subs     *database.SubscriptionRepository
	audit    *AuditService
	logger   *logrus.Logger
	stopCh   chan struct{}
	interval time.Duration
}

// NewExpiryService creates a new expiry sweep service
func NewExpiryService(
	hotels *database.HotelRepository,
	subs *database.SubscriptionRepository,
	audit *AuditService,
	logger *logrus.Logger,
	interval time.Duration,
) *ExpiryService {
	return &ExpiryService{
		hotels:   hotels,
		subs:     subs,
		audit:    audit,
		logger:   logger,
		stopCh:   make(chan struct{}),
		interval: interval,
	}
}

// Start begins the background sweep
func (s *ExpiryService) Start() {
	s.logger.WithField("interval", s.interval).Info("Starting subscription expiry sweep")
	go s.run()
}

// Stop stops the background sweep
func (s *ExpiryService) Stop() {
	s.logger.Info("Stopping subscription expiry sweep")
	close(s.stopCh)
}

func (s *ExpiryService) run() {
	// Run immediately on start
	s.sweep()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			s.logger.Info("Subscription expiry sweep stopped")
			return
		}
	}
}

// sweep walks active hotels with a lapsed end date. A hotel holding a
// later paid subscription keeps its access and gets its recorded end
// date moved forward; the rest are deactivated.
func (s *ExpiryService) sweep() (deactivated int) {
	now := time.Now()

	lapsed, err := s.hotels.GetLapsedActiveHotels(now)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get lapsed hotels")
		return 0
	}

	if len(lapsed) == 0 {
		return 0
	}

	s.logger.WithField("count", len(lapsed)).Info("Processing lapsed hotels")

	for _, hotel := range lapsed {
		active, err := s.subs.GetActiveSubscription(hotel.ID, now)
		if err != nil {
			s.logger.WithError(err).WithField("hotel_id", hotel.ID).
				Error("Failed to check subscriptions for lapsed hotel")
			continue
		}

		if active != nil {
			if err := s.hotels.ExtendSubscriptionEndDate(hotel.ID, active.EndDate); err != nil {
				s.logger.WithError(err).WithField("hotel_id", hotel.ID).
					Error("Failed to extend hotel end date")
			}
			continue
		}

		if err := s.hotels.DeactivateHotel(hotel.ID); err != nil {
			s.logger.WithError(err).WithField("hotel_id", hotel.ID).
				Error("Failed to deactivate lapsed hotel")
			continue
		}

		deactivated++
		s.logger.WithFields(logrus.Fields{
			"hotel_id": hotel.ID,
			"end_date": hotel.SubscriptionEndDate.Time,
		}).Info("Hotel deactivated after subscription lapse")

		s.audit.Record(context.Background(),
			models.NewPaymentAudit(models.PaymentEventSweepDeactivated, models.PaymentSourceSystem).
				SetHotel(hotel.ID), RequestMeta{})
	}

	return deactivated
}

// RunOnce runs a single sweep cycle (manual trigger and tests).
// Returns the number of hotels deactivated.
func (s *ExpiryService) RunOnce() int {
	return s.sweep()
}
