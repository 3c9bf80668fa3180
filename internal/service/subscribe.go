package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/cued-ai/rehearsal-platform/pkg/logger"
	"github.com/cued-ai/rehearsal-platform/pkg/metrics"
)

// SubscribeService records mailing-list signups. The actual mailing-list
// provider is not wired up yet; addresses are logged for later import.
// TODO: push to the ConvertKit form once marketing settles on a provider.
type SubscribeService struct {
	logger *logger.Logger
}

// NewSubscribeService creates a subscribe service.
func NewSubscribeService(log *logger.Logger) *SubscribeService {
	return &SubscribeService{logger: log}
}

// Subscribe accepts a validated email address.
func (s *SubscribeService) Subscribe(ctx context.Context, email string) error {
	s.logger.Info("new email subscription", zap.String("email", email))
	metrics.SubscriptionsTotal.Inc()
	return nil
}
