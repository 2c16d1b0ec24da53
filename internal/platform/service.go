// AngelaMos | 2026
// service.go

package platform

import (
	"context"
	"log/slog"
	"time"

	"github.com/voqo-dev/crm-backend/internal/contact"
)

// Service reconciles contact rows with the calling platform's usage
// data.
type Service struct {
	contacts contact.Repository
	checker  Checker
	window   time.Duration
	logger   *slog.Logger
}

func NewService(
	contacts contact.Repository,
	checker Checker,
	window time.Duration,
	logger *slog.Logger,
) *Service {
	return &Service{
		contacts: contacts,
		checker:  checker,
		window:   window,
		logger:   logger,
	}
}

// SyncResult summarizes one reconciliation pass.
type SyncResult struct {
	Checked int `json:"checked"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Sync walks every contact and refreshes activity columns for the ones
// the platform knows about. Per-contact failures are counted, not
// fatal; one bad lookup should not starve the rest of the book.
func (s *Service) Sync(ctx context.Context) (*SyncResult, error) {
	contacts, err := s.contacts.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{}
	for i := range contacts {
		c := &contacts[i]
		result.Checked++

		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		activity, err := s.checker.CheckActivity(ctx, c.Email, s.window)
		if err != nil {
			result.Failed++
			s.logger.Warn("activity check failed",
				slog.String("email", c.Email),
				slog.String("error", err.Error()),
			)
			continue
		}

		if activity == nil {
			// The platform has no agent for this email. Flip previously
			// active contacts off rather than leaving stale TRUE flags.
			if !c.IsUsingPlatform {
				result.Skipped++
				continue
			}
			if err := s.contacts.UpdateActivityByEmail(ctx, c.Email, nil, 0, false); err != nil {
				result.Failed++
				s.logger.Warn("activity update failed",
					slog.String("email", c.Email),
					slog.String("error", err.Error()),
				)
				continue
			}
			result.Updated++
			continue
		}

		err = s.contacts.UpdateActivityByEmail(ctx, c.Email, activity.LastActivity, activity.CallCount, activity.CallCount > 0)
		if err != nil {
			result.Failed++
			s.logger.Warn("activity update failed",
				slog.String("email", c.Email),
				slog.String("error", err.Error()),
			)
			continue
		}

		result.Updated++
	}

	s.logger.Info("platform activity sync finished",
		slog.Int("checked", result.Checked),
		slog.Int("updated", result.Updated),
		slog.Int("skipped", result.Skipped),
		slog.Int("failed", result.Failed),
	)

	return result, nil
}
