package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jask/biovalue/internal/database/repository"
	"github.com/jask/biovalue/internal/nav"
)

// Analytics records committed tab changes. Observe is a nav.Observer.
type Analytics struct {
	Events  *repository.NavEventRepo
	Log     *zap.Logger
	Timeout time.Duration
}

func (s *Analytics) Observe(t nav.Tab) error {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := s.Events.Insert(ctx, t.ID()); err != nil {
		return err
	}
	if s.Log != nil {
		s.Log.Debug("tab viewed", zap.String("tab", t.ID()))
	}
	return nil
}

// Counts returns views per tab, most viewed first.
func (s *Analytics) Counts(ctx context.Context) ([]repository.TabCount, error) {
	return s.Events.CountByTab(ctx)
}
