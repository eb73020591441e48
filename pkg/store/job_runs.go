package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cloudcrate/filegate/pkg/models"
)

func (s *GORMStore) RecordRun(ctx context.Context, run *models.ScheduledJobRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	return s.db.WithContext(ctx).Create(run).Error
}

// HourlyHistogram buckets job-run counts into the last `hours` one-hour
// windows, keyed by the window's start time formatted RFC3339.
func (s *GORMStore) HourlyHistogram(ctx context.Context, hours int) (map[string]int64, error) {
	since := time.Now().Add(-time.Duration(hours) * time.Hour)
	var runs []*models.ScheduledJobRun
	if err := s.db.WithContext(ctx).Where("started_at >= ?", since).Find(&runs).Error; err != nil {
		return nil, err
	}
	histogram := make(map[string]int64, hours)
	for _, run := range runs {
		bucket := run.StartedAt.Truncate(time.Hour).Format(time.RFC3339)
		histogram[bucket]++
	}
	return histogram, nil
}
