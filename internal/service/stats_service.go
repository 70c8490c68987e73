package service

import (
	"context"
)

type AssignmentStatsRepo interface {
	CountAssignmentsByMember(ctx context.Context) (map[string]int64, error)
	CountAssignmentsByMethod(ctx context.Context) (map[string]int64, error)
}

type StatsService struct {
	audit AssignmentStatsRepo
}

func NewStatsService(audit AssignmentStatsRepo) *StatsService {
	return &StatsService{audit: audit}
}

func (s *StatsService) GetAssignmentStats(ctx context.Context) (map[string]int64, map[string]int64, error) {
	byMember, err := s.audit.CountAssignmentsByMember(ctx)
	if err != nil {
		return nil, nil, err
	}

	byMethod, err := s.audit.CountAssignmentsByMethod(ctx)
	if err != nil {
		return nil, nil, err
	}

	return byMember, byMethod, nil
}
