package service

import (
	"context"
	"errors"
	"testing"

	"github.com/teamops/assignment-service/internal/service/mocks"
)

func TestStatsService_GetAssignmentStats(t *testing.T) {
	repo := &mocks.MockStatsRepo{
		ByMemberResult: map[string]int64{"m-1": 3, "m-2": 1},
		ByMethodResult: map[string]int64{"ai_optimized": 3, "rebalanced": 1},
	}
	svc := NewStatsService(repo)

	byMember, byMethod, err := svc.GetAssignmentStats(context.Background())
	if err != nil {
		t.Fatalf("GetAssignmentStats returned error: %v", err)
	}
	if byMember["m-1"] != 3 {
		t.Errorf("byMember[m-1] = %d, want 3", byMember["m-1"])
	}
	if byMethod["rebalanced"] != 1 {
		t.Errorf("byMethod[rebalanced] = %d, want 1", byMethod["rebalanced"])
	}
}

func TestStatsService_GetAssignmentStats_Error(t *testing.T) {
	repo := &mocks.MockStatsRepo{ByMemberErr: errors.New("database error")}
	svc := NewStatsService(repo)

	if _, _, err := svc.GetAssignmentStats(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}
}
