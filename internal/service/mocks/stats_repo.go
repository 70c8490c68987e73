package mocks

import "context"

type MockStatsRepo struct {
	ByMemberResult map[string]int64
	ByMemberErr    error
	ByMethodResult map[string]int64
	ByMethodErr    error
}

func (m *MockStatsRepo) CountAssignmentsByMember(ctx context.Context) (map[string]int64, error) {
	return m.ByMemberResult, m.ByMemberErr
}

func (m *MockStatsRepo) CountAssignmentsByMethod(ctx context.Context) (map[string]int64, error) {
	return m.ByMethodResult, m.ByMethodErr
}
