package mocks

import "context"

type MockTeamRepository struct {
	ExistsResult bool
	ExistsErr    error
	CreateErr    error
	Created      []string
}

func (m *MockTeamRepository) Create(ctx context.Context, name string) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.Created = append(m.Created, name)
	return nil
}

func (m *MockTeamRepository) Exists(ctx context.Context, name string) (bool, error) {
	return m.ExistsResult, m.ExistsErr
}
