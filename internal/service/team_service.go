package service

import (
	"context"
	"fmt"

	"github.com/teamops/assignment-service/internal/domain"
)

type TeamRepository interface {
	Create(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)
}

type TeamMemberRepository interface {
	UpsertForTeam(ctx context.Context, teamName string, members []domain.TeamMember) error
	ListByTeam(ctx context.Context, teamName string) ([]domain.TeamMember, error)
	GetByID(ctx context.Context, id string) (*domain.TeamMember, error)
}

type TeamService struct {
	teams   TeamRepository
	members TeamMemberRepository
}

func NewTeamService(teams TeamRepository, members TeamMemberRepository) *TeamService {
	return &TeamService{
		teams:   teams,
		members: members,
	}
}

func (s *TeamService) CreateTeam(ctx context.Context, teamName string, members []domain.TeamMember) (*domain.Team, error) {
	exists, err := s.teams.Exists(ctx, teamName)
	if err != nil {
		return nil, fmt.Errorf("check team exists: %w", err)
	}
	if exists {
		return nil, domain.NewDomainError(domain.ErrorCodeTeamExists, "team already exists")
	}

	for i := range members {
		if members[i].MaxHours <= 0 {
			return nil, domain.NewDomainError(domain.ErrorCodeValidation,
				fmt.Sprintf("member %s must have positive maximum hours", members[i].ID))
		}
		members[i].TeamName = teamName
		if members[i].QualityScore <= 0 {
			members[i].QualityScore = domain.DefaultQualityScore
		}
	}

	if err := s.teams.Create(ctx, teamName); err != nil {
		return nil, fmt.Errorf("create team: %w", err)
	}

	if err := s.members.UpsertForTeam(ctx, teamName, members); err != nil {
		return nil, fmt.Errorf("upsert team members: %w", err)
	}

	return &domain.Team{
		Name:    teamName,
		Members: members,
	}, nil
}

func (s *TeamService) GetTeam(ctx context.Context, teamName string) (*domain.Team, error) {
	exists, err := s.teams.Exists(ctx, teamName)
	if err != nil {
		return nil, fmt.Errorf("check team exists: %w", err)
	}
	if !exists {
		return nil, domain.NewDomainError(domain.ErrorCodeNotFound, "team not found")
	}

	members, err := s.members.ListByTeam(ctx, teamName)
	if err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}

	return &domain.Team{
		Name:    teamName,
		Members: members,
	}, nil
}

func (s *TeamService) GetMemberWorkload(ctx context.Context, memberID string) (*domain.TeamMember, error) {
	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("get member workload: %w", err)
	}
	return member, nil
}
