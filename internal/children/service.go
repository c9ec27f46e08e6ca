package children

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service interface {
	CreateChild(ctx context.Context, userID string, req CreateChildRequest) (*ChildResponse, error)
	GetChild(ctx context.Context, childID, userID string) (*ChildResponse, error)

	// AssertOwned parses childID and checks that userID owns it.
	// Unknown or malformed ids give ErrChildNotFound, another owner gives ErrNotOwner.
	AssertOwned(ctx context.Context, childID, userID string) (uuid.UUID, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateChild(ctx context.Context, userID string, req CreateChildRequest) (*ChildResponse, error) {
	child := &Child{
		UserID:       userID,
		Name:         strings.TrimSpace(req.Name),
		Region:       req.Region,
		LanguagePref: req.LanguagePref,
	}

	if req.DOB != nil {
		dob, err := time.Parse(dateLayout, *req.DOB)
		if err != nil {
			return nil, fmt.Errorf("invalid dob: %w", err)
		}
		child.DOB = &dob
	}
	if req.Gender != nil {
		gender := Gender(*req.Gender)
		child.Gender = &gender
	}

	if err := s.repo.Create(ctx, child); err != nil {
		return nil, err
	}

	resp := child.ToResponse()
	return &resp, nil
}

func (s *service) GetChild(ctx context.Context, childID, userID string) (*ChildResponse, error) {
	child, err := s.owned(ctx, childID, userID)
	if err != nil {
		return nil, err
	}

	resp := child.ToResponse()
	return &resp, nil
}

func (s *service) AssertOwned(ctx context.Context, childID, userID string) (uuid.UUID, error) {
	child, err := s.owned(ctx, childID, userID)
	if err != nil {
		return uuid.Nil, err
	}
	return child.ID, nil
}

func (s *service) owned(ctx context.Context, childID, userID string) (*Child, error) {
	id, err := uuid.Parse(childID)
	if err != nil {
		return nil, ErrChildNotFound
	}

	child, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if child.UserID != userID {
		return nil, ErrNotOwner
	}
	return child, nil
}
