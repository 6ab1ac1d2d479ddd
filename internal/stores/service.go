package stores

import (
	"context"
	"fmt"

	"github.com/gigadev/qr-order-backend/pkg/db"
	"github.com/gigadev/qr-order-backend/pkg/db/models"
	pkgerrors "github.com/gigadev/qr-order-backend/pkg/errors"
	"github.com/google/uuid"
)

// Service exposes store lookups to the HTTP surface.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Store, error)
}

type service struct {
	repo Repository
}

// NewService builds the store service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stores repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	store, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return store, nil
}
