package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/gigadev/qr-order-backend/pkg/db"
	"github.com/gigadev/qr-order-backend/pkg/db/models"
	pkgerrors "github.com/gigadev/qr-order-backend/pkg/errors"
	"github.com/gigadev/qr-order-backend/pkg/logger"
	"github.com/google/uuid"
)

// Service defines catalog management and browsing operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Product, error)
	Update(ctx context.Context, input UpdateInput) (*models.Product, error)
	Delete(ctx context.Context, productID, actorStoreID uuid.UUID) error
	Get(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	ListByStore(ctx context.Context, storeID uuid.UUID, params ListParams) ([]models.Product, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the catalog service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Product, error) {
	if input.ActorStoreID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "store context missing")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if input.Price < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}

	available := true
	if input.IsAvailable != nil {
		available = *input.IsAvailable
	}
	product := &models.Product{
		Name:        name,
		Description: input.Description,
		Price:       input.Price,
		ImageURL:    input.ImageURL,
		IsAvailable: available,
		StoreID:     input.ActorStoreID,
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	s.logg.Info(s.logg.WithField(ctx, "product_id", created.ID.String()), "product created")
	return created, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*models.Product, error) {
	product, err := s.loadOwned(ctx, input.ProductID, input.ActorStoreID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		updates["price"] = *input.Price
	}
	if input.ImageURL != nil {
		updates["image_url"] = *input.ImageURL
	}
	if input.IsAvailable != nil {
		updates["is_available"] = *input.IsAvailable
	}
	if len(updates) == 0 {
		return product, nil
	}

	if err := s.repo.Update(ctx, product.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	refreshed, err := s.repo.FindByID(ctx, product.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload product")
	}
	return refreshed, nil
}

func (s *service) Delete(ctx context.Context, productID, actorStoreID uuid.UUID) error {
	product, err := s.loadOwned(ctx, productID, actorStoreID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, product.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	s.logg.Info(s.logg.WithField(ctx, "product_id", product.ID.String()), "product deleted")
	return nil
}

func (s *service) Get(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) ListByStore(ctx context.Context, storeID uuid.UUID, params ListParams) ([]models.Product, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if err := params.Normalize(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	list, err := s.repo.ListByStore(ctx, storeID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return list, nil
}

func (s *service) loadOwned(ctx context.Context, productID, actorStoreID uuid.UUID) (*models.Product, error) {
	if actorStoreID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "store context missing")
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.StoreID != actorStoreID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product does not belong to store")
	}
	return product, nil
}
