package products

import (
	"context"
	"io"
	"testing"

	"github.com/gigadev/qr-order-backend/pkg/db/models"
	pkgerrors "github.com/gigadev/qr-order-backend/pkg/errors"
	"github.com/gigadev/qr-order-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubProductsRepo struct {
	product    *models.Product
	created    *models.Product
	updates    map[string]any
	deleted    bool
	listParams ListParams
	listResult []models.Product
}

func (s *stubProductsRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubProductsRepo) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	s.created = product
	return product, nil
}

func (s *stubProductsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if s.product == nil || s.product.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.product, nil
}

func (s *stubProductsRepo) FindByIDsForStore(ctx context.Context, storeID uuid.UUID, ids []uuid.UUID) ([]models.Product, error) {
	panic("not implemented")
}

func (s *stubProductsRepo) ListByStore(ctx context.Context, storeID uuid.UUID, params ListParams) ([]models.Product, error) {
	s.listParams = params
	return s.listResult, nil
}

func (s *stubProductsRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates = updates
	return nil
}

func (s *stubProductsRepo) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleted = true
	return nil
}

func newProductsService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, logger.New(logger.Options{ServiceName: "products-test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func mustCode(t *testing.T, err error, want pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Code() != want {
		t.Fatalf("expected %s, got %s", want, typed.Code())
	}
}

func TestCreateProductDefaultsToAvailable(t *testing.T) {
	repo := &stubProductsRepo{}
	svc := newProductsService(t, repo)

	created, err := svc.Create(context.Background(), CreateInput{
		ActorStoreID: uuid.New(),
		Name:         "Latte",
		Price:        4500,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if !created.IsAvailable {
		t.Fatalf("expected new product to default to available")
	}
	if repo.created == nil || repo.created.Name != "Latte" {
		t.Fatalf("expected product persisted, got %+v", repo.created)
	}
}

func TestCreateProductRejectsNegativePrice(t *testing.T) {
	svc := newProductsService(t, &stubProductsRepo{})

	_, err := svc.Create(context.Background(), CreateInput{
		ActorStoreID: uuid.New(),
		Name:         "Latte",
		Price:        -1,
	})
	mustCode(t, err, pkgerrors.CodeValidation)
}

func TestUpdateProductRejectsForeignStore(t *testing.T) {
	productID := uuid.New()
	repo := &stubProductsRepo{product: &models.Product{ID: productID, Name: "Latte", StoreID: uuid.New()}}
	svc := newProductsService(t, repo)

	name := "Iced Latte"
	_, err := svc.Update(context.Background(), UpdateInput{
		ActorStoreID: uuid.New(),
		ProductID:    productID,
		Name:         &name,
	})
	mustCode(t, err, pkgerrors.CodeForbidden)
	if repo.updates != nil {
		t.Fatalf("no update may be written, got %v", repo.updates)
	}
}

func TestUpdateProductAppliesPartialChanges(t *testing.T) {
	storeID := uuid.New()
	productID := uuid.New()
	repo := &stubProductsRepo{product: &models.Product{ID: productID, Name: "Latte", Price: 4500, StoreID: storeID}}
	svc := newProductsService(t, repo)

	price := 5000
	available := false
	_, err := svc.Update(context.Background(), UpdateInput{
		ActorStoreID: storeID,
		ProductID:    productID,
		Price:        &price,
		IsAvailable:  &available,
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if repo.updates["price"] != 5000 {
		t.Fatalf("expected price update, got %v", repo.updates)
	}
	if repo.updates["is_available"] != false {
		t.Fatalf("expected availability update, got %v", repo.updates)
	}
	if _, ok := repo.updates["name"]; ok {
		t.Fatalf("untouched fields must not be written, got %v", repo.updates)
	}
}

func TestDeleteProductChecksOwnership(t *testing.T) {
	storeID := uuid.New()
	productID := uuid.New()
	repo := &stubProductsRepo{product: &models.Product{ID: productID, StoreID: storeID}}
	svc := newProductsService(t, repo)

	if err := svc.Delete(context.Background(), productID, storeID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if !repo.deleted {
		t.Fatalf("expected delete to reach the repository")
	}

	repo2 := &stubProductsRepo{product: &models.Product{ID: productID, StoreID: storeID}}
	svc2 := newProductsService(t, repo2)
	err := svc2.Delete(context.Background(), productID, uuid.New())
	mustCode(t, err, pkgerrors.CodeForbidden)
	if repo2.deleted {
		t.Fatalf("foreign store must not delete the product")
	}
}

func TestListByStoreNormalizesSort(t *testing.T) {
	repo := &stubProductsRepo{}
	svc := newProductsService(t, repo)

	_, err := svc.ListByStore(context.Background(), uuid.New(), ListParams{})
	if err != nil {
		t.Fatalf("ListByStore returned error: %v", err)
	}
	if repo.listParams.SortBy != "createdAt" || repo.listParams.Order != "desc" {
		t.Fatalf("expected default sort, got %+v", repo.listParams)
	}

	_, err = svc.ListByStore(context.Background(), uuid.New(), ListParams{SortBy: "price; DROP TABLE"})
	mustCode(t, err, pkgerrors.CodeValidation)
}
