package products

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Sort keys accepted by the catalog listing. Anything else is rejected
// before it can reach the query builder.
var sortColumns = map[string]string{
	"name":      "name",
	"price":     "price",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// ListParams controls catalog browsing.
type ListParams struct {
	SortBy string
	Order  string
	Search string
}

// Normalize validates the sort key and direction, applying defaults for
// blank values.
func (p *ListParams) Normalize() error {
	if p.SortBy == "" {
		p.SortBy = "createdAt"
	}
	if _, ok := sortColumns[p.SortBy]; !ok {
		return fmt.Errorf("unsupported sort key %q", p.SortBy)
	}
	switch strings.ToLower(p.Order) {
	case "":
		p.Order = "desc"
	case "asc", "desc":
		p.Order = strings.ToLower(p.Order)
	default:
		return fmt.Errorf("sort order must be asc or desc")
	}
	return nil
}

func (p ListParams) orderClause() string {
	column, ok := sortColumns[p.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if p.Order == "asc" {
		direction = "ASC"
	}
	return fmt.Sprintf("%s %s", column, direction)
}

// CreateInput carries an owner's new catalog entry. ActorStoreID comes
// from the access token, never from the request body.
type CreateInput struct {
	ActorStoreID uuid.UUID
	Name         string
	Description  *string
	Price        int
	ImageURL     *string
	IsAvailable  *bool
}

// UpdateInput carries a partial catalog update; nil fields are left untouched.
type UpdateInput struct {
	ActorStoreID uuid.UUID
	ProductID    uuid.UUID
	Name         *string
	Description  *string
	Price        *int
	ImageURL     *string
	IsAvailable  *bool
}
