package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/gigadev/qr-order-backend/api/responses"
	storesvc "github.com/gigadev/qr-order-backend/internal/stores"
	"github.com/gigadev/qr-order-backend/pkg/db/models"
	pkgerrors "github.com/gigadev/qr-order-backend/pkg/errors"
	"github.com/gigadev/qr-order-backend/pkg/logger"
)

type storeResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   *string   `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newStoreResponse(store *models.Store) storeResponse {
	if store == nil {
		return storeResponse{}
	}
	return storeResponse{
		ID:        store.ID,
		Name:      store.Name,
		Address:   store.Address,
		CreatedAt: store.CreatedAt,
		UpdatedAt: store.UpdatedAt,
	}
}

// GetStore returns the public store profile rendered on the menu page.
func GetStore(svc storesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		storeID, err := pathUUID(r, "storeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := svc.Get(r.Context(), storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newStoreResponse(store))
	}
}
