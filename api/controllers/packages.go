package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/ceramicarte/preventivi-backend/api/responses"
	"github.com/ceramicarte/preventivi-backend/api/validators"
	"github.com/ceramicarte/preventivi-backend/internal/catalog"
	"github.com/ceramicarte/preventivi-backend/pkg/logger"
)

// PublicPackages lists active packages for the public site.
func PublicPackages(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		packages, err := svc.ListPackages(r.Context(), true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, packages)
	}
}

func AdminListPackages(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		onlyActive, err := validators.ParseQueryBool(r, "active", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		packages, err := svc.ListPackages(r.Context(), onlyActive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, packages)
	}
}

func AdminGetPackage(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseURLUUID(chi.URLParam(r, "packageId"), "packageId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pkg, err := svc.GetPackage(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pkg)
	}
}

type packageItemRequest struct {
	ProductID     string           `json:"product_id" validate:"required"`
	Quantity      int              `json:"quantity" validate:"required,min=1"`
	PriceOverride *decimal.Decimal `json:"price_override,omitempty"`
}

func toPackageItemInputs(items []packageItemRequest) ([]catalog.PackageItemInput, error) {
	inputs := make([]catalog.PackageItemInput, 0, len(items))
	for _, item := range items {
		productID, err := validators.ParseURLUUID(item.ProductID, "product_id")
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, catalog.PackageItemInput{
			ProductID:     productID,
			Quantity:      item.Quantity,
			PriceOverride: item.PriceOverride,
		})
	}
	return inputs, nil
}

type createPackageRequest struct {
	Name            string               `json:"name" validate:"required"`
	Description     string               `json:"description"`
	Items           []packageItemRequest `json:"items" validate:"required,min=1,dive"`
	DiscountPercent decimal.Decimal      `json:"discount_percent"`
	Active          *bool                `json:"active,omitempty"`
	DisplayOrder    int                  `json:"display_order"`
}

func AdminCreatePackage(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createPackageRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := toPackageItemInputs(payload.Items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pkg, err := svc.CreatePackage(r.Context(), catalog.PackageInput{
			Name:            strings.TrimSpace(payload.Name),
			Description:     strings.TrimSpace(payload.Description),
			Items:           items,
			DiscountPercent: payload.DiscountPercent,
			Active:          payload.Active,
			DisplayOrder:    payload.DisplayOrder,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, pkg)
	}
}

type updatePackageRequest struct {
	Name            *string               `json:"name,omitempty"`
	Description     *string               `json:"description,omitempty"`
	Items           *[]packageItemRequest `json:"items,omitempty" validate:"omitempty,min=1,dive"`
	DiscountPercent *decimal.Decimal      `json:"discount_percent,omitempty"`
	Active          *bool                 `json:"active,omitempty"`
	DisplayOrder    *int                  `json:"display_order,omitempty"`
}

func AdminUpdatePackage(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseURLUUID(chi.URLParam(r, "packageId"), "packageId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updatePackageRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		update := catalog.PackageUpdate{
			Name:            payload.Name,
			Description:     payload.Description,
			DiscountPercent: payload.DiscountPercent,
			Active:          payload.Active,
			DisplayOrder:    payload.DisplayOrder,
		}
		if payload.Items != nil {
			items, err := toPackageItemInputs(*payload.Items)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			update.Items = &items
		}

		pkg, err := svc.UpdatePackage(r.Context(), id, update)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pkg)
	}
}

func AdminDeletePackage(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseURLUUID(chi.URLParam(r, "packageId"), "packageId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeletePackage(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
