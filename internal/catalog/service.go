package catalog

import (
	"context"
	stdErrors "errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ceramicarte/preventivi-backend/pkg/db"
	"github.com/ceramicarte/preventivi-backend/pkg/db/models"
	pkgerrors "github.com/ceramicarte/preventivi-backend/pkg/errors"
	"github.com/ceramicarte/preventivi-backend/pkg/logger"
	"github.com/ceramicarte/preventivi-backend/pkg/types"
)

// Service exposes catalog management for products and packages.
type Service interface {
	CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductUpdate) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
	ListProducts(ctx context.Context, onlyActive bool) ([]models.Product, error)

	CreatePackage(ctx context.Context, input PackageInput) (*models.Package, error)
	UpdatePackage(ctx context.Context, id uuid.UUID, input PackageUpdate) (*models.Package, error)
	DeletePackage(ctx context.Context, id uuid.UUID) error
	GetPackage(ctx context.Context, id uuid.UUID) (*models.Package, error)
	ListPackages(ctx context.Context, onlyActive bool) ([]models.Package, error)

	// ResolvePackage loads a package together with its referenced
	// products, keyed by product ID.
	ResolvePackage(ctx context.Context, id uuid.UUID) (*models.Package, map[uuid.UUID]models.Product, error)
}

type service struct {
	client *db.Client
	repo   *Repository
	log    *logger.Logger
}

func NewService(client *db.Client, log *logger.Logger) Service {
	return &service{
		client: client,
		repo:   NewRepository(client.DB),
		log:    log,
	}
}

func (s *service) CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	unit := input.Unit
	if unit == "" {
		unit = "pz"
	}

	product := &models.Product{
		Name:         input.Name,
		Description:  input.Description,
		Category:     input.Category,
		Price:        input.Price,
		Unit:         unit,
		ImageURL:     input.ImageURL,
		Active:       true,
		DisplayOrder: input.DisplayOrder,
	}
	if input.Active != nil {
		product.Active = *input.Active
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating product")
	}
	s.log.Info(s.log.WithField(ctx, "product_id", created.ID.String()), "product created")
	return created, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductUpdate) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
		}
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Category != nil {
		if !input.Category.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid category %q", *input.Category))
		}
		product.Category = *input.Category
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product price cannot be negative")
		}
		product.Price = *input.Price
	}
	if input.Unit != nil {
		product.Unit = *input.Unit
	}
	if input.ImageURL != nil {
		product.ImageURL = *input.ImageURL
	}
	if input.Active != nil {
		product.Active = *input.Active
	}
	if input.DisplayOrder != nil {
		product.DisplayOrder = *input.DisplayOrder
	}

	updated, err := s.repo.UpdateProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating product")
	}
	return updated, nil
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting product")
	}
	s.log.Info(s.log.WithField(ctx, "product_id", id.String()), "product deleted")
	return nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
	}
	return product, nil
}

// GetProductsByIDs loads products keyed by id. Missing ids are simply
// absent so callers can skip dangling references.
func (s *service) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	products, err := s.repo.FindProductsByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading products")
	}
	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}

func (s *service) ListProducts(ctx context.Context, onlyActive bool) ([]models.Product, error) {
	products, err := s.repo.ListProducts(ctx, onlyActive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing products")
	}
	return products, nil
}

func (s *service) CreatePackage(ctx context.Context, input PackageInput) (*models.Package, error) {
	if err := validatePackageInput(input.Name, input.Items); err != nil {
		return nil, err
	}
	if err := validateDiscount(input.DiscountPercent); err != nil {
		return nil, err
	}

	pkg := &models.Package{
		Name:            input.Name,
		Description:     input.Description,
		DiscountPercent: input.DiscountPercent,
		Active:          true,
		DisplayOrder:    input.DisplayOrder,
	}
	if input.Active != nil {
		pkg.Active = *input.Active
	}

	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		items, total, err := s.priceItems(ctx, repo, input.Items)
		if err != nil {
			return err
		}
		pkg.Items = items
		pkg.TotalPrice = total

		_, err = repo.CreatePackage(ctx, pkg)
		return err
	})
	if err != nil {
		return nil, wrapUnlessTyped(err, "creating package")
	}
	s.log.Info(s.log.WithField(ctx, "package_id", pkg.ID.String()), "package created")
	return pkg, nil
}

func (s *service) UpdatePackage(ctx context.Context, id uuid.UUID, input PackageUpdate) (*models.Package, error) {
	pkg, err := s.GetPackage(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "package name cannot be empty")
		}
		pkg.Name = *input.Name
	}
	if input.Description != nil {
		pkg.Description = *input.Description
	}
	if input.DiscountPercent != nil {
		if err := validateDiscount(*input.DiscountPercent); err != nil {
			return nil, err
		}
		pkg.DiscountPercent = *input.DiscountPercent
	}
	if input.Active != nil {
		pkg.Active = *input.Active
	}
	if input.DisplayOrder != nil {
		pkg.DisplayOrder = *input.DisplayOrder
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		itemInputs := packageItemInputs(pkg)
		if input.Items != nil {
			if err := validatePackageInput(pkg.Name, *input.Items); err != nil {
				return err
			}
			itemInputs = *input.Items
		}

		// Reprice on every save so stale product prices never linger.
		items, total, err := s.priceItems(ctx, repo, itemInputs)
		if err != nil {
			return err
		}
		pkg.Items = items
		pkg.TotalPrice = total

		_, err = repo.UpdatePackage(ctx, pkg)
		return err
	})
	if err != nil {
		return nil, wrapUnlessTyped(err, "updating package")
	}
	return pkg, nil
}

func (s *service) DeletePackage(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetPackage(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeletePackage(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting package")
	}
	s.log.Info(s.log.WithField(ctx, "package_id", id.String()), "package deleted")
	return nil
}

func (s *service) GetPackage(ctx context.Context, id uuid.UUID) (*models.Package, error) {
	pkg, err := s.repo.FindPackageByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "package not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading package")
	}
	return pkg, nil
}

func (s *service) ListPackages(ctx context.Context, onlyActive bool) ([]models.Package, error) {
	packages, err := s.repo.ListPackages(ctx, onlyActive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing packages")
	}
	return packages, nil
}

func (s *service) ResolvePackage(ctx context.Context, id uuid.UUID) (*models.Package, map[uuid.UUID]models.Product, error) {
	pkg, err := s.GetPackage(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	ids := make([]uuid.UUID, 0, len(pkg.Items))
	for _, item := range pkg.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.repo.FindProductsByIDs(ctx, ids)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading package products")
	}

	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return pkg, byID, nil
}

// priceItems validates every referenced product and computes the bundle
// total as the sum of product price times quantity.
func (s *service) priceItems(ctx context.Context, repo *Repository, inputs []PackageItemInput) (types.PackageItems, decimal.Decimal, error) {
	ids := make([]uuid.UUID, 0, len(inputs))
	for _, in := range inputs {
		ids = append(ids, in.ProductID)
	}
	products, err := repo.FindProductsByIDs(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading package products")
	}
	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make(types.PackageItems, 0, len(inputs))
	total := decimal.Zero
	for _, in := range inputs {
		product, ok := byID[in.ProductID]
		if !ok {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %s does not exist", in.ProductID))
		}
		unitPrice := product.Price
		if in.PriceOverride != nil {
			if in.PriceOverride.IsNegative() {
				return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "price override cannot be negative")
			}
			unitPrice = *in.PriceOverride
		}
		items = append(items, types.PackageItem{
			ProductID:     in.ProductID,
			Quantity:      in.Quantity,
			PriceOverride: in.PriceOverride,
		})
		total = total.Add(unitPrice.Mul(decimal.NewFromInt(int64(in.Quantity))))
	}
	return items, total, nil
}

func packageItemInputs(pkg *models.Package) []PackageItemInput {
	inputs := make([]PackageItemInput, 0, len(pkg.Items))
	for _, item := range pkg.Items {
		inputs = append(inputs, PackageItemInput{
			ProductID:     item.ProductID,
			Quantity:      item.Quantity,
			PriceOverride: item.PriceOverride,
		})
	}
	return inputs
}

func validateDiscount(d decimal.Decimal) error {
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(100)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount percent must be between 0 and 100")
	}
	return nil
}

func validateProductInput(input ProductInput) error {
	if input.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if !input.Category.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid category %q", input.Category))
	}
	if input.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "product price cannot be negative")
	}
	return nil
}

func validatePackageInput(name string, items []PackageItemInput) error {
	if name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "package name is required")
	}
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "package must contain at least one product")
	}
	for _, item := range items {
		if item.Quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "package item quantity must be at least 1")
		}
	}
	return nil
}

// wrapUnlessTyped keeps already-coded errors intact and wraps raw
// persistence failures as dependency errors.
func wrapUnlessTyped(err error, message string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}
