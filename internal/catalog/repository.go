package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ceramicarte/preventivi-backend/pkg/db/models"
)

// Repository wires together catalog persistence for products and
// packages.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id).Error
}

func (r *Repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindProductsByIDs loads the given products preserving no particular
// order. Missing IDs are simply absent from the result.
func (r *Repository) FindProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *Repository) ListProducts(ctx context.Context, onlyActive bool) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Order("display_order ASC, name ASC")
	if onlyActive {
		query = query.Where("active = ?", true)
	}
	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *Repository) CreatePackage(ctx context.Context, pkg *models.Package) (*models.Package, error) {
	if err := r.db.WithContext(ctx).Create(pkg).Error; err != nil {
		return nil, err
	}
	return pkg, nil
}

func (r *Repository) UpdatePackage(ctx context.Context, pkg *models.Package) (*models.Package, error) {
	if err := r.db.WithContext(ctx).Save(pkg).Error; err != nil {
		return nil, err
	}
	return pkg, nil
}

func (r *Repository) DeletePackage(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Package{}, "id = ?", id).Error
}

func (r *Repository) FindPackageByID(ctx context.Context, id uuid.UUID) (*models.Package, error) {
	var pkg models.Package
	if err := r.db.WithContext(ctx).First(&pkg, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *Repository) ListPackages(ctx context.Context, onlyActive bool) ([]models.Package, error) {
	query := r.db.WithContext(ctx).Order("display_order ASC, name ASC")
	if onlyActive {
		query = query.Where("active = ?", true)
	}
	var packages []models.Package
	if err := query.Find(&packages).Error; err != nil {
		return nil, err
	}
	return packages, nil
}
