package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opal-spaces/opal-backend/internal/dto"
	"github.com/opal-spaces/opal-backend/internal/models"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("invalid category provided")
)

const featuredCount = 8

type ProductService struct {
	db *gorm.DB
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

// List returns one page of the catalog with per-product review aggregates.
func (s *ProductService) List(ctx context.Context, page, limit int) (*dto.ProductPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	var products []models.Product
	err := s.db.WithContext(ctx).
		Preload("Images").
		Preload("Reviews").
		Preload("Category").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	summaries := make([]dto.ProductSummary, 0, len(products))
	for i := range products {
		summaries = append(summaries, summarize(&products[i]))
	}

	return &dto.ProductPage{
		Page:          page,
		Limit:         limit,
		TotalProducts: total,
		TotalPages:    int(math.Ceil(float64(total) / float64(limit))),
		Products:      summaries,
	}, nil
}

// Featured returns the top sellers by units sold.
func (s *ProductService) Featured(ctx context.Context) ([]dto.ProductSummary, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).
		Preload("Images").
		Preload("Reviews").
		Order("amount_sold DESC").
		Limit(featuredCount).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch featured products: %w", err)
	}

	summaries := make([]dto.ProductSummary, 0, len(products))
	for i := range products {
		summaries = append(summaries, summarize(&products[i]))
	}
	return summaries, nil
}

func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).
		Preload("Images").
		Preload("Category").
		First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to fetch product: %w", err)
	}
	return &product, nil
}

func (s *ProductService) Create(ctx context.Context, req *dto.ProductRequest) (*models.Product, error) {
	category, err := s.categoryByName(ctx, req.Category)
	if err != nil {
		return nil, err
	}

	product := models.Product{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  category.ID,
	}
	for _, url := range req.ImageURLs {
		product.Images = append(product.Images, models.ProductImage{
			ID:  uuid.New(),
			URL: url,
		})
	}

	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &product, nil
}

// Update replaces the product fields and its image set.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req *dto.ProductRequest) error {
	category, err := s.categoryByName(ctx, req.Category)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("failed to fetch product: %w", err)
		}

		updates := map[string]interface{}{
			"name":        req.Name,
			"description": req.Description,
			"price":       req.Price,
			"stock":       req.Stock,
			"category_id": category.ID,
		}
		if err := tx.Model(&product).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}

		if err := tx.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
			return fmt.Errorf("failed to clear product images: %w", err)
		}
		for _, url := range req.ImageURLs {
			img := models.ProductImage{ID: uuid.New(), ProductID: id, URL: url}
			if err := tx.Create(&img).Error; err != nil {
				return fmt.Errorf("failed to attach product image: %w", err)
			}
		}
		return nil
	})
}

func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (s *ProductService) categoryByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to fetch category: %w", err)
	}
	return &category, nil
}

func summarize(p *models.Product) dto.ProductSummary {
	var sum int
	for _, r := range p.Reviews {
		sum += r.Rating
	}
	count := len(p.Reviews)
	avg := 0.0
	if count > 0 {
		avg = math.Round(float64(sum)/float64(count)*100) / 100
	}

	images := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, img.URL)
	}

	summary := dto.ProductSummary{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		Stock:         p.Stock,
		Images:        images,
		AverageRating: avg,
		ReviewCount:   count,
	}
	if p.Category.ID != uuid.Nil {
		summary.Category = p.Category.Name
	}
	return summary
}
