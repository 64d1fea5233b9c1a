package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/gametopup/storefront/domain"
)

const (
	catalogCacheKey = "active_products"
	catalogCacheTTL = 30 * time.Second
)

// CatalogService serves the product catalog. The storefront listing is
// read far more often than it changes, so the active-product list is
// cached for a short window and invalidated on any admin write.
type CatalogService struct {
	products domain.ProductRepository
	cache    *ttlcache.Cache[string, []*domain.Product]
}

// NewCatalogService creates a CatalogService.
func NewCatalogService(products domain.ProductRepository) *CatalogService {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, []*domain.Product](catalogCacheTTL),
	)
	go cache.Start()

	return &CatalogService{
		products: products,
		cache:    cache,
	}
}

// ListActive returns the purchasable products, served from cache when
// fresh.
func (s *CatalogService) ListActive(ctx context.Context) ([]*domain.Product, error) {
	if item := s.cache.Get(catalogCacheKey); item != nil {
		return item.Value(), nil
	}

	products, err := s.products.ListActiveProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing active products: %w", err)
	}
	s.cache.Set(catalogCacheKey, products, ttlcache.DefaultTTL)
	return products, nil
}

// Get returns one product by ID.
func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.GetProductByID(ctx, id)
}

// ListAll returns every product including inactive ones. Admin only.
func (s *CatalogService) ListAll(ctx context.Context) ([]*domain.Product, error) {
	return s.products.ListProducts(ctx)
}

// Create adds a product and drops the listing cache.
func (s *CatalogService) Create(ctx context.Context, p *domain.Product) error {
	if p.Name == "" || p.Game == "" || p.Price <= 0 {
		return domain.ErrValidation
	}
	if err := s.products.CreateProduct(ctx, p); err != nil {
		return err
	}
	s.cache.Delete(catalogCacheKey)
	return nil
}

// Update modifies a product and drops the listing cache.
func (s *CatalogService) Update(ctx context.Context, p *domain.Product) error {
	if p.ID == "" || p.Name == "" || p.Price <= 0 {
		return domain.ErrValidation
	}
	if err := s.products.UpdateProduct(ctx, p); err != nil {
		return err
	}
	s.cache.Delete(catalogCacheKey)
	return nil
}

// Delete removes a product and drops the listing cache.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	if err := s.products.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.cache.Delete(catalogCacheKey)
	return nil
}

// Stop shuts down the cache's eviction loop.
func (s *CatalogService) Stop() {
	s.cache.Stop()
}
