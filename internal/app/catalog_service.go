package app

import (
	"context"

	"github.com/furuknap/marketmaster/internal/clock"
	"github.com/furuknap/marketmaster/internal/domain"
)

type CatalogRepository interface {
	CreateProduct(ctx context.Context, product domain.Product) error
	UpdateProduct(ctx context.Context, product domain.Product) error
	DeleteProduct(ctx context.Context, id string) error
	GetProduct(ctx context.Context, id string) (domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)

	CreateDiscountRule(ctx context.Context, rule domain.DiscountRule) error
	DeleteDiscountRule(ctx context.Context, id string) error
	ListDiscountRules(ctx context.Context) ([]domain.DiscountRule, error)
	ListDiscountRulesFor(ctx context.Context, productID string) ([]domain.DiscountRule, error)
}

// CatalogService manages products and discount rules. Deleting a product
// does not cascade: its rules and any cart or history lines keep the id as a
// dangling reference, which the pricing engine and reports tolerate.
type CatalogService struct {
	repo  CatalogRepository
	clock clock.Clock
}

func NewCatalogService(repo CatalogRepository, clk clock.Clock) *CatalogService {
	return &CatalogService{
		repo:  repo,
		clock: clk,
	}
}

type ProductInput struct {
	Name     string
	Price    float64
	Cost     float64
	Category string
}

func (in ProductInput) validate() error {
	if in.Name == "" {
		return domain.ErrProductNameRequired
	}
	if in.Price < 0 {
		return domain.ErrInvalidPrice
	}
	if in.Cost < 0 {
		return domain.ErrInvalidCost
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (domain.Product, error) {
	if err := in.validate(); err != nil {
		return domain.Product{}, err
	}

	product := domain.Product{
		ID:        newID(),
		Name:      in.Name,
		Price:     in.Price,
		Cost:      in.Cost,
		Category:  in.Category,
		CreatedAt: s.clock.Now(),
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id string, in ProductInput) (domain.Product, error) {
	if id == "" {
		return domain.Product{}, domain.ErrInvalidID
	}
	if err := in.validate(); err != nil {
		return domain.Product{}, err
	}

	existing, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	existing.Name = in.Name
	existing.Price = in.Price
	existing.Cost = in.Cost
	existing.Category = in.Category

	if err := s.repo.UpdateProduct(ctx, existing); err != nil {
		return domain.Product{}, err
	}
	return existing, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidID
	}
	return s.repo.DeleteProduct(ctx, id)
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	if id == "" {
		return domain.Product{}, domain.ErrInvalidID
	}
	return s.repo.GetProduct(ctx, id)
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

type DiscountRuleInput struct {
	Name      string
	Type      domain.DiscountType
	ProductID string

	Bundle      *domain.BundleParams
	Percentage  *domain.PercentageParams
	FixedAmount *domain.FixedAmountParams
}

// CreateDiscountRule validates rule shape only; rules that happen to raise
// the total are legal and evaluated as written.
func (s *CatalogService) CreateDiscountRule(ctx context.Context, in DiscountRuleInput) (domain.DiscountRule, error) {
	rule := domain.DiscountRule{
		ID:          newID(),
		Name:        in.Name,
		Type:        in.Type,
		ProductID:   in.ProductID,
		CreatedAt:   s.clock.Now(),
		Bundle:      in.Bundle,
		Percentage:  in.Percentage,
		FixedAmount: in.FixedAmount,
	}
	if err := rule.Validate(); err != nil {
		return domain.DiscountRule{}, err
	}

	if err := s.repo.CreateDiscountRule(ctx, rule); err != nil {
		return domain.DiscountRule{}, err
	}
	return rule, nil
}

func (s *CatalogService) DeleteDiscountRule(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidID
	}
	return s.repo.DeleteDiscountRule(ctx, id)
}

func (s *CatalogService) ListDiscountRules(ctx context.Context) ([]domain.DiscountRule, error) {
	return s.repo.ListDiscountRules(ctx)
}

func (s *CatalogService) ListDiscountRulesFor(ctx context.Context, productID string) ([]domain.DiscountRule, error) {
	if productID == "" {
		return nil, domain.ErrInvalidID
	}
	return s.repo.ListDiscountRulesFor(ctx, productID)
}
