package app

import (
	"context"
	"testing"
	"time"

	"github.com/furuknap/marketmaster/internal/clock"
	"github.com/furuknap/marketmaster/internal/domain"
)

type fakeCatalogRepo struct {
	products map[string]domain.Product
	rules    map[string]domain.DiscountRule
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		products: make(map[string]domain.Product),
		rules:    make(map[string]domain.DiscountRule),
	}
}

func (f *fakeCatalogRepo) CreateProduct(_ context.Context, product domain.Product) error {
	f.products[product.ID] = product
	return nil
}

func (f *fakeCatalogRepo) UpdateProduct(_ context.Context, product domain.Product) error {
	if _, ok := f.products[product.ID]; !ok {
		return domain.ErrProductNotFound
	}
	f.products[product.ID] = product
	return nil
}

func (f *fakeCatalogRepo) DeleteProduct(_ context.Context, id string) error {
	if _, ok := f.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *fakeCatalogRepo) GetProduct(_ context.Context, id string) (domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeCatalogRepo) ListProducts(_ context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeCatalogRepo) CreateDiscountRule(_ context.Context, rule domain.DiscountRule) error {
	f.rules[rule.ID] = rule
	return nil
}

func (f *fakeCatalogRepo) DeleteDiscountRule(_ context.Context, id string) error {
	if _, ok := f.rules[id]; !ok {
		return domain.ErrDiscountRuleNotFound
	}
	delete(f.rules, id)
	return nil
}

func (f *fakeCatalogRepo) ListDiscountRules(_ context.Context) ([]domain.DiscountRule, error) {
	out := make([]domain.DiscountRule, 0, len(f.rules))
	for _, r := range f.rules {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeCatalogRepo) ListDiscountRulesFor(_ context.Context, productID string) ([]domain.DiscountRule, error) {
	var out []domain.DiscountRule
	for _, r := range f.rules {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out, nil
}

func TestCatalogService_CreateProduct(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC)

	t.Run("creates product with generated id and timestamp", func(t *testing.T) {
		repo := newFakeCatalogRepo()
		svc := NewCatalogService(repo, clock.NewFixed(now))

		product, err := svc.CreateProduct(context.Background(), ProductInput{
			Name:     "Lavender Soap",
			Price:    4.00,
			Cost:     1.50,
			Category: "bath",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if product.ID == "" {
			t.Fatalf("expected id to be set")
		}
		if !product.CreatedAt.Equal(now) {
			t.Fatalf("expected created_at %v, got %v", now, product.CreatedAt)
		}
		if len(repo.products) != 1 {
			t.Fatalf("expected 1 product stored, got %d", len(repo.products))
		}
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		repo := newFakeCatalogRepo()
		svc := NewCatalogService(repo, clock.NewFixed(now))

		cases := []struct {
			name string
			in   ProductInput
			want error
		}{
			{"missing name", ProductInput{Price: 1}, domain.ErrProductNameRequired},
			{"negative price", ProductInput{Name: "x", Price: -1}, domain.ErrInvalidPrice},
			{"negative cost", ProductInput{Name: "x", Price: 1, Cost: -1}, domain.ErrInvalidCost},
		}
		for _, tc := range cases {
			if _, err := svc.CreateProduct(context.Background(), tc.in); err != tc.want {
				t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
			}
		}
		if len(repo.products) != 0 {
			t.Fatalf("expected no products stored, got %d", len(repo.products))
		}
	})
}

func TestCatalogService_UpdateProduct(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC)
	repo := newFakeCatalogRepo()
	svc := NewCatalogService(repo, clock.NewFixed(now))

	created, err := svc.CreateProduct(context.Background(), ProductInput{Name: "Soap", Price: 4.00, Cost: 1.50})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	t.Run("updates fields, keeps id and created_at", func(t *testing.T) {
		updated, err := svc.UpdateProduct(context.Background(), created.ID, ProductInput{
			Name:  "Lavender Soap",
			Price: 4.50,
			Cost:  1.75,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if updated.ID != created.ID {
			t.Fatalf("expected id unchanged")
		}
		if !updated.CreatedAt.Equal(created.CreatedAt) {
			t.Fatalf("expected created_at unchanged")
		}
		if updated.Name != "Lavender Soap" || updated.Price != 4.50 {
			t.Fatalf("expected updated fields, got %+v", updated)
		}
	})

	t.Run("unknown id fails", func(t *testing.T) {
		if _, err := svc.UpdateProduct(context.Background(), "missing", ProductInput{Name: "x", Price: 1}); err != domain.ErrProductNotFound {
			t.Fatalf("expected ErrProductNotFound, got %v", err)
		}
	})
}

func TestCatalogService_DeleteProduct(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC)
	repo := newFakeCatalogRepo()
	svc := NewCatalogService(repo, clock.NewFixed(now))

	product, err := svc.CreateProduct(context.Background(), ProductInput{Name: "Soap", Price: 4.00})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	rule, err := svc.CreateDiscountRule(context.Background(), DiscountRuleInput{
		Name:      "3 for 10",
		Type:      domain.DiscountBundle,
		ProductID: product.ID,
		Bundle:    &domain.BundleParams{Quantity: 3, BundlePrice: 10.00},
	})
	if err != nil {
		t.Fatalf("create rule: %v", err)
	}

	if err := svc.DeleteProduct(context.Background(), product.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// The rule survives its product: dangling references are tolerated.
	rules, err := svc.ListDiscountRules(context.Background())
	if err != nil {
		t.Fatalf("list rules: %v", err)
	}
	if len(rules) != 1 || rules[0].ID != rule.ID {
		t.Fatalf("expected dangling rule kept, got %+v", rules)
	}
}

func TestCatalogService_CreateDiscountRule(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC)

	t.Run("creates rules of each type", func(t *testing.T) {
		repo := newFakeCatalogRepo()
		svc := NewCatalogService(repo, clock.NewFixed(now))

		inputs := []DiscountRuleInput{
			{Name: "3 for 10", Type: domain.DiscountBundle, ProductID: "p1", Bundle: &domain.BundleParams{Quantity: 3, BundlePrice: 10.00}},
			{Name: "20% off", Type: domain.DiscountPercentage, ProductID: "p1", Percentage: &domain.PercentageParams{Percentage: 20}},
			{Name: "pair deal", Type: domain.DiscountFixedAmount, ProductID: "p1", FixedAmount: &domain.FixedAmountParams{Amount: 1.00, CompanionProductID: "p2"}},
		}
		for _, in := range inputs {
			rule, err := svc.CreateDiscountRule(context.Background(), in)
			if err != nil {
				t.Fatalf("%s: expected no error, got %v", in.Name, err)
			}
			if rule.ID == "" {
				t.Fatalf("%s: expected id to be set", in.Name)
			}
		}
		if len(repo.rules) != 3 {
			t.Fatalf("expected 3 rules stored, got %d", len(repo.rules))
		}
	})

	t.Run("rejects malformed rules", func(t *testing.T) {
		repo := newFakeCatalogRepo()
		svc := NewCatalogService(repo, clock.NewFixed(now))

		cases := []struct {
			name string
			in   DiscountRuleInput
			want error
		}{
			{"missing name", DiscountRuleInput{Type: domain.DiscountBundle, ProductID: "p1"}, domain.ErrRuleNameRequired},
			{"missing product", DiscountRuleInput{Name: "x", Type: domain.DiscountBundle}, domain.ErrInvalidID},
			{"bundle quantity below two", DiscountRuleInput{Name: "x", Type: domain.DiscountBundle, ProductID: "p1", Bundle: &domain.BundleParams{Quantity: 1, BundlePrice: 5}}, domain.ErrInvalidBundleQuantity},
			{"percentage out of range", DiscountRuleInput{Name: "x", Type: domain.DiscountPercentage, ProductID: "p1", Percentage: &domain.PercentageParams{Percentage: 101}}, domain.ErrInvalidPercentage},
			{"negative amount", DiscountRuleInput{Name: "x", Type: domain.DiscountFixedAmount, ProductID: "p1", FixedAmount: &domain.FixedAmountParams{Amount: -1}}, domain.ErrInvalidAmount},
			{"unknown type", DiscountRuleInput{Name: "x", Type: "bogo", ProductID: "p1"}, domain.ErrInvalidDiscountType},
		}
		for _, tc := range cases {
			if _, err := svc.CreateDiscountRule(context.Background(), tc.in); err != tc.want {
				t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
			}
		}
		if len(repo.rules) != 0 {
			t.Fatalf("expected no rules stored, got %d", len(repo.rules))
		}
	})
}
