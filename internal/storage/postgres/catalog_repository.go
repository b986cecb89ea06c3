package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/furuknap/marketmaster/internal/domain"
)

// CatalogRepository stores products and discount rules. Discount rules keep
// plain product id columns without foreign keys: a deleted product leaves
// its rules dangling, which the pricing engine tolerates.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

func (r *CatalogRepository) CreateProduct(ctx context.Context, product domain.Product) error {
	const stmt = `
INSERT INTO products (id, name, price, cost, category, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.exec(ctx, stmt,
		product.ID, product.Name, product.Price, product.Cost, product.Category, product.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *CatalogRepository) UpdateProduct(ctx context.Context, product domain.Product) error {
	const stmt = `
UPDATE products SET name = $2, price = $3, cost = $4, category = $5
WHERE id = $1`

	tag, err := r.exec(ctx, stmt,
		product.ID, product.Name, product.Price, product.Cost, product.Category)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *CatalogRepository) DeleteProduct(ctx context.Context, id string) error {
	tag, err := r.exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *CatalogRepository) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	const query = `
SELECT id, name, price, cost, category, created_at
FROM products WHERE id = $1`

	var p domain.Product
	err := r.queryRow(ctx, query, id).
		Scan(&p.ID, &p.Name, &p.Price, &p.Cost, &p.Category, &p.CreatedAt)
	if err != nil {
		// A malformed id is just an unknown product as far as callers care.
		if err == pgx.ErrNoRows || isInvalidUUID(err) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *CatalogRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	const query = `
SELECT id, name, price, cost, category, created_at
FROM products ORDER BY created_at, id`

	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Cost, &p.Category, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *CatalogRepository) CreateDiscountRule(ctx context.Context, rule domain.DiscountRule) error {
	const stmt = `
INSERT INTO discount_rules
	(id, name, type, product_id, bundle_quantity, bundle_price, percentage, amount, companion_product_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	var (
		bundleQty   *int
		bundlePrice *float64
		percentage  *int
		amount      *float64
		companion   *string
	)
	switch rule.Type {
	case domain.DiscountBundle:
		if rule.Bundle != nil {
			bundleQty = &rule.Bundle.Quantity
			bundlePrice = &rule.Bundle.BundlePrice
		}
	case domain.DiscountPercentage:
		if rule.Percentage != nil {
			percentage = &rule.Percentage.Percentage
		}
	case domain.DiscountFixedAmount:
		if rule.FixedAmount != nil {
			amount = &rule.FixedAmount.Amount
			if rule.FixedAmount.CompanionProductID != "" {
				companion = &rule.FixedAmount.CompanionProductID
			}
		}
	}

	_, err := r.exec(ctx, stmt,
		rule.ID, rule.Name, rule.Type, rule.ProductID,
		bundleQty, bundlePrice, percentage, amount, companion, rule.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create discount rule: %w", err)
	}
	return nil
}

func (r *CatalogRepository) DeleteDiscountRule(ctx context.Context, id string) error {
	tag, err := r.exec(ctx, `DELETE FROM discount_rules WHERE id = $1`, id)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("delete discount rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDiscountRuleNotFound
	}
	return nil
}

const discountRuleColumns = `
id, name, type, product_id, bundle_quantity, bundle_price, percentage, amount, companion_product_id, created_at`

func (r *CatalogRepository) ListDiscountRules(ctx context.Context) ([]domain.DiscountRule, error) {
	query := `SELECT` + discountRuleColumns + `
FROM discount_rules ORDER BY created_at, id`

	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list discount rules: %w", err)
	}
	defer rows.Close()
	return scanDiscountRules(rows)
}

// ListDiscountRulesFor returns rules in catalog (creation) order; the
// pricing engine sums them in this order.
func (r *CatalogRepository) ListDiscountRulesFor(ctx context.Context, productID string) ([]domain.DiscountRule, error) {
	query := `SELECT` + discountRuleColumns + `
FROM discount_rules WHERE product_id = $1 ORDER BY created_at, id`

	rows, err := r.query(ctx, query, productID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list discount rules for product: %w", err)
	}
	defer rows.Close()
	return scanDiscountRules(rows)
}

func scanDiscountRules(rows pgx.Rows) ([]domain.DiscountRule, error) {
	var out []domain.DiscountRule
	for rows.Next() {
		var (
			rule        domain.DiscountRule
			bundleQty   *int
			bundlePrice *float64
			percentage  *int
			amount      *float64
			companion   *string
		)
		if err := rows.Scan(
			&rule.ID, &rule.Name, &rule.Type, &rule.ProductID,
			&bundleQty, &bundlePrice, &percentage, &amount, &companion, &rule.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan discount rule: %w", err)
		}

		switch rule.Type {
		case domain.DiscountBundle:
			if bundleQty != nil && bundlePrice != nil {
				rule.Bundle = &domain.BundleParams{Quantity: *bundleQty, BundlePrice: *bundlePrice}
			}
		case domain.DiscountPercentage:
			if percentage != nil {
				rule.Percentage = &domain.PercentageParams{Percentage: *percentage}
			}
		case domain.DiscountFixedAmount:
			if amount != nil {
				params := &domain.FixedAmountParams{Amount: *amount}
				if companion != nil {
					params.CompanionProductID = *companion
				}
				rule.FixedAmount = params
			}
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}

func (r *CatalogRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *CatalogRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *CatalogRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
