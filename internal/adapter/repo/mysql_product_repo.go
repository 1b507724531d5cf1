package repo

import (
	"context"
	"database/sql"
	"strings"

	"github.com/halls510/developerstore-sales-api-sub001/internal/domain"
	"github.com/halls510/developerstore-sales-api-sub001/internal/usecase"
)

type MySQLProductRepo struct{ db *sql.DB }

func NewMySQLProductRepo(db *sql.DB) *MySQLProductRepo { return &MySQLProductRepo{db: db} }

func (r *MySQLProductRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id,title,price FROM products WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, domain.Dependencyf("load products: %v", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *MySQLProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id,title,price FROM products ORDER BY title`)
	if err != nil {
		return nil, domain.Dependencyf("list products: %v", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

func scanProducts(rows *sql.Rows) ([]domain.Product, error) {
	var products []domain.Product
	for rows.Next() {
		var (
			p     domain.Product
			price string
		)
		if err := rows.Scan(&p.ID, &p.Title, &price); err != nil {
			return nil, domain.Dependencyf("scan product: %v", err)
		}
		parsed, err := domain.ParseMoney(price)
		if err != nil {
			return nil, err
		}
		p.Price = parsed
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Dependencyf("scan products: %v", err)
	}
	return products, nil
}

var _ usecase.ProductCatalog = (*MySQLProductRepo)(nil)
