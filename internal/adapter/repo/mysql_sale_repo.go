package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/halls510/developerstore-sales-api-sub001/internal/domain"
	"github.com/halls510/developerstore-sales-api-sub001/internal/usecase"
)

type MySQLSaleRepo struct{ db *sql.DB }

func NewMySQLSaleRepo(db *sql.DB) *MySQLSaleRepo { return &MySQLSaleRepo{db: db} }

func (r *MySQLSaleRepo) GetByID(ctx context.Context, id string) (*domain.Sale, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id,sale_number,customer_id,customer_name,sale_date,branch,total_value,status,version
FROM sales WHERE id=?`, id)

	var (
		s                 domain.Sale
		totalValue, state string
	)
	err := row.Scan(&s.ID, &s.SaleNumber, &s.CustomerID, &s.CustomerName, &s.SaleDate, &s.Branch, &totalValue, &state, &s.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("sale %s does not exist", id)
	}
	if err != nil {
		return nil, domain.Dependencyf("load sale %s: %v", id, err)
	}
	if s.TotalValue, err = domain.ParseMoney(totalValue); err != nil {
		return nil, err
	}
	if s.Status, err = domain.ParseSaleStatus(state); err != nil {
		return nil, err
	}

	items, err := r.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Items = items
	return &s, nil
}

func (r *MySQLSaleRepo) loadItems(ctx context.Context, saleID string) ([]domain.SaleItem, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id,sale_id,product_id,product_name,quantity,unit_price,discount,total,status
FROM sale_items WHERE sale_id=? ORDER BY id`, saleID)
	if err != nil {
		return nil, domain.Dependencyf("load sale items %s: %v", saleID, err)
	}
	defer rows.Close()

	var items []domain.SaleItem
	for rows.Next() {
		var (
			it                         domain.SaleItem
			unitPrice, discount, total string
			state                      string
		)
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.ProductName, &it.Quantity, &unitPrice, &discount, &total, &state); err != nil {
			return nil, domain.Dependencyf("scan sale item: %v", err)
		}
		if it.UnitPrice, err = domain.ParseMoney(unitPrice); err != nil {
			return nil, err
		}
		if it.Discount, err = domain.ParseMoney(discount); err != nil {
			return nil, err
		}
		if it.Total, err = domain.ParseMoney(total); err != nil {
			return nil, err
		}
		if it.Status, err = domain.ParseSaleItemStatus(state); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *MySQLSaleRepo) Create(ctx context.Context, s *domain.Sale) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Dependencyf("begin tx: %v", err)
	}
	defer tx.Rollback()

	if err := insertSaleTx(ctx, tx, s); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return domain.Dependencyf("commit sale %s: %v", s.ID, err)
	}
	return nil
}

// Update rewrites the sale row and its items with an optimistic version
// check. Zero affected rows means another writer got there first.
func (r *MySQLSaleRepo) Update(ctx context.Context, s *domain.Sale) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Dependencyf("begin tx: %v", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
UPDATE sales
SET total_value=?, status=?, version=version+1, updated_at=NOW()
WHERE id=? AND version=?`,
		s.TotalValue.String(), string(s.Status), s.ID, s.Version)
	if err != nil {
		return domain.Dependencyf("update sale %s: %v", s.ID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return domain.Dependencyf("update sale %s: %v", s.ID, err)
	}
	if rows == 0 {
		return domain.Conflictf("sale %s was modified concurrently", s.ID)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM sale_items WHERE sale_id=?`, s.ID); err != nil {
		return domain.Dependencyf("rewrite sale items %s: %v", s.ID, err)
	}
	if err := insertItemsTx(ctx, tx, s); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return domain.Dependencyf("commit sale %s: %v", s.ID, err)
	}
	s.Version++
	return nil
}

func insertSaleTx(ctx context.Context, tx *sql.Tx, s *domain.Sale) error {
	_, err := tx.ExecContext(ctx, `
INSERT INTO sales (id,sale_number,customer_id,customer_name,sale_date,branch,total_value,status,version,created_at,updated_at)
VALUES (?,?,?,?,?,?,?,?,?,NOW(),NOW())`,
		s.ID, s.SaleNumber, s.CustomerID, s.CustomerName, s.SaleDate, s.Branch,
		s.TotalValue.String(), string(s.Status), s.Version)
	if err != nil {
		return domain.Dependencyf("insert sale %s: %v", s.ID, err)
	}
	return insertItemsTx(ctx, tx, s)
}

func insertItemsTx(ctx context.Context, tx *sql.Tx, s *domain.Sale) error {
	for _, it := range s.Items {
		_, err := tx.ExecContext(ctx, `
INSERT INTO sale_items (id,sale_id,product_id,product_name,quantity,unit_price,discount,total,status)
VALUES (?,?,?,?,?,?,?,?,?)`,
			it.ID, it.SaleID, it.ProductID, it.ProductName, it.Quantity,
			it.UnitPrice.String(), it.Discount.String(), it.Total.String(), string(it.Status))
		if err != nil {
			return domain.Dependencyf("insert sale item %s/%s: %v", s.ID, it.ProductID, err)
		}
	}
	return nil
}

var _ usecase.SaleStore = (*MySQLSaleRepo)(nil)

// MySQLCheckoutStore commits the checkout unit: sale insert, cart removal
// and the SaleCreated outbox append in a single transaction.
type MySQLCheckoutStore struct{ db *sql.DB }

func NewMySQLCheckoutStore(db *sql.DB) *MySQLCheckoutStore { return &MySQLCheckoutStore{db: db} }

func (r *MySQLCheckoutStore) CreateSaleRetireCart(ctx context.Context, sale *domain.Sale, cartID string, event []byte) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Dependencyf("begin tx: %v", err)
	}
	defer tx.Rollback()

	if err := insertSaleTx(ctx, tx, sale); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM carts WHERE id=?`, cartID)
	if err != nil {
		return domain.Dependencyf("delete cart %s: %v", cartID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return domain.Dependencyf("delete cart %s: %v", cartID, err)
	}
	if rows == 0 {
		// cart vanished between load and checkout; abort the whole unit
		return domain.Conflictf("cart %s was deleted concurrently", cartID)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id=?`, cartID); err != nil {
		return domain.Dependencyf("delete cart items %s: %v", cartID, err)
	}

	if err := insertOutboxTx(ctx, tx, outboxChannel, event); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.Dependencyf("commit checkout %s: %v", cartID, err)
	}
	return nil
}

var _ usecase.CheckoutStore = (*MySQLCheckoutStore)(nil)
