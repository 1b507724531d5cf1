package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/halls510/developerstore-sales-api-sub001/internal/domain"
	"github.com/halls510/developerstore-sales-api-sub001/internal/usecase"
)

type MySQLCartRepo struct{ db *sql.DB }

func NewMySQLCartRepo(db *sql.DB) *MySQLCartRepo { return &MySQLCartRepo{db: db} }

func (r *MySQLCartRepo) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id,user_id,user_name,status,total_price,created_at
FROM carts WHERE id=?`, id)

	var (
		c                 domain.Cart
		totalPrice, state string
	)
	err := row.Scan(&c.ID, &c.UserID, &c.UserName, &state, &totalPrice, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("cart %s does not exist", id)
	}
	if err != nil {
		return nil, domain.Dependencyf("load cart %s: %v", id, err)
	}
	if c.TotalPrice, err = domain.ParseMoney(totalPrice); err != nil {
		return nil, err
	}
	if c.Status, err = domain.ParseCartStatus(state); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT cart_id,product_id,product_name,unit_price,quantity,discount,total
FROM cart_items WHERE cart_id=? ORDER BY product_id`, id)
	if err != nil {
		return nil, domain.Dependencyf("load cart items %s: %v", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			it                         domain.CartItem
			unitPrice, discount, total string
		)
		if err := rows.Scan(&it.CartID, &it.ProductID, &it.ProductName, &unitPrice, &it.Quantity, &discount, &total); err != nil {
			return nil, domain.Dependencyf("scan cart item: %v", err)
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
		c.Items = append(c.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Dependencyf("load cart items %s: %v", id, err)
	}
	return &c, nil
}

func (r *MySQLCartRepo) Create(ctx context.Context, c *domain.Cart) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Dependencyf("begin tx: %v", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO carts (id,user_id,user_name,status,total_price,created_at,updated_at)
VALUES (?,?,?,?,?,?,NOW())`,
		c.ID, c.UserID, c.UserName, string(c.Status), c.TotalPrice.String(), c.CreatedAt)
	if err != nil {
		return domain.Dependencyf("insert cart %s: %v", c.ID, err)
	}
	if err := insertCartItemsTx(ctx, tx, c); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return domain.Dependencyf("commit cart %s: %v", c.ID, err)
	}
	return nil
}

// Update rewrites the cart row and its lines.
func (r *MySQLCartRepo) Update(ctx context.Context, c *domain.Cart) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Dependencyf("begin tx: %v", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
UPDATE carts SET status=?, total_price=?, updated_at=NOW() WHERE id=?`,
		string(c.Status), c.TotalPrice.String(), c.ID)
	if err != nil {
		return domain.Dependencyf("update cart %s: %v", c.ID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return domain.Dependencyf("update cart %s: %v", c.ID, err)
	}
	if rows == 0 {
		return domain.NotFoundf("cart %s does not exist", c.ID)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id=?`, c.ID); err != nil {
		return domain.Dependencyf("rewrite cart items %s: %v", c.ID, err)
	}
	if err := insertCartItemsTx(ctx, tx, c); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return domain.Dependencyf("commit cart %s: %v", c.ID, err)
	}
	return nil
}

func (r *MySQLCartRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Dependencyf("begin tx: %v", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM carts WHERE id=?`, id)
	if err != nil {
		return domain.Dependencyf("delete cart %s: %v", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return domain.Dependencyf("delete cart %s: %v", id, err)
	}
	if rows == 0 {
		return domain.NotFoundf("cart %s does not exist", id)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id=?`, id); err != nil {
		return domain.Dependencyf("delete cart items %s: %v", id, err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Dependencyf("commit cart delete %s: %v", id, err)
	}
	return nil
}

func insertCartItemsTx(ctx context.Context, tx *sql.Tx, c *domain.Cart) error {
	for _, it := range c.Items {
		_, err := tx.ExecContext(ctx, `
INSERT INTO cart_items (cart_id,product_id,product_name,unit_price,quantity,discount,total)
VALUES (?,?,?,?,?,?,?)`,
			it.CartID, it.ProductID, it.ProductName, it.UnitPrice.String(), it.Quantity,
			it.Discount.String(), it.Total.String())
		if err != nil {
			return domain.Dependencyf("insert cart item %s/%s: %v", c.ID, it.ProductID, err)
		}
	}
	return nil
}

var _ usecase.CartStore = (*MySQLCartRepo)(nil)
