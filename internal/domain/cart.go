package domain

import (
	"time"

	"github.com/google/uuid"
)

type CartStatus string

const (
	CartActive    CartStatus = "ACTIVE"
	CartCompleted CartStatus = "COMPLETED"
	CartCancelled CartStatus = "CANCELLED"
)

// ParseCartStatus converts a stored string back into a CartStatus.
func ParseCartStatus(s string) (CartStatus, error) {
	switch CartStatus(s) {
	case CartActive, CartCompleted, CartCancelled:
		return CartStatus(s), nil
	default:
		return "", Validationf("unknown cart status %q", s)
	}
}

// CartItem is one product line in a cart. Product name and unit price are
// snapshots taken at add-time: later catalog price changes must not
// retroactively alter a cart.
type CartItem struct {
	CartID      string
	ProductID   string
	ProductName string
	UnitPrice   Money
	Quantity    int
	Discount    Money
	Total       Money
}

// Cart is the mutable pre-purchase aggregate. Line items are only mutated
// through the aggregate's own operations so TotalPrice always equals the sum
// of the line totals.
type Cart struct {
	ID         string
	UserID     string
	UserName   string
	CreatedAt  time.Time
	Status     CartStatus
	Items      []CartItem
	TotalPrice Money
}

func NewCart(userID, userName string) *Cart {
	return &Cart{
		ID:        uuid.NewString(),
		UserID:    userID,
		UserName:  userName,
		CreatedAt: time.Now().UTC(),
		Status:    CartActive,
	}
}

// AddItem adds a product line, merging quantities when the product is
// already present, and recomputes every line with the given rules.
func (c *Cart) AddItem(p Product, quantity int, rules DiscountRules) error {
	if err := c.mutable(); err != nil {
		return err
	}
	q := quantity
	idx := c.indexOf(p.ID)
	if idx >= 0 {
		q += c.Items[idx].Quantity
	}
	if !rules.ValidateQuantity(q) {
		return BusinessRulef("invalid quantity %d for product %s: must be between 1 and %d",
			q, p.ID, rules.MaxPerProduct)
	}
	if idx >= 0 {
		c.Items[idx].Quantity = q
	} else {
		c.Items = append(c.Items, CartItem{
			CartID:      c.ID,
			ProductID:   p.ID,
			ProductName: p.Title,
			UnitPrice:   p.Price,
			Quantity:    q,
		})
	}
	return c.recalculate(rules)
}

// UpdateItemQuantity replaces the quantity of an existing line.
func (c *Cart) UpdateItemQuantity(productID string, quantity int, rules DiscountRules) error {
	if err := c.mutable(); err != nil {
		return err
	}
	idx := c.indexOf(productID)
	if idx < 0 {
		return NotFoundf("product %s is not in cart %s", productID, c.ID)
	}
	if !rules.ValidateQuantity(quantity) {
		return BusinessRulef("invalid quantity %d for product %s: must be between 1 and %d",
			quantity, productID, rules.MaxPerProduct)
	}
	c.Items[idx].Quantity = quantity
	return c.recalculate(rules)
}

// RemoveItem drops a line from the cart.
func (c *Cart) RemoveItem(productID string, rules DiscountRules) error {
	if err := c.mutable(); err != nil {
		return err
	}
	idx := c.indexOf(productID)
	if idx < 0 {
		return NotFoundf("product %s is not in cart %s", productID, c.ID)
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	return c.recalculate(rules)
}

// Complete marks the cart as turned into a sale.
func (c *Cart) Complete() error {
	switch c.Status {
	case CartActive:
		c.Status = CartCompleted
		return nil
	case CartCompleted, CartCancelled:
		return BusinessRulef("cart %s is already %s", c.ID, c.Status)
	default:
		return Validationf("unknown cart status %q", c.Status)
	}
}

// Cancel abandons an active cart.
func (c *Cart) Cancel() error {
	switch c.Status {
	case CartActive:
		c.Status = CartCancelled
		return nil
	case CartCompleted, CartCancelled:
		return BusinessRulef("cart %s is already %s", c.ID, c.Status)
	default:
		return Validationf("unknown cart status %q", c.Status)
	}
}

// CanBeDeleted reports whether the cart may be removed through the cart
// path. A completed cart has already become a sale and must not be.
func (c *Cart) CanBeDeleted() bool {
	switch c.Status {
	case CartActive, CartCancelled:
		return true
	case CartCompleted:
		return false
	default:
		return false
	}
}

// CanBeRetrieved reports whether the cart should still be shown to callers.
// Checked-out carts are hidden; callers decide between erroring and
// filtering.
func (c *Cart) CanBeRetrieved() bool {
	switch c.Status {
	case CartActive, CartCancelled:
		return true
	case CartCompleted:
		return false
	default:
		return false
	}
}

func (c *Cart) indexOf(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) mutable() error {
	if c.Status != CartActive {
		return BusinessRulef("cart %s is %s and cannot be modified", c.ID, c.Status)
	}
	return nil
}

// recalculate recomputes per-line discount/total and the aggregate total.
func (c *Cart) recalculate(rules DiscountRules) error {
	total := Zero
	for i := range c.Items {
		it := &c.Items[i]
		discountedUnit, err := rules.ApplyDiscount(it.Quantity, it.UnitPrice)
		if err != nil {
			return err
		}
		perUnitDiscount, err := rules.CalculateDiscount(it.Quantity, it.UnitPrice)
		if err != nil {
			return err
		}
		it.Discount = perUnitDiscount.MulInt(it.Quantity)
		it.Total = discountedUnit.MulInt(it.Quantity)
		total = total.Add(it.Total)
	}
	c.TotalPrice = total
	return nil
}
