package usecase

import (
	"context"

	"github.com/halls510/developerstore-sales-api-sub001/internal/domain"
)

// CartService owns the pre-checkout cart mutations. Every change goes
// through the aggregate's own recompute path so the cart total never drifts
// from its line totals.
type CartService struct {
	carts   CartStore
	catalog ProductCatalog
	rules   domain.DiscountRules
}

func NewCartService(carts CartStore, catalog ProductCatalog, rules domain.DiscountRules) *CartService {
	return &CartService{carts: carts, catalog: catalog, rules: rules}
}

func (s *CartService) CreateCart(ctx context.Context, userID, userName string) (*domain.Cart, error) {
	cart := domain.NewCart(userID, userName)
	if err := s.carts.Create(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// GetCart returns the cart, hiding carts that already became sales.
func (s *CartService) GetCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	cart, err := s.carts.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if !cart.CanBeRetrieved() {
		return nil, domain.NotFoundf("cart %s does not exist", cartID)
	}
	return cart, nil
}

func (s *CartService) AddItem(ctx context.Context, cartID, productID string, quantity int) (*domain.Cart, error) {
	cart, err := s.GetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	products, err := s.catalog.GetByIDs(ctx, []string{productID})
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, domain.NotFoundf("product %s does not exist", productID)
	}
	if err := cart.AddItem(products[0], quantity, s.rules); err != nil {
		return nil, err
	}
	if err := s.carts.Update(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) UpdateItem(ctx context.Context, cartID, productID string, quantity int) (*domain.Cart, error) {
	cart, err := s.GetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if err := cart.UpdateItemQuantity(productID, quantity, s.rules); err != nil {
		return nil, err
	}
	if err := s.carts.Update(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) RemoveItem(ctx context.Context, cartID, productID string) (*domain.Cart, error) {
	cart, err := s.GetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if err := cart.RemoveItem(productID, s.rules); err != nil {
		return nil, err
	}
	if err := s.carts.Update(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// CancelCart abandons an active cart without deleting it, so the customer
// can still see what they walked away from.
func (s *CartService) CancelCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	cart, err := s.GetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if err := cart.Cancel(); err != nil {
		return nil, err
	}
	if err := s.carts.Update(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// DeleteCart removes a cart that is still eligible for deletion.
func (s *CartService) DeleteCart(ctx context.Context, cartID string) error {
	cart, err := s.carts.GetByID(ctx, cartID)
	if err != nil {
		return err
	}
	if !cart.CanBeDeleted() {
		return domain.BusinessRulef("cart %s is %s and cannot be deleted", cart.ID, cart.Status)
	}
	return s.carts.Delete(ctx, cartID)
}
