package usecase

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartUsecase は /carts の業務ロジックです。
// カートは匿名。IDを知っていれば誰でも触れる。
type CartUsecase struct {
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
}

func NewCartUsecase(
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
	}
}

type CartItemOutput struct {
	ID         int64               `json:"id"`
	Product    SimpleProductOutput `json:"product"`
	Quantity   int64               `json:"quantity"`
	TotalPrice string              `json:"total_price"`
}

type CartOutput struct {
	ID         string           `json:"id"`
	CreatedAt  time.Time        `json:"created_at"`
	Items      []CartItemOutput `json:"items"`
	TotalPrice string           `json:"total_price"`
}

type AddCartItemInput struct {
	ProductID int64
	Quantity  int64
}

type UpdateCartItemInput struct {
	Quantity int64
}

var (
	errQuantityMin    = errors.New("ensure this value is greater than or equal to 1")
	errNoSuchProduct  = errors.New("no product with the given ID was found")
	errProductMissing = errors.New("this field is required")
)

// 空カートを作る
func (u *CartUsecase) CreateCart(ctx context.Context) (CartOutput, error) {
	cart, err := u.cartRepo.Create(ctx)
	if err != nil {
		return CartOutput{}, dbError(err)
	}
	return toCartOutput(cart), nil
}

// 明細・合計つき
func (u *CartUsecase) GetCart(ctx context.Context, cartID string) (CartOutput, error) {
	id, ok := normalizeCartID(cartID)
	if !ok {
		return CartOutput{}, errNotFound
	}

	cart, err := u.cartRepo.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return CartOutput{}, errNotFound
	}
	if err != nil {
		return CartOutput{}, dbError(err)
	}
	return toCartOutput(cart), nil
}

func (u *CartUsecase) DeleteCart(ctx context.Context, cartID string) error {
	id, ok := normalizeCartID(cartID)
	if !ok {
		return errNotFound
	}
	if err := u.cartRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound
		}
		return dbError(err)
	}
	return nil
}

func (u *CartUsecase) ListItems(ctx context.Context, cartID string) ([]CartItemOutput, error) {
	id, err := u.requireCart(ctx, cartID)
	if err != nil {
		return []CartItemOutput{}, err
	}

	items, err := u.cartItemRepo.ListByCartID(ctx, id)
	if err != nil {
		return []CartItemOutput{}, dbError(err)
	}

	outs := make([]CartItemOutput, 0, len(items))
	for _, it := range items {
		outs = append(outs, toCartItemOutput(it))
	}
	return outs, nil
}

func (u *CartUsecase) GetItem(ctx context.Context, cartID string, itemID int64) (CartItemOutput, error) {
	id, ok := normalizeCartID(cartID)
	if !ok || itemID <= 0 {
		return CartItemOutput{}, errNotFound
	}

	it, err := u.cartItemRepo.FindByID(ctx, id, itemID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartItemOutput{}, errNotFound
	}
	if err != nil {
		return CartItemOutput{}, dbError(err)
	}
	return toCartItemOutput(it), nil
}

// カートに追加（同一商品は数量加算）。
func (u *CartUsecase) AddItem(ctx context.Context, cartID string, in AddCartItemInput) (CartItemOutput, error) {
	id, err := u.requireCart(ctx, cartID)
	if err != nil {
		return CartItemOutput{}, err
	}

	if in.ProductID <= 0 {
		return CartItemOutput{}, NewValidationError("product_id", errProductMissing)
	}
	if in.Quantity < 1 {
		return CartItemOutput{}, NewValidationError("quantity", errQuantityMin)
	}

	// 商品チェック
	if _, err := u.productRepo.FindByID(ctx, in.ProductID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartItemOutput{}, NewValidationError("product_id", errNoSuchProduct)
		}
		return CartItemOutput{}, dbError(err)
	}

	it, err := u.cartItemRepo.AddOrIncrement(ctx, id, in.ProductID, in.Quantity)
	if err != nil {
		return CartItemOutput{}, dbError(err)
	}
	return toCartItemOutput(it), nil
}

// 数量だけ変更できる
func (u *CartUsecase) UpdateItem(ctx context.Context, cartID string, itemID int64, in UpdateCartItemInput) (CartItemOutput, error) {
	id, ok := normalizeCartID(cartID)
	if !ok || itemID <= 0 {
		return CartItemOutput{}, errNotFound
	}
	if in.Quantity < 1 {
		return CartItemOutput{}, NewValidationError("quantity", errQuantityMin)
	}

	if err := u.cartItemRepo.UpdateQuantity(ctx, id, itemID, in.Quantity); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartItemOutput{}, errNotFound
		}
		return CartItemOutput{}, dbError(err)
	}

	it, err := u.cartItemRepo.FindByID(ctx, id, itemID)
	if err != nil {
		return CartItemOutput{}, dbError(err)
	}
	return toCartItemOutput(it), nil
}

func (u *CartUsecase) DeleteItem(ctx context.Context, cartID string, itemID int64) error {
	id, ok := normalizeCartID(cartID)
	if !ok || itemID <= 0 {
		return errNotFound
	}
	if err := u.cartItemRepo.Delete(ctx, id, itemID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound
		}
		return dbError(err)
	}
	return nil
}

// URLのIDが壊れていたら 404
func normalizeCartID(raw string) (string, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

func (u *CartUsecase) requireCart(ctx context.Context, cartID string) (string, error) {
	id, ok := normalizeCartID(cartID)
	if !ok {
		return "", errNotFound
	}
	exists, err := u.cartRepo.Exists(ctx, id)
	if err != nil {
		return "", dbError(err)
	}
	if !exists {
		return "", errNotFound
	}
	return id, nil
}

func toCartItemOutput(it model.CartItem) CartItemOutput {
	product := toSimpleProduct(it.Product)
	if product.ID == 0 {
		product.ID = it.ProductID
	}
	return CartItemOutput{
		ID:         it.ID,
		Product:    product,
		Quantity:   it.Quantity,
		TotalPrice: money(cartItemTotal(it)),
	}
}

func cartItemTotal(it model.CartItem) decimal.Decimal {
	if it.Product == nil {
		return decimal.Zero
	}
	return it.Product.UnitPrice.Mul(decimal.NewFromInt(it.Quantity))
}

func toCartOutput(c model.Cart) CartOutput {
	items := make([]CartItemOutput, 0, len(c.Items))
	total := decimal.Zero
	for _, it := range c.Items {
		items = append(items, toCartItemOutput(it))
		total = total.Add(cartItemTotal(it))
	}
	return CartOutput{
		ID:         c.ID,
		CreatedAt:  c.CreatedAt,
		Items:      items,
		TotalPrice: money(total),
	}
}
