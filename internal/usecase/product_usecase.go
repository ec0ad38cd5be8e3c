package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

type ProductUsecase struct {
	tx             repo.TransactionManager
	productRepo    repo.ProductRepository
	collectionRepo repo.CollectionRepository
	orderItemRepo  repo.OrderItemRepository
	clock          Clock
}

// DI
func NewProductUsecase(
	tx repo.TransactionManager,
	productRepo repo.ProductRepository,
	collectionRepo repo.CollectionRepository,
	orderItemRepo repo.OrderItemRepository,
	clock Clock,
) *ProductUsecase {
	return &ProductUsecase{
		tx:             tx,
		productRepo:    productRepo,
		collectionRepo: collectionRepo,
		orderItemRepo:  orderItemRepo,
		clock:          clock,
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page         int
	PageSize     int
	CollectionID *int64
	Search       string
	Ordering     string
	Inventory    string // "low" のみ
}

type ProductOutput struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Slug            string    `json:"slug"`
	Description     string    `json:"description"`
	Inventory       int64     `json:"inventory"`
	InventoryStatus string    `json:"inventory_status"`
	UnitPrice       string    `json:"unit_price"`
	PriceWithTax    string    `json:"price_with_tax"`
	Collection      int64     `json:"collection"`
	LastUpdate      time.Time `json:"last_update"`
}

type ProductListOutput struct {
	Count   int64           `json:"count"`
	Page    int             `json:"page"`
	Results []ProductOutput `json:"results"`
}

// 作成/更新の入力。PATCHでは nil の項目は変更しない
type ProductInput struct {
	Title        *string
	Slug         *string
	Description  *string
	UnitPrice    *decimal.Decimal
	Inventory    *int64
	CollectionID *int64
}

type ClearInventoryOutput struct {
	Updated int64 `json:"updated"`
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

var (
	maxUnitPrice = decimal.NewFromInt(10000)

	errUnitPriceRange    = errors.New("ensure this value is between 0 and 9999.99")
	errInventoryMin      = errors.New("ensure this value is greater than or equal to 0")
	errNoSuchCollection  = errors.New("no collection with the given ID was found")
	errInvalidOrdering   = errors.New("must be one of unit_price, -unit_price, last_update, -last_update")
	errInvalidInventory  = errors.New(`must be "low"`)
	errProductInOrders   = errors.New("product cannot be deleted because it is associated with an order item")
	errProductIDsMissing = errors.New("at least one product id is required")
)

func (u *ProductUsecase) List(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page == 0 {
		in.Page = 1
	}
	if in.PageSize == 0 {
		in.PageSize = defaultPageSize
	}
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.PageSize < 1 || in.PageSize > maxPageSize {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page_size")
	}
	if len(in.Search) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "search too long")
	}
	switch in.Ordering {
	case "", "unit_price", "-unit_price", "last_update", "-last_update":
	default:
		return ProductListOutput{}, NewValidationError("ordering", errInvalidOrdering)
	}
	switch in.Inventory {
	case "", "low":
	default:
		return ProductListOutput{}, NewValidationError("inventory", errInvalidInventory)
	}

	items, total, err := u.productRepo.List(ctx, repo.ProductListQuery{
		Page:         in.Page,
		Limit:        in.PageSize,
		CollectionID: in.CollectionID,
		Search:       strings.TrimSpace(in.Search),
		Ordering:     in.Ordering,
		LowInventory: in.Inventory == "low",
	})
	if err != nil {
		return ProductListOutput{}, dbError(err)
	}

	outs := make([]ProductOutput, 0, len(items))
	for _, p := range items {
		outs = append(outs, toProductOutput(p))
	}
	return ProductListOutput{Count: total, Page: in.Page, Results: outs}, nil
}

func (u *ProductUsecase) Get(ctx context.Context, productID int64) (ProductOutput, error) {
	if productID <= 0 {
		return ProductOutput{}, errNotFound
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return ProductOutput{}, errNotFound
	}
	if err != nil {
		return ProductOutput{}, dbError(err)
	}
	return toProductOutput(p), nil
}

func (u *ProductUsecase) Create(ctx context.Context, in ProductInput) (ProductOutput, error) {
	p := model.Product{}
	if err := u.apply(ctx, &p, in, false); err != nil {
		return ProductOutput{}, err
	}

	created, err := u.productRepo.Create(ctx, p)
	if err != nil {
		return ProductOutput{}, dbError(err)
	}
	return toProductOutput(created), nil
}

// partial=true は PATCH
func (u *ProductUsecase) Update(ctx context.Context, productID int64, in ProductInput, partial bool) (ProductOutput, error) {
	if productID <= 0 {
		return ProductOutput{}, errNotFound
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return ProductOutput{}, errNotFound
	}
	if err != nil {
		return ProductOutput{}, dbError(err)
	}

	if err := u.apply(ctx, &p, in, partial); err != nil {
		return ProductOutput{}, err
	}

	if err := u.productRepo.Update(ctx, p); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ProductOutput{}, errNotFound
		}
		return ProductOutput{}, dbError(err)
	}

	updated, err := u.productRepo.FindByID(ctx, productID)
	if err != nil {
		return ProductOutput{}, dbError(err)
	}
	return toProductOutput(updated), nil
}

// 注文明細から参照されている商品は消せない（405）
func (u *ProductUsecase) Delete(ctx context.Context, productID int64) error {
	if productID <= 0 {
		return errNotFound
	}

	n, err := u.orderItemRepo.CountByProductID(ctx, productID)
	if err != nil {
		return dbError(err)
	}
	if n > 0 {
		return WrapHTTPError(http.StatusMethodNotAllowed, errProductInOrders.Error(), errProductInOrders)
	}

	if err := u.productRepo.Delete(ctx, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound
		}
		return dbError(err)
	}
	return nil
}

// 在庫を一括で0にする（管理者）。商品ごとに監査ログを残す
func (u *ProductUsecase) ClearInventory(ctx context.Context, actor model.Actor, productIDs []int64) (ClearInventoryOutput, error) {
	if !actor.Authenticated() {
		return ClearInventoryOutput{}, errUnauthorized
	}
	if !actor.IsStaff {
		return ClearInventoryOutput{}, errForbidden
	}

	ids := uniquePositive(productIDs)
	if len(ids) == 0 {
		return ClearInventoryOutput{}, NewValidationError("ids", errProductIDsMissing)
	}

	var out ClearInventoryOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//変更前の在庫（before）
		before := make(map[int64]int64, len(ids))
		for _, id := range ids {
			p, err := r.Products().FindByID(ctx, id)
			if errors.Is(err, repo.ErrNotFound) {
				continue
			}
			if err != nil {
				return dbError(err)
			}
			before[id] = p.Inventory
		}

		n, err := r.Products().ClearInventory(ctx, ids)
		if err != nil {
			return dbError(err)
		}

		now := u.clock.Now()
		for _, id := range ids {
			inv, ok := before[id]
			if !ok {
				continue
			}
			if err := r.AuditLogs().Create(ctx, model.AuditLog{
				ActorUserID:  actor.UserID,
				Action:       model.AuditActionClearInventory,
				ResourceType: model.AuditResourceProduct,
				ResourceID:   id,
				BeforeJSON:   auditJSON(map[string]int64{"inventory": inv}),
				AfterJSON:    auditJSON(map[string]int64{"inventory": 0}),
				CreatedAt:    now,
			}); err != nil {
				return dbError(err)
			}
		}

		out.Updated = n
		return nil
	})
	if err != nil {
		return ClearInventoryOutput{}, err
	}
	return out, nil
}

// 入力をProductに反映してチェックする
func (u *ProductUsecase) apply(ctx context.Context, p *model.Product, in ProductInput, partial bool) error {
	if in.Title != nil {
		p.Title = strings.TrimSpace(*in.Title)
	}
	if !partial || in.Title != nil {
		if p.Title == "" {
			return NewValidationError("title", errRequired)
		}
		if len(p.Title) > 255 {
			return NewValidationError("title", errors.New("ensure this field has no more than 255 characters"))
		}
	}

	if in.Description != nil {
		p.Description = *in.Description
	}

	if in.UnitPrice != nil {
		p.UnitPrice = *in.UnitPrice
	} else if !partial {
		return NewValidationError("unit_price", errRequired)
	}
	if p.UnitPrice.IsNegative() || p.UnitPrice.GreaterThanOrEqual(maxUnitPrice) {
		return NewValidationError("unit_price", errUnitPriceRange)
	}
	p.UnitPrice = p.UnitPrice.Round(2)

	if in.Inventory != nil {
		p.Inventory = *in.Inventory
	} else if !partial {
		return NewValidationError("inventory", errRequired)
	}
	if p.Inventory < 0 {
		return NewValidationError("inventory", errInventoryMin)
	}

	if in.CollectionID != nil {
		ok, err := u.collectionRepo.Exists(ctx, *in.CollectionID)
		if err != nil {
			return dbError(err)
		}
		if !ok {
			return NewValidationError("collection", errNoSuchCollection)
		}
		p.CollectionID = *in.CollectionID
	} else if !partial {
		return NewValidationError("collection", errRequired)
	}

	if in.Slug != nil {
		p.Slug = Slugify(*in.Slug)
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	}
	return nil
}

// "Fresh Bread!" -> "fresh-bread"
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func uniquePositive(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func toProductOutput(p model.Product) ProductOutput {
	return ProductOutput{
		ID:              p.ID,
		Title:           p.Title,
		Slug:            p.Slug,
		Description:     p.Description,
		Inventory:       p.Inventory,
		InventoryStatus: p.InventoryStatus(),
		UnitPrice:       money(p.UnitPrice),
		PriceWithTax:    money(p.PriceWithTax()),
		Collection:      p.CollectionID,
		LastUpdate:      p.LastUpdate,
	}
}
