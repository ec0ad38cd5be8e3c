package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("storefront/internal/usecase")

type Clock interface {
	Now() time.Time
}

type OrderUsecase struct {
	tx        repo.TransactionManager
	carts     repo.CartRepository
	cartItems repo.CartItemRepository
	customers repo.CustomerRepository
	orders    repo.OrderRepository
	clock     Clock
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	carts repo.CartRepository,
	cartItems repo.CartItemRepository,
	customers repo.CustomerRepository,
	orders repo.OrderRepository,
	clock Clock,
) *OrderUsecase {
	return &OrderUsecase{
		tx:        tx,
		carts:     carts,
		cartItems: cartItems,
		customers: customers,
		orders:    orders,
		clock:     clock,
	}
}

type PlaceOrderInput struct {
	CartID string
}

type OrderListInput struct {
	Page          int
	Limit         int
	PaymentStatus string
	CustomerID    *int64 // 管理者のみ
}

type UpdatePaymentStatusInput struct {
	PaymentStatus string
}

type SimpleProductOutput struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	UnitPrice string `json:"unit_price"`
}

type OrderItemOutput struct {
	ID         int64               `json:"id"`
	Product    SimpleProductOutput `json:"product"`
	UnitPrice  string              `json:"unit_price"`
	Quantity   int64               `json:"quantity"`
	TotalPrice string              `json:"total_price"`
}

type OrderOutput struct {
	ID            int64             `json:"id"`
	Customer      int64             `json:"customer"`
	PlacedAt      time.Time         `json:"placed_at"`
	PaymentStatus string            `json:"payment_status"`
	Items         []OrderItemOutput `json:"items"`
	TotalPrice    string            `json:"total_price"`
}

type OrderListOutput struct {
	Count   int64         `json:"count"`
	Results []OrderOutput `json:"results"`
}

// PlaceOrder はカートを注文に変える。
// 入力チェックはTxの外、書き込みはすべて1つのTxの中。
// 同じカートで同時に来たら、行ロックで後の方はカートが消えたのを見て失敗する。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, actor model.Actor, in PlaceOrderInput) (out OrderOutput, err error) {
	ctx, span := tracer.Start(ctx, "order.place")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if !actor.Authenticated() {
		return OrderOutput{}, errUnauthorized
	}

	cartID, err := parseCartID(in.CartID)
	if err != nil {
		return OrderOutput{}, err
	}
	span.SetAttributes(attribute.String("cart.id", cartID))

	// 1) カートがある
	exists, err := u.carts.Exists(ctx, cartID)
	if err != nil {
		return OrderOutput{}, dbError(err)
	}
	if !exists {
		return OrderOutput{}, NewValidationError("cart_id", ErrCartNotFound)
	}

	// 2) 明細がある（cart_idで数える）
	count, err := u.cartItems.CountByCartID(ctx, cartID)
	if err != nil {
		return OrderOutput{}, dbError(err)
	}
	if count == 0 {
		return OrderOutput{}, NewValidationError("cart_id", ErrCartEmpty)
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同時確定はここで直列になる
		if _, err := r.Carts().LockByID(ctx, cartID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewValidationError("cart_id", ErrCartNotFound)
			}
			return dbError(err)
		}

		// ロック待ちの間に中身が消えていないか
		n, err := r.CartItems().CountByCartID(ctx, cartID)
		if err != nil {
			return dbError(err)
		}
		if n == 0 {
			return NewValidationError("cart_id", ErrCartEmpty)
		}

		customer, err := r.Customers().GetOrCreateByUserID(ctx, actor.UserID)
		if err != nil {
			return dbError(err)
		}

		order, err := r.Orders().Create(ctx, model.Order{
			CustomerID:    customer.ID,
			PlacedAt:      u.clock.Now(),
			PaymentStatus: model.PaymentStatusPending,
		})
		if err != nil {
			return dbError(err)
		}

		cartItems, err := r.CartItems().ListByCartID(ctx, cartID)
		if err != nil {
			return dbError(err)
		}

		// 価格はここでコピーする（後の値上げに追従しない）
		items := make([]model.OrderItem, 0, len(cartItems))
		for _, ci := range cartItems {
			if ci.Product == nil {
				return WrapHTTPError(http.StatusInternalServerError, "db error", errors.New("cart item without product"))
			}
			items = append(items, model.OrderItem{
				ProductID: ci.ProductID,
				Product:   ci.Product,
				Quantity:  ci.Quantity,
				UnitPrice: ci.Product.UnitPrice,
			})
		}

		if err := r.OrderItems().CreateBulk(ctx, order.ID, items); err != nil {
			return dbError(err)
		}

		// 明細ごと削除。0件なら他のリクエストが先に確定した
		if err := r.Carts().Delete(ctx, cartID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewValidationError("cart_id", ErrCartNotFound)
			}
			return dbError(err)
		}

		order.Items = items
		out = toOrderOutput(order)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	span.SetAttributes(
		attribute.Int64("order.id", out.ID),
		attribute.Int("order.items", len(out.Items)),
	)
	return out, nil
}

// 管理者は全件、それ以外は自分の注文だけ
func (u *OrderUsecase) List(ctx context.Context, actor model.Actor, in OrderListInput) (OrderListOutput, error) {
	if !actor.Authenticated() {
		return OrderListOutput{}, errUnauthorized
	}
	if in.Page == 0 {
		in.Page = 1
	}
	if in.Limit == 0 {
		in.Limit = 50
	}
	if in.Page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if in.PaymentStatus != "" && !model.PaymentStatus(in.PaymentStatus).Valid() {
		return OrderListOutput{}, NewValidationError("payment_status", errInvalidPaymentStatus)
	}

	f := repo.OrderListFilter{
		Page:          in.Page,
		Limit:         in.Limit,
		PaymentStatus: in.PaymentStatus,
	}
	if actor.IsStaff {
		f.CustomerID = in.CustomerID
	} else {
		customer, err := u.customers.GetOrCreateByUserID(ctx, actor.UserID)
		if err != nil {
			return OrderListOutput{}, dbError(err)
		}
		f.CustomerID = &customer.ID
	}

	orders, total, err := u.orders.List(ctx, f)
	if err != nil {
		return OrderListOutput{}, dbError(err)
	}

	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		outs = append(outs, toOrderOutput(o))
	}
	return OrderListOutput{Count: total, Results: outs}, nil
}

// 他人の注文は「存在しない扱い」にする
func (u *OrderUsecase) Get(ctx context.Context, actor model.Actor, orderID int64) (OrderOutput, error) {
	if !actor.Authenticated() {
		return OrderOutput{}, errUnauthorized
	}
	if orderID <= 0 {
		return OrderOutput{}, errNotFound
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderOutput{}, errNotFound
	}
	if err != nil {
		return OrderOutput{}, dbError(err)
	}

	if !actor.IsStaff {
		customer, err := u.customers.FindByUserID(ctx, actor.UserID)
		if errors.Is(err, repo.ErrNotFound) {
			return OrderOutput{}, errNotFound
		}
		if err != nil {
			return OrderOutput{}, dbError(err)
		}
		if o.CustomerID != customer.ID {
			return OrderOutput{}, errNotFound
		}
	}

	return toOrderOutput(o), nil
}

var errInvalidPaymentStatus = errors.New(`must be one of "P", "C", "F"`)

// 支払いステータスの更新（管理者）。監査ログも同じTxで書く
func (u *OrderUsecase) UpdatePaymentStatus(ctx context.Context, actor model.Actor, orderID int64, in UpdatePaymentStatusInput) (OrderOutput, error) {
	if !actor.Authenticated() {
		return OrderOutput{}, errUnauthorized
	}
	if !actor.IsStaff {
		return OrderOutput{}, errForbidden
	}
	if orderID <= 0 {
		return OrderOutput{}, errNotFound
	}

	status := model.PaymentStatus(strings.TrimSpace(in.PaymentStatus))
	if !status.Valid() {
		return OrderOutput{}, NewValidationError("payment_status", errInvalidPaymentStatus)
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound
		}
		if err != nil {
			return dbError(err)
		}

		before := o.PaymentStatus
		if before != status {
			if err := r.Orders().UpdatePaymentStatus(ctx, orderID, status); err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					return errNotFound
				}
				return dbError(err)
			}

			if err := r.AuditLogs().Create(ctx, model.AuditLog{
				ActorUserID:  actor.UserID,
				Action:       model.AuditActionUpdatePaymentStatus,
				ResourceType: model.AuditResourceOrder,
				ResourceID:   orderID,
				BeforeJSON:   auditJSON(map[string]string{"payment_status": string(before)}),
				AfterJSON:    auditJSON(map[string]string{"payment_status": string(status)}),
				CreatedAt:    u.clock.Now(),
			}); err != nil {
				return dbError(err)
			}
		}

		o.PaymentStatus = status
		out = toOrderOutput(o)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 空・UUID以外はここで弾く
func parseCartID(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", NewValidationError("cart_id", errRequired)
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return "", NewValidationError("cart_id", ErrInvalidCartID)
	}
	return id.String(), nil
}

var errRequired = errors.New("this field is required")

func auditJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func toSimpleProduct(p *model.Product) SimpleProductOutput {
	if p == nil {
		return SimpleProductOutput{}
	}
	return SimpleProductOutput{
		ID:        p.ID,
		Title:     p.Title,
		UnitPrice: money(p.UnitPrice),
	}
}

func toOrderOutput(o model.Order) OrderOutput {
	items := make([]OrderItemOutput, 0, len(o.Items))
	total := decimal.Zero
	for _, it := range o.Items {
		product := toSimpleProduct(it.Product)
		if product.ID == 0 {
			product.ID = it.ProductID
		}
		line := it.LineTotal()
		total = total.Add(line)
		items = append(items, OrderItemOutput{
			ID:         it.ID,
			Product:    product,
			UnitPrice:  money(it.UnitPrice),
			Quantity:   it.Quantity,
			TotalPrice: money(line),
		})
	}

	return OrderOutput{
		ID:            o.ID,
		Customer:      o.CustomerID,
		PlacedAt:      o.PlacedAt,
		PaymentStatus: string(o.PaymentStatus),
		Items:         items,
		TotalPrice:    money(total),
	}
}
