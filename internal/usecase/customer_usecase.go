package usecase

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type CustomerUsecase struct {
	tx        repo.TransactionManager
	customers repo.CustomerRepository
	orders    repo.OrderRepository
	clock     Clock
}

func NewCustomerUsecase(
	tx repo.TransactionManager,
	customers repo.CustomerRepository,
	orders repo.OrderRepository,
	clock Clock,
) *CustomerUsecase {
	return &CustomerUsecase{tx: tx, customers: customers, orders: orders, clock: clock}
}

type CustomerOutput struct {
	ID          int64   `json:"id"`
	UserID      int64   `json:"user_id"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Email       *string `json:"email"`
	Phone       string  `json:"phone"`
	BirthDate   *string `json:"birth_date"`
	Membership  string  `json:"membership"`
	OrdersCount *int64  `json:"orders_count,omitempty"`
}

type CustomerListOutput struct {
	Count   int64            `json:"count"`
	Results []CustomerOutput `json:"results"`
}

// PUT /customers/me, /customers/:id。nil は変更しない
type CustomerInput struct {
	FirstName  *string
	LastName   *string
	Email      *string
	Phone      *string
	BirthDate  *string // 2006-01-02
	Membership *string
}

type CustomerListInput struct {
	Page   int
	Limit  int
	Search string
}

const dateLayout = "2006-01-02"

var (
	errInvalidEmail      = errors.New("enter a valid email address")
	errEmailTaken        = errors.New("customer with this email already exists")
	errInvalidBirthDate  = errors.New("date has wrong format, use YYYY-MM-DD")
	errInvalidMembership = errors.New(`must be one of "B", "S", "G"`)
	errMembershipStaff   = errors.New("only staff can change membership")
)

// 自分のプロフィール（無ければ作る）
func (u *CustomerUsecase) Me(ctx context.Context, actor model.Actor) (CustomerOutput, error) {
	if !actor.Authenticated() {
		return CustomerOutput{}, errUnauthorized
	}
	c, err := u.customers.GetOrCreateByUserID(ctx, actor.UserID)
	if err != nil {
		return CustomerOutput{}, dbError(err)
	}
	return toCustomerOutput(c), nil
}

// membership は管理者しか変えられない
func (u *CustomerUsecase) UpdateMe(ctx context.Context, actor model.Actor, in CustomerInput) (CustomerOutput, error) {
	if !actor.Authenticated() {
		return CustomerOutput{}, errUnauthorized
	}
	if in.Membership != nil && !actor.IsStaff {
		return CustomerOutput{}, NewValidationError("membership", errMembershipStaff)
	}

	c, err := u.customers.GetOrCreateByUserID(ctx, actor.UserID)
	if err != nil {
		return CustomerOutput{}, dbError(err)
	}
	if err := applyCustomerInput(&c, in); err != nil {
		return CustomerOutput{}, err
	}

	if err := u.customers.Update(ctx, c); err != nil {
		return CustomerOutput{}, customerWriteError(err)
	}
	return toCustomerOutput(c), nil
}

func (u *CustomerUsecase) List(ctx context.Context, in CustomerListInput) (CustomerListOutput, error) {
	if in.Page == 0 {
		in.Page = 1
	}
	if in.Limit == 0 {
		in.Limit = 50
	}
	if in.Page < 1 {
		return CustomerListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return CustomerListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	rows, total, err := u.customers.List(ctx, repo.CustomerListQuery{
		Page:   in.Page,
		Limit:  in.Limit,
		Search: strings.TrimSpace(in.Search),
	})
	if err != nil {
		return CustomerListOutput{}, dbError(err)
	}

	outs := make([]CustomerOutput, 0, len(rows))
	for _, r := range rows {
		o := toCustomerOutput(r.Customer)
		n := r.OrdersCount
		o.OrdersCount = &n
		outs = append(outs, o)
	}
	return CustomerListOutput{Count: total, Results: outs}, nil
}

func (u *CustomerUsecase) Get(ctx context.Context, customerID int64) (CustomerOutput, error) {
	if customerID <= 0 {
		return CustomerOutput{}, errNotFound
	}
	c, err := u.customers.FindByID(ctx, customerID)
	if errors.Is(err, repo.ErrNotFound) {
		return CustomerOutput{}, errNotFound
	}
	if err != nil {
		return CustomerOutput{}, dbError(err)
	}
	return toCustomerOutput(c), nil
}

// 管理者の更新。変更前後を監査ログに残す
func (u *CustomerUsecase) Update(ctx context.Context, actor model.Actor, customerID int64, in CustomerInput) (CustomerOutput, error) {
	if !actor.Authenticated() {
		return CustomerOutput{}, errUnauthorized
	}
	if !actor.IsStaff {
		return CustomerOutput{}, errForbidden
	}
	if customerID <= 0 {
		return CustomerOutput{}, errNotFound
	}

	var out CustomerOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		c, err := r.Customers().FindByID(ctx, customerID)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound
		}
		if err != nil {
			return dbError(err)
		}

		before := toCustomerOutput(c)
		if err := applyCustomerInput(&c, in); err != nil {
			return err
		}
		if err := r.Customers().Update(ctx, c); err != nil {
			return customerWriteError(err)
		}
		out = toCustomerOutput(c)

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actor.UserID,
			Action:       model.AuditActionUpdateCustomer,
			ResourceType: model.AuditResourceCustomer,
			ResourceID:   customerID,
			BeforeJSON:   auditJSON(before),
			AfterJSON:    auditJSON(out),
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			return dbError(err)
		}
		return nil
	})
	if err != nil {
		return CustomerOutput{}, err
	}
	return out, nil
}

// 顧客の注文履歴（管理者）
func (u *CustomerUsecase) History(ctx context.Context, customerID int64) ([]OrderOutput, error) {
	if customerID <= 0 {
		return []OrderOutput{}, errNotFound
	}
	if _, err := u.customers.FindByID(ctx, customerID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return []OrderOutput{}, errNotFound
		}
		return []OrderOutput{}, dbError(err)
	}

	orders, _, err := u.orders.List(ctx, repo.OrderListFilter{Page: 1, Limit: 100, CustomerID: &customerID})
	if err != nil {
		return []OrderOutput{}, dbError(err)
	}
	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		outs = append(outs, toOrderOutput(o))
	}
	return outs, nil
}

func applyCustomerInput(c *model.Customer, in CustomerInput) error {
	if in.FirstName != nil {
		c.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		c.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Phone != nil {
		c.Phone = strings.TrimSpace(*in.Phone)
	}
	if len(c.FirstName) > 255 || len(c.LastName) > 255 || len(c.Phone) > 255 {
		return NewValidationError("first_name", errors.New("ensure this field has no more than 255 characters"))
	}

	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email == "" {
			c.Email = nil
		} else {
			addr, err := mail.ParseAddress(email)
			if err != nil || addr.Address != email {
				return NewValidationError("email", errInvalidEmail)
			}
			c.Email = &email
		}
	}

	if in.BirthDate != nil {
		s := strings.TrimSpace(*in.BirthDate)
		if s == "" {
			c.BirthDate = nil
		} else {
			d, err := time.Parse(dateLayout, s)
			if err != nil {
				return NewValidationError("birth_date", errInvalidBirthDate)
			}
			c.BirthDate = &d
		}
	}

	if in.Membership != nil {
		m := model.Membership(strings.TrimSpace(*in.Membership))
		if !m.Valid() {
			return NewValidationError("membership", errInvalidMembership)
		}
		c.Membership = m
	}
	return nil
}

// email の一意制約違反は入力エラー
func customerWriteError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return NewValidationError("email", errEmailTaken)
	}
	if errors.Is(err, repo.ErrNotFound) {
		return errNotFound
	}
	return dbError(err)
}

func toCustomerOutput(c model.Customer) CustomerOutput {
	var birth *string
	if c.BirthDate != nil {
		s := c.BirthDate.Format(dateLayout)
		birth = &s
	}
	return CustomerOutput{
		ID:         c.ID,
		UserID:     c.UserID,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Email:      c.Email,
		Phone:      c.Phone,
		BirthDate:  birth,
		Membership: string(c.Membership),
	}
}
