package usecase

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain/model"
	"storefront/internal/repository"
)

type AddressDTO struct {
	ID       int64   `json:"id"`
	Customer int64   `json:"customer"`
	Street   string  `json:"street"`
	City     string  `json:"city"`
	Zip      *string `json:"zip"`
}

type AddressCreateRequest struct {
	Street string  `json:"street"`
	City   string  `json:"city"`
	Zip    *string `json:"zip"`
}

// 住所は呼び出し元の顧客プロフィールにだけぶら下がる
type AddressUsecase struct {
	addresses repository.AddressRepository
	customers repository.CustomerRepository
}

func NewAddressUsecase(addresses repository.AddressRepository, customers repository.CustomerRepository) *AddressUsecase {
	return &AddressUsecase{addresses: addresses, customers: customers}
}

func (u *AddressUsecase) List(ctx context.Context, actor model.Actor) ([]AddressDTO, error) {
	customer, err := u.customerOf(ctx, actor)
	if err != nil {
		return []AddressDTO{}, err
	}

	list, err := u.addresses.ListByCustomerID(ctx, customer.ID)
	if err != nil {
		return []AddressDTO{}, dbError(err)
	}

	out := make([]AddressDTO, 0, len(list))
	for i := range list {
		out = append(out, toAddressDTO(&list[i]))
	}
	return out, nil
}

func (u *AddressUsecase) Create(ctx context.Context, actor model.Actor, req AddressCreateRequest) (AddressDTO, error) {
	customer, err := u.customerOf(ctx, actor)
	if err != nil {
		return AddressDTO{}, err
	}

	street := strings.TrimSpace(req.Street)
	city := strings.TrimSpace(req.City)
	if street == "" {
		return AddressDTO{}, NewValidationError("street", errRequired)
	}
	if city == "" {
		return AddressDTO{}, NewValidationError("city", errRequired)
	}
	if len(street) > 255 || len(city) > 255 {
		return AddressDTO{}, NewValidationError("street", errors.New("ensure this field has no more than 255 characters"))
	}

	var zip *string
	if req.Zip != nil {
		if z := strings.TrimSpace(*req.Zip); z != "" {
			zip = &z
		}
	}

	created, err := u.addresses.Create(ctx, model.Address{
		CustomerID: customer.ID,
		Street:     street,
		City:       city,
		Zip:        zip,
	})
	if err != nil {
		return AddressDTO{}, dbError(err)
	}
	return toAddressDTO(&created), nil
}

// 他人の住所は 404
func (u *AddressUsecase) Delete(ctx context.Context, actor model.Actor, addressID int64) error {
	customer, err := u.customerOf(ctx, actor)
	if err != nil {
		return err
	}
	if addressID <= 0 {
		return errNotFound
	}

	if err := u.addresses.Delete(ctx, customer.ID, addressID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errNotFound
		}
		return dbError(err)
	}
	return nil
}

func (u *AddressUsecase) customerOf(ctx context.Context, actor model.Actor) (model.Customer, error) {
	if !actor.Authenticated() {
		return model.Customer{}, errUnauthorized
	}
	c, err := u.customers.GetOrCreateByUserID(ctx, actor.UserID)
	if err != nil {
		return model.Customer{}, dbError(err)
	}
	return c, nil
}

func toAddressDTO(a *model.Address) AddressDTO {
	return AddressDTO{
		ID:       a.ID,
		Customer: a.CustomerID,
		Street:   a.Street,
		City:     a.City,
		Zip:      a.Zip,
	}
}
