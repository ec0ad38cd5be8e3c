package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type CollectionUsecase struct {
	collectionRepo repo.CollectionRepository
	productRepo    repo.ProductRepository
}

func NewCollectionUsecase(collectionRepo repo.CollectionRepository, productRepo repo.ProductRepository) *CollectionUsecase {
	return &CollectionUsecase{collectionRepo: collectionRepo, productRepo: productRepo}
}

type CollectionOutput struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	FeaturedProduct *int64 `json:"featured_product"`
	ProductsCount   int64  `json:"products_count"`
}

type CollectionInput struct {
	Title           string
	FeaturedProduct *int64
}

var errCollectionInUse = errors.New("collection cannot be deleted because it includes one or more products")

func (u *CollectionUsecase) List(ctx context.Context) ([]CollectionOutput, error) {
	rows, err := u.collectionRepo.List(ctx)
	if err != nil {
		return []CollectionOutput{}, dbError(err)
	}
	outs := make([]CollectionOutput, 0, len(rows))
	for _, c := range rows {
		outs = append(outs, toCollectionOutput(c))
	}
	return outs, nil
}

func (u *CollectionUsecase) Get(ctx context.Context, id int64) (CollectionOutput, error) {
	if id <= 0 {
		return CollectionOutput{}, errNotFound
	}
	c, err := u.collectionRepo.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return CollectionOutput{}, errNotFound
	}
	if err != nil {
		return CollectionOutput{}, dbError(err)
	}
	return toCollectionOutput(c), nil
}

func (u *CollectionUsecase) Create(ctx context.Context, in CollectionInput) (CollectionOutput, error) {
	c, err := u.validate(ctx, in)
	if err != nil {
		return CollectionOutput{}, err
	}

	created, err := u.collectionRepo.Create(ctx, c)
	if err != nil {
		return CollectionOutput{}, dbError(err)
	}
	return toCollectionOutput(repo.CollectionWithCount{Collection: created}), nil
}

func (u *CollectionUsecase) Update(ctx context.Context, id int64, in CollectionInput) (CollectionOutput, error) {
	if id <= 0 {
		return CollectionOutput{}, errNotFound
	}
	c, err := u.validate(ctx, in)
	if err != nil {
		return CollectionOutput{}, err
	}
	c.ID = id

	if err := u.collectionRepo.Update(ctx, c); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CollectionOutput{}, errNotFound
		}
		return CollectionOutput{}, dbError(err)
	}
	return u.Get(ctx, id)
}

// 商品が残っていたら 409
func (u *CollectionUsecase) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return errNotFound
	}
	err := u.collectionRepo.Delete(ctx, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrNotFound):
		return errNotFound
	case errors.Is(err, repo.ErrInUse):
		return WrapHTTPError(http.StatusConflict, errCollectionInUse.Error(), err)
	default:
		return dbError(err)
	}
}

func (u *CollectionUsecase) validate(ctx context.Context, in CollectionInput) (model.Collection, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return model.Collection{}, NewValidationError("title", errRequired)
	}
	if len(title) > 255 {
		return model.Collection{}, NewValidationError("title", errors.New("ensure this field has no more than 255 characters"))
	}

	if in.FeaturedProduct != nil {
		if _, err := u.productRepo.FindByID(ctx, *in.FeaturedProduct); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return model.Collection{}, NewValidationError("featured_product", errNoSuchProduct)
			}
			return model.Collection{}, dbError(err)
		}
	}

	return model.Collection{Title: title, FeaturedProductID: in.FeaturedProduct}, nil
}

func toCollectionOutput(c repo.CollectionWithCount) CollectionOutput {
	return CollectionOutput{
		ID:              c.ID,
		Title:           c.Title,
		FeaturedProduct: c.FeaturedProductID,
		ProductsCount:   c.ProductsCount,
	}
}
