package usecase

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// レビューは /products/:id/reviews の下だけで扱う
type ReviewUsecase struct {
	reviewRepo  repo.ReviewRepository
	productRepo repo.ProductRepository
	clock       Clock
}

func NewReviewUsecase(reviewRepo repo.ReviewRepository, productRepo repo.ProductRepository, clock Clock) *ReviewUsecase {
	return &ReviewUsecase{reviewRepo: reviewRepo, productRepo: productRepo, clock: clock}
}

type ReviewOutput struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ReviewInput struct {
	Name        string
	Description string
}

func (u *ReviewUsecase) List(ctx context.Context, productID int64) ([]ReviewOutput, error) {
	if err := u.requireProduct(ctx, productID); err != nil {
		return []ReviewOutput{}, err
	}

	list, err := u.reviewRepo.ListByProductID(ctx, productID)
	if err != nil {
		return []ReviewOutput{}, dbError(err)
	}
	outs := make([]ReviewOutput, 0, len(list))
	for _, r := range list {
		outs = append(outs, toReviewOutput(r))
	}
	return outs, nil
}

func (u *ReviewUsecase) Get(ctx context.Context, productID, reviewID int64) (ReviewOutput, error) {
	if productID <= 0 || reviewID <= 0 {
		return ReviewOutput{}, errNotFound
	}
	r, err := u.reviewRepo.FindByID(ctx, productID, reviewID)
	if errors.Is(err, repo.ErrNotFound) {
		return ReviewOutput{}, errNotFound
	}
	if err != nil {
		return ReviewOutput{}, dbError(err)
	}
	return toReviewOutput(r), nil
}

// product_id はURLから。bodyでは受け取らない
func (u *ReviewUsecase) Create(ctx context.Context, productID int64, in ReviewInput) (ReviewOutput, error) {
	if err := u.requireProduct(ctx, productID); err != nil {
		return ReviewOutput{}, err
	}
	name, desc, err := validateReview(in)
	if err != nil {
		return ReviewOutput{}, err
	}

	created, err := u.reviewRepo.Create(ctx, model.Review{
		ProductID:   productID,
		Name:        name,
		Description: desc,
		Date:        u.clock.Now(),
	})
	if err != nil {
		return ReviewOutput{}, dbError(err)
	}
	return toReviewOutput(created), nil
}

func (u *ReviewUsecase) Update(ctx context.Context, productID, reviewID int64, in ReviewInput) (ReviewOutput, error) {
	if productID <= 0 || reviewID <= 0 {
		return ReviewOutput{}, errNotFound
	}
	name, desc, err := validateReview(in)
	if err != nil {
		return ReviewOutput{}, err
	}

	if err := u.reviewRepo.Update(ctx, model.Review{
		ID:          reviewID,
		ProductID:   productID,
		Name:        name,
		Description: desc,
	}); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ReviewOutput{}, errNotFound
		}
		return ReviewOutput{}, dbError(err)
	}
	return u.Get(ctx, productID, reviewID)
}

func (u *ReviewUsecase) Delete(ctx context.Context, productID, reviewID int64) error {
	if productID <= 0 || reviewID <= 0 {
		return errNotFound
	}
	if err := u.reviewRepo.Delete(ctx, productID, reviewID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound
		}
		return dbError(err)
	}
	return nil
}

func (u *ReviewUsecase) requireProduct(ctx context.Context, productID int64) error {
	if productID <= 0 {
		return errNotFound
	}
	if _, err := u.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound
		}
		return dbError(err)
	}
	return nil
}

func validateReview(in ReviewInput) (string, string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return "", "", NewValidationError("name", errRequired)
	}
	if len(name) > 255 {
		return "", "", NewValidationError("name", errors.New("ensure this field has no more than 255 characters"))
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return "", "", NewValidationError("description", errRequired)
	}
	return name, desc, nil
}

func toReviewOutput(r model.Review) ReviewOutput {
	return ReviewOutput{
		ID:          r.ID,
		Date:        r.Date.Format("2006-01-02"),
		Name:        r.Name,
		Description: r.Description,
	}
}
