package handler

import (
	"net/http"

	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /products/:id/reviews
type ReviewHandler struct {
	uc *usecase.ReviewUsecase
}

func NewReviewHandler(uc *usecase.ReviewUsecase) *ReviewHandler {
	return &ReviewHandler{uc: uc}
}

type ReviewRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *ReviewHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/products/:id/reviews")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.Authorize(middleware.ReviewPolicy))

	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:review_id", h.detail)
	g.PUT("/:review_id", h.update)
	g.DELETE("/:review_id", h.delete)
}

// 商品IDとレビューIDを読む。数字でなければ存在しない扱い
func reviewIDs(c echo.Context) (int64, int64, bool) {
	productID, ok := paramID(c, "id")
	if !ok {
		return 0, 0, false
	}
	if c.Param("review_id") == "" {
		return productID, 0, true
	}
	reviewID, ok := paramID(c, "review_id")
	if !ok {
		return 0, 0, false
	}
	return productID, reviewID, true
}

func (h *ReviewHandler) list(c echo.Context) error {
	productID, _, ok := reviewIDs(c)
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	}

	out, err := h.uc.List(c.Request().Context(), productID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ReviewHandler) create(c echo.Context) error {
	productID, _, ok := reviewIDs(c)
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	}

	var req ReviewRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.Create(c.Request().Context(), productID, usecase.ReviewInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *ReviewHandler) detail(c echo.Context) error {
	productID, reviewID, ok := reviewIDs(c)
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	}

	out, err := h.uc.Get(c.Request().Context(), productID, reviewID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ReviewHandler) update(c echo.Context) error {
	productID, reviewID, ok := reviewIDs(c)
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	}

	var req ReviewRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.Update(c.Request().Context(), productID, reviewID, usecase.ReviewInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ReviewHandler) delete(c echo.Context) error {
	productID, reviewID, ok := reviewIDs(c)
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	}

	if err := h.uc.Delete(c.Request().Context(), productID, reviewID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
