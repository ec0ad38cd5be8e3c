package handler

import (
	"net/http"

	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// /products のHTTP。読むのは誰でも、書くのは管理者
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// PATCH では省略した項目は変更しない
type ProductRequest struct {
	Title       *string          `json:"title"`
	Slug        *string          `json:"slug"`
	Description *string          `json:"description"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	Inventory   *int64           `json:"inventory"`
	Collection  *int64           `json:"collection"`
}

type ClearInventoryRequest struct {
	IDs []int64 `json:"ids"`
}

func (r ProductRequest) input() usecase.ProductInput {
	return usecase.ProductInput{
		Title:        r.Title,
		Slug:         r.Slug,
		Description:  r.Description,
		UnitPrice:    r.UnitPrice,
		Inventory:    r.Inventory,
		CollectionID: r.Collection,
	}
}

func (h *ProductHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/products")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.Authorize(middleware.CatalogPolicy))

	g.GET("", h.list)
	g.POST("", h.create)
	g.POST("/clear-inventory", h.clearInventory)
	g.GET("/:id", h.detail)
	g.PUT("/:id", h.replace)
	g.PATCH("/:id", h.patch)
	g.DELETE("/:id", h.delete)
}

func (h *ProductHandler) list(c echo.Context) error {
	// page（default 1）
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return badRequest(c, "invalid page")
	}

	// page_size（default 10）
	pageSize, ok := queryInt(c, "page_size", 0)
	if !ok {
		return badRequest(c, "invalid page_size")
	}

	collectionID, ok := queryInt64Ptr(c, "collection_id")
	if !ok {
		return badRequest(c, "invalid collection_id")
	}

	out, err := h.uc.List(c.Request().Context(), usecase.ListProductsInput{
		Page:         page,
		PageSize:     pageSize,
		CollectionID: collectionID,
		Search:       c.QueryParam("search"),
		Ordering:     c.QueryParam("ordering"),
		Inventory:    c.QueryParam("inventory"),
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	p, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) create(c echo.Context) error {
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.Create(c.Request().Context(), req.input())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *ProductHandler) replace(c echo.Context) error {
	return h.update(c, false)
}

func (h *ProductHandler) patch(c echo.Context) error {
	return h.update(c, true)
}

func (h *ProductHandler) update(c echo.Context, partial bool) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.Update(c.Request().Context(), id, req.input(), partial)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) delete(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	if err := h.uc.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// 在庫をまとめて0にする
func (h *ProductHandler) clearInventory(c echo.Context) error {
	var req ClearInventoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.ClearInventory(c.Request().Context(), middleware.ActorFrom(c), req.IDs)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
