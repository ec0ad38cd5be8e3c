package handler

import (
	"net/http"

	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /customers/me（本人）と /customers（管理者）
type CustomerHandler struct {
	uc *usecase.CustomerUsecase
}

func NewCustomerHandler(uc *usecase.CustomerUsecase) *CustomerHandler {
	return &CustomerHandler{uc: uc}
}

// nil の項目は変更しない
type CustomerRequest struct {
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	BirthDate  *string `json:"birth_date"`
	Membership *string `json:"membership"`
}

func (r CustomerRequest) input() usecase.CustomerInput {
	return usecase.CustomerInput{
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Email:      r.Email,
		Phone:      r.Phone,
		BirthDate:  r.BirthDate,
		Membership: r.Membership,
	}
}

func (h *CustomerHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	me := e.Group("/customers/me")
	me.Use(middleware.AuthJWT(cfg))
	me.Use(middleware.Authorize(middleware.CustomerMePolicy))
	me.GET("", h.me)
	me.PUT("", h.updateMe)

	admin := e.Group("/customers")
	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.Authorize(middleware.CustomerAdminPolicy))
	admin.GET("", h.list)
	admin.GET("/:id", h.detail)
	admin.PUT("/:id", h.update)
	admin.GET("/:id/history", h.history)
}

func (h *CustomerHandler) me(c echo.Context) error {
	out, err := h.uc.Me(c.Request().Context(), middleware.ActorFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CustomerHandler) updateMe(c echo.Context) error {
	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.UpdateMe(c.Request().Context(), middleware.ActorFrom(c), req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CustomerHandler) list(c echo.Context) error {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return badRequest(c, "invalid page")
	}
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return badRequest(c, "invalid limit")
	}

	out, err := h.uc.List(c.Request().Context(), usecase.CustomerListInput{
		Page:   page,
		Limit:  limit,
		Search: c.QueryParam("search"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CustomerHandler) detail(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CustomerHandler) update(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.Update(c.Request().Context(), middleware.ActorFrom(c), id, req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 顧客の注文履歴
func (h *CustomerHandler) history(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.History(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
