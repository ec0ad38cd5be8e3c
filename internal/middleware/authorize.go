package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// 1メソッドあたりの許可ルール
type Rule int

const (
	AllowAny Rule = iota + 1
	Authenticated
	AdminOnly
)

// HTTPメソッド -> Rule。載っていないメソッドは 405
type Policy map[string]Rule

var (
	// 注文：読む・作るはログイン、支払いステータス変更は管理者
	OrderPolicy = Policy{
		http.MethodGet:   Authenticated,
		http.MethodPost:  Authenticated,
		http.MethodPatch: AdminOnly,
	}

	// 商品・コレクション：誰でも読める、書くのは管理者
	CatalogPolicy = Policy{
		http.MethodGet:    AllowAny,
		http.MethodPost:   AdminOnly,
		http.MethodPut:    AdminOnly,
		http.MethodPatch:  AdminOnly,
		http.MethodDelete: AdminOnly,
	}

	// カートは匿名。IDを知っていれば触れる
	CartPolicy = Policy{
		http.MethodGet:    AllowAny,
		http.MethodPost:   AllowAny,
		http.MethodPatch:  AllowAny,
		http.MethodDelete: AllowAny,
	}

	// レビュー：書き込みは誰でも、編集・削除は管理者
	ReviewPolicy = Policy{
		http.MethodGet:    AllowAny,
		http.MethodPost:   AllowAny,
		http.MethodPut:    AdminOnly,
		http.MethodDelete: AdminOnly,
	}

	// /customers/me 以下
	CustomerMePolicy = Policy{
		http.MethodGet:    Authenticated,
		http.MethodPost:   Authenticated,
		http.MethodPut:    Authenticated,
		http.MethodDelete: Authenticated,
	}

	// /customers（管理者）
	CustomerAdminPolicy = Policy{
		http.MethodGet: AdminOnly,
		http.MethodPut: AdminOnly,
	}
)

// Authorize は AuthJWT の後ろに置く。
// 匿名が Authenticated/AdminOnly に来たら 401、一般ユーザーが AdminOnly に来たら 403。
func Authorize(p Policy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rule, ok := p[c.Request().Method]
			if !ok {
				return c.JSON(http.StatusMethodNotAllowed, errorJSON("method not allowed"))
			}

			actor := ActorFrom(c)
			switch rule {
			case AllowAny:
			case Authenticated:
				if !actor.Authenticated() {
					return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
				}
			case AdminOnly:
				if !actor.Authenticated() {
					return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
				}
				//一般ユーザーは拒否、管理者だけ許可
				if !actor.IsStaff {
					return c.JSON(http.StatusForbidden, errorJSON("admin only"))
				}
			default:
				return c.JSON(http.StatusForbidden, errorJSON("forbidden"))
			}

			return next(c)
		}
	}
}
