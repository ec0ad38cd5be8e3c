package middleware

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/config"
	"storefront/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxActorKey = "actor" // model.Actor
)

// bearerAuth用のJWT検証ミドルウェア。
// ヘッダが無ければ匿名で通す（可否は Authorize が決める）。
// ヘッダがあって壊れていれば 401。
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	secret := []byte(cfg.JWTSecret)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//Authorizationヘッダを取得
			authz := c.Request().Header.Get("Authorization")
			if authz == "" {
				c.Set(CtxActorKey, model.Actor{})
				return next(c)
			}

			actor, err := parseBearer(authz, secret)
			if err != nil {
				c.Logger().Debugf("auth: %v", err)
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//contextへ保存
			c.Set(CtxActorKey, actor)
			return next(c)
		}
	}
}

// contextから呼び出し元を取り出す（無ければ匿名）
func ActorFrom(c echo.Context) model.Actor {
	a, _ := c.Get(CtxActorKey).(model.Actor)
	return a
}

func parseBearer(authz string, secret []byte) (model.Actor, error) {
	//Bearer形式か確認してtokenを抜く
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return model.Actor{}, errors.New("not a bearer token")
	}
	rawToken := strings.TrimSpace(parts[1])
	if rawToken == "" {
		return model.Actor{}, errors.New("empty token")
	}

	//JWTをパースして検証する（exp があれば期限も見る）
	token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || token == nil || !token.Valid {
		return model.Actor{}, errors.New("invalid token")
	}

	//claimsを取り出す
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return model.Actor{}, errors.New("invalid claims")
	}

	//user_idを取り出す
	userID, err := parseUserID(claims["sub"])
	if err != nil || userID <= 0 {
		return model.Actor{}, errors.New("invalid sub")
	}

	return model.Actor{
		UserID:  userID,
		IsStaff: isStaff(claims),
	}, nil
}

// is_staff: true か role: "ADMIN"
func isStaff(claims jwt.MapClaims) bool {
	if v, ok := claims["is_staff"].(bool); ok && v {
		return true
	}
	if role, ok := claims["role"].(string); ok && strings.EqualFold(role, "ADMIN") {
		return true
	}
	return false
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

// user_idをint64に変換する
func parseUserID(v interface{}) (int64, error) {
	switch t := v.(type) {
	case float64:
		// 1.9 を 1 に丸めない
		if t != math.Trunc(t) {
			return 0, errors.New("invalid sub")
		}
		return int64(t), nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, errors.New("invalid sub")
	}
}
