package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/infra/db"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/server"
	"storefront/internal/usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fixedClock struct{}

func (fixedClock) Now() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

type TestClient struct {
	t      *testing.T
	server *httptest.Server
}

// 本物のrepo/usecase/handlerを :memory: の sqlite で組み立てる
func NewTestClient(t *testing.T) *TestClient {
	t.Helper()

	cfg := config.Config{
		Port:           "0",
		JWTSecret:      testSecret,
		LogLevel:       "error",
		ServiceName:    "storefront-test",
		RequestTimeout: 5 * time.Second,
		DB:             config.DBConfig{Driver: config.DriverSQLite, URL: ":memory:"},
	}

	gdb, err := db.Connect(cfg.DB)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	txm := infraRepo.NewTxManagerGorm(gdb)
	cartRepo := infraRepo.NewCartGormRepository(gdb)
	cartItemRepo := infraRepo.NewCartItemGormRepository(gdb)
	customerRepo := infraRepo.NewCustomerGormRepository(gdb)
	orderRepo := infraRepo.NewOrderGormRepository(gdb)
	productRepo := infraRepo.NewProductGormRepository(gdb)
	collectionRepo := infraRepo.NewCollectionGormRepository(gdb)
	clock := fixedClock{}

	e := server.New(cfg,
		handler.NewCollectionHandler(usecase.NewCollectionUsecase(collectionRepo, productRepo)),
		handler.NewProductHandler(usecase.NewProductUsecase(txm, productRepo, collectionRepo, infraRepo.NewOrderItemGormRepository(gdb), clock)),
		handler.NewReviewHandler(usecase.NewReviewUsecase(infraRepo.NewReviewGormRepository(gdb), productRepo, clock)),
		handler.NewCartHandler(usecase.NewCartUsecase(cartRepo, cartItemRepo, productRepo)),
		handler.NewCustomerHandler(usecase.NewCustomerUsecase(txm, customerRepo, orderRepo, clock)),
		handler.NewAddressHandler(usecase.NewAddressUsecase(infraRepo.NewAddressGormRepository(gdb), customerRepo)),
		handler.NewOrderHandler(usecase.NewOrderUsecase(txm, cartRepo, cartItemRepo, customerRepo, orderRepo, clock)),
	)

	srv := httptest.NewServer(e)
	t.Cleanup(func() {
		srv.Close()
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return &TestClient{t: t, server: srv}
}

type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// HS256 のアクセストークン
func token(t *testing.T, userID int64, staff bool) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(userID, 10),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	if staff {
		claims["is_staff"] = true
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (c *TestClient) doJSON(method, path, bearer string, body interface{}) (*http.Response, []byte) {
	c.t.Helper()

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, c.server.URL+path, reqBody)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.server.Client().Do(req)
	require.NoError(c.t, err)
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp, data
}

func requireStatus(t *testing.T, resp *http.Response, want int, body []byte) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("status=%d want=%d body=%s", resp.StatusCode, want, string(body))
	}
}

func mustDecode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("json.Unmarshal failed: %v body=%s", err, string(body))
	}
	return v
}

func toStr(v int64) string {
	return strconv.FormatInt(v, 10)
}

// 管理者でコレクションと商品を作り、商品IDを返す
func seedProduct(t *testing.T, c *TestClient, title, price string, inventory int64) (int64, int64) {
	t.Helper()
	admin := token(t, 1, true)

	resp, body := c.doJSON(http.MethodPost, "/collections", admin, map[string]interface{}{"title": "Col " + title})
	requireStatus(t, resp, http.StatusCreated, body)
	col := mustDecode[usecase.CollectionOutput](t, body)

	resp, body = c.doJSON(http.MethodPost, "/products", admin, map[string]interface{}{
		"title":       title,
		"description": "desc of " + title,
		"unit_price":  price,
		"inventory":   inventory,
		"collection":  col.ID,
	})
	requireStatus(t, resp, http.StatusCreated, body)
	p := mustDecode[usecase.ProductOutput](t, body)
	return col.ID, p.ID
}

// 匿名でカートを作って商品を入れる
func seedCart(t *testing.T, c *TestClient, items map[int64]int64) string {
	t.Helper()

	resp, body := c.doJSON(http.MethodPost, "/carts", "", nil)
	requireStatus(t, resp, http.StatusCreated, body)
	cart := mustDecode[usecase.CartOutput](t, body)

	for productID, qty := range items {
		resp, body = c.doJSON(http.MethodPost, "/carts/"+cart.ID+"/items", "", map[string]int64{
			"product_id": productID,
			"quantity":   qty,
		})
		requireStatus(t, resp, http.StatusCreated, body)
	}
	return cart.ID
}
