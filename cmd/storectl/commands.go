package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/infra/db"
	infraRepo "storefront/internal/infra/repository"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

type cli struct {
	gdb   *gorm.DB
	out   io.Writer
	actor model.Actor

	products    *usecase.ProductUsecase
	collections *usecase.CollectionUsecase
	customers   *usecase.CustomerUsecase
	orders      *usecase.OrderUsecase
	auditLogs   repo.AuditLogRepository
}

func newCLI(gdb *gorm.DB, out io.Writer, actorUserID int64) *cli {
	txm := infraRepo.NewTxManagerGorm(gdb)
	productRepo := infraRepo.NewProductGormRepository(gdb)
	collectionRepo := infraRepo.NewCollectionGormRepository(gdb)
	customerRepo := infraRepo.NewCustomerGormRepository(gdb)
	orderRepo := infraRepo.NewOrderGormRepository(gdb)
	clock := systemClock{}

	return &cli{
		gdb: gdb,
		out: out,
		// CLIは管理者として動く
		actor:       model.Actor{UserID: actorUserID, IsStaff: true},
		products:    usecase.NewProductUsecase(txm, productRepo, collectionRepo, infraRepo.NewOrderItemGormRepository(gdb), clock),
		collections: usecase.NewCollectionUsecase(collectionRepo, productRepo),
		customers:   usecase.NewCustomerUsecase(txm, customerRepo, orderRepo, clock),
		orders: usecase.NewOrderUsecase(txm,
			infraRepo.NewCartGormRepository(gdb),
			infraRepo.NewCartItemGormRepository(gdb),
			customerRepo, orderRepo, clock),
		auditLogs: infraRepo.NewAuditLogGormRepository(gdb),
	}
}

func (c *cli) exec(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("command is required")
	}
	name, rest := args[0], args[1:]

	switch name {
	case "migrate":
		if err := db.Migrate(c.gdb.WithContext(ctx)); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "migrated")
		return nil
	case "seed":
		return c.seed(ctx)
	case "products":
		return c.listProducts(ctx, rest)
	case "customers":
		return c.listCustomers(ctx, rest)
	case "orders":
		return c.listOrders(ctx, rest)
	case "set-payment":
		return c.setPayment(ctx, rest)
	case "clear-inventory":
		return c.clearInventory(ctx, rest)
	case "audit":
		return c.listAudit(ctx, rest)
	default:
		return fmt.Errorf("unknown command %q", name)
	}
}

type seedProduct struct {
	title     string
	price     string
	inventory int64
}

type seedCollection struct {
	title    string
	products []seedProduct
}

// 並び順どおりに作るのでIDは毎回同じ
var seedCatalog = []seedCollection{
	{"Beverages", []seedProduct{
		{"Coffee - Dark Roast", "10.00", 50},
		{"Green Tea", "5.00", 8},
	}},
	{"Bakery", []seedProduct{
		{"Sourdough Loaf", "6.50", 20},
		{"Croissant", "2.25", 4},
	}},
}

// 商品が1件もなければ見本データを入れる
func (c *cli) seed(ctx context.Context) error {
	existing, err := c.products.List(ctx, usecase.ListProductsInput{Page: 1, PageSize: 1})
	if err != nil {
		return err
	}
	if existing.Count > 0 {
		fmt.Fprintf(c.out, "skip: %d products already exist\n", existing.Count)
		return nil
	}

	created := 0
	for _, sc := range seedCatalog {
		col, err := c.collections.Create(ctx, usecase.CollectionInput{Title: sc.title})
		if err != nil {
			return err
		}
		for _, it := range sc.products {
			title := it.title
			price := decimal.RequireFromString(it.price)
			inv := it.inventory
			colID := col.ID
			if _, err := c.products.Create(ctx, usecase.ProductInput{
				Title:        &title,
				UnitPrice:    &price,
				Inventory:    &inv,
				CollectionID: &colID,
			}); err != nil {
				return err
			}
			created++
		}
	}
	fmt.Fprintf(c.out, "seeded %d products\n", created)
	return nil
}

func (c *cli) listProducts(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("products", flag.ContinueOnError)
	fs.SetOutput(c.out)
	low := fs.Bool("low", false, "only products with low inventory")
	search := fs.String("search", "", "title / description contains")
	if err := fs.Parse(args); err != nil {
		return err
	}

	in := usecase.ListProductsInput{Page: 1, PageSize: 100, Search: *search}
	if *low {
		in.Inventory = "low"
	}
	out, err := c.products.List(ctx, in)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("ID", "Title", "Unit Price", "Inventory", "Status", "Collection")
	for _, p := range out.Results {
		if err := table.Append([]string{
			strconv.FormatInt(p.ID, 10),
			p.Title,
			p.UnitPrice,
			strconv.FormatInt(p.Inventory, 10),
			p.InventoryStatus,
			strconv.FormatInt(p.Collection, 10),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func (c *cli) listCustomers(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("customers", flag.ContinueOnError)
	fs.SetOutput(c.out)
	search := fs.String("search", "", "first name prefix")
	if err := fs.Parse(args); err != nil {
		return err
	}

	out, err := c.customers.List(ctx, usecase.CustomerListInput{Page: 1, Limit: 100, Search: *search})
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("ID", "User", "Name", "Membership", "Orders")
	for _, cu := range out.Results {
		orders := "0"
		if cu.OrdersCount != nil {
			orders = strconv.FormatInt(*cu.OrdersCount, 10)
		}
		if err := table.Append([]string{
			strconv.FormatInt(cu.ID, 10),
			strconv.FormatInt(cu.UserID, 10),
			strings.TrimSpace(cu.FirstName + " " + cu.LastName),
			cu.Membership,
			orders,
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func (c *cli) listOrders(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("orders", flag.ContinueOnError)
	fs.SetOutput(c.out)
	status := fs.String("status", "", "payment status (P, C, F)")
	customer := fs.Int64("customer", 0, "customer id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	in := usecase.OrderListInput{Page: 1, Limit: 100, PaymentStatus: *status}
	if *customer > 0 {
		in.CustomerID = customer
	}
	out, err := c.orders.List(ctx, c.actor, in)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("ID", "Customer", "Placed At", "Payment", "Items", "Total")
	for _, o := range out.Results {
		if err := table.Append([]string{
			strconv.FormatInt(o.ID, 10),
			strconv.FormatInt(o.Customer, 10),
			o.PlacedAt.Format(time.RFC3339),
			o.PaymentStatus,
			strconv.Itoa(len(o.Items)),
			o.TotalPrice,
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func (c *cli) setPayment(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("set-payment", flag.ContinueOnError)
	fs.SetOutput(c.out)
	orderID := fs.Int64("order", 0, "order id")
	status := fs.String("status", "", "payment status (P, C, F)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *orderID <= 0 {
		return errors.New("-order is required")
	}

	out, err := c.orders.UpdatePaymentStatus(ctx, c.actor, *orderID, usecase.UpdatePaymentStatusInput{PaymentStatus: *status})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "order %d: payment_status=%s\n", out.ID, out.PaymentStatus)
	return nil
}

func (c *cli) clearInventory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("clear-inventory", flag.ContinueOnError)
	fs.SetOutput(c.out)
	raw := fs.String("ids", "", "comma separated product ids")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ids, err := parseIDs(*raw)
	if err != nil {
		return err
	}
	out, err := c.products.ClearInventory(ctx, c.actor, ids)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "cleared inventory of %d products\n", out.Updated)
	return nil
}

func (c *cli) listAudit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("audit", flag.ContinueOnError)
	fs.SetOutput(c.out)
	limit := fs.Int("limit", 50, "max rows")
	action := fs.String("action", "", "UPDATE_PAYMENT_STATUS, CLEAR_INVENTORY or UPDATE_CUSTOMER")
	resource := fs.String("resource", "", "order, product or customer")
	id := fs.Int64("id", 0, "resource id (with -resource)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logs, err := c.auditLogs.List(ctx, repo.AuditLogFilter{
		Action:       model.AuditAction(strings.ToUpper(*action)),
		ResourceType: model.AuditResourceType(strings.ToLower(*resource)),
		ResourceID:   *id,
		Limit:        *limit,
	})
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("ID", "Actor", "Action", "Resource", "Before", "After", "At")
	for _, l := range logs {
		if err := table.Append([]string{
			strconv.FormatInt(l.ID, 10),
			strconv.FormatInt(l.ActorUserID, 10),
			string(l.Action),
			fmt.Sprintf("%s/%d", l.ResourceType, l.ResourceID),
			l.BeforeJSON,
			l.AfterJSON,
			l.CreatedAt.Format(time.RFC3339),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

// "1,2,3" -> [1 2 3]
func parseIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", part)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, errors.New("-ids is required")
	}
	return ids, nil
}
