package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dmcastellon/pupusapos/internal/api"
	"github.com/dmcastellon/pupusapos/internal/orders"
	"github.com/dmcastellon/pupusapos/internal/session"
	"github.com/dmcastellon/pupusapos/pkg/enums"
	"github.com/dmcastellon/pupusapos/pkg/money"
	"github.com/dmcastellon/pupusapos/pkg/types"
)

const dateLayout = "2006-01-02"

type app struct {
	manager *session.Manager
	client  *api.Client
	orders  *orders.Service
	out     io.Writer
}

func (a *app) usage() {
	fmt.Fprintln(a.out, `usage: pos <command> [flags]

commands:
  login            open a session
  register         create an account and open a session
  logout           close the session
  whoami           show the current profile and trial status
  forgot-password  request a password reset email
  reset-password   complete a password reset
  products         list the catalog
  order            price and submit an order
  orders           list orders for a business day
  report           show the daily report
  summary          show per-day sales for a range
  open-days        show or set operating days`)
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.cmdLogin(ctx, args)
	case "register":
		return a.cmdRegister(ctx, args)
	case "logout":
		return a.manager.Logout(ctx)
	case "whoami":
		return a.cmdWhoami(ctx)
	case "forgot-password":
		return a.cmdForgotPassword(ctx, args)
	case "reset-password":
		return a.cmdResetPassword(ctx, args)
	case "products":
		return a.cmdProducts(ctx, args)
	case "order":
		return a.cmdOrder(ctx, args)
	case "orders":
		return a.cmdOrders(ctx, args)
	case "report":
		return a.cmdReport(ctx, args)
	case "summary":
		return a.cmdSummary(ctx, args)
	case "open-days":
		return a.cmdOpenDays(ctx, args)
	default:
		a.usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	remember := fs.Bool("remember", false, "stay signed in on this terminal")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := a.manager.Login(ctx, *email, *password, *remember)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "logged in as %s (%s)\n", user.BusinessName, user.Email)
	return nil
}

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	business := fs.String("business", "", "business name")
	remember := fs.Bool("remember", false, "stay signed in on this terminal")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := a.manager.Register(ctx, *email, *password, *business, *remember)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "welcome, %s\n", user.BusinessName)
	return nil
}

func (a *app) cmdWhoami(ctx context.Context) error {
	user, err := a.manager.CurrentUser(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s>\n", user.BusinessName, user.Email)
	if user.TrialEndsAt != nil {
		days := session.TrialDaysRemaining(*user.TrialEndsAt, time.Now())
		fmt.Fprintf(a.out, "trial: %d day(s) remaining\n", days)
	}
	return nil
}

func (a *app) cmdForgotPassword(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("forgot-password", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.manager.ForgotPassword(ctx, *email); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "if the address exists, a reset email is on its way")
	return nil
}

func (a *app) cmdResetPassword(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset-password", flag.ExitOnError)
	token := fs.String("token", "", "reset token from the email")
	password := fs.String("password", "", "new password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.manager.ResetPassword(ctx, *token, *password); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "password updated, log in with the new one")
	return nil
}

func (a *app) cmdProducts(ctx context.Context, args []string) error {
	sub := "list"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		sub, args = args[0], args[1:]
	}
	switch sub {
	case "list":
		return a.listProducts(ctx)
	case "add":
		return a.addProduct(ctx, args)
	case "update":
		return a.updateProduct(ctx, args)
	case "rm":
		return a.removeProduct(ctx, args)
	default:
		return fmt.Errorf("unknown products subcommand %q", sub)
	}
}

func (a *app) listProducts(ctx context.Context) error {
	products, err := a.client.ListProducts(ctx)
	if err != nil {
		return err
	}
	for _, p := range products {
		tag := ""
		if p.IsSmall {
			tag = "  [3x$1.00]"
		}
		masa := string(p.Masa)
		if masa != "" {
			masa = " (" + masa + ")"
		}
		fmt.Fprintf(a.out, "%4d  %s%s  $%s%s\n", p.ID, p.Name, masa, p.Price, tag)
	}
	return nil
}

func productInputFlags(fs *flag.FlagSet) (name, masa, price *string, small *bool) {
	name = fs.String("name", "", "product name")
	masa = fs.String("masa", "", "masa (maíz, arroz, or empty)")
	price = fs.String("price", "", "unit price, e.g. 0.35")
	small = fs.Bool("small", false, "small format, eligible for the 3-for-$1 bundle")
	return
}

func buildProductInput(name, masa, price string, small bool) (types.ProductInput, error) {
	parsedMasa, err := enums.ParseMasa(masa)
	if err != nil {
		return types.ProductInput{}, err
	}
	parsedPrice, err := money.Parse(price)
	if err != nil {
		return types.ProductInput{}, fmt.Errorf("invalid price: %w", err)
	}
	return types.ProductInput{Name: name, Masa: parsedMasa, Price: parsedPrice, IsSmall: small}, nil
}

func (a *app) addProduct(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("products add", flag.ExitOnError)
	name, masa, price, small := productInputFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	input, err := buildProductInput(*name, *masa, *price, *small)
	if err != nil {
		return err
	}
	product, err := a.client.CreateProduct(ctx, input)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "product #%d saved\n", product.ID)
	return nil
}

func (a *app) updateProduct(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("products update", flag.ExitOnError)
	id := fs.Int64("id", 0, "product id")
	name, masa, price, small := productInputFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		return fmt.Errorf("-id is required")
	}
	input, err := buildProductInput(*name, *masa, *price, *small)
	if err != nil {
		return err
	}
	product, err := a.client.UpdateProduct(ctx, *id, input)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "product #%d saved\n", product.ID)
	return nil
}

func (a *app) removeProduct(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("products rm", flag.ExitOnError)
	id := fs.Int64("id", 0, "product id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		return fmt.Errorf("-id is required")
	}
	if err := a.client.DeleteProduct(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "product #%d removed\n", *id)
	return nil
}

// itemList collects repeated -item flags of the form id[:masa]:qty.
type itemList []orderLine

type orderLine struct {
	productID int64
	masa      enums.Masa
	quantity  int
}

func (l *itemList) String() string { return fmt.Sprint(*l) }

func (l *itemList) Set(value string) error {
	parts := strings.Split(value, ":")
	var rawID, rawMasa, rawQty string
	switch len(parts) {
	case 2:
		rawID, rawQty = parts[0], parts[1]
	case 3:
		rawID, rawMasa, rawQty = parts[0], parts[1], parts[2]
	default:
		return fmt.Errorf("item must be id[:masa]:qty, got %q", value)
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid product id %q", rawID)
	}
	masa, err := enums.ParseMasa(rawMasa)
	if err != nil {
		return err
	}
	qty, err := strconv.Atoi(rawQty)
	if err != nil {
		return fmt.Errorf("invalid quantity %q", rawQty)
	}
	*l = append(*l, orderLine{productID: id, masa: masa, quantity: qty})
	return nil
}

func (a *app) cmdOrder(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("order", flag.ExitOnError)
	var items itemList
	fs.Var(&items, "item", "order line as id[:masa]:qty (repeatable)")
	day := fs.String("day", time.Now().Format(dateLayout), "business day (YYYY-MM-DD)")
	delivery := fs.Bool("delivery", false, "mark as a delivery order")
	deliveryCost := fs.String("delivery-cost", "0.00", "delivery surcharge")
	edit := fs.Int64("edit", 0, "edit the given order instead of creating one")
	show := fs.Int64("show", 0, "print the given order and exit")
	remove := fs.Int64("rm", 0, "delete the given order and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *show != 0 {
		return a.showOrder(ctx, *show)
	}
	if *remove != 0 {
		if err := a.client.DeleteOrder(ctx, *remove); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "order #%d removed\n", *remove)
		return nil
	}

	cost, err := money.Parse(*deliveryCost)
	if err != nil {
		return fmt.Errorf("invalid delivery cost: %w", err)
	}

	if err := a.orders.LoadCatalog(ctx); err != nil {
		return err
	}

	var draft *orders.Draft
	if *edit != 0 {
		draft, err = a.orders.Hydrate(ctx, *edit)
		if err != nil {
			return err
		}
	} else {
		draft = orders.NewDraft(*day)
	}
	for _, line := range items {
		draft.AddItem(line.productID, line.masa, line.quantity)
	}
	draft.SetDelivery(*delivery, cost)

	fmt.Fprintf(a.out, "total: $%s\n", a.orders.Total(draft))

	submit := func() (*types.Order, error) {
		if *edit != 0 {
			return a.orders.SubmitEdit(ctx, *edit, draft)
		}
		return a.orders.Submit(ctx, draft)
	}
	placed, err := submit()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "order #%d saved, $%s\n", placed.ID, placed.Total)
	return nil
}

func (a *app) showOrder(ctx context.Context, id int64) error {
	order, err := a.client.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "order #%d (%s)\n", order.ID, order.BusinessDay)
	for _, item := range order.Items {
		masa := string(item.Masa)
		if masa != "" {
			masa = " (" + masa + ")"
		}
		fmt.Fprintf(a.out, "  %3d x product %d%s  $%s\n", item.Quantity, item.ProductID, masa, item.Subtotal)
	}
	if order.IsDelivery {
		fmt.Fprintf(a.out, "  delivery  $%s\n", order.DeliveryCost)
	}
	fmt.Fprintf(a.out, "total: $%s\n", order.Total)
	return nil
}

func (a *app) cmdOrders(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("orders", flag.ExitOnError)
	day := fs.String("day", time.Now().Format(dateLayout), "business day (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	list, err := a.client.ListOrders(ctx, *day)
	if err != nil {
		return err
	}
	for _, order := range list {
		tag := ""
		if order.IsDelivery {
			tag = "  delivery $" + order.DeliveryCost.String()
		}
		fmt.Fprintf(a.out, "#%-5d $%s%s\n", order.ID, order.Total, tag)
	}
	fmt.Fprintf(a.out, "%d order(s)\n", len(list))
	return nil
}

func (a *app) cmdReport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	day := fs.String("day", time.Now().Format(dateLayout), "business day (YYYY-MM-DD)")
	csv := fs.Bool("csv", false, "print the backend CSV export instead")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *csv {
		raw, err := a.client.ExportDailyReportCSV(ctx, *day)
		if err != nil {
			return err
		}
		_, err = a.out.Write(raw)
		return err
	}

	report, err := a.client.GetDailyReport(ctx, *day)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s: %d order(s), $%s sales, %d deliveries\n",
		*day, report.Totals.Orders, report.Totals.Sales, report.Totals.DeliveryOrders)
	for _, p := range report.Products {
		masa := string(p.Masa)
		if masa != "" {
			masa = " (" + masa + ")"
		}
		fmt.Fprintf(a.out, "  %3d x %s%s  $%s\n", p.Quantity, p.Name, masa, p.Total)
	}
	return nil
}

func (a *app) cmdSummary(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	start := fs.String("start", "", "start date (YYYY-MM-DD)")
	end := fs.String("end", "", "end date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	report, err := a.client.GetSummaryReport(ctx, *start, *end)
	if err != nil {
		return err
	}
	for _, day := range report.DailySales {
		fmt.Fprintf(a.out, "%s  %3d order(s)  $%s\n", day.Date, day.Orders, day.Sales)
	}
	fmt.Fprintf(a.out, "total: %d order(s), $%s\n", report.Totals.TotalOrders, report.Totals.TotalSales)
	return nil
}

func (a *app) cmdOpenDays(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("open-days", flag.ExitOnError)
	start := fs.String("start", "", "start date (YYYY-MM-DD)")
	end := fs.String("end", "", "end date (YYYY-MM-DD)")
	set := fs.String("set", "", "date to flag")
	open := fs.Bool("open", true, "with -set, whether the date is operating")
	unset := fs.String("unset", "", "date whose flag to remove")
	bulk := fs.String("bulk", "", "comma-separated dates to flag open in one call")
	get := fs.String("get", "", "print the flag for one date")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case *set != "":
		if err := a.client.SetOpenDay(ctx, *set, *open); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s flagged open=%t\n", *set, *open)
		return nil
	case *unset != "":
		if err := a.client.DeleteOpenDay(ctx, *unset); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s flag removed\n", *unset)
		return nil
	case *bulk != "":
		dates := strings.Split(*bulk, ",")
		if err := a.client.CreateOpenDays(ctx, dates); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%d date(s) flagged open\n", len(dates))
		return nil
	case *get != "":
		day, err := a.client.GetOpenDay(ctx, *get)
		if err != nil {
			return err
		}
		state := "closed"
		if day.IsOpen {
			state = "open"
		}
		fmt.Fprintf(a.out, "%s  %s\n", day.Date, state)
		return nil
	}

	days, err := a.client.ListOpenDays(ctx, *start, *end)
	if err != nil {
		return err
	}
	for _, day := range days {
		state := "closed"
		if day.IsOpen {
			state = "open"
		}
		fmt.Fprintf(a.out, "%s  %s\n", day.Date, state)
	}
	return nil
}
