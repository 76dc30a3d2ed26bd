package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ElizabetLu/Online-Tech/internal/api"
	"github.com/ElizabetLu/Online-Tech/internal/app"
	"github.com/ElizabetLu/Online-Tech/internal/catalog"
	"github.com/ElizabetLu/Online-Tech/internal/config"
	"github.com/ElizabetLu/Online-Tech/internal/domain"
	"github.com/ElizabetLu/Online-Tech/pkg/logger"
)

const usage = `usage: storefront <command> [args]

commands:
  signin <email> <password>        sign in and store the session
  signup                           register an account (flags: -first -last -age -email -password -address -phone -zipcode -gender [-avatar])
  signout                          end the session
  whoami                           show the signed-in profile
  catalog                          list all products (flags: -search -brand -min -max -stars -price-sort -rating-sort)
  search <query>                   search products
  product <id>                     show one product
  cart show                        show the cart
  cart add <product-id> [qty]      add a product
  cart set <product-id> <qty>      set a line quantity
  cart remove <product-id>         remove a line
  cart clear                       empty the cart
  checkout <payment> <shipping>    place an order (shipping: standard|express|overnight)
  orders                           list past orders
  reviews list <product-id>        list reviews for a product
  reviews mine                     list your reviews
  reviews add <product-id> -rate N [-text ...]
  reviews edit <review-id> -rate N [-text ...]
  reviews delete <review-id>       delete one of your reviews
  reviews clear                    delete all of your reviews
  qr <text>                        generate a QR code
`

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	// A .env file is optional; the environment always wins.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New("storefront", cfg.LogLevel)

	// Cancel on SIGINT or SIGTERM so a slow request dies cleanly.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}
	defer application.Close()

	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("no command given")
	}
	return dispatch(ctx, application, args[0], args[1:])
}

func dispatch(ctx context.Context, a *app.App, command string, args []string) error {
	switch command {
	case "signin":
		return signIn(ctx, a, args)
	case "signup":
		return signUp(ctx, a, args)
	case "signout":
		return a.Auth.SignOut(ctx)
	case "whoami":
		return whoami(ctx, a)
	case "catalog":
		return listCatalog(ctx, a, args)
	case "search":
		return search(ctx, a, args)
	case "product":
		return showProduct(ctx, a, args)
	case "cart":
		return cartCommand(ctx, a, args)
	case "checkout":
		return placeOrder(ctx, a, args)
	case "orders":
		return listOrders(ctx, a)
	case "reviews":
		return reviews(ctx, a, args)
	case "qr":
		return generateQR(ctx, a, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func signIn(ctx context.Context, a *app.App, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: storefront signin <email> <password>")
	}
	user, err := a.Auth.SignIn(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Printf("signed in as %s <%s>\n", user.FullName(), user.Email)
	return nil
}

func signUp(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	var req api.SignUpRequest
	fs.StringVar(&req.FirstName, "first", "", "first name")
	fs.StringVar(&req.LastName, "last", "", "last name")
	fs.IntVar(&req.Age, "age", 0, "age")
	fs.StringVar(&req.Email, "email", "", "email address")
	fs.StringVar(&req.Password, "password", "", "password")
	fs.StringVar(&req.Address, "address", "", "street address")
	fs.StringVar(&req.Phone, "phone", "", "phone number")
	fs.StringVar(&req.Zipcode, "zipcode", "", "zip code")
	fs.StringVar(&req.Gender, "gender", "", "MALE or FEMALE")
	fs.StringVar(&req.Avatar, "avatar", "", "avatar image URL")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.Auth.SignUp(ctx, req); err != nil {
		return err
	}
	fmt.Println("account created; check your inbox for the verification mail")
	return nil
}

func whoami(ctx context.Context, a *app.App) error {
	user, err := a.Auth.CurrentUser(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s <%s>\n", user.FullName(), user.Email)
	fmt.Printf("  verified: %v\n", user.IsVerified())
	if user.Address != "" {
		fmt.Printf("  address:  %s, %s\n", user.Address, user.Zipcode)
	}
	return nil
}

func listCatalog(ctx context.Context, a *app.App, args []string) error {
	criteria := catalog.NewCriteria()
	fs := flag.NewFlagSet("catalog", flag.ContinueOnError)
	fs.StringVar(&criteria.SearchText, "search", "", "filter by title substring")
	fs.StringVar(&criteria.Brand, "brand", "", "filter by exact brand")
	fs.Float64Var(&criteria.MinPrice, "min", 0, "minimum price")
	fs.Float64Var(&criteria.MaxPrice, "max", 0, "maximum price")
	fs.IntVar(&criteria.RatingBucket, "stars", -1, "rating bucket 0-5")
	priceSort := fs.String("price-sort", "", "sort by price: asc or desc")
	ratingSort := fs.String("rating-sort", "", "sort by rating: asc or desc")
	if err := fs.Parse(args); err != nil {
		return err
	}
	criteria.PriceSort = catalog.SortDirection(*priceSort)
	criteria.RatingSort = catalog.SortDirection(*ratingSort)

	products, err := a.Catalog.LoadAll(ctx)
	if err != nil {
		return err
	}
	filtered := criteria.Apply(products)
	printProducts(filtered)
	if len(filtered) < len(products) {
		fmt.Printf("%d of %d products\n", len(filtered), len(products))
	}
	return nil
}

func search(ctx context.Context, a *app.App, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: storefront search <query>")
	}
	page, err := a.Catalog.Search(ctx, api.SearchParams{Query: args[0]})
	if err != nil {
		return err
	}
	printProducts(page.Products)
	fmt.Printf("%d of %d products\n", len(page.Products), page.Total)
	return nil
}

func showProduct(ctx context.Context, a *app.App, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: storefront product <id>")
	}
	product, err := a.Catalog.Product(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n", product.Title, product.Brand)
	fmt.Printf("  price:  %.2f %s\n", product.Price.Current, product.Price.Currency)
	fmt.Printf("  rating: %.1f\n", product.Rating)
	fmt.Printf("  stock:  %d\n", product.Stock)
	return nil
}

func cartCommand(ctx context.Context, a *app.App, args []string) error {
	if len(args) == 0 {
		args = []string{"show"}
	}
	switch args[0] {
	case "show":
		cart, lines, err := a.Cart.Detailed(ctx)
		if err != nil {
			return err
		}
		if cart.IsEmpty() {
			fmt.Println("cart is empty")
			return nil
		}
		for _, line := range lines {
			fmt.Printf("%dx %-40s %.2f %s\n", line.Quantity, line.Product.Title,
				line.Product.Price.Current*float64(line.Quantity), line.Product.Price.Currency)
		}
		fmt.Printf("total: %.2f %s\n", cart.Total.Price.Current, cart.Total.Price.Currency)
		return nil
	case "add":
		if len(args) < 2 {
			return fmt.Errorf("usage: storefront cart add <product-id> [qty]")
		}
		quantity := 1
		if len(args) > 2 {
			parsed, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[2])
			}
			quantity = parsed
		}
		cart, err := a.Cart.AddOrIncrement(ctx, args[1], quantity)
		if err != nil {
			return err
		}
		fmt.Printf("cart has %d items\n", cart.ItemCount())
		return nil
	case "set":
		if len(args) != 3 {
			return fmt.Errorf("usage: storefront cart set <product-id> <qty>")
		}
		quantity, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[2])
		}
		cart, err := a.Cart.SetQuantity(ctx, args[1], quantity)
		if err != nil {
			return err
		}
		fmt.Printf("cart has %d items\n", cart.ItemCount())
		return nil
	case "remove":
		if len(args) != 2 {
			return fmt.Errorf("usage: storefront cart remove <product-id>")
		}
		cart, err := a.Cart.Remove(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("cart has %d items\n", cart.ItemCount())
		return nil
	case "clear":
		if err := a.Cart.Clear(ctx); err != nil {
			return err
		}
		fmt.Println("cart cleared")
		return nil
	default:
		return fmt.Errorf("unknown cart command %q", args[0])
	}
}

func placeOrder(ctx context.Context, a *app.App, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: storefront checkout <payment-method> <shipping-method>")
	}
	order, err := a.Checkout.PlaceOrder(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Printf("order %s placed: %.2f %s (%.2f shipping)\n",
		order.ID, order.Total, order.Currency, order.Shipping)
	return nil
}

func listOrders(ctx context.Context, a *app.App) error {
	orders := a.Checkout.Orders(ctx)
	if len(orders) == 0 {
		fmt.Println("no orders yet")
		return nil
	}
	for _, order := range orders {
		fmt.Printf("%s  %s  %.2f %s  (%d items)\n",
			order.CreatedAt.Format("2006-01-02 15:04"), order.ID,
			order.Total, order.Currency, len(order.Lines))
	}
	return nil
}

func reviews(ctx context.Context, a *app.App, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: storefront reviews <list|mine|add|edit|delete|clear> ...")
	}
	subcommand, args := args[0], args[1:]

	fs := flag.NewFlagSet("reviews "+subcommand, flag.ContinueOnError)
	rate := fs.Int("rate", 0, "rating (1-5)")
	text := fs.String("text", "", "review text")

	switch subcommand {
	case "list":
		if len(args) != 1 {
			return fmt.Errorf("usage: storefront reviews list <product-id>")
		}
		printReviews(a.Review.ForProduct(ctx, args[0]))
		return nil
	case "mine":
		mine, err := a.Review.Mine(ctx)
		if err != nil {
			return err
		}
		printReviews(mine)
		return nil
	case "add":
		if len(args) < 1 {
			return fmt.Errorf("usage: storefront reviews add <product-id> -rate N [-text ...]")
		}
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		review, err := a.Review.Submit(ctx, args[0], *rate, *text)
		if err != nil {
			return err
		}
		fmt.Printf("review %s recorded\n", review.ID)
		return nil
	case "edit":
		if len(args) < 1 {
			return fmt.Errorf("usage: storefront reviews edit <review-id> -rate N [-text ...]")
		}
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		review, err := a.Review.Edit(ctx, args[0], *rate, *text)
		if err != nil {
			return err
		}
		fmt.Printf("review %s updated\n", review.ID)
		return nil
	case "delete":
		if len(args) != 1 {
			return fmt.Errorf("usage: storefront reviews delete <review-id>")
		}
		if err := a.Review.Delete(ctx, args[0]); err != nil {
			return err
		}
		fmt.Println("review deleted")
		return nil
	case "clear":
		if err := a.Review.DeleteAllMine(ctx); err != nil {
			return err
		}
		fmt.Println("all of your reviews deleted")
		return nil
	default:
		return fmt.Errorf("unknown reviews command %q", subcommand)
	}
}

func printReviews(ledger []domain.Review) {
	if len(ledger) == 0 {
		fmt.Println("no reviews")
		return
	}
	for _, review := range ledger {
		fmt.Printf("%s  %d/5 by %s: %s\n", review.ID, review.Rating, review.AuthorName, review.Text)
	}
}

func generateQR(ctx context.Context, a *app.App, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: storefront qr <text>")
	}
	code, err := a.API.GenerateQR(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Println(code.Result)
	return nil
}

func printProducts(products []domain.Product) {
	for _, product := range products {
		fmt.Printf("%-26s %-40s %8.2f %s  %.1f\n", product.ID, product.Title,
			product.Price.Current, product.Price.Currency, product.Rating)
	}
}
