package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"electra/internal/auth"
	"electra/internal/cart"
	"electra/internal/catalog"
	"electra/internal/checkout"
	"electra/internal/config"
	"electra/internal/database"
	"electra/internal/domain"
	"electra/internal/logger"
	"electra/internal/repository"
	"electra/internal/service"
	"electra/internal/session"
	"electra/internal/storage"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// kiosk is a single-session storefront terminal. One kiosk process serves
// one shopper at a time; its cart and pending-order state are keyed by the
// kiosk id so they survive restarts.
type kiosk struct {
	clientID   string
	products   repository.ProductRepository
	store      *cart.Store
	manager    *session.Manager
	provider   *auth.Provider
	reconciler *checkout.Reconciler
	logger     *zap.Logger
}

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	viper.SetDefault("KIOSK_ID", "kiosk-1")
	clientID := viper.GetString("KIOSK_ID")

	dbService, err := database.New(cfg.Database)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer dbService.Close()
	db := dbService.DB()

	// Durable slot storage; falls back to process memory when Redis is not
	// reachable so the kiosk still runs, just without restart survival.
	var slot storage.Slot
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis unavailable, cart will not survive restarts", zap.Error(err))
		slot = storage.NewMemorySlot()
	} else {
		slot = storage.NewRedisSlot(redisClient)
		defer redisClient.Close()
	}
	cancel()

	ctx := context.Background()

	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	userService := service.NewUserService(userRepo, profileRepo, refreshTokenRepo, cfg.JWT.Secret)
	provider := auth.NewProvider(userService, log)
	resolver := session.NewResolver(profileRepo, log)
	manager := session.NewManager(provider, resolver, log)
	if err := manager.Start(ctx); err != nil {
		log.Fatal("Failed to start session manager", zap.Error(err))
	}
	defer manager.Close()

	store := cart.New(ctx, slot, storage.CartKey(clientID), log)
	reconciler := checkout.NewReconciler(orderRepo, slot, cfg.Payment.CheckoutURL, log)

	k := &kiosk{
		clientID:   clientID,
		products:   productRepo,
		store:      store,
		manager:    manager,
		provider:   provider,
		reconciler: reconciler,
		logger:     log,
	}

	// Pick up an interrupted checkout before taking any input.
	if order, err := reconciler.ResolvePending(ctx, clientID); err != nil {
		log.Warn("Pending order check failed", zap.Error(err))
	} else if order != nil && order.Status == domain.OrderStatusPending {
		fmt.Printf("Order %s is awaiting payment (total %.2f)\n", order.ID, order.Total)
	}

	k.run(ctx)
}

func (k *kiosk) run(ctx context.Context) {
	fmt.Println("electra kiosk. Type 'help' for commands.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		args := strings.Fields(line)
		switch args[0] {
		case "help":
			k.help()
		case "whoami":
			k.whoami()
		case "signup":
			k.signup(ctx, args[1:])
		case "login":
			k.login(ctx, args[1:])
		case "logout":
			k.logout(ctx)
		case "browse":
			k.browse(ctx, args[1:])
		case "add":
			k.add(ctx, args[1:])
		case "qty":
			k.qty(ctx, args[1:])
		case "rm":
			k.remove(ctx, args[1:])
		case "cart":
			k.showCart()
		case "checkout":
			k.checkout(ctx, line)
		case "quit", "exit":
			return
		default:
			fmt.Println("unknown command, try 'help'")
		}
	}
}

func (k *kiosk) help() {
	fmt.Println(`commands:
  browse [search] [category] [sort]   list products (sort: price_asc, price_desc, name_asc)
  add <product-id> [qty]              add a product to the cart
  qty <product-id> <n>                set line quantity
  rm <product-id>                     remove a line
  cart                                show the cart
  signup <email> <password> [name]    create an account and sign in
  login <email> <password>            sign in
  logout                              sign out
  whoami                              show the current session
  checkout <name>;<street>;<city>;<zip>
  quit`)
}

func (k *kiosk) whoami() {
	sess := k.manager.Current()
	switch sess.State {
	case domain.SessionAuthenticated:
		fmt.Printf("%s <%s> (%s)\n", sess.Name, sess.Email, sess.Role)
	case domain.SessionAnonymous:
		fmt.Println("anonymous")
	default:
		fmt.Println("resolving...")
	}
}

func (k *kiosk) signup(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Println("usage: signup <email> <password> [name]")
		return
	}
	name := ""
	if len(args) > 2 {
		name = strings.Join(args[2:], " ")
	}
	if _, err := k.provider.SignUp(ctx, args[0], args[1], name); err != nil {
		fmt.Printf("signup failed: %v\n", err)
		return
	}
	k.whoami()
}

func (k *kiosk) login(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Println("usage: login <email> <password>")
		return
	}
	if _, err := k.provider.SignInWithPassword(ctx, args[0], args[1]); err != nil {
		fmt.Printf("login failed: %v\n", err)
		return
	}
	k.whoami()
}

func (k *kiosk) logout(ctx context.Context) {
	if err := k.manager.Logout(ctx); err != nil {
		fmt.Printf("logout failed: %v\n", err)
		return
	}
	fmt.Println("signed out")
}

func (k *kiosk) browse(ctx context.Context, args []string) {
	all, err := k.products.List(ctx)
	if err != nil {
		fmt.Printf("catalog unavailable: %v\n", err)
		return
	}

	search := ""
	category := domain.CategoryAll
	sort := catalog.SortNone
	if len(args) > 0 {
		search = args[0]
	}
	if len(args) > 1 {
		category = domain.Category(args[1])
	}
	if len(args) > 2 {
		sort = catalog.ParseSort(args[2])
	}

	visible := catalog.Sorted(catalog.Visible(all, search, category), sort)
	if len(visible) == 0 {
		fmt.Println("no products match")
		return
	}
	for _, p := range visible {
		fmt.Printf("%-12s %-10s %-30s %8.2f  (%s, stock %d)\n",
			p.ID, p.Brand, p.Name, p.Price, p.Category, p.Stock)
	}
}

func (k *kiosk) add(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Println("usage: add <product-id> [qty]")
		return
	}
	qty := 1
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Println("quantity must be a number")
			return
		}
		qty = n
	}
	product, err := k.products.FindByID(ctx, args[0])
	if err != nil {
		fmt.Printf("product not found: %v\n", err)
		return
	}
	if err := k.store.AddItem(ctx, *product, qty); err != nil {
		fmt.Printf("failed to add item: %v\n", err)
		return
	}
	k.showCart()
}

func (k *kiosk) qty(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Println("usage: qty <product-id> <n>")
		return
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Println("quantity must be a number")
		return
	}
	if err := k.store.SetQuantity(ctx, args[0], n); err != nil {
		fmt.Printf("failed to update quantity: %v\n", err)
		return
	}
	k.showCart()
}

func (k *kiosk) remove(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("usage: rm <product-id>")
		return
	}
	if err := k.store.RemoveItem(ctx, args[0]); err != nil {
		fmt.Printf("failed to remove item: %v\n", err)
		return
	}
	k.showCart()
}

func (k *kiosk) showCart() {
	c := k.store.Cart()
	if len(c.Items) == 0 {
		fmt.Println("cart is empty")
		return
	}
	for _, item := range c.Items {
		fmt.Printf("%-12s %-30s x%-3d %8.2f\n", item.ID, item.Name, item.Quantity, item.Price*float64(item.Quantity))
	}
	fmt.Printf("%d items, subtotal %.2f\n", c.Count(), c.Subtotal())
}

func (k *kiosk) checkout(ctx context.Context, line string) {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "checkout"))
	parts := strings.Split(rest, ";")
	if len(parts) != 4 {
		fmt.Println("usage: checkout <name>;<street>;<city>;<zip>")
		return
	}
	addr := domain.ShippingAddress{
		Name:   strings.TrimSpace(parts[0]),
		Street: strings.TrimSpace(parts[1]),
		City:   strings.TrimSpace(parts[2]),
		Zip:    strings.TrimSpace(parts[3]),
	}

	result, err := k.reconciler.PlaceOrder(ctx, k.store, k.manager.Current(), k.clientID, addr)
	if err != nil {
		switch {
		case err == checkout.ErrNotAuthenticated:
			fmt.Println("please login before checking out")
		case err == checkout.ErrEmptyCart:
			fmt.Println("cart is empty")
		case domain.IsRetryable(err):
			fmt.Println("order could not be placed, please retry")
		default:
			fmt.Printf("checkout failed: %v\n", err)
		}
		return
	}

	fmt.Printf("order %s placed, total %.2f\n", result.Order.ID, result.Order.Total)
	fmt.Printf("complete payment at: %s\n", result.PaymentURL)
}
