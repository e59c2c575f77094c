// Command foodcli is a terminal client for the food ordering API. It
// keeps the cart on disk between invocations the way the web client
// keeps it in browser storage.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"ntu-food/internal/cart"
	"ntu-food/internal/client"
	"ntu-food/internal/geo"
	"ntu-food/internal/notify"
	"ntu-food/internal/pickup"
	"ntu-food/internal/tracker"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	_ = godotenv.Load()

	baseURL := flag.String("api", envOr("FOOD_API_URL", "http://localhost:8080"), "API base URL")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	app, err := newApp(*baseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.run(ctx, flag.Args()); err != nil {
		app.notify.Error(err.Error())
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: foodcli [flags] <command> [args]

commands:
  login <identifier>            log in (password read from stdin)
  register                      start registration (prompts for details)
  verify <email> <code>         confirm the emailed verification code
  stalls                        list all stalls
  nearby                        list stalls sorted by distance
  menu <stall-id>               show a stall's menu
  cart                          show the cart
  cart add <menu-item-id> <qty> add a menu item to the cart
  cart remove <menu-item-id>    remove a line from the cart
  cart clear                    empty the cart
  slots                         show available pickup windows
  checkout <slot-number>        place an order for the cart
  pay <order-id>                confirm payment for an order
  orders                        list my orders
  track <order-id>              follow an order until it is ready
  cancel <order-id>             cancel an order`)
}

type app struct {
	api     *client.Client
	cart    *cart.Store
	locator *geo.Locator
	notify  *notify.Dispatcher
	stdin   *bufio.Reader

	tokenPath string
}

func newApp(baseURL string) (*app, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = "."
	}
	dir := filepath.Join(configDir, "foodcli")

	storage, err := cart.NewFileStorage(filepath.Join(dir, "cart.json"))
	if err != nil {
		return nil, err
	}

	a := &app{
		api:       client.New(baseURL),
		notify:    notify.NewDispatcher(terminalToaster{}, terminalTonePlayer{}),
		stdin:     bufio.NewReader(os.Stdin),
		tokenPath: filepath.Join(dir, "token"),
	}
	a.cart = cart.NewStore(storage, a.confirmStallSwitch)

	if lat, lng, ok := staticCoordinates(); ok {
		a.locator = geo.NewLocator(geo.StaticProvider{Latitude: lat, Longitude: lng})
	} else {
		a.locator = geo.NewLocator(nil)
	}

	if raw, err := os.ReadFile(a.tokenPath); err == nil {
		a.api.SetToken(strings.TrimSpace(string(raw)))
	}
	return a, nil
}

func staticCoordinates() (lat, lng float64, ok bool) {
	latStr, lngStr := os.Getenv("FOOD_LAT"), os.Getenv("FOOD_LNG")
	if latStr == "" || lngStr == "" {
		return 0, 0, false
	}
	lat, latErr := strconv.ParseFloat(latStr, 64)
	lng, lngErr := strconv.ParseFloat(lngStr, 64)
	return lat, lng, latErr == nil && lngErr == nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (a *app) confirmStallSwitch(currentStall, newStall string) bool {
	fmt.Printf("Your cart has items from %s. Replace them with items from %s? [y/N] ", currentStall, newStall)
	line, _ := a.stdin.ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func (a *app) run(ctx context.Context, args []string) error {
	switch args[0] {
	case "login":
		return a.cmdLogin(ctx, args[1:])
	case "register":
		return a.cmdRegister(ctx)
	case "verify":
		return a.cmdVerify(ctx, args[1:])
	case "stalls":
		return a.cmdStalls(ctx)
	case "nearby":
		return a.cmdNearby(ctx)
	case "menu":
		return a.cmdMenu(ctx, args[1:])
	case "cart":
		return a.cmdCart(ctx, args[1:])
	case "slots":
		return a.cmdSlots()
	case "checkout":
		return a.cmdCheckout(ctx, args[1:])
	case "pay":
		return a.cmdPay(ctx, args[1:])
	case "orders":
		return a.cmdOrders(ctx)
	case "track":
		return a.cmdTrack(ctx, args[1:])
	case "cancel":
		return a.cmdCancel(ctx, args[1:])
	default:
		usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func (a *app) saveToken() {
	token := a.api.Token()
	if token == "" {
		_ = os.Remove(a.tokenPath)
		return
	}
	if err := os.WriteFile(a.tokenPath, []byte(token), 0o600); err != nil {
		log.Warn().Err(err).Msg("Failed to save session token")
	}
}

func (a *app) prompt(label string) string {
	fmt.Print(label)
	line, _ := a.stdin.ReadString('\n')
	return strings.TrimSpace(line)
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: login <email-or-student-id>")
	}
	password := a.prompt("Password: ")

	user, err := a.api.Login(ctx, args[0], password)
	if err != nil {
		return err
	}
	a.saveToken()
	a.notify.Success(fmt.Sprintf("Logged in as %s", user.Name))
	return nil
}

func (a *app) cmdRegister(ctx context.Context) error {
	input := client.RegisterInput{
		Email:     a.prompt("Campus email: "),
		StudentID: a.prompt("Student ID: "),
		Name:      a.prompt("Name: "),
		Phone:     a.prompt("Phone (optional): "),
		Password:  a.prompt("Password: "),
	}

	pending, err := a.api.Register(ctx, input)
	if err != nil {
		return err
	}
	a.notify.Info(fmt.Sprintf("Verification code sent to %s, expires %s",
		pending.Email, pending.ExpiresAt.Local().Format("03:04 PM")))
	return nil
}

func (a *app) cmdVerify(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: verify <email> <code>")
	}

	user, err := a.api.VerifyOTP(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	a.saveToken()
	a.notify.Success(fmt.Sprintf("Welcome, %s! Your account is verified.", user.Name))
	return nil
}

func (a *app) cmdStalls(ctx context.Context) error {
	stalls, err := a.api.Stalls(ctx)
	if err != nil {
		return err
	}
	for _, st := range stalls {
		state := "closed"
		if st.IsOpen {
			state = "open"
		}
		fmt.Printf("%4d  %-30s %-20s %s\n", st.ID, st.Name, st.CuisineType, state)
	}
	return nil
}

// cmdNearby resolves the caller's position and asks the server for
// distance-sorted stalls. The same haversine runs on both sides; the
// server's ordering wins.
func (a *app) cmdNearby(ctx context.Context) error {
	pos, ok := a.locator.CachedLocation()
	if !ok {
		var err error
		pos, err = a.locator.CurrentLocation(ctx)
		if err != nil {
			return fmt.Errorf("set FOOD_LAT and FOOD_LNG to use nearby: %w", err)
		}
	}

	stalls, err := a.api.NearbyStalls(ctx, pos.Latitude, pos.Longitude)
	if err != nil {
		return err
	}
	for _, st := range stalls {
		fmt.Printf("%4d  %-30s %-10s %s away\n", st.ID, st.Name,
			geo.FormatWalkingTime(st.WalkingMinutes), geo.FormatDistance(st.DistanceKm))
	}
	return nil
}

func (a *app) cmdMenu(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: menu <stall-id>")
	}
	stallID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid stall id %q", args[0])
	}

	items, err := a.api.StallMenu(ctx, stallID)
	if err != nil {
		return err
	}
	for _, it := range items {
		marker := " "
		if !it.IsAvailable {
			marker = "✖"
		}
		fmt.Printf("%s %4d  %-30s $%.2f  %s\n", marker, it.ID, it.Name, it.Price, it.Category)
	}
	return nil
}

func (a *app) cmdCart(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.printCart()
	}

	switch args[0] {
	case "add":
		return a.cmdCartAdd(ctx, args[1:])
	case "remove":
		if len(args) != 2 {
			return fmt.Errorf("usage: cart remove <menu-item-id>")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid menu item id %q", args[1])
		}
		a.cart.RemoveItem(id)
		return a.printCart()
	case "clear":
		a.cart.Clear()
		a.notify.Info("Cart cleared")
		return nil
	default:
		return fmt.Errorf("unknown cart command %q", args[0])
	}
}

func (a *app) cmdCartAdd(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: cart add <menu-item-id> <quantity> [special requests]")
	}
	itemID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid menu item id %q", args[0])
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil || qty < 1 {
		return fmt.Errorf("invalid quantity %q", args[1])
	}

	// The cart stores a denormalized snapshot of the item, so look it
	// up along with its stall.
	stalls, err := a.api.Stalls(ctx)
	if err != nil {
		return err
	}
	for _, st := range stalls {
		items, err := a.api.StallMenu(ctx, st.ID)
		if err != nil {
			continue
		}
		for _, it := range items {
			if it.ID != itemID {
				continue
			}
			a.cart.AddItem(cart.Item{
				MenuItemID:      it.ID,
				Name:            it.Name,
				UnitPrice:       it.Price,
				Quantity:        qty,
				SpecialRequests: strings.Join(args[2:], " "),
				StallID:         st.ID,
				StallName:       st.Name,
			})
			a.notify.Success(fmt.Sprintf("Added %d × %s", qty, it.Name))
			return a.printCart()
		}
	}
	return fmt.Errorf("menu item %d not found", itemID)
}

func (a *app) printCart() error {
	items := a.cart.Items()
	if len(items) == 0 {
		fmt.Println("Cart is empty")
		return nil
	}

	_, stallName, _ := a.cart.Stall()
	fmt.Printf("Cart — %s\n", stallName)
	for _, it := range items {
		fmt.Printf("%4d × %-30s $%.2f", it.Quantity, it.Name, it.UnitPrice*float64(it.Quantity))
		if it.SpecialRequests != "" {
			fmt.Printf("  (%s)", it.SpecialRequests)
		}
		fmt.Println()
	}
	fmt.Printf("%d items, total $%.2f\n", a.cart.Count(), a.cart.Total())
	return nil
}

func (a *app) cmdSlots() error {
	slots := pickup.Generate(time.Now())
	for i, slot := range slots {
		fmt.Printf("%3d  %s\n", i+1, slot.Label())
	}
	return nil
}

func (a *app) cmdCheckout(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: checkout <slot-number>")
	}

	items := a.cart.Items()
	if len(items) == 0 {
		return fmt.Errorf("cart is empty")
	}
	stallID, _, ok := a.cart.Stall()
	if !ok {
		return fmt.Errorf("cart has no stall")
	}

	slots := pickup.Generate(time.Now())
	idx, err := strconv.Atoi(args[0])
	if err != nil || idx < 1 || idx > len(slots) {
		return fmt.Errorf("invalid slot number %q, run 'foodcli slots'", args[0])
	}
	slot := slots[idx-1]

	orderItems := make([]client.OrderItemInput, 0, len(items))
	for _, it := range items {
		orderItems = append(orderItems, client.OrderItemInput{
			MenuItemID:      it.MenuItemID,
			Quantity:        it.Quantity,
			SpecialRequests: it.SpecialRequests,
		})
	}

	o, err := a.api.CreateOrder(ctx, client.CreateOrderInput{
		StallID:           stallID,
		Items:             orderItems,
		PickupWindowStart: slot.Start,
		PickupWindowEnd:   slot.End,
		PaymentMethod:     "paynow",
	})
	if err != nil {
		return err
	}

	a.cart.Clear()
	a.notify.Success(fmt.Sprintf("Order %s placed, queue #%d, pickup %s",
		o.OrderNumber, o.QueueNumber, slot.Label()))
	a.notify.PaymentReminder()
	fmt.Printf("Run 'foodcli pay %d' to confirm payment.\n", o.ID)
	return nil
}

func (a *app) cmdPay(ctx context.Context, args []string) error {
	id, err := parseOrderID(args)
	if err != nil {
		return err
	}

	o, err := a.api.ConfirmPayment(ctx, id)
	if err != nil {
		return err
	}
	a.notify.Success(fmt.Sprintf("Payment confirmed for %s", o.OrderNumber))
	return nil
}

func (a *app) cmdOrders(ctx context.Context) error {
	orders, err := a.api.MyOrders(ctx)
	if err != nil {
		return err
	}
	for _, o := range orders {
		fmt.Printf("%4d  %-9s %-30s %-15s $%.2f  queue #%d\n",
			o.ID, o.OrderNumber, o.StallName, o.Status, o.TotalAmount, o.QueueNumber)
	}
	return nil
}

// cmdTrack polls the order until it goes terminal, surfacing status
// changes and the pickup countdown as they happen.
func (a *app) cmdTrack(ctx context.Context, args []string) error {
	id, err := parseOrderID(args)
	if err != nil {
		return err
	}

	fetch := func(ctx context.Context) (tracker.OrderState, error) {
		o, err := a.api.Order(ctx, id)
		if err != nil {
			return tracker.OrderState{}, err
		}
		return tracker.OrderState{
			OrderID:           o.ID,
			Status:            o.Status,
			PaymentStatus:     o.PaymentStatus,
			QueueNumber:       o.QueueNumber,
			PickupWindowStart: o.PickupWindowStart,
		}, nil
	}

	var lastStatus string
	done := make(chan struct{})
	t := tracker.New(tracker.TrackInterval, fetch, tracker.Handlers{
		OnState: func(state tracker.OrderState) {
			if state.Status != lastStatus {
				lastStatus = state.Status
				fmt.Printf("\nStatus: %s\n", state.Status)
				if state.Status == "READY" {
					a.notify.OrderReady(state.OrderID, state.QueueNumber)
				}
			}
			if tracker.Terminal(state.Status) {
				select {
				case <-done:
				default:
					close(done)
				}
			}
		},
		OnCountdown: func(remaining string) {
			fmt.Printf("\rPickup in: %-20s", remaining)
		},
		OnError: func(err error) {
			a.notify.Error(err.Error())
		},
	})

	t.Start(ctx)
	defer t.Stop()

	select {
	case <-ctx.Done():
	case <-done:
		fmt.Println("\nOrder finished.")
	}
	return nil
}

func (a *app) cmdCancel(ctx context.Context, args []string) error {
	id, err := parseOrderID(args)
	if err != nil {
		return err
	}

	o, err := a.api.CancelOrder(ctx, id)
	if err != nil {
		return err
	}
	a.notify.Warning(fmt.Sprintf("Order %s cancelled", o.OrderNumber))
	return nil
}

func parseOrderID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("an order id is required")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid order id %q", args[0])
	}
	return id, nil
}
