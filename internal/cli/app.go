// Package cli is the terminal front end: one sub-command per screen of the
// mobile app.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/example/foodapp/internal/address"
	"github.com/example/foodapp/internal/api"
	"github.com/example/foodapp/internal/cart"
	"github.com/example/foodapp/internal/catalog"
	"github.com/example/foodapp/internal/config"
	"github.com/example/foodapp/internal/orders"
	"github.com/example/foodapp/internal/payment"
	"github.com/example/foodapp/internal/profile"
	"github.com/example/foodapp/internal/session"
	"github.com/example/foodapp/internal/storage"
)

// Streams are the terminal's standard streams.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Deps are the pieces New cannot build from configuration alone.
type Deps struct {
	Storage storage.Store
	// Gateway defaults to the interactive prompt on Streams.
	Gateway payment.Gateway
	Logger  *zap.Logger
}

// App wires the client packages together.
type App struct {
	cfg *config.Client
	log *zap.Logger
	in  *bufio.Reader
	out io.Writer
	err io.Writer

	client   *api.Client
	session  *session.Store
	cart     *cart.Flow
	catalog  *catalog.Catalog
	book     *address.Book
	orders   *orders.Service
	profiles *profile.Service

	commands map[string]command
}

type command struct {
	run     func(ctx context.Context, args []string) error
	summary string
	// public commands run without a restored session.
	public bool
}

// New builds an App for cfg.
func New(cfg *config.Client, streams Streams, deps Deps) (*App, error) {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if deps.Storage == nil {
		deps.Storage = storage.NewMemoryStore()
	}

	client, err := api.New(api.Options{
		BaseURL:            cfg.APIURL,
		Timeout:            cfg.RequestTimeout,
		RateLimit:          cfg.RateLimitRPS,
		Burst:              cfg.RateLimitBurst,
		BreakerMaxFailures: cfg.BreakerMaxFailures,
		BreakerOpenTimeout: cfg.BreakerOpenTimeout,
		Logger:             log,
	})
	if err != nil {
		return nil, fmt.Errorf("create api client: %w", err)
	}

	a := &App{
		cfg:    cfg,
		log:    log,
		in:     bufio.NewReader(streams.In),
		out:    streams.Out,
		err:    streams.Err,
		client: client,
	}

	gateway := deps.Gateway
	if gateway == nil {
		gateway = payment.NewPrompt(a.in, a.out)
	}

	a.session = session.New(client, deps.Storage, log)
	client.SetTokenSource(a.session)
	a.session.OnLogout(func() {
		fmt.Fprintln(a.out, "Signed out. Run `foodapp login --mobile <number>` to sign in again.")
	})

	pricing := cart.NewPricing(cfg.DeliveryFee, cfg.TaxRate)
	a.cart = cart.New(client, cart.Options{
		Gateway:  gateway,
		Merchant: merchantFor(cfg),
		Pricing:  &pricing,
		Logger:   log,
	})
	a.catalog = catalog.New(client, log)
	a.book = address.New(client, log)
	a.orders = orders.New(client)
	a.profiles = profile.New(client)

	a.commands = map[string]command{
		"welcome":  {run: a.welcome, summary: "show the onboarding slides", public: true},
		"login":    {run: a.login, summary: "sign in with an OTP sent to your mobile", public: true},
		"verify":   {run: a.verify, summary: "verify an OTP without prompting", public: true},
		"home":     {run: a.home, summary: "offers, categories and popular items"},
		"search":   {run: a.search, summary: "search items, optionally within a category"},
		"add":      {run: a.add, summary: "add an item to the cart"},
		"cart":     {run: a.cartCmd, summary: "show or edit the cart (qty, inc, dec, rm)"},
		"checkout": {run: a.checkout, summary: "pay for the cart"},
		"orders":   {run: a.ordersCmd, summary: "order history"},
		"profile":  {run: a.profileCmd, summary: "show or edit your profile"},
		"address":  {run: a.addressCmd, summary: "manage saved addresses (list, add, update, delete)"},
		"logout":   {run: a.logout, summary: "forget the saved session"},
		"whoami":   {run: a.whoami, summary: "show the signed-in customer"},
	}
	return a, nil
}

func merchantFor(cfg *config.Client) payment.Merchant {
	m := payment.DefaultMerchant(cfg.RazorpayKeyID)
	if cfg.PaymentCurrency != "" {
		m.Currency = cfg.PaymentCurrency
	}
	if cfg.MerchantName != "" {
		m.Name = cfg.MerchantName
	}
	m.Image = cfg.MerchantImage
	if cfg.ThemeColor != "" {
		m.ThemeColor = cfg.ThemeColor
	}
	if cfg.PrefillEmail != "" {
		m.PrefillEmail = cfg.PrefillEmail
	}
	if cfg.PrefillContact != "" {
		m.PrefillContact = cfg.PrefillContact
	}
	return m
}

// Run executes one command and returns the process exit status.
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		a.usage(a.out)
		return 0
	}

	name := args[0]
	cmd, ok := a.commands[name]
	if !ok {
		fmt.Fprintf(a.err, "unknown command %q\n\n", name)
		a.usage(a.err)
		return 2
	}

	if !cmd.public && !a.session.VerifyToken(ctx) {
		a.alert(errLoginRequired)
		return 1
	}

	if err := cmd.run(ctx, args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		a.alert(err)
		return 1
	}
	return 0
}

func (a *App) usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: foodapp [--ephemeral] <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")

	names := make([]string, 0, len(a.commands))
	for name := range a.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-9s %s\n", name, a.commands[name].summary)
	}
}

// readLine reads one trimmed line of input. io.EOF is returned only when
// nothing was read.
func (a *App) readLine(prompt string) (string, error) {
	fmt.Fprint(a.out, prompt)
	line, err := a.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
