package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"pixlink/internal/auth"
	"pixlink/internal/config"
	"pixlink/internal/db"
	"pixlink/internal/intent"
	"pixlink/internal/logger"
	"pixlink/internal/metrics"
	"pixlink/internal/pixgo"

	"github.com/asaskevich/EventBus"
	"go.uber.org/zap"
)

const usage = `usage: pixlink <command> [flags]

admin:
  login                       start an admin session
  logout                      end the admin session
  create -amount 25,50 [-description text]
  list                        list payment links, newest first
  link <intent_id>            print the checkout link
  delete <intent_id>          delete a payment link
  status <payment_id>         show the gateway record of a payment

payer:
  checkout <intent_id> [-name -cpf -email -phone]
`

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := 0
	if err := run(ctx, cfg, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "pixlink:", err)
		}
		code = 1
	}

	stop()
	logger.Sync()
	os.Exit(code)
}

func run(ctx context.Context, cfg *config.Config, args []string, in io.Reader, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return errUsage
	}

	a, err := newApp(cfg, in, out)
	if err != nil {
		return err
	}
	defer a.close()

	return a.dispatch(ctx, args[0], args[1:])
}

// app holds the wired dependencies shared by every command.
type app struct {
	cfg      *config.Config
	intents  intent.Service
	store    intent.Store
	gateway  pixgo.Gateway
	auth     *auth.Authenticator
	bus      EventBus.Bus
	metrics  *metrics.Checkout
	prompter *prompter
	out      io.Writer

	closers []func() error
}

func newApp(cfg *config.Config, in io.Reader, out io.Writer) (*app, error) {
	a := &app{
		cfg:      cfg,
		bus:      EventBus.New(),
		metrics:  &metrics.Checkout{},
		prompter: newPrompter(in, out),
		out:      out,
	}

	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	a.store = store
	a.intents = intent.NewService(store, cfg.HasAPIKey(), cfg.CheckoutBaseURL)

	a.gateway = pixgo.NewClient(pixgo.Options{
		APIKey:    cfg.PixGoAPIKey,
		BaseURL:   cfg.PixGoBaseURL,
		RateLimit: cfg.PixGoRateLimit,
	})

	authenticator, err := auth.NewAuthenticator(cfg)
	if err != nil {
		a.close()
		return nil, err
	}
	a.auth = authenticator

	return a, nil
}

func (a *app) openStore() (intent.Store, error) {
	log := logger.L().With(zap.String("driver", a.cfg.StoreDriver))

	switch a.cfg.StoreDriver {
	case "memory":
		log.Debug("using in-memory intent store")
		return intent.NewMemoryStore(), nil
	case "file", "":
		log.Debug("using file intent store", zap.String("path", a.cfg.StorePath))
		return intent.NewFileStore(a.cfg.StorePath), nil
	case "postgres":
		conn, err := db.NewDatabase(a.cfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, conn.Close)
		return intent.NewRepository(conn), nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q (use file, memory or postgres)", a.cfg.StoreDriver)
	}
}

func (a *app) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			logger.L().Warn("close failed", zap.Error(err))
		}
	}
	a.closers = nil
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.login(ctx)
	case "logout":
		return a.auth.Logout(ctx)
	case "create":
		return a.admin(ctx, args, a.create)
	case "list":
		return a.admin(ctx, args, a.list)
	case "link":
		return a.admin(ctx, args, a.link)
	case "delete":
		return a.admin(ctx, args, a.deleteIntent)
	case "status":
		return a.admin(ctx, args, a.status)
	case "checkout":
		return a.runCheckout(ctx, args)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// warnMissingKey prints the banner shown while the gateway key is absent.
func (a *app) warnMissingKey() {
	if a.cfg.HasAPIKey() {
		return
	}
	fmt.Fprintln(a.out, "Atenção: PIXGO_API_KEY não configurada. A criação de links e os pagamentos estão desativados.")
}
