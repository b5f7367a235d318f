package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"pixlink/internal/auth"
	"pixlink/internal/intent"
	"pixlink/internal/logger"
	"pixlink/internal/pixgo"
	"pixlink/internal/render"

	"go.uber.org/zap"
)

const maxLoginPrompts = 3

var (
	errUsage           = errors.New("invalid usage")
	errMissingArgument = errors.New("missing argument")
)

type adminFunc func(ctx context.Context, args []string) error

// admin runs fn behind the stored admin token. Without a configured password
// the guard is off and fn runs directly.
func (a *app) admin(ctx context.Context, args []string, fn adminFunc) error {
	_, err := a.auth.Authorize(ctx)
	switch {
	case errors.Is(err, auth.ErrLoginDisabled):
		logger.FromCtx(ctx).Debug("admin login disabled, running unguarded")
	case errors.Is(err, auth.ErrNotLoggedIn):
		return fmt.Errorf("%w: run `pixlink login` first", err)
	case err != nil:
		return err
	}
	return fn(ctx, args)
}

func (a *app) login(ctx context.Context) error {
	if !a.auth.Enabled() {
		return auth.ErrLoginDisabled
	}

	for i := 0; i < maxLoginPrompts; i++ {
		password, err := a.prompter.ask(ctx, "Senha de administrador")
		if err != nil {
			return err
		}

		_, err = a.auth.Login(ctx, password)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			fmt.Fprintln(a.out, "Senha incorreta.")
			continue
		}
		if err != nil {
			return err
		}

		fmt.Fprintln(a.out, "Sessão iniciada.")
		return nil
	}
	return auth.ErrInvalidCredentials
}

func (a *app) create(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	amount := fs.String("amount", "", "amount in BRL, e.g. 25,50 (minimum 10,00)")
	description := fs.String("description", "", "shown to the payer; defaults to \""+intent.DefaultDescription+"\"")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !a.intents.CreationEnabled() {
		a.warnMissingKey()
		return intent.ErrMissingAPIKey
	}
	if *amount == "" {
		return fmt.Errorf("%w: -amount", errMissingArgument)
	}

	pi, err := a.intents.Create(ctx, intent.CreateIntentInput{
		Amount:      *amount,
		Description: *description,
	})
	if err != nil {
		return err
	}

	return render.Intents(a.out, []*intent.PaymentIntent{pi}, a.intents.CheckoutURL)
}

func (a *app) list(ctx context.Context, _ []string) error {
	intents, err := a.intents.List(ctx)
	if err != nil {
		return err
	}
	return render.Intents(a.out, intents, a.intents.CheckoutURL)
}

func (a *app) link(ctx context.Context, args []string) error {
	id, err := firstArg(args, "intent_id")
	if err != nil {
		return err
	}

	pi, err := a.intents.Get(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, a.intents.CheckoutURL(pi.ID))
	return nil
}

func (a *app) deleteIntent(ctx context.Context, args []string) error {
	id, err := firstArg(args, "intent_id")
	if err != nil {
		return err
	}
	return a.intents.Delete(ctx, id)
}

func (a *app) status(ctx context.Context, args []string) error {
	paymentID, err := firstArg(args, "payment_id")
	if err != nil {
		return err
	}

	resp, err := a.gateway.GetDetails(ctx, paymentID)
	if err != nil {
		var te *pixgo.TransportError
		if errors.As(err, &te) {
			logger.FromCtx(ctx).Error("payment details failed", zap.Error(err))
			return errors.New(te.Message())
		}
		return err
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = resp.Error
		}
		return fmt.Errorf("pixgo: %s", msg)
	}

	return render.Details(a.out, resp.Data)
}

func firstArg(args []string, name string) (string, error) {
	if len(args) == 0 || args[0] == "" {
		return "", fmt.Errorf("%w: <%s>", errMissingArgument, name)
	}
	return args[0], nil
}
