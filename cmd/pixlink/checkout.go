package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"pixlink/internal/checkout"
	"pixlink/internal/intent"
	"pixlink/internal/logger"
	"pixlink/internal/pixgo"
	"pixlink/internal/render"

	"go.uber.org/zap"
)

var errPaymentNotCompleted = errors.New("payment not completed")

// runCheckout is the payer flow: form, submission, then waiting until the
// payment settles or the user interrupts.
func (a *app) runCheckout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var c checkout.Customer
	fs.StringVar(&c.Name, "name", "", "payer full name")
	fs.StringVar(&c.CPF, "cpf", "", "payer CPF")
	fs.StringVar(&c.Email, "email", "", "payer e-mail")
	fs.StringVar(&c.Phone, "phone", "", "payer phone (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	intentID, err := firstArg(fs.Args(), "intent_id")
	if err != nil {
		return err
	}

	a.warnMissingKey()

	unsubscribe, err := render.NewCheckout(a.out).Subscribe(a.bus)
	if err != nil {
		return err
	}
	defer unsubscribe()

	s, err := checkout.Open(ctx, checkout.Deps{
		Store:            a.store,
		Gateway:          a.gateway,
		PaymentsDisabled: !a.cfg.HasAPIKey(),
		Bus:              a.bus,
		PollInterval:     a.cfg.PollInterval,
		Metrics:          a.metrics,
	}, intentID)
	if s != nil {
		defer s.Close()
	}
	if err != nil {
		return err
	}
	if !a.cfg.HasAPIKey() {
		return intent.ErrMissingAPIKey
	}

	log := logger.FromCtx(logger.WithSessionID(ctx, s.ID()))

	for {
		if err := a.fillCustomer(ctx, &c); err != nil {
			return err
		}

		err := s.Submit(ctx, c)
		if err == nil {
			break
		}

		var ve *checkout.ValidationError
		if errors.As(err, &ve) {
			fmt.Fprintf(a.out, "Dados inválidos: %v\n", ve.Fields)
			c = clearFields(c, ve.Fields)
			continue
		}
		if s.State() != checkout.StateSubmitError {
			return err
		}

		log.Debug("submission failed", zap.Error(err))
		retry, perr := a.prompter.confirm(ctx, "Tentar novamente?")
		if perr != nil {
			return perr
		}
		if !retry {
			return err
		}
	}

	select {
	case <-s.Done():
	case <-ctx.Done():
		fmt.Fprintln(a.out, "Checkout cancelado.")
		return ctx.Err()
	}

	if s.View().Status != pixgo.StatusCompleted {
		return errPaymentNotCompleted
	}
	return nil
}

func (a *app) fillCustomer(ctx context.Context, c *checkout.Customer) error {
	var err error
	if c.Name, err = a.prompter.askDefault(ctx, "Nome Completo", c.Name); err != nil {
		return err
	}
	if c.CPF, err = a.prompter.askDefault(ctx, "CPF", c.CPF); err != nil {
		return err
	}
	if c.Email, err = a.prompter.askDefault(ctx, "E-mail", c.Email); err != nil {
		return err
	}
	return nil
}

// clearFields blanks the invalid answers so they are asked again.
func clearFields(c checkout.Customer, fields []string) checkout.Customer {
	for _, f := range fields {
		switch f {
		case "Name":
			c.Name = ""
		case "CPF":
			c.CPF = ""
		case "Email":
			c.Email = ""
		case "Phone":
			c.Phone = ""
		}
	}
	return c
}
