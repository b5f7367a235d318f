package render

import (
	"fmt"
	"io"
	"sync"

	"pixlink/internal/checkout"
	"pixlink/internal/pixgo"

	"github.com/asaskevich/EventBus"
)

// Checkout draws checkout views to a terminal. Repeated views with the same
// state and status are drawn once.
type Checkout struct {
	mu   sync.Mutex
	w    io.Writer
	last string
}

func NewCheckout(w io.Writer) *Checkout {
	return &Checkout{w: w}
}

// Subscribe draws every view published on the checkout topic. The returned
// func unsubscribes.
func (c *Checkout) Subscribe(bus EventBus.Bus) (func(), error) {
	handler := c.Draw
	if err := bus.Subscribe(checkout.StateTopic, handler); err != nil {
		return nil, err
	}
	return func() { _ = bus.Unsubscribe(checkout.StateTopic, handler) }, nil
}

func (c *Checkout) Draw(v checkout.View) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := string(v.State) + "|" + string(v.Status) + "|" + v.Error
	if key == c.last {
		return
	}
	c.last = key

	switch v.State {
	case checkout.StateNotFound:
		fmt.Fprintln(c.w, "Link de pagamento inválido ou expirado.")
	case checkout.StateIdle:
		c.summary(v)
	case checkout.StateSubmitting:
		fmt.Fprintln(c.w, "Gerando PIX...")
	case checkout.StateSubmitError:
		fmt.Fprintf(c.w, "Erro: %s\n", v.Error)
	case checkout.StateAwaitingPayment:
		c.awaiting(v)
	case checkout.StateSettled:
		c.settled(v)
	}
}

func (c *Checkout) summary(v checkout.View) {
	fmt.Fprintln(c.w, "Checkout Seguro")
	fmt.Fprintf(c.w, "Produto: %s\n", v.Description)
	fmt.Fprintf(c.w, "Total a Pagar: %s\n", v.AmountDisplay)
}

func (c *Checkout) awaiting(v checkout.View) {
	if v.Status == pixgo.StatusRefunded {
		fmt.Fprintln(c.w, "Pagamento estornado.")
		return
	}

	fmt.Fprintf(c.w, "Total a Pagar: %s\n", v.AmountDisplay)
	fmt.Fprintln(c.w, "Código Pix Copia e Cola:")
	fmt.Fprintln(c.w, v.QRCode)
	if v.QRImageURL != "" {
		fmt.Fprintf(c.w, "QR Code: %s\n", v.QRImageURL)
	}
	if v.ExpiresAt != "" {
		fmt.Fprintf(c.w, "Expira em: %s\n", v.ExpiresAt)
	}
	fmt.Fprintln(c.w, "Aguardando confirmação automática...")
}

func (c *Checkout) settled(v checkout.View) {
	switch v.Status {
	case pixgo.StatusCompleted:
		fmt.Fprintln(c.w, "Pagamento Confirmado!")
	case pixgo.StatusExpired:
		fmt.Fprintln(c.w, "Pagamento Expirado")
	default:
		fmt.Fprintf(c.w, "Pagamento não concluído (%s)\n", v.Status)
	}
}
