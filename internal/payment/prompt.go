package payment

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Prompt is the terminal stand-in for the payment sheet: it shows the
// order and reads the gateway's payment id and signature from the user.
type Prompt struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompt reads answers from in and writes the sheet to out.
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{in: bufio.NewReader(in), out: out}
}

func (p *Prompt) Open(ctx context.Context, opts Options) (*Result, error) {
	if err := validate(opts); err != nil {
		return nil, err
	}

	fmt.Fprintf(p.out, "\n%s\n", opts.Name)
	fmt.Fprintf(p.out, "  %s\n", opts.Description)
	fmt.Fprintf(p.out, "  Amount:        %s %d.%02d\n", opts.Currency, opts.Amount/100, opts.Amount%100)
	fmt.Fprintf(p.out, "  Gateway order: %s\n", opts.OrderID)
	if opts.Prefill.Name != "" {
		fmt.Fprintf(p.out, "  Customer:      %s\n", opts.Prefill.Name)
	}
	fmt.Fprintln(p.out, "Complete the payment, then paste the values it returns. Leave blank to cancel.")

	paymentID, err := p.ask(ctx, "razorpay_payment_id: ")
	if err != nil {
		return nil, err
	}
	signature, err := p.ask(ctx, "razorpay_signature: ")
	if err != nil {
		return nil, err
	}

	return &Result{PaymentID: paymentID, OrderID: opts.OrderID, Signature: signature}, nil
}

func (p *Prompt) ask(ctx context.Context, label string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &Error{Code: CodeCancelled, Description: err.Error()}
	}
	fmt.Fprint(p.out, label)

	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", &Error{Code: CodeCancelled, Description: fmt.Sprintf("read answer: %v", err)}
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", &Error{Code: CodeCancelled, Description: "Payment cancelled by user"}
	}
	return line, nil
}
