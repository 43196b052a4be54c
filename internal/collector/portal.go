package collector

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"time"
)

// ErrCompanyNotFound is returned when no search result matches the company
// name exactly.
var ErrCompanyNotFound = errors.New("company not found on portal")

// ErrOperatorGone is returned when the operator input closes while the
// collector waits for a manual login.
var ErrOperatorGone = errors.New("operator input closed")

// Portal is the capability marketplace.
type Portal interface {
	// EnsureLogin makes sure the portal session is logged in, asking the
	// operator when it is not.
	EnsureLogin(ctx context.Context) error
	// OpenCompany finds the company by exact name and opens its ability
	// listing.
	OpenCompany(ctx context.Context, name string) (Listing, error)
}

// Listing is the paginated ability list of one company.
type Listing interface {
	// Total is the ability count the portal reports for the company.
	Total(ctx context.Context) (int, error)
	// Names returns the ability names on the current page.
	Names(ctx context.Context) ([]string, error)
	// Detail opens the named ability of the current page and reads it.
	Detail(ctx context.Context, name string) (AbilityDetail, error)
	// Next moves to the next page, reporting false on the last one.
	Next(ctx context.Context) (bool, error)
	Close() error
}

// Operator is the person at the terminal who logs into the portal by hand.
type Operator struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewOperator reads confirmations from in and writes prompts to out.
func NewOperator(in io.Reader, out io.Writer) *Operator {
	return &Operator{in: bufio.NewScanner(in), out: out}
}

// WaitForOK prints prompt and blocks until the operator types "ok".
func (o *Operator) WaitForOK(ctx context.Context, prompt string) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintf(o.out, "%s, then type ok to continue...\n", prompt)
		if !o.in.Scan() {
			if err := o.in.Err(); err != nil {
				return fmt.Errorf("failed to read operator input: %w", err)
			}
			return ErrOperatorGone
		}
		if strings.EqualFold(strings.TrimSpace(o.in.Text()), "ok") {
			return nil
		}
	}
}

// Pacer spaces UI actions by a random pause within [min, max].
type Pacer struct {
	min, max time.Duration
	rnd      *rand.Rand
}

// NewPacer returns a pacer over the given bounds in milliseconds.
func NewPacer(minMs, maxMs int) *Pacer {
	return &Pacer{
		min: time.Duration(minMs) * time.Millisecond,
		max: time.Duration(maxMs) * time.Millisecond,
		rnd: rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15)),
	}
}

// Next returns the next pause length.
func (p *Pacer) Next() time.Duration {
	if p.max <= p.min {
		return p.min
	}
	return p.min + time.Duration(p.rnd.Int64N(int64(p.max-p.min)+1))
}

// Pause sleeps for the next pause length or until ctx is done.
func (p *Pacer) Pause(ctx context.Context) error {
	d := p.Next()
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
