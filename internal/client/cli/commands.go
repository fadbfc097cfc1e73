package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/dmitrijs2005/minibank/internal/client/client"
	"github.com/dmitrijs2005/minibank/internal/common"
)

var errNotLoggedIn = client.ErrNotLoggedIn

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// describe renders err for the terminal: coded rejections as
// "message (CODE)", everything else verbatim.
func describe(err error) string {
	var c common.Coded
	if errors.As(err, &c) {
		return fmt.Sprintf("%s (%s)", common.MessageOf(err), c.ErrorCode())
	}
	return err.Error()
}

// Register prompts for the account fields and creates the account.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	phone, err := getSimpleText(a.reader, "Enter phone", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	rctx, cancel := a.requestContext(ctx)
	defer cancel()

	uid, err := a.auth.Register(rctx, client.NewAccount{
		Username: username,
		Password: string(password),
		Email:    email,
		Phone:    phone,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Registered %s (uid %s). You can log in now.\n", username, uid)
	return nil
}

// Login prompts for credentials, authenticates and keeps the session.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	rctx, cancel := a.requestContext(ctx)
	defer cancel()

	s, err := a.auth.Login(rctx, username, password)
	if err != nil {
		return err
	}

	a.setSession(s)
	a.setMode(ModeOnline)
	fmt.Fprintf(a.out, "Login successful, session valid until %s\n", s.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	a.setSession(nil)
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) Whoami(ctx context.Context) error {
	s := a.currentSession()
	if s == nil {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	fmt.Fprintf(a.out, "%s (uid %s), session valid until %s\n", s.Username, s.UID, s.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
	return nil
}

func (a *App) Balance(ctx context.Context) error {
	rctx, cancel := a.requestContext(ctx)
	defer cancel()

	bal, err := a.bank.Balance(rctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Balance: %s\n", bal)
	return nil
}

// Transfer expects "<receiver> <amount>".
func (a *App) Transfer(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: transfer <receiver> <amount>")
	}

	rctx, cancel := a.requestContext(ctx)
	defer cancel()

	res, err := a.bank.Transfer(rctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, res.Message)
	fmt.Fprintf(a.out, "Your balance: %s\n", res.SenderBalance)
	return nil
}

// History accepts an optional limit.
func (a *App) History(ctx context.Context, args []string) error {
	limit, err := optionalLimit(args)
	if err != nil {
		return err
	}

	rctx, cancel := a.requestContext(ctx)
	defer cancel()

	entries, err := a.bank.History(rctx, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No transfers yet")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tDIRECTION\tCOUNTERPARTY\tAMOUNT\tSTATUS")
	for _, e := range entries {
		counterparty := e.Receiver
		if e.Direction == "received" {
			counterparty = e.Sender
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", e.ID, e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Direction, counterparty, e.Amount, e.Status)
	}
	return tw.Flush()
}

// Statement accepts an optional limit and the word "save" to download the
// document.
func (a *App) Statement(ctx context.Context, args []string) error {
	save := false
	rest := make([]string, 0, len(args))
	for _, arg := range args {
		if arg == "save" {
			save = true
			continue
		}
		rest = append(rest, arg)
	}
	limit, err := optionalLimit(rest)
	if err != nil {
		return err
	}

	rctx, cancel := a.requestContext(ctx)
	defer cancel()

	st, err := a.bank.Statement(rctx, limit, save)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Statement %s\n", st.Key)
	if st.Path != "" {
		fmt.Fprintf(a.out, "Saved to %s\n", st.Path)
	} else {
		fmt.Fprintf(a.out, "Download (valid until %s):\n%s\n", st.ExpiresAt.Local().Format("2006-01-02 15:04:05"), st.URL)
	}
	return nil
}

func optionalLimit(args []string) (int, error) {
	switch len(args) {
	case 0:
		return 0, nil
	case 1:
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("limit must be a positive number, got %q", args[0])
		}
		return n, nil
	default:
		return 0, errors.New("too many arguments")
	}
}
