package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/kvgate/internal/client/client"
	"github.com/dmitrijs2005/kvgate/internal/common"
	"github.com/dmitrijs2005/kvgate/internal/cryptox"
)

func (a *App) printError(err error) {
	switch {
	case errors.Is(err, client.ErrNotLoggedIn):
		fmt.Fprintln(a.out, "Please log in first")
	case errors.Is(err, client.ErrUnavailable):
		fmt.Fprintln(a.out, "Server unavailable")
	default:
		fmt.Fprintf(a.out, "Error: %v\n", err)
	}
}

func (a *App) login(ctx context.Context) {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		a.printError(err)
		return
	}

	password, err := GetPassword(a.out)
	if err != nil {
		a.printError(err)
		return
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.callContext(ctx)
	defer cancel()

	if _, err := a.client.Authenticate(ctx, email, string(password)); err != nil {
		a.printError(err)
		return
	}

	a.email = email
	fmt.Fprintln(a.out, "Logged in")
}

func (a *App) logout() {
	a.client.SetToken("")
	a.email = ""
	fmt.Fprintln(a.out, "Logged out")
}

// save stores everything after the key, spaces included, as the value.
func (a *App) save(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(a.out, "Usage: save <key> <value>")
		return
	}

	ctx, cancel := a.callContext(ctx)
	defer cancel()

	storageKey, err := a.client.SaveKey(ctx, args[0], strings.Join(args[1:], " "))
	if err != nil {
		a.printError(err)
		return
	}
	fmt.Fprintf(a.out, "Saved (%s)\n", storageKey)
}

func (a *App) get(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: get <key>")
		return
	}

	ctx, cancel := a.callContext(ctx)
	defer cancel()

	v, err := a.client.GetKey(ctx, args[0])
	if err != nil {
		a.printError(err)
		return
	}
	fmt.Fprintf(a.out, "%s\n  created: %s\n  updated: %s\n", v.Value, v.Created, v.Updated)
}

func (a *App) delete(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: delete <key>")
		return
	}

	ctx, cancel := a.callContext(ctx)
	defer cancel()

	if err := a.client.DeleteKey(ctx, args[0]); err != nil {
		a.printError(err)
		return
	}
	fmt.Fprintln(a.out, "Deleted")
}

// hash prints the credential hash to store in the users table for a new
// account. It needs the server secret and never contacts the server.
func (a *App) hash() {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		a.printError(err)
		return
	}

	password, err := GetPassword(a.out)
	if err != nil {
		a.printError(err)
		return
	}
	defer common.WipeByteArray(password)

	secret, err := GetSecret(a.out, "Enter server secret")
	if err != nil {
		a.printError(err)
		return
	}
	defer common.WipeByteArray(secret)

	fmt.Fprintln(a.out, cryptox.CredentialHash(secret, email, string(password)))
}
