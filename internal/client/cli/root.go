package cli

import (
	"context"
	"fmt"
	"strings"
)

func (a *App) getStatus() string {
	if a.email == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", a.email)
}

// Root runs the command loop until exit or end of input.
func (a *App) Root(ctx context.Context) {

	fmt.Fprintln(a.out, "Welcome to kvgate CLI (type 'help' for commands)")

	for {
		fmt.Fprintf(a.out, "kvgate %s> ", a.getStatus())
		line, err := a.reader.ReadString('\n')
		if err != nil && line == "" {
			break
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(a.out, "Available commands: save <key> <value>, get <key>, delete <key>, login, logout, hash, exit")
			} else {
				fmt.Fprintln(a.out, "Available commands: login, hash, exit")
			}
		case "login":
			a.login(ctx)
		case "logout":
			a.logout()
		case "save":
			a.save(ctx, args)
		case "get":
			a.get(ctx, args)
		case "delete":
			a.delete(ctx, args)
		case "hash":
			a.hash()
		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return
		default:
			fmt.Fprintf(a.out, "Unknown command: %s\n", cmd)
		}
	}
}
