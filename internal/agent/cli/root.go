package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) Root(ctx context.Context) {
	fmt.Println("Health wallet CLI (type 'help' for commands)")
	fmt.Println("Wallet address:", a.vault.Address())
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("hw> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			fmt.Println("Available commands: status, balance, enable <category> <rate>, disable <category>, collect, readings, address, exit")

		case "status":
			a.status(ctx)

		case "balance":
			a.balance(ctx)

		case "enable":
			if len(args) < 2 {
				fmt.Println("Usage: enable <category> <rate-per-day>")
				continue
			}
			a.enable(ctx, args[0], args[1])

		case "disable":
			if len(args) < 1 {
				fmt.Println("Usage: disable <category>")
				continue
			}
			a.disable(ctx, args[0])

		case "collect":
			a.collect(ctx)

		case "readings":
			a.listReadings(ctx)

		case "address":
			fmt.Println(a.vault.Address())

		case "exit", "quit":
			fmt.Println("Bye!")
			return

		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}
