// The console client walks a buyer through the catalog and a purchase.
// All server interaction goes through the fault-tolerant core, so a
// crashed or restarted server shows up here as a readable message, not
// a stack trace.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"github.com/iliyamo/distributed-ticket-reservation/internal/client"
	"github.com/iliyamo/distributed-ticket-reservation/internal/config"
	"github.com/iliyamo/distributed-ticket-reservation/internal/protocol"
	"github.com/iliyamo/distributed-ticket-reservation/internal/registry"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	core := client.NewCore(registry.NewClient(cfg.RegistryAddr), cfg.ServiceName, nil)
	in := bufio.NewScanner(os.Stdin)
	ctx := context.Background()

	for {
		fmt.Println()
		fmt.Println("=== Ticket Reservation ===")
		fmt.Println("1) List films")
		fmt.Println("2) List sessions for a film")
		fmt.Println("3) Buy tickets")
		fmt.Println("0) Exit")

		switch prompt(in, "Option: ") {
		case "1":
			listFilms(ctx, core)
		case "2":
			listSessions(ctx, core, in)
		case "3":
			buyTickets(ctx, core, in)
		case "0":
			fmt.Println("Bye.")
			return
		default:
			fmt.Println("Unknown option.")
		}
	}
}

func listFilms(ctx context.Context, core *client.Core) {
	films, res := core.ListFilms(ctx)
	if !res.OK() {
		fmt.Println("Error:", res.Message)
		return
	}
	if len(films) == 0 {
		fmt.Println("No films available.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tDURATION")
	for _, f := range films {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d min\n", f.ID, f.Title, f.Category, f.Duration)
	}
	w.Flush()
}

func listSessions(ctx context.Context, core *client.Core, in *bufio.Scanner) {
	filmID := promptUint(in, "Film id: ")
	if filmID == 0 {
		fmt.Println("Invalid film id.")
		return
	}
	sessions, res := core.ListSessions(ctx, filmID)
	if !res.OK() {
		fmt.Println("Error:", res.Message)
		return
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions for this film.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTS\tAVAILABLE\tTOTAL")
	for _, s := range sessions {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\n", s.ID, s.StartsAt, s.Available, s.Total)
	}
	w.Flush()
}

func buyTickets(ctx context.Context, core *client.Core, in *bufio.Scanner) {
	name := prompt(in, "Your name: ")
	email := prompt(in, "Your email: ")
	sessionID := promptUint(in, "Session id: ")
	quantity := promptUint(in, "Tickets: ")
	if sessionID == 0 || quantity == 0 {
		fmt.Println("Session id and ticket count must be positive numbers.")
		return
	}

	remaining, res := core.Purchase(ctx, protocol.PurchaseRequest{
		Name:      name,
		Email:     email,
		SessionID: sessionID,
		Quantity:  uint32(quantity),
	})
	if !res.OK() {
		fmt.Println("Purchase failed:", res.Message)
		return
	}
	fmt.Printf("%s (%d tickets left for this session)\n", res.Message, remaining)
}

func prompt(in *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !in.Scan() {
		return ""
	}
	return strings.TrimSpace(in.Text())
}

func promptUint(in *bufio.Scanner, label string) uint64 {
	n, err := strconv.ParseUint(prompt(in, label), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
