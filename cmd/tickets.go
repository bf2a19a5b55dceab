package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/psds-microservice/support-console/internal/application"
	"github.com/psds-microservice/support-console/internal/errs"
	"github.com/psds-microservice/support-console/internal/model"
	"github.com/psds-microservice/support-console/internal/service"
	"github.com/spf13/cobra"
)

var ticketsCmd = &cobra.Command{
	Use:   "tickets",
	Short: "Inspect and answer support tickets with ADMIN_TOKEN",
}

var ticketsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tickets",
	Args:  cobra.NoArgs,
	RunE:  runTicketsList,
}

var ticketsReplyCmd = &cobra.Command{
	Use:   "reply <ticket-id> <text>",
	Short: "Reply to an FAQ ticket",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runTicketsReply,
}

var ticketsStatusCmd = &cobra.Command{
	Use:   "status <ticket-id> <OPEN|IN_PROGRESS|RESOLVED|CLOSED>",
	Short: "Set ticket status",
	Args:  cobra.ExactArgs(2),
	RunE:  runTicketsStatus,
}

var ticketsSendCmd = &cobra.Command{
	Use:   "send <ticket-id> <text>",
	Short: "Send a message to a CHAT ticket",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runTicketsSend,
}

func init() {
	ticketsListCmd.Flags().String("status", "", "filter by status")
	ticketsListCmd.Flags().String("type", "", "filter by type (FAQ or CHAT)")
	ticketsListCmd.Flags().StringP("query", "q", "", "search title, body and user")
	ticketsListCmd.Flags().Int("page", 1, "page number")
	ticketsListCmd.Flags().Int("size", 50, "page size")
	ticketsCmd.AddCommand(ticketsListCmd, ticketsReplyCmd, ticketsStatusCmd, ticketsSendCmd)
}

// attach adopts ADMIN_TOKEN and loads one ticket snapshot into the store.
func attach(ctx context.Context) (*application.Core, error) {
	core, err := newCore(ctx)
	if err != nil {
		return nil, err
	}
	if core.Config.AdminToken == "" {
		core.Close()
		return nil, errors.New("ADMIN_TOKEN is not set; run `support-console login` first")
	}
	core.Session.Set(core.Config.AdminToken)
	admin, err := core.Client.Me(ctx)
	if err != nil {
		core.Close()
		return nil, fmt.Errorf("check ADMIN_TOKEN: %w", err)
	}
	if !admin.IsAdmin {
		core.Close()
		return nil, errs.ErrNotAdmin
	}
	core.Session.SetAdmin(*admin)

	tickets, err := core.Client.ListTickets(ctx)
	if err != nil {
		core.Close()
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	core.Store.ReplaceTickets(tickets)
	return core, nil
}

func runTicketsList(cmd *cobra.Command, args []string) error {
	core, err := attach(cmd.Context())
	if err != nil {
		return err
	}
	defer core.Close()

	status, _ := cmd.Flags().GetString("status")
	typ, _ := cmd.Flags().GetString("type")
	q, _ := cmd.Flags().GetString("query")
	page, _ := cmd.Flags().GetInt("page")
	size, _ := cmd.Flags().GetInt("size")

	res := core.Tickets.Tickets(service.TicketFilter{
		Status: model.TicketStatus(strings.ToUpper(status)),
		Type:   model.TicketType(strings.ToUpper(typ)),
		Query:  q,
	}, page, size)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tSTATUS\tUSER\tTITLE\tCREATED")
	for _, t := range res.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Type, t.Status, t.User.Name, t.Title, t.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(w, "\npage %d, %d of %d tickets\n", res.Page, len(res.Items), res.Total)
	return w.Flush()
}

func runTicketsReply(cmd *cobra.Command, args []string) error {
	core, err := attach(cmd.Context())
	if err != nil {
		return err
	}
	defer core.Close()

	t, err := core.Tickets.ReplyTicket(cmd.Context(), args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "replied to %s (status %s)\n", t.ID, t.Status)
	return nil
}

func runTicketsStatus(cmd *cobra.Command, args []string) error {
	core, err := attach(cmd.Context())
	if err != nil {
		return err
	}
	defer core.Close()

	t, err := core.Tickets.SetStatus(cmd.Context(), args[0], model.TicketStatus(strings.ToUpper(args[1])))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", t.ID, t.Status)
	return nil
}

func runTicketsSend(cmd *cobra.Command, args []string) error {
	core, err := attach(cmd.Context())
	if err != nil {
		return err
	}
	defer core.Close()

	m, err := core.Tickets.SendMessage(cmd.Context(), args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "sent %s at %s\n", m.ID, m.CreatedAt.Format("15:04:05"))
	return nil
}
