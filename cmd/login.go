package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in as admin and print a token for ADMIN_TOKEN",
	RunE:  runLogin,
}

func init() {
	loginCmd.Flags().String("email", os.Getenv("ADMIN_EMAIL"), "admin email")
	loginCmd.Flags().String("password", os.Getenv("ADMIN_PASSWORD"), "admin password")
}

func runLogin(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	core, err := newCore(cmd.Context())
	if err != nil {
		return err
	}
	defer core.Close()

	// Pollers stay off in one-shot commands.
	admin, err := core.Client.Login(cmd.Context(), email, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "logged in as %s (%s)\n", admin.Name, admin.ID)
	if exp := core.Session.ExpiresAt(); !exp.IsZero() {
		fmt.Fprintf(out, "token expires at %s\n", exp.Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Fprintf(out, "ADMIN_TOKEN=%s\n", core.Session.Token())
	return nil
}
