package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/psds-microservice/support-console/internal/audit"
	"github.com/psds-microservice/support-console/internal/database"
	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect and prune the admin audit log",
}

var auditRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show the latest admin commands",
	RunE:  runAuditRecent,
}

var auditPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete entries older than AUDIT_RETENTION_DAYS now",
	RunE:  runAuditPrune,
}

func init() {
	auditRecentCmd.Flags().IntP("limit", "n", 20, "number of entries")
	auditCmd.AddCommand(auditRecentCmd, auditPruneCmd)
}

func openRecorder() (*audit.GormRecorder, func(), time.Duration, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, nil, 0, err
	}
	if !cfg.AuditEnabled() {
		return nil, nil, 0, errors.New("audit: DB_HOST is not set")
	}
	db, err := database.Open(cfg.DSN(), false)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("db: %w", err)
	}
	closeFn := func() { _ = database.Close(db) }
	return audit.NewGormRecorder(db, logger), closeFn, cfg.AuditRetention(), nil
}

func runAuditRecent(cmd *cobra.Command, args []string) error {
	rec, closeFn, _, err := openRecorder()
	if err != nil {
		return err
	}
	defer closeFn()

	limit, _ := cmd.Flags().GetInt("limit")
	entries, err := rec.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tADMIN\tACTION\tTARGET\tOUTCOME\tDETAIL")
	for _, e := range entries {
		detail := e.Detail
		if e.Error != "" {
			detail = e.Error
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s/%s\t%s\t%s\n",
			e.CreatedAt.Format("2006-01-02 15:04:05"), e.AdminID, e.Action, e.TargetKind, e.TargetID, e.Outcome, detail)
	}
	return w.Flush()
}

func runAuditPrune(cmd *cobra.Command, args []string) error {
	rec, closeFn, retention, err := openRecorder()
	if err != nil {
		return err
	}
	defer closeFn()

	cutoff := time.Now().Add(-retention)
	n, err := rec.Prune(cmd.Context(), cutoff)
	if err != nil {
		return fmt.Errorf("prune: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "pruned %d entries older than %s\n", n, cutoff.Format(time.RFC3339))
	return nil
}
