package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tomwrigg/taxfolio/internal/config"
	"github.com/tomwrigg/taxfolio/internal/database"
	"github.com/tomwrigg/taxfolio/internal/database/repository"
	"github.com/tomwrigg/taxfolio/internal/logging"
	"github.com/tomwrigg/taxfolio/internal/service"
)

const usage = `taxfolio — duplicate reconciliation for tax bookkeeping

Usage:
  taxfolio reconcile -business <id>
  taxfolio matches   [-business <id>] [-status <s>] [-tier <t>]
  taxfolio confirm   -match <id> -by <who>
  taxfolio dismiss   -match <id> -by <who>
`

var (
	tierStyles = map[string]lipgloss.Style{
		"EXACT":    lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1")),
		"LIKELY":   lipgloss.NewStyle().Foreground(lipgloss.Color("#f9e2af")),
		"POSSIBLE": lipgloss.NewStyle().Foreground(lipgloss.Color("#fab387")),
	}
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7086"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#89b4fa"))
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level)

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatalf("mkdir db dir: %v", err)
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// repositories and services
	bank := repository.NewBankTransactionRepo(db)
	ledger := repository.NewLedgerEntryRepo(db)
	matches := repository.NewMatchRepo(db)
	rec := &service.Reconciler{DB: db, Bank: bank, Ledger: ledger, Matches: matches}

	ctx := context.Background()

	switch os.Args[1] {
	case "reconcile":
		err = runReconcile(ctx, rec, os.Args[2:])
	case "matches":
		err = runMatches(ctx, matches, os.Args[2:])
	case "confirm":
		err = runDecide(ctx, rec, os.Args[2:], true)
	case "dismiss":
		err = runDecide(ctx, rec, os.Args[2:], false)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

func runReconcile(ctx context.Context, rec *service.Reconciler, args []string) error {
	fs := flag.NewFlagSet("reconcile", flag.ExitOnError)
	business := fs.String("business", "", "business id to reconcile")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *business == "" {
		return fmt.Errorf("-business is required")
	}

	summary, err := rec.DetectAndQueue(ctx, *business)
	if err != nil {
		return err
	}
	fmt.Printf("examined %d transactions, detected %d matches, queued %d for review (%d already queued)\n",
		summary.Transactions, summary.Detected, summary.Queued, summary.AlreadyQueued)
	return nil
}

func runMatches(ctx context.Context, repo *repository.MatchRepo, args []string) error {
	fs := flag.NewFlagSet("matches", flag.ExitOnError)
	business := fs.String("business", "", "filter by business id")
	status := fs.String("status", "", "filter by status (UNRESOLVED, CONFIRMED, DISMISSED)")
	tier := fs.String("tier", "", "filter by tier (EXACT, LIKELY, POSSIBLE)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	list, err := repo.List(ctx, repository.MatchFilters{BusinessID: *business, Status: *status, Tier: *tier})
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println(dimStyle.Render("no matches"))
		return nil
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("%-36s  %-8s  %-6s  %-10s  %s", "ID", "TIER", "CONF", "STATUS", "PAIR")))
	for _, m := range list {
		tierCol := m.Tier
		if style, ok := tierStyles[m.Tier]; ok {
			tierCol = style.Render(fmt.Sprintf("%-8s", m.Tier))
		}
		line := fmt.Sprintf("%-36s  %s  %.2f  %-10s  %s → %s", m.ID, tierCol, m.Confidence, m.Status,
			m.BankTransactionID, m.LedgerEntryID)
		if m.Status != "UNRESOLVED" {
			resolved := ""
			if m.ResolvedBy != nil && m.ResolvedAt != nil {
				resolved = fmt.Sprintf("  (%s, %s)", *m.ResolvedBy, m.ResolvedAt.Format(time.DateOnly))
			}
			line = dimStyle.Render(line + resolved)
		}
		fmt.Println(line)
	}
	return nil
}

func runDecide(ctx context.Context, rec *service.Reconciler, args []string, confirm bool) error {
	name := "dismiss"
	if confirm {
		name = "confirm"
	}
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	match := fs.String("match", "", "match id to resolve")
	by := fs.String("by", "", "who is resolving")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *match == "" || *by == "" {
		return fmt.Errorf("-match and -by are required")
	}

	if err := rec.Decide(ctx, *match, confirm, *by); err != nil {
		return err
	}
	fmt.Printf("%sed %s\n", name, *match)
	return nil
}
