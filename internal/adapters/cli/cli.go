package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"repairdesk/internal/app"
	"repairdesk/internal/core"
)

// Run executes a one-shot CLI command against the ledger and exits.
// args is os.Args after flag parsing; the first element is the subcommand.
func Run(ctx context.Context, svc app.ApplicationService, args []string) {
	switch args[0] {
	case "companies", "co":
		companies, err := svc.ListCompanies(ctx)
		if err != nil {
			log.Fatalf("Failed to list companies: %v", err)
		}
		for _, c := range companies {
			fmt.Printf("%-38s %s\n", c.ID, c.Name)
		}

	case "jobs", "j":
		companyID := requireCompany(args)
		jobs, err := svc.ListJobs(ctx, companyID)
		if err != nil {
			log.Fatalf("Failed to list jobs: %v", err)
		}
		fmt.Printf("%-16s %-14s %-14s %10s\n", "ORDER", "STATUS", "TYPE", "SHIPPING")
		fmt.Println(strings.Repeat("-", 58))
		for _, j := range jobs {
			fmt.Printf("%-16s %-14s %-14s %10s\n",
				j.OrderNumber, j.Status, j.JobType, j.ShippingTotal().StringFixed(2))
		}

	case "inventory", "inv", "i":
		companyID := requireCompany(args)
		items, err := svc.ListInventory(ctx, companyID)
		if err != nil {
			log.Fatalf("Failed to list inventory: %v", err)
		}
		fmt.Printf("%-14s %-30s %6s %8s\n", "SKU", "NAME", "QTY", "LOW")
		fmt.Println(strings.Repeat("-", 62))
		for _, it := range items {
			low := ""
			if it.LowStock() {
				low = "LOW"
			}
			fmt.Printf("%-14s %-30s %6d %8s\n", it.SKU, it.Name, it.Qty, low)
		}

	case "queue", "q":
		companyID := requireCompany(args)
		entries, err := svc.ListQueue(ctx, companyID)
		if err != nil {
			log.Fatalf("Failed to list queue: %v", err)
		}
		fmt.Printf("%-38s %-14s %-24s %5s %-10s\n", "ID", "SKU", "NAME", "QTY", "DISP")
		fmt.Println(strings.Repeat("-", 96))
		for _, e := range entries {
			fmt.Printf("%-38s %-14s %-24s %5d %-10s\n", e.ID, e.SKU, e.Name, e.Qty, e.Disposition)
		}

	case "report", "rep", "r":
		companyID := requireCompany(args)
		from, to := "", ""
		if len(args) > 2 {
			from = args[2]
		}
		if len(args) > 3 {
			to = args[3]
		}
		rep, err := svc.Report(ctx, companyID, from, to)
		if err != nil {
			log.Fatalf("Failed to build report: %v", err)
		}
		printReport(rep)

	case "check":
		companyID := requireCompany(args)
		violations, err := svc.ConsistencyCheck(ctx, companyID)
		if err != nil {
			log.Fatalf("Consistency check failed: %v", err)
		}
		if len(violations) == 0 {
			fmt.Println("Ledger is balanced.")
			return
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(violations)
		os.Exit(1)

	case "export":
		snap, err := svc.ExportSnapshot(ctx)
		if err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(snap)

	default:
		log.Fatalf("Unknown command: %s\nAvailable: companies, jobs, inventory, queue, report, check, export", args[0])
	}
}

func requireCompany(args []string) string {
	if len(args) < 2 {
		log.Fatalf("Usage: %s <company-id>", args[0])
	}
	return args[1]
}

func printReport(rep *core.Report) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  REPORT  %s .. %s\n", orAny(rep.From), orAny(rep.To))
	fmt.Printf("  Jobs: %d   Shipping: %s   Insurance: %s\n",
		rep.JobCount, rep.Shipping.Shipping.StringFixed(2), rep.Shipping.Insurance.StringFixed(2))
	fmt.Println(strings.Repeat("=", 62))

	fmt.Println("  BY STATUS")
	for _, b := range rep.ByStatus {
		fmt.Printf("    %-18s %5d\n", b.Status, b.Count)
	}
	fmt.Println("  BY TYPE")
	for _, b := range rep.ByType {
		fmt.Printf("    %-18s %5d\n", b.Type, b.Count)
	}
	fmt.Println("  USAGE BY DISPOSITION")
	for _, b := range rep.UsageByDisp {
		fmt.Printf("    %-18s %5d lines %5d pcs\n", b.Disposition, b.Lines, b.Qty)
	}
	fmt.Println("  EVENTS BY TYPE")
	for _, b := range rep.EventsByType {
		fmt.Printf("    %-18s %5d events %5d pcs\n", b.Type, b.Count, b.Qty)
	}
	fmt.Println(strings.Repeat("=", 62))
}

func orAny(s string) string {
	if s == "" {
		return "(open)"
	}
	return s
}
