// seed is a one-shot tool that loads the demo dataset into the live
// database. Run it against a fresh install or after wiping a test
// environment.
//
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/joho/godotenv"

	"repairdesk/internal/core"
	"repairdesk/internal/db"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewServicePool(ctx)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	snap := core.DemoSnapshot(time.Now())

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	log.Println("Seeding companies...")
	for _, c := range snap.Companies {
		if _, err := tx.Exec(ctx, `
			INSERT INTO companies (id, name, created_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (id) DO NOTHING
		`, c.ID, c.Name, c.CreatedAt); err != nil {
			log.Fatalf("Failed to seed company %s: %v", c.Name, err)
		}
	}

	log.Println("Seeding inventory...")
	for _, it := range snap.Inventory {
		if _, err := tx.Exec(ctx, `
			INSERT INTO inventory_items (id, company_id, sku, name, qty, location, min_qty, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO NOTHING
		`, it.ID, it.CompanyID, it.SKU, it.Name, it.Qty, it.Location, it.MinQty, it.CreatedAt); err != nil {
			log.Fatalf("Failed to seed item %s: %v", it.SKU, err)
		}
	}

	log.Println("Seeding jobs...")
	for _, j := range snap.Jobs {
		used, err := json.Marshal(j.InventoryUsed)
		if err != nil {
			log.Fatalf("Failed to encode usage for %s: %v", j.OrderNumber, err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO jobs (id, company_id, order_number, serial_number, issue_desc,
				incoming_tracking, outgoing_tracking, actions_desc, status, job_type,
				due_date, ship_in, ship_out, ins_in, ins_out, created_at, updated_at, inventory_used)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
			ON CONFLICT (id) DO NOTHING
		`, j.ID, j.CompanyID, j.OrderNumber, j.SerialNumber, j.IssueDesc,
			j.IncomingTracking, j.OutgoingTracking, j.ActionsDesc, j.Status, j.JobType,
			j.DueDate, j.ShipIn, j.ShipOut, j.InsIn, j.InsOut, j.CreatedAt, j.UpdatedAt, used); err != nil {
			log.Fatalf("Failed to seed job %s: %v", j.OrderNumber, err)
		}
	}

	log.Println("Seeding repair queue...")
	for _, e := range snap.RepairQueue {
		if _, err := tx.Exec(ctx, `
			INSERT INTO repair_queue (id, company_id, job_id, item_id, name, sku, qty, disposition, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO NOTHING
		`, e.ID, e.CompanyID, e.JobID, e.ItemID, e.Name, e.SKU, e.Qty, e.Disposition, e.CreatedAt); err != nil {
			log.Fatalf("Failed to seed queue entry %s: %v", e.ID, err)
		}
	}

	log.Println("Seeding part events...")
	for _, ev := range snap.PartEvents {
		if _, err := tx.Exec(ctx, `
			INSERT INTO part_events (id, company_id, job_id, item_id, sku, name, qty, type, event_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO NOTHING
		`, ev.ID, ev.CompanyID, ev.JobID, ev.ItemID, ev.SKU, ev.Name, ev.Qty, ev.Type, ev.EventDate); err != nil {
			log.Fatalf("Failed to seed event %s: %v", ev.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}
	log.Println("Demo data seeded.")
}
