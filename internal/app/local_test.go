package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"repairdesk/internal/app"
	"repairdesk/internal/core"
	"repairdesk/internal/store"
)

func newLocal(t *testing.T) *app.LocalService {
	t.Helper()
	svc, err := app.NewLocalService(store.NewMemoryStore(), false)
	require.NoError(t, err)
	return svc
}

func TestLocalService_PartLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newLocal(t)

	company, err := svc.CreateCompany(ctx, "Serwis Centralny")
	require.NoError(t, err)

	item, err := svc.SaveItem(ctx, company.ID, core.InventoryItem{Name: "Mainboard", SKU: "MB-1", Qty: 10})
	require.NoError(t, err)

	job, err := svc.SaveJob(ctx, company.ID, core.Job{OrderNumber: "ZL-100"})
	require.NoError(t, err)

	// consume 3 boards: 2 to renew, 1 to dispose
	job, err = svc.ApplyUsage(ctx, company.ID, job.ID, []core.UsageLine{
		{ItemID: item.ID, SKU: item.SKU, Name: item.Name, Qty: 2, Disposition: core.DispositionRenew},
		{ItemID: item.ID, SKU: item.SKU, Name: item.Name, Qty: 1, Disposition: core.DispositionDispose},
	})
	require.NoError(t, err)
	require.Len(t, job.InventoryUsed, 2)

	items, err := svc.ListInventory(ctx, company.ID)
	require.NoError(t, err)
	require.Equal(t, 7, items[0].Qty)

	queue, err := svc.ListQueue(ctx, company.ID)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	require.Equal(t, core.DispositionRenew, queue[0].Disposition)

	events, err := svc.ListEvents(ctx, company.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, core.EventDispose, events[0].Type)

	violations, err := svc.ConsistencyCheck(ctx, company.ID)
	require.NoError(t, err)
	require.Empty(t, violations)

	// renewal test passed: 2 boards go back into stock
	res, err := svc.ResolveQueueEntry(ctx, company.ID, queue[0].ID, core.ActionOK)
	require.NoError(t, err)
	require.True(t, res.Applied)

	items, err = svc.ListInventory(ctx, company.ID)
	require.NoError(t, err)
	require.Equal(t, 9, items[0].Qty)

	queue, err = svc.ListQueue(ctx, company.ID)
	require.NoError(t, err)
	require.Empty(t, queue)

	events, err = svc.ListEvents(ctx, company.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)

	report, err := svc.Report(ctx, company.ID, "", "")
	require.NoError(t, err)
	require.Equal(t, 1, report.JobCount)
}

func TestLocalService_ReSaveDoesNotDoubleCount(t *testing.T) {
	ctx := context.Background()
	svc := newLocal(t)

	company, err := svc.CreateCompany(ctx, "Firma")
	require.NoError(t, err)
	item, err := svc.SaveItem(ctx, company.ID, core.InventoryItem{Name: "Fuse", Qty: 10})
	require.NoError(t, err)
	job, err := svc.SaveJob(ctx, company.ID, core.Job{OrderNumber: "ZL-1"})
	require.NoError(t, err)

	usage := []core.UsageLine{{ItemID: item.ID, Qty: 4, Disposition: core.DispositionKeep}}
	for i := 0; i < 3; i++ {
		_, err = svc.ApplyUsage(ctx, company.ID, job.ID, usage)
		require.NoError(t, err)
	}

	items, err := svc.ListInventory(ctx, company.ID)
	require.NoError(t, err)
	require.Equal(t, 6, items[0].Qty, "re-saving identical usage must not decrement again")
}

func TestLocalService_UnsupportedResolveIsNoOp(t *testing.T) {
	ctx := context.Background()
	svc := newLocal(t)

	company, err := svc.CreateCompany(ctx, "Firma")
	require.NoError(t, err)
	item, err := svc.SaveItem(ctx, company.ID, core.InventoryItem{Name: "Fan", Qty: 5})
	require.NoError(t, err)
	job, err := svc.SaveJob(ctx, company.ID, core.Job{OrderNumber: "ZL-1"})
	require.NoError(t, err)
	_, err = svc.ApplyUsage(ctx, company.ID, job.ID, []core.UsageLine{
		{ItemID: item.ID, Qty: 1, Disposition: core.DispositionReturn},
	})
	require.NoError(t, err)

	queue, err := svc.ListQueue(ctx, company.ID)
	require.NoError(t, err)
	require.Len(t, queue, 1)

	res, err := svc.ResolveQueueEntry(ctx, company.ID, queue[0].ID, core.ActionOK)
	require.NoError(t, err)
	require.False(t, res.Applied)

	queue, err = svc.ListQueue(ctx, company.ID)
	require.NoError(t, err)
	require.Len(t, queue, 1, "no-op must leave the entry queued")
}

func TestLocalService_DeleteCompanyCascade(t *testing.T) {
	ctx := context.Background()
	svc := newLocal(t)

	company, err := svc.CreateCompany(ctx, "Firma")
	require.NoError(t, err)
	item, err := svc.SaveItem(ctx, company.ID, core.InventoryItem{Name: "Part", Qty: 1})
	require.NoError(t, err)
	job, err := svc.SaveJob(ctx, company.ID, core.Job{OrderNumber: "ZL-1"})
	require.NoError(t, err)
	_, err = svc.ApplyUsage(ctx, company.ID, job.ID, []core.UsageLine{
		{ItemID: item.ID, Qty: 1, Disposition: core.DispositionDispose},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCompany(ctx, company.ID))

	companies, err := svc.ListCompanies(ctx)
	require.NoError(t, err)
	require.Empty(t, companies)

	events, err := svc.ListEvents(ctx, company.ID)
	require.NoError(t, err)
	require.Len(t, events, 1, "audit events outlive the company")
}

func TestLocalService_ImportExport(t *testing.T) {
	ctx := context.Background()
	svc := newLocal(t)

	err := svc.ImportSnapshot(ctx, []byte(`{
		"companies": [{"id":"c1","name":"Imported","createdAt":"2025-01-01T00:00:00Z"}],
		"jobs": [{"id":"j1","companyId":"c1","orderNumber":"ZL-1","status":"nowe"}]
	}`))
	require.NoError(t, err)

	snap, err := svc.ExportSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Companies, 1)
	require.Equal(t, core.StatusNew, snap.Jobs[0].Status)

	require.Error(t, svc.ImportSnapshot(ctx, []byte("{bad")))
	// failed import leaves state untouched
	snap, err = svc.ExportSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Companies, 1)
}
