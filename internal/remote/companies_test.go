package remote_test

import (
	"context"
	"testing"

	"repairdesk/internal/core"
	"repairdesk/internal/remote"
)

// No pool needed: the name is rejected before any query runs.
func TestCreateCompany_BlankName(t *testing.T) {
	svc := remote.NewCompanyService(nil)
	for _, name := range []string{"", "   ", "\t\n"} {
		if _, err := svc.Create(context.Background(), name, ""); !core.IsValidation(err) {
			t.Errorf("Create(%q) err = %v, want validation", name, err)
		}
	}
}
