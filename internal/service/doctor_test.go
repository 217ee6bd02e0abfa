package service_test

import (
	"context"
	"testing"

	"github.com/saadjs/littlelemon/internal/model"
	"github.com/saadjs/littlelemon/internal/service"
	"github.com/saadjs/littlelemon/internal/vault"
)

func TestRunDoctorReportsAndFixes(t *testing.T) {
	sqldb := newTestDB(t)
	ctx := context.Background()

	menu, err := service.NewMenuStore(sqldb, "sqlite")
	if err != nil {
		t.Fatalf("new menu store: %v", err)
	}
	if err := menu.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if err := menu.BulkInsert(ctx, []model.MenuItem{
		{Name: "Pizza", Price: 10, Description: "d", Image: "p.jpg"},
		{Name: "Ghost", Price: 3, Description: "d", Image: ""},
	}); err != nil {
		t.Fatalf("bulk insert: %v", err)
	}

	oldKey, _ := vault.DeriveKey([]byte("old"), []byte("salt"))
	oldVault, err := vault.New(sqldb, oldKey)
	if err != nil {
		t.Fatalf("old vault: %v", err)
	}
	if err := oldVault.Set(ctx, service.KeyEmail, "lost@example.com"); err != nil {
		t.Fatalf("seed sealed email: %v", err)
	}

	newKey, _ := vault.DeriveKey([]byte("new"), []byte("salt"))
	v, err := vault.New(sqldb, newKey)
	if err != nil {
		t.Fatalf("new vault: %v", err)
	}
	profiles := &service.ProfileStore{Vault: v}
	if err := v.Apply(ctx, vault.Set(service.KeyFirstName, "Tilly"), vault.Set(service.KeyOnboardingCompleted, "true")); err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	report, err := service.RunDoctor(ctx, menu, profiles, false)
	if err != nil {
		t.Fatalf("run doctor: %v", err)
	}
	if report.InvalidMenuRows != 1 {
		t.Fatalf("expected one invalid menu row, got %d", report.InvalidMenuRows)
	}
	if len(report.UnreadableVaultEntries) != 1 || report.UnreadableVaultEntries[0] != service.KeyEmail {
		t.Fatalf("expected sealed email to be unreadable, got %v", report.UnreadableVaultEntries)
	}
	if !report.IncompleteOnboarding || report.Healthy() {
		t.Fatalf("expected incomplete onboarding, got %+v", report)
	}

	report, err = service.RunDoctor(ctx, menu, profiles, true)
	if err != nil {
		t.Fatalf("run doctor fix: %v", err)
	}
	if report.RemovedVaultEntries != 2 {
		t.Fatalf("expected two removed entries, got %d", report.RemovedVaultEntries)
	}
	if st := profiles.ResolveAppState(ctx); st != model.AppStateOnboarding {
		t.Fatalf("expected onboarding reset, got %s", st)
	}
	report, err = service.RunDoctor(ctx, menu, profiles, false)
	if err != nil {
		t.Fatalf("recheck: %v", err)
	}
	if len(report.UnreadableVaultEntries) != 0 || report.IncompleteOnboarding {
		t.Fatalf("expected vault issues fixed, got %+v", report)
	}
}

func TestRunDoctorReportsUnavailableMenuStore(t *testing.T) {
	ctx := context.Background()
	v, err := vault.New(newTestDB(t), nil)
	if err != nil {
		t.Fatalf("new vault: %v", err)
	}
	profiles := &service.ProfileStore{Vault: v}
	if err := profiles.CompleteOnboarding(ctx, "Tilly", "tilly@example.com"); err != nil {
		t.Fatalf("onboard: %v", err)
	}

	report, err := service.RunDoctor(ctx, service.NewUnavailableMenuStore("mysql", nil), profiles, false)
	if err != nil {
		t.Fatalf("expected menu failure to be reported, got %v", err)
	}
	if report.MenuError == "" || report.Healthy() {
		t.Fatalf("expected menu error in report, got %+v", report)
	}
	if report.IncompleteOnboarding || len(report.UnreadableVaultEntries) != 0 {
		t.Fatalf("expected profile checks to still run cleanly, got %+v", report)
	}
}
