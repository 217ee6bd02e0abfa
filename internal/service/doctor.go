package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/saadjs/littlelemon/internal/model"
	"github.com/saadjs/littlelemon/internal/vault"
)

type DoctorReport struct {
	MenuError              string   `json:"menu_error,omitempty"`
	InvalidMenuRows        int      `json:"invalid_menu_rows"`
	UnreadableVaultEntries []string `json:"unreadable_vault_entries"`
	IncompleteOnboarding   bool     `json:"incomplete_onboarding"`
	RemovedVaultEntries    int      `json:"removed_vault_entries,omitempty"`
}

func (r DoctorReport) Healthy() bool {
	return r.MenuError == "" && r.InvalidMenuRows == 0 && len(r.UnreadableVaultEntries) == 0 && !r.IncompleteOnboarding
}

// RunDoctor checks the menu mirror and the profile store. An unreachable
// menu store is reported, not returned, so the profile checks still run.
// With fix, entries that can no longer be decrypted are removed, and an
// onboarding flag without a first name or email is reset so the next start
// onboards again. Menu rows are only reported.
func RunDoctor(ctx context.Context, menu *MenuStore, profiles *ProfileStore, fix bool) (DoctorReport, error) {
	report := DoctorReport{UnreadableVaultEntries: []string{}}

	if err := menu.EnsureSchema(ctx); err != nil {
		report.MenuError = err.Error()
	} else if n, err := menu.CountInvalid(ctx); err != nil {
		report.MenuError = err.Error()
	} else {
		report.InvalidMenuRows = n
	}

	keys, err := profiles.Vault.Keys(ctx)
	if err != nil {
		return report, err
	}
	for _, k := range keys {
		if _, _, err := profiles.Vault.Get(ctx, k); err != nil {
			if !errors.Is(err, vault.ErrDecrypt) {
				return report, err
			}
			report.UnreadableVaultEntries = append(report.UnreadableVaultEntries, k)
		}
	}

	if profiles.ResolveAppState(ctx) == model.AppStateHome {
		p := profiles.Load(ctx)
		report.IncompleteOnboarding = p.FirstName == "" || p.Email == ""
	}

	if !fix {
		return report, nil
	}
	var writes []vault.Write
	for _, k := range report.UnreadableVaultEntries {
		writes = append(writes, vault.Delete(k))
	}
	if report.IncompleteOnboarding {
		writes = append(writes, vault.Delete(KeyOnboardingCompleted))
	}
	if err := profiles.Vault.Apply(ctx, writes...); err != nil {
		return report, fmt.Errorf("apply doctor fixes: %w", err)
	}
	report.RemovedVaultEntries = len(writes)
	return report, nil
}
