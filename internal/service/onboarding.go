package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/saadjs/littlelemon/internal/logger"
	"github.com/saadjs/littlelemon/internal/model"
	"github.com/saadjs/littlelemon/internal/vault"
)

const onboardingDone = "true"

// ResolveAppState picks the start screen. Anything but a stored "true"
// flag, including a read error, means onboarding.
func (s *ProfileStore) ResolveAppState(ctx context.Context) model.AppState {
	v, ok, err := s.Vault.Get(ctx, KeyOnboardingCompleted)
	if err != nil {
		logger.OrNop(s.Log).Error("onboarding.state", "failed to read onboarding flag", err)
		return model.AppStateOnboarding
	}
	if ok && v == onboardingDone {
		return model.AppStateHome
	}
	return model.AppStateOnboarding
}

func (s *ProfileStore) CompleteOnboarding(ctx context.Context, firstName, email string) error {
	firstName = strings.TrimSpace(firstName)
	email = strings.TrimSpace(email)
	if firstName == "" {
		return fmt.Errorf("first name: %w", ErrMissingField)
	}
	if email == "" {
		return fmt.Errorf("email: %w", ErrMissingField)
	}
	err := s.Vault.Apply(ctx,
		vault.Set(KeyFirstName, firstName),
		vault.Set(KeyEmail, email),
		vault.Set(KeyOnboardingCompleted, onboardingDone),
	)
	if err != nil {
		return fmt.Errorf("complete onboarding: %w", err)
	}
	logger.OrNop(s.Log).Info("onboarding.complete", "onboarding completed")
	return nil
}

// Logout clears the profile and the onboarding flag together, so the next
// start routes to onboarding.
func (s *ProfileStore) Logout(ctx context.Context) error {
	keys := append(append([]string{}, profileKeys...), KeyOnboardingCompleted)
	if err := s.Vault.Apply(ctx, deletes(keys...)...); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	logger.OrNop(s.Log).Info("profile.logout", "profile cleared")
	return nil
}
