package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/saadjs/littlelemon/internal/logger"
	"github.com/saadjs/littlelemon/internal/model"
	"github.com/saadjs/littlelemon/internal/vault"
)

// Secure store keys.
const (
	KeyFirstName           = "firstName"
	KeyLastName            = "lastName"
	KeyEmail               = "email"
	KeyPhoneNumber         = "phoneNumber"
	KeyAvatar              = "avatar"
	KeyOnboardingCompleted = "onboardingCompleted"
)

var ErrMissingField = errors.New("required field is missing")

var profileKeys = []string{KeyFirstName, KeyLastName, KeyEmail, KeyPhoneNumber, KeyAvatar}

type ProfileStore struct {
	Vault *vault.Store
	Log   *logger.Logger
}

// Load never fails: unreadable keys are logged and read as empty.
func (s *ProfileStore) Load(ctx context.Context) model.Profile {
	p := model.Profile{Notifications: model.DefaultNotificationPrefs()}
	p.FirstName = s.get(ctx, KeyFirstName)
	p.LastName = s.get(ctx, KeyLastName)
	p.Email = s.get(ctx, KeyEmail)
	p.PhoneNumber = s.get(ctx, KeyPhoneNumber)
	p.Avatar = s.get(ctx, KeyAvatar)
	return p
}

func (s *ProfileStore) get(ctx context.Context, key string) string {
	v, _, err := s.Vault.Get(ctx, key)
	if err != nil {
		logger.OrNop(s.Log).Error("profile.load", "failed to read "+key, err)
		return ""
	}
	return v
}

// Save writes every profile field or none. The phone number is stored as
// digits only. The avatar key is written only when an avatar is present; a
// stored avatar is kept otherwise.
func (s *ProfileStore) Save(ctx context.Context, p model.Profile) error {
	return s.save(ctx, p, false)
}

// SaveRemovingAvatar is Save that also deletes the stored avatar, in the
// same transaction.
func (s *ProfileStore) SaveRemovingAvatar(ctx context.Context, p model.Profile) error {
	return s.save(ctx, p, true)
}

func (s *ProfileStore) save(ctx context.Context, p model.Profile, removeAvatar bool) error {
	writes := []vault.Write{
		vault.Set(KeyFirstName, strings.TrimSpace(p.FirstName)),
		vault.Set(KeyLastName, strings.TrimSpace(p.LastName)),
		vault.Set(KeyEmail, strings.TrimSpace(p.Email)),
		vault.Set(KeyPhoneNumber, model.UnmaskPhone(p.PhoneNumber)),
	}
	switch {
	case removeAvatar:
		writes = append(writes, vault.Delete(KeyAvatar))
	case p.HasAvatar():
		writes = append(writes, vault.Set(KeyAvatar, strings.TrimSpace(p.Avatar)))
	}
	if err := s.Vault.Apply(ctx, writes...); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	logger.OrNop(s.Log).Info("profile.save", "profile saved")
	return nil
}

func (s *ProfileStore) Clear(ctx context.Context) error {
	if err := s.Vault.Apply(ctx, deletes(profileKeys...)...); err != nil {
		return fmt.Errorf("clear profile: %w", err)
	}
	return nil
}

func deletes(keys ...string) []vault.Write {
	out := make([]vault.Write, 0, len(keys))
	for _, k := range keys {
		out = append(out, vault.Delete(k))
	}
	return out
}
