package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/adityakmr7/focus25-sub001/internal/model"
)

const settingsColumns = `focus_duration, break_duration, notifications_enabled, sound_enabled,
	metronome_enabled, theme, user_name, user_email, onboarding_completed, sync_enabled,
	last_sync_at, created_at, updated_at`

// Settings returns the settings row, creating it with defaults on first use.
func (s *Store) Settings(ctx context.Context) (model.UserSettings, error) {
	var out model.UserSettings
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		st, err := s.loadOrInitSettings(ctx, tx)
		out = st
		return err
	})
	if err != nil {
		return model.UserSettings{}, fmt.Errorf("get settings: %w", err)
	}
	return out, nil
}

// UpdateSettings applies patch and bumps updatedAt, which strictly
// increases across updates even if the clock does not move.
func (s *Store) UpdateSettings(ctx context.Context, patch model.SettingsPatch) (model.UserSettings, error) {
	var out model.UserSettings
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		st, err := s.loadOrInitSettings(ctx, tx)
		if err != nil {
			return err
		}
		patch.Apply(&st)
		now := s.now()
		if !now.After(st.UpdatedAt) {
			now = st.UpdatedAt.Add(time.Nanosecond)
		}
		st.UpdatedAt = now
		if err := writeSettings(ctx, tx, st); err != nil {
			return err
		}
		out = st
		return nil
	})
	if err != nil {
		return model.UserSettings{}, fmt.Errorf("update settings: %w", err)
	}
	return out, nil
}

func (s *Store) loadOrInitSettings(ctx context.Context, q querier) (model.UserSettings, error) {
	st, err := readSettings(ctx, q)
	if errors.Is(err, sql.ErrNoRows) {
		st = model.DefaultSettings(s.now())
		return st, writeSettings(ctx, q, st)
	}
	return st, err
}

func readSettings(ctx context.Context, q querier) (model.UserSettings, error) {
	var (
		st                   model.UserSettings
		notify, sound, metro int
		onboarded, syncOn    int
		name, email, lastRaw sql.NullString
		createdAt, updatedAt string
	)
	err := q.QueryRowContext(ctx, `SELECT `+settingsColumns+` FROM user_settings WHERE id = 1`).Scan(
		&st.FocusDuration, &st.BreakDuration, &notify, &sound, &metro, &st.Theme,
		&name, &email, &onboarded, &syncOn, &lastRaw, &createdAt, &updatedAt,
	)
	if err != nil {
		return st, err
	}
	st.NotificationsEnabled = notify == 1
	st.SoundEnabled = sound == 1
	st.MetronomeEnabled = metro == 1
	st.OnboardingCompleted = onboarded == 1
	st.SyncEnabled = syncOn == 1
	st.UserName = stringPtr(name)
	st.UserEmail = stringPtr(email)
	if st.LastSyncAt, err = parseNullTime(lastRaw); err != nil {
		return st, err
	}
	if st.CreatedAt, err = parseTime(createdAt); err != nil {
		return st, err
	}
	if st.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return st, err
	}
	return st, nil
}

func writeSettings(ctx context.Context, q querier, st model.UserSettings) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO user_settings (id, `+settingsColumns+`)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			focus_duration = excluded.focus_duration,
			break_duration = excluded.break_duration,
			notifications_enabled = excluded.notifications_enabled,
			sound_enabled = excluded.sound_enabled,
			metronome_enabled = excluded.metronome_enabled,
			theme = excluded.theme,
			user_name = excluded.user_name,
			user_email = excluded.user_email,
			onboarding_completed = excluded.onboarding_completed,
			sync_enabled = excluded.sync_enabled,
			last_sync_at = excluded.last_sync_at,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		st.FocusDuration, st.BreakDuration, boolInt(st.NotificationsEnabled), boolInt(st.SoundEnabled),
		boolInt(st.MetronomeEnabled), st.Theme, nullableString(st.UserName), nullableString(st.UserEmail),
		boolInt(st.OnboardingCompleted), boolInt(st.SyncEnabled), nullableTime(st.LastSyncAt),
		formatTime(st.CreatedAt), formatTime(st.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
