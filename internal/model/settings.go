package model

import "time"

// UserSettings is the singleton settings row of a device.
type UserSettings struct {
	FocusDuration        int        `json:"focusDuration"`
	BreakDuration        int        `json:"breakDuration"`
	NotificationsEnabled bool       `json:"notificationsEnabled"`
	SoundEnabled         bool       `json:"soundEnabled"`
	MetronomeEnabled     bool       `json:"metronomeEnabled"`
	Theme                string     `json:"theme"`
	UserName             *string    `json:"userName"`
	UserEmail            *string    `json:"userEmail"`
	OnboardingCompleted  bool       `json:"onboardingCompleted"`
	SyncEnabled          bool       `json:"syncEnabled"`
	LastSyncAt           *time.Time `json:"lastSyncAt"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

// DefaultSettings returns the settings of a fresh install.
func DefaultSettings(now time.Time) UserSettings {
	return UserSettings{
		FocusDuration:        25 * 60,
		BreakDuration:        5 * 60,
		NotificationsEnabled: true,
		SoundEnabled:         true,
		Theme:                "system",
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// SettingsPatch is a partial settings update. Nil fields are left alone.
// ClearLastSyncAt resets the watermark; it wins over LastSyncAt.
type SettingsPatch struct {
	FocusDuration        *int
	BreakDuration        *int
	NotificationsEnabled *bool
	SoundEnabled         *bool
	MetronomeEnabled     *bool
	Theme                *string
	UserName             *string
	UserEmail            *string
	OnboardingCompleted  *bool
	SyncEnabled          *bool
	LastSyncAt           *time.Time
	ClearLastSyncAt      bool
}

// Apply writes the patch onto s.
func (p SettingsPatch) Apply(s *UserSettings) {
	if p.FocusDuration != nil {
		s.FocusDuration = *p.FocusDuration
	}
	if p.BreakDuration != nil {
		s.BreakDuration = *p.BreakDuration
	}
	if p.NotificationsEnabled != nil {
		s.NotificationsEnabled = *p.NotificationsEnabled
	}
	if p.SoundEnabled != nil {
		s.SoundEnabled = *p.SoundEnabled
	}
	if p.MetronomeEnabled != nil {
		s.MetronomeEnabled = *p.MetronomeEnabled
	}
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.UserName != nil {
		s.UserName = p.UserName
	}
	if p.UserEmail != nil {
		s.UserEmail = p.UserEmail
	}
	if p.OnboardingCompleted != nil {
		s.OnboardingCompleted = *p.OnboardingCompleted
	}
	if p.SyncEnabled != nil {
		s.SyncEnabled = *p.SyncEnabled
	}
	if p.LastSyncAt != nil {
		t := *p.LastSyncAt
		s.LastSyncAt = &t
	}
	if p.ClearLastSyncAt {
		s.LastSyncAt = nil
	}
}
