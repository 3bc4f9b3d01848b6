package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/adityakmr7/focus25-sub001/internal/model"
	"github.com/adityakmr7/focus25-sub001/internal/timecalc"
)

var (
	settingsFocus         time.Duration
	settingsBreak         time.Duration
	settingsTheme         string
	settingsName          string
	settingsEmail         string
	settingsNotifications bool
	settingsSound         bool
	settingsMetronome     bool
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show user settings",
	Args:  cobra.NoArgs,
	RunE:  runSettings,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change user settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsSet,
}

func init() {
	f := settingsSetCmd.Flags()
	f.DurationVar(&settingsFocus, "focus", 0, "Focus session length (e.g. 25m)")
	f.DurationVar(&settingsBreak, "break", 0, "Break length (e.g. 5m)")
	f.StringVar(&settingsTheme, "theme", "", "Theme: system, light, dark")
	f.StringVar(&settingsName, "name", "", "Display name")
	f.StringVar(&settingsEmail, "email", "", "Email address")
	f.BoolVar(&settingsNotifications, "notifications", true, "Enable notifications")
	f.BoolVar(&settingsSound, "sound", true, "Enable sounds")
	f.BoolVar(&settingsMetronome, "metronome", false, "Enable the metronome")
	settingsCmd.AddCommand(settingsSetCmd)
}

func runSettings(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a := openApp(ctx)
	defer a.Close()

	s, err := a.store.Settings(ctx)
	exitOnErr(err)
	printSettings(s)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	patch, err := settingsPatch(cmd)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		exit(1)
	}

	ctx := context.Background()
	a := openApp(ctx)
	defer a.Close()

	s, err := a.store.UpdateSettings(ctx, patch)
	exitOnErr(err)
	printSettings(s)
	return nil
}

// settingsPatch builds a patch from the flags given on the command line.
func settingsPatch(cmd *cobra.Command) (model.SettingsPatch, error) {
	var p model.SettingsPatch
	flags := cmd.Flags()
	if flags.NFlag() == 0 {
		return p, fmt.Errorf("nothing to change; see --help")
	}
	if flags.Changed("focus") {
		secs, err := wholeSeconds("focus", settingsFocus)
		if err != nil {
			return p, err
		}
		p.FocusDuration = &secs
	}
	if flags.Changed("break") {
		secs, err := wholeSeconds("break", settingsBreak)
		if err != nil {
			return p, err
		}
		p.BreakDuration = &secs
	}
	if flags.Changed("theme") {
		switch settingsTheme {
		case "system", "light", "dark":
		default:
			return p, fmt.Errorf("invalid --theme %q: want system, light or dark", settingsTheme)
		}
		p.Theme = &settingsTheme
	}
	if flags.Changed("name") {
		p.UserName = &settingsName
	}
	if flags.Changed("email") {
		p.UserEmail = &settingsEmail
	}
	if flags.Changed("notifications") {
		p.NotificationsEnabled = &settingsNotifications
	}
	if flags.Changed("sound") {
		p.SoundEnabled = &settingsSound
	}
	if flags.Changed("metronome") {
		p.MetronomeEnabled = &settingsMetronome
	}
	return p, nil
}

func wholeSeconds(name string, d time.Duration) (int, error) {
	if d < time.Second {
		return 0, fmt.Errorf("--%s must be at least 1s, got %s", name, d)
	}
	return int(d / time.Second), nil
}

func printSettings(s model.UserSettings) {
	fmt.Printf("Focus:         %s\n", timecalc.FormatDuration(int64(s.FocusDuration)))
	fmt.Printf("Break:         %s\n", timecalc.FormatDuration(int64(s.BreakDuration)))
	fmt.Printf("Theme:         %s\n", s.Theme)
	fmt.Printf("Notifications: %t\n", s.NotificationsEnabled)
	fmt.Printf("Sound:         %t\n", s.SoundEnabled)
	fmt.Printf("Metronome:     %t\n", s.MetronomeEnabled)
	if s.UserName != nil {
		fmt.Printf("Name:          %s\n", *s.UserName)
	}
	if s.UserEmail != nil {
		fmt.Printf("Email:         %s\n", *s.UserEmail)
	}
	fmt.Printf("Sync:          %t\n", s.SyncEnabled)
}
