package commands

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"pomotaro/internal/model"
	"pomotaro/internal/service"
)

// SettingsCmd groups the settings subcommands.
type SettingsCmd struct {
	Show  SettingsShowCmd  `cmd:"" default:"1" help:"Print current settings"`
	Set   SettingsSetCmd   `cmd:"" help:"Change one setting"`
	Reset SettingsResetCmd `cmd:"" help:"Restore default settings"`
}

type SettingsShowCmd struct{}

func (c *SettingsShowCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	a, err := root.open(ctx, g)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	s, err := a.Settings.Get(ctx)
	if err != nil {
		return err
	}
	return printSettings(g, s)
}

func printSettings(g *Global, s model.Settings) error {
	enc := yaml.NewEncoder(g.out())
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return enc.Close()
}

type SettingsSetCmd struct {
	Key   string `arg:"" help:"Setting name as shown by 'settings show'"`
	Value string `arg:"" help:"New value"`
}

func (c *SettingsSetCmd) Run(g *Global, root *CLI) error {
	set, ok := settingSetters[c.Key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q (known: %s)", service.ErrInvalidInput, c.Key, strings.Join(settingKeys(), ", "))
	}

	ctx := context.Background()
	a, err := root.open(ctx, g)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	var parseErr error
	s, err := a.Settings.Update(ctx, func(s *model.Settings) { parseErr = set(s, c.Value) })
	if parseErr != nil {
		return fmt.Errorf("%w: %s: %v", service.ErrInvalidInput, c.Key, parseErr)
	}
	if err != nil {
		return err
	}
	return printSettings(g, s)
}

type SettingsResetCmd struct{}

func (c *SettingsResetCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	a, err := root.open(ctx, g)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	s, err := a.Settings.Reset(ctx)
	if err != nil {
		return err
	}
	return printSettings(g, s)
}

var settingSetters = map[string]func(*model.Settings, string) error{
	"pomodoro":           intSetter(func(s *model.Settings) *int { return &s.PomodoroMinutes }),
	"shortBreak":         intSetter(func(s *model.Settings) *int { return &s.ShortBreakMinutes }),
	"longBreak":          intSetter(func(s *model.Settings) *int { return &s.LongBreakMinutes }),
	"longBreakInterval":  intSetter(func(s *model.Settings) *int { return &s.LongBreakInterval }),
	"dailyGoalMinutes":   intSetter(func(s *model.Settings) *int { return &s.DailyGoalMinutes }),
	"autoStartBreaks":    boolSetter(func(s *model.Settings) *bool { return &s.AutoStartBreaks }),
	"autoStartPomodoros": boolSetter(func(s *model.Settings) *bool { return &s.AutoStartPomodoros }),
	"alwaysOnTop":        boolSetter(func(s *model.Settings) *bool { return &s.AlwaysOnTop }),
	"compactMode":        boolSetter(func(s *model.Settings) *bool { return &s.CompactMode }),
	"showProgress":       boolSetter(func(s *model.Settings) *bool { return &s.ShowProgress }),
	"presenceEnabled":    boolSetter(func(s *model.Settings) *bool { return &s.PresenceEnabled }),
	"notifications":      boolSetter(func(s *model.Settings) *bool { return &s.Notifications }),
	"sound":              boolSetter(func(s *model.Settings) *bool { return &s.Sound }),
}

func settingKeys() []string {
	keys := make([]string, 0, len(settingSetters))
	for k := range settingSetters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func intSetter(field func(*model.Settings) *int) func(*model.Settings, string) error {
	return func(s *model.Settings, raw string) error {
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("expected a number, got %q", raw)
		}
		*field(s) = v
		return nil
	}
}

func boolSetter(field func(*model.Settings) *bool) func(*model.Settings, string) error {
	return func(s *model.Settings, raw string) error {
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "on", "yes":
			*field(s) = true
			return nil
		case "off", "no":
			*field(s) = false
			return nil
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("expected on/off, got %q", raw)
		}
		*field(s) = v
		return nil
	}
}
