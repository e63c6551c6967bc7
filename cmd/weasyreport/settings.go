package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	weasyreport "github.com/alnah/go-weasyreport"
	"github.com/alnah/go-weasyreport/internal/hints"
)

// settingsView is the printed form of the rendering settings.
type settingsView struct {
	Enabled        bool     `json:"enabled"`
	AllowedModules []string `json:"allowed_modules"`
	BlockedModules []string `json:"blocked_modules"`
	BaseURL        string   `json:"base_url"`
	EffectiveURL   string   `json:"effective_base_url"`
}

// runSettings prints or updates the rendering settings. Updates are
// validated against modules.installed before anything is written.
func runSettings(args []string, env *Environment) error {
	flags, err := parseSettingsFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	a, err := newApp(flags.common, env)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	settings, err := weasyreport.LoadSettings(ctx, a.store)
	if err != nil {
		return err
	}

	if flags.changed() {
		if flags.setEnabled {
			settings.Enabled = flags.enabled
		}
		if flags.setAllow {
			settings.AllowedModules = weasyreport.ParseModuleList(flags.allow)
		}
		if flags.setBlock {
			settings.BlockedModules = weasyreport.ParseModuleList(flags.block)
		}
		if flags.setBaseURL {
			settings.BaseURL = flags.baseURL
		}

		if err := settings.Validate(a.cfg.Modules.Installed); err != nil {
			if errors.Is(err, weasyreport.ErrModuleNotInstalled) {
				return fmt.Errorf("%w%s", err, hints.ForUnknownModule(a.cfg.Modules.Installed))
			}
			return err
		}
		if err := weasyreport.SaveSettings(ctx, a.store, settings); err != nil {
			return err
		}
		a.logger.Info("report settings saved",
			zap.Bool("enabled", settings.Enabled),
			zap.Strings("allowed_modules", settings.AllowedModules),
			zap.Strings("blocked_modules", settings.BlockedModules))
	}

	return printSettings(env.Stdout, settings, flags.json)
}

func printSettings(w io.Writer, s *weasyreport.Settings, asJSON bool) error {
	view := settingsView{
		Enabled:        s.Enabled,
		AllowedModules: nonNil(s.AllowedModules),
		BlockedModules: nonNil(s.BlockedModules),
		BaseURL:        s.BaseURL,
		EffectiveURL:   s.ResolveBaseURL(),
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}

	fmt.Fprintf(w, "%s = %t\n", weasyreport.ParamEnabled, view.Enabled)
	fmt.Fprintf(w, "%s = %s\n", weasyreport.ParamAllowedModules, weasyreport.JoinModuleList(view.AllowedModules))
	fmt.Fprintf(w, "%s = %s\n", weasyreport.ParamBlockedModules, weasyreport.JoinModuleList(view.BlockedModules))
	fmt.Fprintf(w, "%s = %s (effective: %s)\n", weasyreport.ParamBaseURL, view.BaseURL, view.EffectiveURL)
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
