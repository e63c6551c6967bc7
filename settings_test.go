package weasyreport

import (
	"context"
	"errors"
	"slices"
	"testing"
)

// ---------------------------------------------------------------------------
// TestLoadSettings - Reading the four parameters
// ---------------------------------------------------------------------------

func TestLoadSettings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		params map[string]string
		want   Settings
	}{
		{
			name: "defaults when unset",
			want: Settings{},
		},
		{
			name: "all set",
			params: map[string]string{
				ParamEnabled:        "True",
				ParamAllowedModules: "sale, stock",
				ParamBlockedModules: "account",
				ParamBaseURL:        " https://erp.example.com ",
			},
			want: Settings{
				Enabled:        true,
				AllowedModules: []string{"sale", "stock"},
				BlockedModules: []string{"account"},
				BaseURL:        "https://erp.example.com",
			},
		},
		{
			name:   "unrecognized boolean is false",
			params: map[string]string{ParamEnabled: "maybe"},
			want:   Settings{},
		},
		{
			name:   "empty list parameter",
			params: map[string]string{ParamAllowedModules: ",, ,"},
			want:   Settings{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := LoadSettings(context.Background(), newStore(tt.params))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Enabled != tt.want.Enabled ||
				!slices.Equal(got.AllowedModules, tt.want.AllowedModules) ||
				!slices.Equal(got.BlockedModules, tt.want.BlockedModules) ||
				got.BaseURL != tt.want.BaseURL {
				t.Errorf("LoadSettings() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLoadSettings_StoreError(t *testing.T) {
	t.Parallel()

	_, err := LoadSettings(context.Background(), failingStore{})
	if !errors.Is(err, ErrSettingsLoad) {
		t.Errorf("error = %v, want ErrSettingsLoad", err)
	}
}

// ---------------------------------------------------------------------------
// TestSaveSettings - Writing and reading back
// ---------------------------------------------------------------------------

func TestSaveSettings_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newStore(nil)
	in := &Settings{
		Enabled:        true,
		BlockedModules: []string{"account", " stock", "account"},
		BaseURL:        "https://erp.example.com/",
	}
	if err := SaveSettings(ctx, store, in); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}

	for key, want := range map[string]string{
		ParamEnabled:        "true",
		ParamBlockedModules: "account,stock",
		ParamAllowedModules: "",
	} {
		if got, _, _ := store.GetParam(ctx, key); got != want {
			t.Errorf("stored %s = %q, want %q", key, got, want)
		}
	}

	out, err := LoadSettings(ctx, store)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Enabled || !slices.Equal(out.BlockedModules, []string{"account", "stock"}) || out.BaseURL != in.BaseURL {
		t.Errorf("LoadSettings() = %+v", out)
	}
}

func TestSaveSettings_StoreError(t *testing.T) {
	t.Parallel()

	err := SaveSettings(context.Background(), failingStore{}, &Settings{})
	if !errors.Is(err, ErrSettingsSave) {
		t.Errorf("error = %v, want ErrSettingsSave", err)
	}
}

// ---------------------------------------------------------------------------
// TestSettings - Base URL, validation and list helpers
// ---------------------------------------------------------------------------

func TestSettings_ResolveBaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		baseURL string
		want    string
	}{
		{"", DefaultBaseURL},
		{"   ", DefaultBaseURL},
		{"https://erp.example.com", "https://erp.example.com"},
	}

	for _, tt := range tests {
		s := &Settings{BaseURL: tt.baseURL}
		if got := s.ResolveBaseURL(); got != tt.want {
			t.Errorf("ResolveBaseURL(%q) = %q, want %q", tt.baseURL, got, tt.want)
		}
	}
}

func TestSettings_Validate(t *testing.T) {
	t.Parallel()

	installed := []string{"sale", "account", "stock"}

	tests := []struct {
		name      string
		settings  Settings
		installed []string
		wantErr   bool
	}{
		{"no lists", Settings{}, installed, false},
		{"known modules", Settings{AllowedModules: []string{"sale"}, BlockedModules: []string{"account"}}, installed, false},
		{"unknown allowed", Settings{AllowedModules: []string{"hr"}}, installed, true},
		{"unknown blocked", Settings{BlockedModules: []string{"mrp"}}, installed, true},
		{"empty installed disables check", Settings{AllowedModules: []string{"hr"}}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.settings.Validate(tt.installed)
			if tt.wantErr != errors.Is(err, ErrModuleNotInstalled) {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseModuleList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{",,", nil},
		{"sale", []string{"sale"}},
		{" sale , stock ,", []string{"sale", "stock"}},
		{"sale,stock,sale", []string{"sale", "stock"}},
	}

	for _, tt := range tests {
		if got := ParseModuleList(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("ParseModuleList(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if got := JoinModuleList([]string{" sale", "", "stock", "sale"}); got != "sale,stock" {
		t.Errorf("JoinModuleList() = %q, want %q", got, "sale,stock")
	}
}

func TestParseBool(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"1", "true", "True", " TRUE ", "t", "yes", "on"} {
		if !ParseBool(s) {
			t.Errorf("ParseBool(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"", "0", "false", "False", "no", "off", "enabled"} {
		if ParseBool(s) {
			t.Errorf("ParseBool(%q) = true, want false", s)
		}
	}
}
