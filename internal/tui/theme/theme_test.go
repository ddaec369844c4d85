package theme

import (
	"testing"

	"github.com/Dicklesworthstone/sfh/internal/account"
)

func withDetector(t *testing.T, detector func() bool) {
	original := detectDarkBackground
	detectDarkBackground = detector
	// Reset the cached auto theme so it re-detects with the new detector
	resetAutoTheme()
	t.Cleanup(func() {
		detectDarkBackground = original
		resetAutoTheme()
	})
}

func TestCurrentAutoFollowsBackground(t *testing.T) {
	t.Setenv("SFH_NO_COLOR", "0")
	t.Setenv("SFH_PALETTE", "")

	withDetector(t, func() bool { return false })
	if got := Current(); got.Base != CatppuccinLatte.Base {
		t.Fatalf("expected Latte for light background, got base %s", got.Base)
	}

	withDetector(t, func() bool { return true })
	if got := Current(); got.Base != CatppuccinMocha.Base {
		t.Fatalf("expected Mocha for dark background, got base %s", got.Base)
	}
}

func TestFromName(t *testing.T) {
	t.Setenv("SFH_NO_COLOR", "0")
	withDetector(t, func() bool { return true })

	tests := []struct {
		name string
		want Theme
	}{
		{"mocha", CatppuccinMocha},
		{"Macchiato", CatppuccinMacchiato},
		{"latte", CatppuccinLatte},
		{"light", CatppuccinLatte},
		{"nord", Nord},
		{"auto", CatppuccinMocha},
		{"unknown-palette", CatppuccinMocha},
		{"plain", Plain},
		{"no-color", Plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromName(tt.name); got != tt.want {
				t.Errorf("FromName(%q) base = %s, want %s", tt.name, got.Base, tt.want.Base)
			}
		})
	}
}

func TestThemeColors(t *testing.T) {
	for name, th := range map[string]Theme{
		"mocha":     CatppuccinMocha,
		"macchiato": CatppuccinMacchiato,
		"latte":     CatppuccinLatte,
		"nord":      Nord,
	} {
		t.Run(name, func(t *testing.T) {
			for _, c := range []string{
				string(th.Base), string(th.Text), string(th.Primary), string(th.Error),
				string(th.LoggingIn), string(th.Active), string(th.Busy), string(th.Fatal),
			} {
				if c == "" {
					t.Errorf("%s has an empty color", name)
				}
			}
		})
	}
}

func TestStateColor(t *testing.T) {
	th := CatppuccinMocha
	tests := []struct {
		kind account.Kind
		want string
	}{
		{account.KindLoggingIn, string(th.LoggingIn)},
		{account.KindLoggingInAgain, string(th.LoggingIn)},
		{account.KindIdle, string(th.Active)},
		{account.KindBusy, string(th.Busy)},
		{account.KindFatalError, string(th.Fatal)},
		{account.Kind("bogus"), string(th.Fatal)},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := th.StateColor(tt.kind); string(got) != tt.want {
				t.Errorf("StateColor(%s) = %s, want %s", tt.kind, got, tt.want)
			}
		})
	}
}

func TestNoColorEnabled(t *testing.T) {
	t.Run("NO_COLOR set", func(t *testing.T) {
		t.Setenv("SFH_NO_COLOR", "")
		t.Setenv("NO_COLOR", "1")
		if !NoColorEnabled() {
			t.Error("NoColorEnabled should return true when NO_COLOR is set")
		}
	})

	t.Run("NO_COLOR empty string", func(t *testing.T) {
		t.Setenv("SFH_NO_COLOR", "")
		t.Setenv("NO_COLOR", "")
		if !NoColorEnabled() {
			t.Error("NO_COLOR=\"\" still counts as set")
		}
	})

	t.Run("SFH_NO_COLOR=0 overrides NO_COLOR", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")
		t.Setenv("SFH_NO_COLOR", "0")
		if NoColorEnabled() {
			t.Error("SFH_NO_COLOR=0 should force colors on")
		}
	})

	t.Run("SFH_NO_COLOR=true", func(t *testing.T) {
		t.Setenv("SFH_NO_COLOR", "true")
		if !NoColorEnabled() {
			t.Error("SFH_NO_COLOR=true should disable colors")
		}
	})
}

func TestCurrentReturnsPlainWhenNoColorEnabled(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	t.Setenv("SFH_NO_COLOR", "")
	t.Setenv("SFH_PALETTE", "mocha")
	withDetector(t, func() bool { return true })

	if got := Current(); got != Plain {
		t.Errorf("Current() should return Plain when NO_COLOR is set, got base %s", got.Base)
	}
}

func TestAutoThemeFallsBackToDarkOnPanic(t *testing.T) {
	t.Setenv("SFH_NO_COLOR", "0")
	t.Setenv("SFH_PALETTE", "")
	withDetector(t, func() bool {
		panic("simulated terminal detection failure")
	})

	if got := Current(); got.Base != CatppuccinMocha.Base {
		t.Fatalf("expected Mocha fallback on panic, got base %s", got.Base)
	}
}

func TestNewStyles(t *testing.T) {
	s := NewStyles(CatppuccinMocha)
	if s.Theme != CatppuccinMocha {
		t.Error("Styles should carry their theme")
	}
	if s.Header.Render("sfh") == "" {
		t.Error("Header should render")
	}
	if got := s.State(account.KindFatalError).Render("Error!"); got == "" {
		t.Error("State style should render")
	}
}

func TestNewStylesPlainTheme(t *testing.T) {
	s := NewStyles(Plain)

	if !s.RowSelected.GetReverse() {
		t.Error("Plain RowSelected should use reverse video")
	}
	if !s.Error.GetUnderline() {
		t.Error("Plain Error should be underlined")
	}
	if !s.State(account.KindFatalError).GetUnderline() {
		t.Error("Plain fatal state should be underlined")
	}
}
