package location

import "testing"

func mustParse(t *testing.T, href string, onNavigate func(string)) *URL {
	t.Helper()
	loc, err := Parse(href, onNavigate)
	if err != nil {
		t.Fatalf("Parse(%q): %v", href, err)
	}
	return loc
}

func TestGetToken(t *testing.T) {
	tests := []struct {
		name      string
		href      string
		wantToken string
		wantOK    bool
	}{
		{"token only", "https://app.example/#token=abc123", "abc123", true},
		{"token among params", "https://app.example/chat?x=1#foo=bar&token=t-9&baz=1", "t-9", true},
		{"encoded token", "https://app.example/#token=a%2Bb%3D", "a+b=", true},
		{"plus decodes to space", "https://app.example/#token=a+b", "a b", true},
		{"first value wins", "https://app.example/#token=one&token=two", "one", true},
		{"no fragment", "https://app.example/chat?token=query-not-fragment", "", false},
		{"fragment without token", "https://app.example/#section-2", "", false},
		{"empty token", "https://app.example/#token=", "", false},
		{"malformed fragment", "https://app.example/#token=abc;evil=1", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			token, ok := GetToken(mustParse(t, tc.href, nil))
			if ok != tc.wantOK {
				t.Fatalf("Expected ok=%v, got %v", tc.wantOK, ok)
			}
			if token != tc.wantToken {
				t.Errorf("Expected token %q, got %q", tc.wantToken, token)
			}
		})
	}
}

func TestGetToken_Idempotent(t *testing.T) {
	loc := mustParse(t, "https://app.example/#token=abc", nil)

	first, _ := GetToken(loc)
	second, _ := GetToken(loc)
	if first != second {
		t.Errorf("Expected repeated reads to match, got %q and %q", first, second)
	}
}

func TestRedirectTarget(t *testing.T) {
	tests := []struct {
		href     string
		expected string
	}{
		{"https://app.example/chat?lang=en#token=abc", "/chat?lang=en"},
		{"https://app.example/chat#token=abc", "/chat"},
		{"https://app.example", "/"},
	}

	for _, tc := range tests {
		t.Run(tc.href, func(t *testing.T) {
			got := RedirectTarget(mustParse(t, tc.href, nil))
			if got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestNavigate_KeepsPageLocation(t *testing.T) {
	var navigated []string
	loc := mustParse(t, "https://app.example/chat?room=7#token=old", func(target string) {
		navigated = append(navigated, target)
	})

	loc.Navigate("https://auth.example/login?next=1")

	if len(navigated) != 1 || navigated[0] != "https://auth.example/login?next=1" {
		t.Fatalf("Expected one navigation to the auth page, got %v", navigated)
	}

	// A second send before the browser leaves still identifies the widget page.
	if got := RedirectTarget(loc); got != "/chat?room=7" {
		t.Errorf("Expected redirect target '/chat?room=7', got %q", got)
	}
	if token, ok := GetToken(loc); !ok || token != "old" {
		t.Errorf("Expected token 'old' to remain, got %q (ok=%v)", token, ok)
	}
}

func TestNavigate_RelativeTarget(t *testing.T) {
	var navigated string
	loc := mustParse(t, "https://app.example/chat", func(target string) {
		navigated = target
	})

	loc.Navigate("/auth?step=1")

	if navigated != "https://app.example/auth?step=1" {
		t.Errorf("Expected relative target resolved against the page, got %q", navigated)
	}
	if loc.String() != "https://app.example/chat" {
		t.Errorf("Expected page location unchanged, got %q", loc.String())
	}
}
