package i18n

import "testing"

func TestCatalog_T(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name   string
		lang   string
		key    string
		params map[string]string
		want   string
	}{
		{
			name: "english with params",
			lang: "en",
			key:  "premium_checkout",
			params: map[string]string{
				"url": "https://pay.example.com/x",
			},
			want: "Complete your payment here: https://pay.example.com/x",
		},
		{
			name: "russian",
			lang: "ru",
			key:  "cancel_nothing",
			want: "Нет платной подписки для отмены.",
		},
		{
			name: "unknown language falls back to english",
			lang: "de",
			key:  "unknown_command",
			want: "Unknown command.",
		},
		{
			name: "unknown key falls back to the key",
			lang: "en",
			key:  "no_such_key",
			want: "no_such_key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.T(tt.lang, tt.key, tt.params); got != tt.want {
				t.Errorf("T(%s, %s) = %q, want %q", tt.lang, tt.key, got, tt.want)
			}
		})
	}
}

func TestCatalog_RussianCoversEnglishKeys(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	langs := c.Languages()
	if len(langs) < 2 {
		t.Fatalf("Languages() = %v, want at least en and ru", langs)
	}

	for _, key := range []string{"premium", "premium_plans", "subscription_status", "payment_failed"} {
		en := c.T("en", key, nil)
		ru := c.T("ru", key, nil)
		if en == key || ru == key {
			t.Errorf("key %q missing from a catalog", key)
		}
		if en == ru {
			t.Errorf("key %q has identical en and ru texts", key)
		}
	}
}
