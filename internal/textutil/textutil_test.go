package textutil

import "testing"

func TestDisplayName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"/usr/lib/vst3/TAL-Reverb-4.vst3", "TAL Reverb 4"},
		{"/Library/Audio/Plug-Ins/Components/valhalla_supermassive.component", "Valhalla Supermassive"},
		{"Dragonfly Hall.lv2", "Dragonfly Hall"},
		{"/plugins/EQ.vst3", "EQ"},
	}
	for _, tc := range cases {
		if got := DisplayName(tc.in); got != tc.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeToken(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"My Session", "my_session"},
		{"  ", "unknown"},
		{"v1.2-final", "v1.2-final"},
		{"../../etc/passwd", "etc_passwd"},
	}
	for _, tc := range cases {
		if got := SanitizeToken(tc.in); got != tc.want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
