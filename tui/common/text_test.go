package common

import (
	"strings"
	"testing"
	"time"
)

func TestStripHTML_DecodesEntitiesAndStripsTags(t *testing.T) {
	in := `<p>Hello &lt;world&gt; &amp; crew</p><script>x</script><br/>line2`
	got := StripHTML(in)
	if strings.Contains(got, "<p>") || strings.Contains(got, "<script>") {
		t.Fatalf("expected HTML tags stripped: %q", got)
	}
	if !strings.Contains(got, "<world>") || !strings.Contains(got, "&") {
		t.Fatalf("expected html entities decoded: %q", got)
	}
	if !strings.Contains(got, "\nline2") {
		t.Fatalf("expected line break retained: %q", got)
	}
}

func TestSanitizeForTerminal_RemovesEscapesAndControls(t *testing.T) {
	in := "ok\x1b[31mred\x1b[0m\x1b]8;;http://x\x07bad\x01\x02\nnext"
	got := SanitizeForTerminal(in)
	if strings.Contains(got, "\x1b") {
		t.Fatalf("expected ansi removed: %q", got)
	}
	if strings.ContainsRune(got, '\x01') || strings.ContainsRune(got, '\x02') {
		t.Fatalf("expected controls removed: %q", got)
	}
	if !strings.Contains(got, "ok") || !strings.Contains(got, "red") || !strings.Contains(got, "\nnext") {
		t.Fatalf("expected plain text preserved: %q", got)
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	tests := map[string]struct {
		at   time.Time
		want string
	}{
		"zero":      {time.Time{}, ""},
		"seconds":   {now.Add(-10 * time.Second), "now"},
		"minutes":   {now.Add(-5 * time.Minute), "5m"},
		"hours":     {now.Add(-3 * time.Hour), "3h"},
		"days":      {now.Add(-2 * 24 * time.Hour), "2d"},
		"same year": {time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), "Jan 02"},
		"last year": {time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), "Jan 02 2023"},
	}
	for name, tt := range tests {
		if got := RelativeTime(tt.at, now); got != tt.want {
			t.Fatalf("%s: got %q, want %q", name, got, tt.want)
		}
	}
}
