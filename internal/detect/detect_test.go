package detect

import (
	"reflect"
	"testing"

	"github.com/sokohub/moderation/internal/normalize"
	"github.com/sokohub/moderation/internal/patterns"
)

func newTestDetector() *Detector {
	return New(patterns.Default(), "sokohub.co.ke")
}

// detectRaw runs raw input through the normalizer first, the way the
// orchestrator does.
func detectRaw(d *Detector, text string) []Match {
	return d.Detect(normalize.Normalize(text))
}

func TestDetect_Phone(t *testing.T) {
	d := newTestDetector()

	tests := []struct {
		name  string
		input string
	}{
		{"bare local", "0712345678"},
		{"intl", "+254712345678"},
		{"spaced", "0712 345 678"},
		{"dashed in sentence", "call me on 0712-345-678"},
		{"dotted", "0712.345.678"},
		{"spelled digits", "seven one two three four five six seven eight"},
		{"spaced out digits", "0 7 1 2 3 4 5 6 7 8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := detectRaw(d, tt.input)
			if len(matches) == 0 {
				t.Fatalf("Detect(%q) found nothing, want PHONE", tt.input)
			}
			if matches[0].Category != patterns.CategoryPhone {
				t.Errorf("Detect(%q)[0].Category = %s, want PHONE", tt.input, matches[0].Category)
			}
		})
	}
}

func TestDetect_Email(t *testing.T) {
	d := newTestDetector()

	tests := []struct {
		name  string
		input string
	}{
		{"plain", "write to john@gmail.com"},
		{"spelled at dot", "john at gmail dot com"},
		{"leet separators", "john d0t doe at gmail d0t c0m"},
		{"bracketed", "john(at)gmail(dot)com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := detectRaw(d, tt.input)
			if len(matches) == 0 {
				t.Fatalf("Detect(%q) found nothing, want EMAIL", tt.input)
			}
			if matches[0].Category != patterns.CategoryEmail {
				t.Errorf("Detect(%q)[0].Category = %s, want EMAIL", tt.input, matches[0].Category)
			}
		})
	}
}

func TestDetect_SocialAndURL(t *testing.T) {
	d := newTestDetector()

	tests := []struct {
		name  string
		input string
		want  patterns.Category
	}{
		{"whatsapp link", "message me wa.me/254712345678", patterns.CategorySocialHandle},
		{"telegram link", "t.me/cooluser", patterns.CategorySocialHandle},
		{"cued handle", "find me on insta @cool.guy", patterns.CategorySocialHandle},
		{"external url", "visit www.othersite.com", patterns.CategoryURL},
		{"external url with path", "see example.com/offer", patterns.CategoryURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := detectRaw(d, tt.input)
			if len(matches) == 0 {
				t.Fatalf("Detect(%q) found nothing, want %s", tt.input, tt.want)
			}
			if matches[0].Category != tt.want {
				t.Errorf("Detect(%q)[0].Category = %s, want %s", tt.input, matches[0].Category, tt.want)
			}
		})
	}
}

func TestDetect_PlatformLinksExempt(t *testing.T) {
	d := newTestDetector()

	clean := []string{
		"my listing is at sokohub.co.ke/listings/428",
		"see https://sokohub.co.ke/profile/jane",
		"https://www.sokohub.co.ke/help",
	}
	for _, msg := range clean {
		if matches := detectRaw(d, msg); len(matches) != 0 {
			t.Errorf("Detect(%q) = %v, want no matches for platform link", msg, matches)
		}
	}

	// Other domains still flag.
	if matches := detectRaw(d, "see https://rivalsite.com/offer"); len(matches) == 0 {
		t.Error("external URL not detected")
	}
}

func TestDetect_CleanText(t *testing.T) {
	d := newTestDetector()

	clean := []string{
		"",
		"hello, how are you?",
		"I paid 500 shillings for 2 items",
		"the job takes 3 days and costs 1200",
		"my cat chewed the data cable",
		"Kenya at its best",
		"I will arrive at 10:30",
		"version 2.0 fixed it",
	}

	for _, msg := range clean {
		if matches := detectRaw(d, msg); len(matches) != 0 {
			t.Errorf("Detect(%q) = %v, want no matches", msg, matches)
		}
	}
}

func TestDetect_OverlapPriority(t *testing.T) {
	d := newTestDetector()

	// A WhatsApp deep link contains a phone-shaped digit run and a
	// URL-shaped path; it must be reported once, as SOCIAL_HANDLE.
	matches := detectRaw(d, "wa.me/254712345678")
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1: %v", len(matches), matches)
	}
	if matches[0].Category != patterns.CategorySocialHandle {
		t.Errorf("Category = %s, want SOCIAL_HANDLE", matches[0].Category)
	}

	// An email with a digit-heavy local part is EMAIL, not PHONE.
	matches = detectRaw(d, "0712345678@gmail.com")
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1: %v", len(matches), matches)
	}
	if matches[0].Category != patterns.CategoryEmail {
		t.Errorf("Category = %s, want EMAIL", matches[0].Category)
	}
}

func TestDetect_OrderAndSpans(t *testing.T) {
	d := newTestDetector()

	text := normalize.Normalize("email john@gmail.com or call 0712345678")
	matches := d.Detect(text)
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2: %v", len(matches), matches)
	}
	if matches[0].Category != patterns.CategoryEmail || matches[1].Category != patterns.CategoryPhone {
		t.Errorf("categories = [%s %s], want [EMAIL PHONE]", matches[0].Category, matches[1].Category)
	}
	for _, m := range matches {
		if m.Start >= m.End || m.End > len(text) {
			t.Errorf("bad span [%d,%d) for %q", m.Start, m.End, text)
		}
		if text[m.Start:m.End] != m.Text {
			t.Errorf("span text %q != match text %q", text[m.Start:m.End], m.Text)
		}
	}
}

// TestDetect_Idempotent verifies detection is pure: repeated runs on the
// same input yield identical results.
func TestDetect_Idempotent(t *testing.T) {
	d := newTestDetector()
	text := normalize.Normalize("call 0712345678 or john@gmail.com")

	first := d.Detect(text)
	for i := 0; i < 10; i++ {
		if got := d.Detect(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("Detect unstable: %v then %v", first, got)
		}
	}
}

func TestCategories(t *testing.T) {
	d := newTestDetector()

	matches := detectRaw(d, "john@gmail.com and 0712345678 and jane@gmail.com")
	cats := Categories(matches)
	want := []patterns.Category{patterns.CategoryEmail, patterns.CategoryPhone}
	if !reflect.DeepEqual(cats, want) {
		t.Errorf("Categories = %v, want %v", cats, want)
	}
}

func BenchmarkDetect(b *testing.B) {
	d := newTestDetector()
	text := normalize.Normalize("hey, the gate repair will cost 1500 shillings and take 2 days, is that okay with you?")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.Detect(text)
	}
}
