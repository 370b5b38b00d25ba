package patterns

import "testing"

func TestDefault(t *testing.T) {
	lib := Default()
	if lib.Version() != DefaultVersion {
		t.Errorf("Version() = %q, want %q", lib.Version(), DefaultVersion)
	}
	if len(lib.Rules()) == 0 {
		t.Fatal("Default() returned an empty library")
	}
}

func TestDefault_CoversCoreCategories(t *testing.T) {
	covered := make(map[Category]bool)
	for _, r := range Default().Rules() {
		covered[r.Category] = true
	}
	for _, c := range []Category{CategoryPhone, CategoryEmail, CategorySocialHandle, CategoryURL} {
		if !covered[c] {
			t.Errorf("no rule covers category %s", c)
		}
	}
}

func TestDefault_RuleNamesUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, r := range Default().Rules() {
		if seen[r.Name] {
			t.Errorf("duplicate rule name %q", r.Name)
		}
		seen[r.Name] = true
	}
}

// Per-rule checks against normalized-form inputs. Each rule is testable
// in isolation so a change to one category cannot silently break another.
func TestRules(t *testing.T) {
	tests := []struct {
		rule  string
		input string
		match bool
	}{
		{"email", "john@gmail.com", true},
		{"email", "john.doe1984@mail.co.ke", true},
		{"email", "not an email", false},
		{"email", "price@10", false},

		{"messenger_link", "wa.me/254712345678", true},
		{"messenger_link", "t.me/cooluser", true},
		{"messenger_link", "instagram.com/cooluser", true},
		{"messenger_link", "example.com/page", false},

		{"cued_handle", "whatsapp me @john_doe", true},
		{"cued_handle", "insta @cool.guy", true},
		{"cued_handle", "just @mentioning someone", false},

		{"url", "http://evil.com", true},
		{"url", "www.phishing.net", true},
		{"url", "example.com/free", true},
		{"url", "v2.0 release", false},
		{"url", "3.14 approximately", false},

		{"phone_intl", "+254712345678", true},
		{"phone_intl", "+12", false},
		{"phone_local", "0712345678", true},
		{"phone_local", "0712", false},
		{"phone_digit_run", "712345678", true},
		{"phone_digit_run", "500", false},
		{"phone_digit_run", "4111111111111111", false}, // card-length run
	}

	rules := make(map[string]Pattern)
	for _, r := range Default().Rules() {
		rules[r.Name] = r
	}

	for _, tt := range tests {
		t.Run(tt.rule+"/"+tt.input, func(t *testing.T) {
			r, ok := rules[tt.rule]
			if !ok {
				t.Fatalf("no rule named %q", tt.rule)
			}
			if got := r.Regexp.MatchString(tt.input); got != tt.match {
				t.Errorf("%s.MatchString(%q) = %v, want %v", tt.rule, tt.input, got, tt.match)
			}
		})
	}
}
