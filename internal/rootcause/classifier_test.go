package rootcause

import (
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		text string
		want Category
	}{
		{"navigation timeout", "Navigation timeout of 30000 ms exceeded", CategoryTimeout},
		{"element wait timeout", "Waiting for element to be visible: timeout 30000ms exceeded", CategoryTimeout},
		{"generic timeout", "operation timed out after 5s", CategoryTimeout},
		{"element not found", "Unable to find element with selector #submit", CategoryElementNotFound},
		{"no such element", "no such element: div.cart", CategoryElementNotFound},
		{"assertion", "expected 42 to equal 41", CategoryAssertionFailed},
		{"network", "net::ERR_CONNECTION_REFUSED at https://api.example.com", CategoryNetworkError},
		{"authorization", "403 Forbidden: access denied for user", CategoryAuthorization},
		{"script", "Evaluation failed: ReferenceError: foo is not defined", CategoryScriptError},
		{"element state", "element is not clickable at point (10, 20)", CategoryElementState},
		{"frame context", "execution context was destroyed, frame detached", CategoryFrameContext},
		{"download", "download of export.csv did not finish", CategoryFileDownload},
		{"media", "failed to capture screenshot", CategoryMediaCapture},
		{"crash", "browser closed unexpectedly", CategoryBrowserCrash},
		{"data", "cannot read properties of undefined", CategoryDataValidation},
		{"unknown", "something completely different happened", CategoryUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.text)
			if got.Category != tc.want {
				t.Errorf("Classify(%q) = %s, want %s", tc.text, got.Category, tc.want)
			}
			if got.Explanation == "" {
				t.Error("explanation must never be empty")
			}
		})
	}
}

func TestClassifyPrecedence(t *testing.T) {
	t.Run("rule order wins over later matches", func(t *testing.T) {
		// Contains both "timeout" and "invalid"; Timeout rules come first.
		got := Classify("timeout while sending invalid payload")
		if got.Category != CategoryTimeout {
			t.Errorf("expected Timeout by rule order, got %s", got.Category)
		}
	})

	t.Run("wait timeout picks the element wait explanation", func(t *testing.T) {
		got := Classify("Waiting for element to be visible: timeout 30000ms exceeded")
		if !strings.HasPrefix(got.Explanation, "Element wait timeout") {
			t.Errorf("expected element wait sub-variant, got %q", got.Explanation)
		}
	})

	t.Run("navigation outranks element wait", func(t *testing.T) {
		got := Classify("navigation timeout while waiting for load state")
		if !strings.HasPrefix(got.Explanation, "Page navigation timeout") {
			t.Errorf("expected navigation sub-variant, got %q", got.Explanation)
		}
	})
}

func TestClassifyTotalAndDeterministic(t *testing.T) {
	inputs := []string{"", "x", "TIMEOUT", "Timed Out", strings.Repeat("noise ", 100)}
	for _, in := range inputs {
		first := Classify(in)
		second := Classify(in)
		if first != second {
			t.Errorf("Classify(%q) is not deterministic", in)
		}
		if first.Category == "" || first.Explanation == "" {
			t.Errorf("Classify(%q) produced an incomplete result", in)
		}
	}
}

func TestRulesCopy(t *testing.T) {
	got := Rules()
	if len(got) == 0 {
		t.Fatal("expected a non-empty rule list")
	}
	got[0].Category = CategoryUnknown
	if Rules()[0].Category == CategoryUnknown {
		t.Error("Rules must return a copy, not the internal slice")
	}
}
