// Package rootcause maps failure text to a root-cause category and a fixed
// explanation via an ordered list of keyword rules.
package rootcause

import "strings"

// Category is one label from the fixed root-cause enumeration.
type Category string

const (
	CategoryTimeout         Category = "Timeout"
	CategoryElementNotFound Category = "Element Not Found"
	CategoryAssertionFailed Category = "Assertion Failed"
	CategoryNetworkError    Category = "Network Error"
	CategoryAuthorization   Category = "Authorization"
	CategoryScriptError     Category = "Script Error"
	CategoryElementState    Category = "Element State"
	CategoryFrameContext    Category = "Frame Context"
	CategoryFileDownload    Category = "File Download"
	CategoryMediaCapture    Category = "Media Capture"
	CategoryBrowserCrash    Category = "Browser Crash"
	CategoryDataValidation  Category = "Data Validation"
	CategoryUnknown         Category = "Unknown"
)

// Result is the classifier outcome: exactly one category with its canned
// explanation.
type Result struct {
	Category    Category
	Explanation string
}

// Rule matches when any keyword in AnyOf occurs in the (lower-cased) text
// and, if AlsoAnyOf is non-empty, any of those occurs as well.
type Rule struct {
	Category    Category
	AnyOf       []string
	AlsoAnyOf   []string
	Explanation string
}

func (r Rule) matches(text string) bool {
	if !containsAny(text, r.AnyOf) {
		return false
	}
	if len(r.AlsoAnyOf) > 0 && !containsAny(text, r.AlsoAnyOf) {
		return false
	}
	return true
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// rules is evaluated in order; the first match wins and later rules are not
// consulted. The three Timeout rules come first so a timeout with a refined
// sub-keyword picks the more specific explanation.
var rules = []Rule{
	{
		Category:    CategoryTimeout,
		AnyOf:       []string{"timeout", "timed out"},
		AlsoAnyOf:   []string{"navigation"},
		Explanation: "Page navigation timeout: the page did not finish loading before the configured timeout elapsed.",
	},
	{
		Category:    CategoryTimeout,
		AnyOf:       []string{"timeout", "timed out"},
		AlsoAnyOf:   []string{"waiting for"},
		Explanation: "Element wait timeout: the target element did not reach the expected state before the wait expired.",
	},
	{
		Category:    CategoryTimeout,
		AnyOf:       []string{"timeout", "timed out"},
		Explanation: "Operation timeout: the operation exceeded its configured time limit.",
	},
	{
		Category:    CategoryElementNotFound,
		AnyOf:       []string{"not found", "unable to find", "does not exist", "no such element"},
		Explanation: "Element not found: the locator matched no element on the page. The selector may be stale or the page structure changed.",
	},
	{
		Category:    CategoryAssertionFailed,
		AnyOf:       []string{"expected", "assert", "to be", "to equal"},
		Explanation: "Assertion failed: the actual value did not match the expected value. The application behavior or the test expectation changed.",
	},
	{
		Category:    CategoryNetworkError,
		AnyOf:       []string{"network", "failed to fetch", "net::err", "connection"},
		Explanation: "Network error: a request could not be completed. Check service availability and connectivity from the test environment.",
	},
	{
		Category:    CategoryAuthorization,
		AnyOf:       []string{"unauthorized", "forbidden", "access denied", "authentication"},
		Explanation: "Authorization failure: the test user was denied access. Credentials or permissions may have expired or changed.",
	},
	{
		Category:    CategoryScriptError,
		AnyOf:       []string{"javascript", "script error", "evaluation failed"},
		Explanation: "Script error: in-page script evaluation failed. An application JavaScript error surfaced during the scenario.",
	},
	{
		Category:    CategoryElementState,
		AnyOf:       []string{"not visible", "not clickable", "disabled", "not interactable"},
		Explanation: "Element state: the element exists but was not in an interactable state when the action ran.",
	},
	{
		Category:    CategoryFrameContext,
		AnyOf:       []string{"frame", "context", "detached"},
		Explanation: "Frame/context failure: the execution context or frame went away mid-scenario, typically after a navigation or reload.",
	},
	{
		Category:    CategoryFileDownload,
		AnyOf:       []string{"download", "file"},
		Explanation: "File handling failure: a download or file operation did not complete as expected.",
	},
	{
		Category:    CategoryMediaCapture,
		AnyOf:       []string{"screenshot", "video"},
		Explanation: "Media capture failure: screenshot or video recording failed; the scenario itself may have been healthy.",
	},
	{
		Category:    CategoryBrowserCrash,
		AnyOf:       []string{"crash", "terminated", "browser closed"},
		Explanation: "Browser crash: the browser process ended unexpectedly during the scenario.",
	},
	{
		Category:    CategoryDataValidation,
		AnyOf:       []string{"null", "undefined", "invalid", "parse"},
		Explanation: "Data validation failure: unexpected null, undefined, or malformed data reached the scenario.",
	},
}

// unknownResult is the default outcome; classification is total and never
// fails.
var unknownResult = Result{
	Category:    CategoryUnknown,
	Explanation: "Unclassified failure: no known root-cause pattern matched. Manual review of the error text is required.",
}

// Classify lower-cases text and returns the first matching rule's category
// and explanation. Every input yields exactly one result.
func Classify(text string) Result {
	lowered := strings.ToLower(text)
	for _, rule := range rules {
		if rule.matches(lowered) {
			return Result{Category: rule.Category, Explanation: rule.Explanation}
		}
	}
	return unknownResult
}

// Rules exposes the ordered rule list so categories can be exercised
// independently in tests and documentation.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}
