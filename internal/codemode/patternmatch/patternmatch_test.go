package patternmatch

import "testing"

func TestServer_EmptyPatternMatchesEverything(t *testing.T) {
	if !Server("", "anything") {
		t.Fatal("expected empty pattern to match")
	}
}

func TestServer_RegexMatch(t *testing.T) {
	if !Server("^billing-.*", "billing-core") {
		t.Fatal("expected regex pattern to match")
	}
	if Server("^billing-.*", "weather-api") {
		t.Fatal("expected regex pattern not to match")
	}
}

func TestServer_CaseInsensitive(t *testing.T) {
	if !Server("BILLING-core", "billing-core") {
		t.Fatal("expected case-insensitive match")
	}
}

func TestServer_LiteralFallbackOnInvalidRegex(t *testing.T) {
	if !Server("billing-core(", "billing-core(") {
		t.Fatal("expected literal fallback to match identical string")
	}
	if Server("billing-core(", "weather-api") {
		t.Fatal("expected literal fallback not to match a different string")
	}
}

func TestQuery_EmptyPatternMatchesEverything(t *testing.T) {
	re := Query("")
	if !re.MatchString("anything at all") {
		t.Fatal("expected empty query to match everything")
	}
}

func TestQuery_ValidRegexUsedDirectly(t *testing.T) {
	re := Query("forecast$")
	if !re.MatchString("get_forecast") {
		t.Fatal("expected regex query to match")
	}
	if re.MatchString("forecast_then_more") {
		t.Fatal("expected anchored regex not to match")
	}
}

func TestQuery_InvalidRegexFallsBackToLiteral(t *testing.T) {
	re := Query("get_forecast(")
	if !re.MatchString("get_forecast(") {
		t.Fatal("expected literal fallback to match the escaped literal text")
	}
}

func TestQuery_NeverPanicsOnPathologicalInput(t *testing.T) {
	re := Query("[[[")
	if re.MatchString("anything") {
		t.Fatal("expected no spurious match")
	}
}
