package rules

import "testing"

func TestIsRequired(t *testing.T) {
	present := []any{"abc", true, false, 0, "0", map[string]any{}, []any{}}
	for _, value := range present {
		if !IsRequired(nil, value) {
			t.Fatalf("expected %#v to satisfy isRequired", value)
		}
	}
	var nilPtr *string
	for _, value := range []any{"", nil, nilPtr} {
		if IsRequired(nil, value) {
			t.Fatalf("expected %#v to fail isRequired", value)
		}
	}
}

func TestLengthRules(t *testing.T) {
	cases := []struct {
		name string
		fn   Func
		val  any
		arg  any
		want bool
	}{
		{"max empty string", MaxLength, "", 1, true},
		{"max nil", MaxLength, nil, 1, true},
		{"max inbound", MaxLength, "asd", 4, true},
		{"max exact", MaxLength, "asd", 3, true},
		{"max outbound", MaxLength, "asd", 2, false},
		{"max json float arg", MaxLength, "asd", float64(3), true},
		{"max string arg", MaxLength, "asd", "2", false},
		{"min exact", MinLength, "abcdef", 6, true},
		{"min above", MinLength, "abcdef", 4, true},
		{"min below", MinLength, "abcde", 6, false},
		{"min empty passes", MinLength, "", 6, true},
		{"min slice", MinLength, []any{1, 2}, 2, true},
		{"min unsupported type", MinLength, 42, 1, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.fn(nil, tc.val, tc.arg); got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEqualsRules(t *testing.T) {
	if !Equals(nil, "abc", "abc") {
		t.Fatalf("expected equal strings to match")
	}
	if Equals(nil, "1", 1) {
		t.Fatalf("expected no coercion between string and int")
	}
	if Equals(nil, "abc", "ac") {
		t.Fatalf("expected different strings to fail")
	}

	if !EqualsField(map[string]any{"email": "abc"}, "abc", "email") {
		t.Fatalf("expected equalsField to match")
	}
	if EqualsField(map[string]any{"name": 1}, "1", "name") {
		t.Fatalf("expected equalsField to compare without coercion")
	}
	if EqualsField(map[string]any{}, "abc", "ac") {
		t.Fatalf("expected missing field to fail")
	}

	values := map[string]any{"email": "abc", "email2": "abc"}
	if !EqualsFields(values, "abc", []any{"email", "email2"}) {
		t.Fatalf("expected equalsFields to match")
	}
	if EqualsFields(map[string]any{"email": 1, "email2": "1"}, "1", "name") {
		t.Fatalf("expected equalsFields with unknown field to fail")
	}
	if EqualsFields(map[string]any{"email": "1", "email2": 1}, "1", []any{"email", "email2"}) {
		t.Fatalf("expected equalsFields mismatch to fail")
	}
}

func TestIsEmail(t *testing.T) {
	if !IsEmail(nil, "test@gmail.com") {
		t.Fatalf("expected valid email")
	}
	for _, value := range []any{"abc", nil, "abc@abc", "abc@abc."} {
		if IsEmail(nil, value) {
			t.Fatalf("expected %#v to be rejected", value)
		}
	}
}

func TestIsNumber(t *testing.T) {
	for _, value := range []any{"10", "-50", "10.50", 10, -50, 10.50} {
		if !IsNumber(nil, value) {
			t.Fatalf("expected %#v to be a number", value)
		}
	}
	for _, value := range []any{"1A0", "", "abcde", "10.a1", map[string]any{}, nil, true, func() {}} {
		if IsNumber(nil, value) {
			t.Fatalf("expected %#v to be rejected", value)
		}
	}
}

func TestMatchRegexpAndPlainText(t *testing.T) {
	if !MatchRegexp(nil, "abc-123", `^[a-z]+-\d+$`) {
		t.Fatalf("expected pattern match")
	}
	if MatchRegexp(nil, "abc", `^\d+$`) {
		t.Fatalf("expected pattern mismatch")
	}
	if !MatchRegexp(nil, "", `^\d+$`) {
		t.Fatalf("expected empty value to pass")
	}
	if MatchRegexp(nil, "abc", `(`) {
		t.Fatalf("expected invalid pattern to fail")
	}

	if !IsPlainText(nil, "fish & chips") {
		t.Fatalf("expected plain text with entities to pass")
	}
	if IsPlainText(nil, "<b>bold</b>") {
		t.Fatalf("expected markup to be rejected")
	}
}
