package sanitize

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestExpression(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "passthrough clean text", input: "car_door = 3", want: "car_door = 3"},
		{name: "empty", input: "", want: ""},
		{name: "strip null bytes", input: "car\x00_door", want: "car_door"},
		{name: "control characters become spaces", input: "car_door\x01=\x073", want: "car_door = 3"},
		{name: "newlines and tabs collapse", input: "  heads\n\n\t ", want: "heads"},
		{name: "delete character", input: "!\x7fheads", want: "! heads"},
		{name: "unicode preserved", input: "näive", want: "näive"},
		{name: "only whitespace", input: " \t\r\n ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Expression(tt.input)
			if err != nil {
				t.Fatalf("Expression(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Expression(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExpression_Length(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "at the limit", input: strings.Repeat("a", MaxExpressionLength)},
		{name: "long threshold", input: "value > 1" + strings.Repeat("0", MaxExpressionLength), wantErr: true},
		{name: "multi-byte rune past the limit", input: strings.Repeat("a", MaxExpressionLength-1) + "±", wantErr: true},
		{name: "whitespace collapses under the limit", input: "heads" + strings.Repeat(" ", MaxExpressionLength)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Expression(tt.input)
			if tt.wantErr {
				if err == nil || !strings.Contains(err.Error(), "expression too long") {
					t.Errorf("Expression() = %q, %v; want length error", got, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expression() error: %v", err)
			}
			if !utf8.ValidString(got) || len(got) > MaxExpressionLength {
				t.Errorf("Expression() = %q", got)
			}
		})
	}
}

func TestExpressions(t *testing.T) {
	t.Run("drops empty entries", func(t *testing.T) {
		got, err := Expressions([]string{" heads ", "", "\n", "total > 7"})
		if err != nil {
			t.Fatalf("Expressions failed: %v", err)
		}
		if len(got) != 2 || got[0] != "heads" || got[1] != "total > 7" {
			t.Errorf("Expressions = %q", got)
		}
	})

	t.Run("nil input", func(t *testing.T) {
		got, err := Expressions(nil)
		if err != nil || len(got) != 0 {
			t.Errorf("Expressions(nil) = %q, %v", got, err)
		}
	})

	t.Run("rejects an over-length entry", func(t *testing.T) {
		if _, err := Expressions([]string{"heads", strings.Repeat("x", MaxExpressionLength+1)}); err == nil {
			t.Error("expected error for over-length expression")
		}
	})

	t.Run("too many", func(t *testing.T) {
		in := make([]string, MaxExpressions+1)
		for i := range in {
			in[i] = "heads"
		}
		if _, err := Expressions(in); err == nil || !strings.Contains(err.Error(), "too many expressions") {
			t.Errorf("err = %v", err)
		}
	})
}
