package http

import (
	"testing"

	"devconnector/internal/validation"
)

func Test_parseEntryRange(t *testing.T) {
	tests := []struct {
		name      string
		from      string
		to        string
		wantParam string
	}{
		{name: "valid range", from: "2020-01-15", to: "2021-06-30"},
		{name: "invalid from", from: "last year", wantParam: "from"},
		{name: "invalid to", from: "2020-01-15", to: "soon", wantParam: "to"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := parseEntryRange(tt.from, tt.to, false)

			if tt.wantParam == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			verrs, ok := err.(validation.Errors)
			if !ok || len(verrs) != 1 || verrs[0].Param != tt.wantParam {
				t.Fatalf("expected validation error on %q, got %v", tt.wantParam, err)
			}
		})
	}
}
