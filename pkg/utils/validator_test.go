package utils

import (
	"testing"
)

type slugForm struct {
	Slug string `validate:"required,slug"`
}

type usernameForm struct {
	Username string `validate:"required,username"`
}

type scoreForm struct {
	Score *int `validate:"required,gte=0,lte=10"`
}

func scorePtr(n int) *int { return &n }

func TestValidateStructSlugTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		slug  string
		valid bool
	}{
		{"films", true},
		{"sci-fi", true},
		{"retro_tv", true},
		{"Top250", true},
		{"sci fi", false},
		{"film/noir", false},
		{"ужасы", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			t.Parallel()

			errs := ValidateStruct(slugForm{Slug: tt.slug})
			if tt.valid && len(errs) > 0 {
				t.Errorf("slug %q rejected: %v", tt.slug, errs)
			}
			if !tt.valid && len(errs) == 0 {
				t.Errorf("slug %q accepted, want rejection", tt.slug)
			}
		})
	}
}

func TestValidateStructUsernameTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		username string
		valid    bool
	}{
		{"marta", true},
		{"m.arta+test@host-1", true},
		{"__init__", true},
		{"has space", false},
		{"semi;colon", false},
		{"bang!", false},
	}

	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			t.Parallel()

			errs := ValidateStruct(usernameForm{Username: tt.username})
			if tt.valid && len(errs) > 0 {
				t.Errorf("username %q rejected: %v", tt.username, errs)
			}
			if !tt.valid && len(errs) == 0 {
				t.Errorf("username %q accepted, want rejection", tt.username)
			}
		})
	}
}

func TestValidateStructScoreBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		score *int
		valid bool
	}{
		{"missing", nil, false},
		{"below range", scorePtr(-1), false},
		{"lower bound", scorePtr(0), true},
		{"middle", scorePtr(5), true},
		{"upper bound", scorePtr(10), true},
		{"above range", scorePtr(11), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			errs := ValidateStruct(scoreForm{Score: tt.score})
			if tt.valid && len(errs) > 0 {
				t.Errorf("score %v rejected: %v", tt.score, errs)
			}
			if !tt.valid && len(errs) == 0 {
				t.Errorf("score %v accepted, want rejection", tt.score)
			}
		})
	}
}

func TestValidateStructMessages(t *testing.T) {
	t.Parallel()

	errs := ValidateStruct(slugForm{Slug: "bad slug"})
	if got := errs["Slug"]; got != "Must contain only letters, numbers, hyphens or underscores" {
		t.Errorf("slug message = %q", got)
	}

	errs = ValidateStruct(scoreForm{Score: scorePtr(11)})
	if got := errs["Score"]; got != "Must be at most 10" {
		t.Errorf("lte message = %q", got)
	}

	errs = ValidateStruct(scoreForm{})
	if got := errs["Score"]; got != "This field is required" {
		t.Errorf("required message = %q", got)
	}
}

func TestValidateStructPassesCleanInput(t *testing.T) {
	t.Parallel()

	if errs := ValidateStruct(slugForm{Slug: "drama"}); errs != nil {
		t.Errorf("clean input produced errors: %v", errs)
	}
}

func TestFormatValidationErrors(t *testing.T) {
	t.Parallel()

	if got := FormatValidationErrors(nil); got != "" {
		t.Errorf("empty map formatted as %q", got)
	}

	got := FormatValidationErrors(map[string]string{"Slug": "bad"})
	if got != "Slug: bad" {
		t.Errorf("single entry formatted as %q", got)
	}
}
