package adaptor

import (
	"net/url"
	"testing"
)

func TestParseTitleFilter(t *testing.T) {
	t.Parallel()

	t.Run("copies the facets", func(t *testing.T) {
		t.Parallel()

		values, _ := url.ParseQuery("category=movie&genre=drama&name=heat&year=2000")
		filter := parseTitleFilter(values)

		if filter.Category != "movie" || filter.Genre != "drama" || filter.Name != "heat" {
			t.Errorf("filter = %+v", filter)
		}
		if filter.Year == nil || *filter.Year != 2000 {
			t.Errorf("year = %v, want 2000", filter.Year)
		}
	})

	t.Run("non-numeric year is ignored", func(t *testing.T) {
		t.Parallel()

		values, _ := url.ParseQuery("year=nineteen99")
		filter := parseTitleFilter(values)

		if filter.Year != nil {
			t.Errorf("year = %v, want nil", filter.Year)
		}
	})

	t.Run("unknown params are ignored", func(t *testing.T) {
		t.Parallel()

		values, _ := url.ParseQuery("director=mann&rating=8")
		filter := parseTitleFilter(values)

		if filter.Category != "" || filter.Genre != "" || filter.Name != "" || filter.Year != nil {
			t.Errorf("filter = %+v, want zero value", filter)
		}
	})

	t.Run("empty query yields the zero filter", func(t *testing.T) {
		t.Parallel()

		filter := parseTitleFilter(url.Values{})

		if filter.Category != "" || filter.Genre != "" || filter.Name != "" || filter.Year != nil {
			t.Errorf("filter = %+v, want zero value", filter)
		}
	})
}
