package ofday

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRecordResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		rec        Record
		field      Field
		wantChoice Choice
		wantText   string
	}{
		{"subtitle selected", Record{Title: "X", Subtitle: "S", Description: "D"}, FieldSubtitle, ChoiceSubtitle, "S"},
		{"description selected", Record{Title: "X", Subtitle: "S", Description: "D"}, FieldDescription, ChoiceDescription, "D"},
		{"empty subtitle falls back", Record{Title: "X", Description: "Y"}, FieldSubtitle, ChoiceDescription, "Y"},
		{"empty subtitle stays on description", Record{Title: "X", Description: "Y"}, FieldDescription, ChoiceDescription, "Y"},
		{"empty description falls back", Record{Title: "X", Subtitle: "S"}, FieldDescription, ChoiceSubtitle, "S"},
		{"whitespace counts as missing", Record{Title: "X", Subtitle: "  ", Description: "Y"}, FieldSubtitle, ChoiceDescription, "Y"},
		{"title only", Record{Title: "X"}, FieldSubtitle, ChoiceTitleOnly, ""},
	}

	for _, tc := range tests {
		choice, text := tc.rec.Resolve(tc.field)
		if choice != tc.wantChoice || text != tc.wantText {
			t.Fatalf("%s: got (%s, %q), want (%s, %q)", tc.name, choice, text, tc.wantChoice, tc.wantText)
		}
	}
}

func TestYearlyLookup(t *testing.T) {
	t.Parallel()

	y := Yearly{200: {Title: "a"}}
	if y.Lookup(200).Title != "a" {
		t.Fatalf("expected record for day 200")
	}
	if !y.Lookup(201).IsEmpty() {
		t.Fatalf("expected empty record for missing day")
	}
	if !y.Lookup(0).IsEmpty() || !y.Lookup(367).IsEmpty() {
		t.Fatalf("expected empty record for out-of-range days")
	}
}

func TestMultiSinkCallsEverySink(t *testing.T) {
	t.Parallel()

	var calls int
	failing := SinkFunc(func(ctx context.Context, f Frame) error {
		calls++
		return errors.New("boom")
	})
	ok := SinkFunc(func(ctx context.Context, f Frame) error {
		calls++
		return nil
	})

	err := MultiSink{failing, nil, ok}.Render(context.Background(), Frame{Title: "x"})
	if err == nil {
		t.Fatalf("expected joined error")
	}
	if calls != 2 {
		t.Fatalf("expected both sinks to be called, got %d", calls)
	}
}

func TestDataSourceErrorMatching(t *testing.T) {
	t.Parallel()

	cause := errors.New("bad json")
	err := error(&DataSourceError{Category: "word", Err: cause})
	if !errors.Is(err, ErrDataSource) {
		t.Fatalf("expected ErrDataSource match")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to unwrap")
	}
	if errors.Is(err, ErrConfig) {
		t.Fatalf("data source error must not match ErrConfig")
	}
}

func TestFrameSameContent(t *testing.T) {
	t.Parallel()

	base := Frame{
		CategoryKey:         "word",
		CategoryDisplayName: "Word of the Day",
		Title:               "Petrichor",
		ShownText:           "same words",
		Choice:              ChoiceSubtitle,
		DayOfYear:           200,
	}

	later := base
	later.RenderedAt = base.RenderedAt.Add(time.Minute)
	if !base.SameContent(later) {
		t.Fatalf("render time alone must not count as a change")
	}

	flipped := base
	flipped.Choice = ChoiceDescription
	if base.SameContent(flipped) {
		t.Fatalf("a different field with identical text must count as a change")
	}

	nextDay := base
	nextDay.DayOfYear = 201
	if base.SameContent(nextDay) {
		t.Fatalf("a different day must count as a change")
	}
}
