package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/rushteam/recprep/core"
)

func TestReadReviews(t *testing.T) {
	in := `{"user_id":"u1","parent_asin":"a","timestamp":10,"rating":4.0,"conformity":0.5,"quality":0.25}
{"user_id":"u2","item_id":"b","timestamp":20,"conformity":0,"quality":0}
`
	got, err := ReadReviews(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadReviews() error = %v", err)
	}
	want := []core.Review{
		{UserID: "u1", ItemID: "a", Timestamp: 10, Rating: 4, Conformity: 0.5, Quality: 0.25},
		{UserID: "u2", ItemID: "b", Timestamp: 20},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d reviews, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("review %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestReadReviews_MissingField(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		field string
	}{
		{"user", `{"parent_asin":"a","timestamp":1,"conformity":0,"quality":0}`, "user_id"},
		{"item", `{"user_id":"u","timestamp":1,"conformity":0,"quality":0}`, "parent_asin"},
		{"timestamp", `{"user_id":"u","parent_asin":"a","conformity":0,"quality":0}`, "timestamp"},
		{"conformity", `{"user_id":"u","parent_asin":"a","timestamp":1,"quality":0}`, "conformity"},
		{"quality", `{"user_id":"u","parent_asin":"a","timestamp":1,"conformity":0}`, "quality"},
		{"empty user", `{"user_id":"","parent_asin":"a","timestamp":1,"conformity":0,"quality":0}`, "user_id"},
		{"empty item", `{"user_id":"u","parent_asin":"","timestamp":1,"conformity":0,"quality":0}`, "parent_asin"},
		{"empty item fallback", `{"user_id":"u","parent_asin":"","item_id":"","timestamp":1,"conformity":0,"quality":0}`, "parent_asin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadReviews(strings.NewReader(tt.in))
			if !core.IsInvalidInput(err) {
				t.Fatalf("ReadReviews() error = %v, want INVALID_INPUT", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not name field %q", err, tt.field)
			}
		})
	}
}

func TestReadReviews_Malformed(t *testing.T) {
	if _, err := ReadReviews(strings.NewReader(`{"user_id":`)); !core.IsInvalidInput(err) {
		t.Errorf("ReadReviews() error = %v, want INVALID_INPUT", err)
	}
}

func TestReadMetas(t *testing.T) {
	in := `{"parent_asin":"a","categories":["Beauty","Skin Care"],"average_rating":4.5,"rating_number":12,"store":"acme"}
{"parent_asin":"b","categories":[]}
`
	got, err := ReadMetas(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadMetas() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d metas, want 2", len(got))
	}
	if got[0].AvgRating != 4.5 || got[0].RatingNumber != 12 || got[0].Store != "acme" {
		t.Errorf("meta 0 = %+v", got[0])
	}
	if got[0].PrimaryCategory() != "Skin Care" || got[1].PrimaryCategory() != "" {
		t.Errorf("primary categories = %q, %q", got[0].PrimaryCategory(), got[1].PrimaryCategory())
	}

	if _, err := ReadMetas(strings.NewReader(`{"parent_asin":"a"}`)); !core.IsInvalidInput(err) {
		t.Errorf("ReadMetas(no categories) error = %v, want INVALID_INPUT", err)
	}
	if _, err := ReadMetas(strings.NewReader(`{"parent_asin":"","categories":["X"]}`)); !core.IsInvalidInput(err) {
		t.Errorf("ReadMetas(empty id) error = %v, want INVALID_INPUT", err)
	}
}

func TestReadReviews_EmptyParentFallsBackToItemID(t *testing.T) {
	got, err := ReadReviews(strings.NewReader(`{"user_id":"u","parent_asin":"","item_id":"b","timestamp":1,"conformity":0,"quality":0}`))
	if err != nil {
		t.Fatalf("ReadReviews() error = %v", err)
	}
	if len(got) != 1 || got[0].ItemID != "b" {
		t.Errorf("reviews = %+v, want item b", got)
	}
}

func TestNormalizeEvents(t *testing.T) {
	reviews := []core.Review{
		{UserID: "u1", ItemID: "a", Timestamp: 1, Conformity: 0.1, Quality: 0.2},
		{UserID: "u1", ItemID: "b", Timestamp: 2},
		{UserID: "u2", ItemID: "z", Timestamp: 3},
	}
	metas := []core.ItemMeta{
		{ItemID: "a", Categories: []string{"Beauty", "Hair"}, AvgRating: 4.2},
		{ItemID: "a", Categories: []string{"Other", "Duplicate"}},
		{ItemID: "b", Categories: []string{"Tools"}},
		{ItemID: "unused", Categories: []string{"X"}},
	}
	events := NormalizeEvents(reviews, metas)
	if len(events) != len(reviews) {
		t.Fatalf("got %d events, want %d", len(events), len(reviews))
	}
	wantCats := []string{"Hair", "Tools", ""}
	for i, ev := range events {
		if ev.Category != wantCats[i] {
			t.Errorf("event %d category = %q, want %q", i, ev.Category, wantCats[i])
		}
		if ev.Seq != i {
			t.Errorf("event %d seq = %d", i, ev.Seq)
		}
	}
	if events[0].AvgRating != 4.2 || events[0].Conformity != 0.1 || events[0].Quality != 0.2 {
		t.Errorf("event 0 = %+v", events[0])
	}
}

func TestNormalize_NoReviews(t *testing.T) {
	_, err := (&Normalize{}).Process(context.Background(), core.NewFrame(nil, nil))
	if !core.IsInvalidInput(err) {
		t.Errorf("Process() error = %v, want INVALID_INPUT", err)
	}
}
