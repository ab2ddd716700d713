package domain

import (
	"errors"
	"testing"
)

func validRestaurant() Restaurant {
	return Restaurant{
		Name:   "Pizza Place",
		Image:  "http://x/img.png",
		Menu:   []any{"margherita"},
		Rating: 4.5,
	}
}

func TestRestaurant_ValidateInvariants(t *testing.T) {
	r := validRestaurant()
	if errs := r.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}

	empty := Restaurant{Rating: 7}
	errs := empty.ValidateInvariants()
	if len(errs) != 4 {
		t.Fatalf("expected 4 errors, got %d: %v", len(errs), errs)
	}
	for _, want := range []error{ErrNameRequired, ErrImageRequired, ErrMenuRequired, ErrRatingOutOfRange} {
		found := false
		for _, err := range errs {
			if errors.Is(err, want) {
				found = true
			}
		}
		if !found {
			t.Errorf("expected %v in %v", want, errs)
		}
	}
}

func TestRatingInRange(t *testing.T) {
	tests := []struct {
		rating float64
		want   bool
	}{
		{rating: 0, want: true},
		{rating: 5, want: true},
		{rating: 2.5, want: true},
		{rating: -0.01, want: false},
		{rating: 5.01, want: false},
	}

	for _, tt := range tests {
		if got := RatingInRange(tt.rating); got != tt.want {
			t.Errorf("RatingInRange(%v) = %v, want %v", tt.rating, got, tt.want)
		}
	}
}

func TestRestaurantPatch_Fields(t *testing.T) {
	var patch RestaurantPatch
	if !patch.IsEmpty() {
		t.Fatal("zero patch should be empty")
	}
	if len(patch.Fields()) != 0 {
		t.Fatal("zero patch should have no fields")
	}

	rating := 3.0
	patch.Rating = &rating
	patch.Menu = []any{}

	if patch.IsEmpty() {
		t.Fatal("patch with rating should not be empty")
	}
	fields := patch.Fields()
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %v", fields)
	}
	if fields["rating"] != 3.0 {
		t.Errorf("unexpected rating field: %v", fields["rating"])
	}
	if _, ok := fields["name"]; ok {
		t.Error("name should be absent")
	}
}

func TestValidateRestaurantID(t *testing.T) {
	if err := ValidateRestaurantID(NewRestaurantID()); err != nil {
		t.Fatalf("generated id should be valid: %v", err)
	}
	for _, id := range []string{"", "123", "zzzzzzzzzzzzzzzzzzzzzzzz", "507f1f77bcf86cd79943901"} {
		if err := ValidateRestaurantID(id); !errors.Is(err, ErrInvalidRestaurantID) {
			t.Errorf("ValidateRestaurantID(%q) = %v, want ErrInvalidRestaurantID", id, err)
		}
	}
}
