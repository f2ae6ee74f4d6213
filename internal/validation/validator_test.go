package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/hitorimeshi/hitori-server/internal/errors"
	"github.com/hitorimeshi/hitori-server/internal/validation"
)

type testDraft struct {
	Name   string   `json:"name" validate:"notblank,max=200"`
	Style  string   `json:"style" validate:"oneof=Buffet AlaCarte"`
	Cities []string `json:"cities" validate:"min=1,dive,notblank"`
	Rating int      `json:"solo_rating" validate:"gte=1,lte=5"`
	Price  int64    `json:"price" validate:"gte=0"`
}

func validDraft() testDraft {
	return testDraft{Name: "Ichiran", Style: "AlaCarte", Cities: []string{"Osaka"}, Rating: 5, Price: 1200}
}

func TestValidator_Valid(t *testing.T) {
	require.NoError(t, validation.New().Validate(validDraft()))
}

func TestValidator_FieldErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name    string
		mutate  func(*testDraft)
		field   string
		message string
	}{
		{"blank name", func(d *testDraft) { d.Name = "   " }, "name", "must not be blank"},
		{"bad style", func(d *testDraft) { d.Style = "Omakase" }, "style", "must be one of: Buffet AlaCarte"},
		{"no cities", func(d *testDraft) { d.Cities = nil }, "cities", "must have at least 1 entries"},
		{"blank city", func(d *testDraft) { d.Cities = []string{"Osaka", " "} }, "cities[1]", "must not be blank"},
		{"rating low", func(d *testDraft) { d.Rating = 0 }, "solo_rating", "must be greater than or equal to 1"},
		{"rating high", func(d *testDraft) { d.Rating = 6 }, "solo_rating", "must be less than or equal to 5"},
		{"negative price", func(d *testDraft) { d.Price = -1 }, "price", "must be greater than or equal to 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(&d)

			err := v.Validate(d)
			require.Error(t, err)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.message, details[tt.field])
		})
	}
}
