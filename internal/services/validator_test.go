package services

import (
	"fmt"
	"testing"

	apperrors "github.com/nutrisync/nutrisync-bot/internal/errors"
	"github.com/stretchr/testify/require"
)

const validPayload = `{
	"compatibilityScore": 72,
	"biomarkers": [{"name": "HbA1c", "value": "8.5%", "status": "High"}],
	"foodItems": [{"name": "Mango", "status": "AVOID", "biotechReason": "Spikes your Glucose (200 mg/dL)", "suggestedSwap": "Berries"}],
	"summary": "Mostly risky for your profile."
}`

func TestValidateResponse_Valid(t *testing.T) {
	result, err := ValidateResponse(validPayload)
	require.NoError(t, err)

	require.NotEmpty(t, result.ID)
	require.False(t, result.CreatedAt.IsZero())
	require.Equal(t, 72, result.CompatibilityScore)
	require.Len(t, result.Biomarkers, 1)
	require.Len(t, result.FoodItems, 1)
	require.Equal(t, "Berries", result.FoodItems[0].SuggestedSwap)
	require.Equal(t, "Mostly risky for your profile.", result.Summary)
}

func TestValidateResponse_FreshIDPerCall(t *testing.T) {
	a, err := ValidateResponse(validPayload)
	require.NoError(t, err)
	b, err := ValidateResponse(validPayload)
	require.NoError(t, err)
	require.NotEqual(t, a.ID, b.ID)
}

func TestValidateResponse_StripsCodeFences(t *testing.T) {
	fenced := "```json\n" + validPayload + "\n```"
	result, err := ValidateResponse(fenced)
	require.NoError(t, err)
	require.Equal(t, 72, result.CompatibilityScore)
}

func TestValidateResponse_Empty(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\t"} {
		_, err := ValidateResponse(raw)
		require.ErrorIs(t, err, apperrors.ErrEmptyResponse, "raw %q", raw)
	}
}

func TestValidateResponse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "the meal looks fine to me"},
		{"truncated json", `{"compatibilityScore": 72, "summ`},
		{"missing score", `{"biomarkers": [], "foodItems": [{"name": "Rice", "status": "SAFE"}], "summary": "ok"}`},
		{"score above range", `{"compatibilityScore": 140, "biomarkers": [], "foodItems": [{"name": "Rice", "status": "SAFE"}], "summary": "ok"}`},
		{"score below range", `{"compatibilityScore": -3, "biomarkers": [], "foodItems": [{"name": "Rice", "status": "SAFE"}], "summary": "ok"}`},
		{"missing summary", `{"compatibilityScore": 50, "biomarkers": [], "foodItems": [{"name": "Rice", "status": "SAFE"}]}`},
		{"missing biomarkers", `{"compatibilityScore": 50, "foodItems": [{"name": "Rice", "status": "SAFE"}], "summary": "ok"}`},
		{"no food items", `{"compatibilityScore": 50, "biomarkers": [], "foodItems": [], "summary": "ok"}`},
		{"unknown status", `{"compatibilityScore": 50, "biomarkers": [], "foodItems": [{"name": "Rice", "status": "RISKY"}], "summary": "ok"}`},
		{"lowercase status", `{"compatibilityScore": 50, "biomarkers": [], "foodItems": [{"name": "Rice", "status": "safe"}], "summary": "ok"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateResponse(tc.raw)
			require.ErrorIs(t, err, apperrors.ErrMalformedResponse)
		})
	}
}

func TestValidateResponse_BoundaryScores(t *testing.T) {
	for _, score := range []int{0, 100} {
		raw := fmt.Sprintf(`{"compatibilityScore": %d, "biomarkers": [], "foodItems": [{"name": "Rice", "status": "SAFE", "biotechReason": "fine"}], "summary": "ok"}`, score)
		result, err := ValidateResponse(raw)
		require.NoError(t, err)
		require.Equal(t, score, result.CompatibilityScore)
	}
}
