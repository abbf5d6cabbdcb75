package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nutrisync/nutrisync-bot/internal/domain"
	apperrors "github.com/nutrisync/nutrisync-bot/internal/errors"
)

// analysisPayload is the wire shape of a reasoning-service response, minus
// the fields stamped client-side. Pointer fields distinguish missing from
// zero-valued.
type analysisPayload struct {
	CompatibilityScore *int               `json:"compatibilityScore"`
	Biomarkers         []domain.Biomarker `json:"biomarkers"`
	FoodItems          []domain.FoodItem  `json:"foodItems"`
	Summary            *string            `json:"summary"`
}

// ValidateResponse parses the raw reasoning-service text into an enriched
// AnalysisResult. It stamps a fresh ID and the current timestamp; OwnerID is
// left for the caller. No retry is performed here.
func ValidateResponse(raw string) (*domain.AnalysisResult, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, apperrors.ErrEmptyResponse
	}

	// Models occasionally wrap the object in code fences or prose despite
	// the instruction; recover the object before decoding.
	jsonStr := extractJSON(raw)
	if jsonStr == "" {
		return nil, apperrors.NewContractError(fmt.Errorf("no JSON object in response"), "Response contains no JSON object")
	}

	var payload analysisPayload
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		return nil, apperrors.NewContractError(err, "Response is not valid result JSON")
	}

	if err := checkPayload(&payload); err != nil {
		return nil, err
	}

	return &domain.AnalysisResult{
		ID:                 uuid.NewString(),
		CreatedAt:          time.Now(),
		CompatibilityScore: *payload.CompatibilityScore,
		Biomarkers:         payload.Biomarkers,
		FoodItems:          payload.FoodItems,
		Summary:            *payload.Summary,
	}, nil
}

func checkPayload(p *analysisPayload) error {
	if p.CompatibilityScore == nil {
		return apperrors.NewContractError(fmt.Errorf("compatibilityScore missing"), "Required field compatibilityScore is missing")
	}
	if score := *p.CompatibilityScore; score < 0 || score > 100 {
		return apperrors.NewContractError(fmt.Errorf("compatibilityScore %d out of range", score), "compatibilityScore must be within [0,100]")
	}
	if p.Summary == nil {
		return apperrors.NewContractError(fmt.Errorf("summary missing"), "Required field summary is missing")
	}
	if p.Biomarkers == nil {
		return apperrors.NewContractError(fmt.Errorf("biomarkers missing"), "Required field biomarkers is missing")
	}
	if len(p.FoodItems) == 0 {
		return apperrors.NewContractError(fmt.Errorf("foodItems missing or empty"), "At least one food item is required")
	}
	for i, item := range p.FoodItems {
		if !item.Status.Valid() {
			return apperrors.NewContractError(
				fmt.Errorf("foodItems[%d].status %q not in closed set", i, item.Status),
				"Food item status must be SAFE, MODERATE or AVOID",
			)
		}
	}
	return nil
}

// extractJSON attempts to extract a JSON object from the given string.
// It handles responses wrapped in code blocks or extra text.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}
	end := strings.LastIndex(s, "}")
	if end == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}
