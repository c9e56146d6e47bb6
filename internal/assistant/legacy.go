package assistant

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Older assistant builds emitted plans in one of two shapes: a
// week -> day -> session -> exercise "weeklyStructure" nesting, or a flat
// "sessions" array with no week grouping at all. ConvertLegacyPlan maps
// either shape onto the canonical Plan.

type legacyPlan struct {
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Goal            string          `json:"goal"`
	WeeklyStructure []legacyWeek    `json:"weeklyStructure"`
	Sessions        []legacySession `json:"sessions"`
}

type legacyWeek struct {
	Week     int             `json:"week"`
	Focus    string          `json:"focus"`
	Sessions []legacySession `json:"sessions"`
}

type legacySession struct {
	Focus     string           `json:"focus"`
	Day       string           `json:"day"`
	Notes     string           `json:"notes"`
	Exercises []legacyExercise `json:"exercises"`
}

type legacyExercise struct {
	Name      string   `json:"name"`
	Details   string   `json:"details"`
	Sets      *int     `json:"sets"`
	RepsRange *string  `json:"repsRange"`
	RPE       *float64 `json:"rpe"`
	Notes     string   `json:"notes"`
}

// ErrNotLegacyShape signals that data matches neither legacy layout.
var ErrNotLegacyShape = errors.New("plan data has neither weeklyStructure nor sessions")

// ConvertLegacyPlan maps a legacy plan JSON onto the canonical shape. The
// result carries fresh conversion metadata and a start date of now.
func ConvertLegacyPlan(data json.RawMessage) (*Plan, error) {
	var lp legacyPlan
	if err := json.Unmarshal(data, &lp); err != nil {
		return nil, fmt.Errorf("legacy plan did not parse: %w", err)
	}

	plan := &Plan{
		Name:        lp.Name,
		Description: lp.Description,
		Goal:        lp.Goal,
	}

	switch {
	case len(lp.WeeklyStructure) > 0:
		for _, lw := range lp.WeeklyStructure {
			week := Week{
				WeekNumber: lw.Week,
				Focus:      lw.Focus,
			}
			for i, ls := range lw.Sessions {
				week.Sessions = append(week.Sessions, convertLegacySession(ls, i, lw.Focus))
			}
			plan.Weeks = append(plan.Weeks, week)
		}
	case len(lp.Sessions) > 0:
		// No week grouping: everything lands in a single synthetic week 1.
		week := Week{WeekNumber: 1}
		for i, ls := range lp.Sessions {
			week.Sessions = append(week.Sessions, convertLegacySession(ls, i, ""))
		}
		plan.Weeks = append(plan.Weeks, week)
	default:
		return nil, ErrNotLegacyShape
	}

	now := time.Now().UTC().Format(time.RFC3339)
	plan.Metadata = map[string]any{
		"converted_from": "legacy",
		"converted_at":   now,
		"start_date":     now,
	}

	return plan, nil
}

func convertLegacySession(ls legacySession, index int, weekFocus string) Session {
	name := ls.Focus
	if name == "" {
		name = fmt.Sprintf("Day %d", index+1)
	}

	// The session focus rarely names a modality on its own ("Squat Day"),
	// so the week focus participates in the classification too.
	session := Session{
		Name:         name,
		Type:         classifySessionType(ls.Focus + " " + weekFocus),
		Notes:        ls.Notes,
		SessionOrder: index + 1,
	}

	for i, le := range ls.Exercises {
		session.Exercises = append(session.Exercises, Exercise{
			Name:          le.Name,
			Variation:     le.Details,
			ExerciseOrder: i + 1,
			TargetSets:    le.Sets,
			TargetReps:    le.RepsRange,
			TargetRPE:     le.RPE,
			Instructions:  le.Notes,
		})
	}

	return session
}

// classifySessionType guesses a session type from the legacy focus text.
func classifySessionType(focus string) string {
	lower := strings.ToLower(focus)
	switch {
	case strings.Contains(lower, "strength"):
		return "strength"
	case strings.Contains(lower, "hypertrophy"):
		return "hypertrophy"
	default:
		return "general"
	}
}
