package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ml4teachers/helf/internal/domain"
	"github.com/ml4teachers/helf/internal/logger"
)

// Result is what Process hands back to the chat surface. Content always
// carries the original assistant text, even on failure, so the user can see
// what was proposed.
type Result struct {
	Content string
	Success bool
	Message string
	Type    string
	Payload Payload
}

// CatalogUpdater is the slice of the exercise service the processor needs to
// apply exerciseUpdate payloads.
type CatalogUpdater interface {
	UpdateExercise(ctx context.Context, id int64, update domain.ExerciseUpdate) (*domain.Exercise, error)
}

// Processor extracts and validates structured blocks from assistant replies.
type Processor struct {
	catalog CatalogUpdater
	log     *logger.Logger
}

// NewProcessor creates a Processor. catalog is required: exerciseUpdate
// payloads are applied on the spot, not merely validated.
func NewProcessor(catalog CatalogUpdater, log *logger.Logger) *Processor {
	return &Processor{catalog: catalog, log: log}
}

// Process pulls the first fenced JSON block out of raw text, cleans and
// parses it, and dispatches on the "type" discriminator. Text without a
// structured block, or with a block that is not a type-tagged object, passes
// through unchanged.
func (p *Processor) Process(ctx context.Context, raw string) Result {
	block, found := extractFencedBlock(raw)
	if !found {
		return Result{Content: raw, Success: true}
	}

	cleaned := cleanJSON(block)

	var parsed any
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		p.log.Warn("structured block did not parse", "error", err)
		return Result{
			Content: raw,
			Success: false,
			Message: parseErrorMessage(cleaned, err),
		}
	}

	obj, ok := parsed.(map[string]any)
	if !ok {
		return Result{Content: raw, Success: true}
	}
	discriminator, ok := obj["type"].(string)
	if !ok {
		return Result{Content: raw, Success: true}
	}

	var envelope struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	// The block already survived a generic parse, this cannot fail.
	_ = json.Unmarshal([]byte(cleaned), &envelope)

	switch discriminator {
	case TypeTrainingPlan:
		return p.processTrainingPlan(raw, envelope.Data)
	case TypeWeekPlan:
		return p.processWeekPlan(raw, envelope.Data)
	case TypeSessionPlan:
		return p.processSessionPlan(raw, envelope.Data)
	case TypeExerciseUpdate:
		return p.processExerciseUpdate(ctx, raw, envelope.Data)
	default:
		// Unknown discriminators are plain content, not errors.
		return Result{Content: raw, Success: true, Type: discriminator}
	}
}

func (p *Processor) processTrainingPlan(raw string, data json.RawMessage) Result {
	var plan Plan
	canonicalMsgs := decodeAndValidate(data, &plan)
	if canonicalMsgs == nil {
		return Result{
			Content: raw,
			Success: true,
			Type:    TypeTrainingPlan,
			Payload: TrainingPlanPayload{Plan: plan},
		}
	}

	// The canonical schema failed; the block may be in the legacy shape.
	converted, err := ConvertLegacyPlan(data)
	if err != nil {
		msgs := append(canonicalMsgs, "legacy conversion: "+err.Error())
		return failure(raw, TypeTrainingPlan, msgs)
	}
	if legacyMsgs := validateStruct(converted); legacyMsgs != nil {
		msgs := append(canonicalMsgs, legacyMsgs...)
		return failure(raw, TypeTrainingPlan, msgs)
	}

	p.log.Info("assistant plan accepted via legacy conversion", "plan", converted.Name)
	return Result{
		Content: raw,
		Success: true,
		Type:    TypeTrainingPlan,
		Payload: TrainingPlanPayload{Plan: *converted},
	}
}

func (p *Processor) processWeekPlan(raw string, data json.RawMessage) Result {
	var week WeekPlan
	if msgs := decodeAndValidate(data, &week); msgs != nil {
		return failure(raw, TypeWeekPlan, msgs)
	}
	return Result{
		Content: raw,
		Success: true,
		Type:    TypeWeekPlan,
		Payload: WeekPlanPayload{Week: week},
	}
}

func (p *Processor) processSessionPlan(raw string, data json.RawMessage) Result {
	var session SessionPlan
	if msgs := decodeAndValidate(data, &session); msgs != nil {
		return failure(raw, TypeSessionPlan, msgs)
	}
	return Result{
		Content: raw,
		Success: true,
		Type:    TypeSessionPlan,
		Payload: SessionPlanPayload{Session: session},
	}
}

// processExerciseUpdate validates and then immediately applies the catalog
// edit; this payload type is an action, not just data.
func (p *Processor) processExerciseUpdate(ctx context.Context, raw string, data json.RawMessage) Result {
	var req ExerciseUpdateRequest
	if msgs := decodeAndValidate(data, &req); msgs != nil {
		return failure(raw, TypeExerciseUpdate, msgs)
	}

	update := domain.ExerciseUpdate{
		Name:        req.Update.Name,
		Variation:   req.Update.Variation,
		Description: req.Update.Description,
	}
	if req.Update.Type != nil {
		t := domain.ExerciseType(*req.Update.Type)
		update.Type = &t
	}

	exercise, err := p.catalog.UpdateExercise(ctx, req.ExerciseID, update)
	if err != nil {
		p.log.Error("exercise update from assistant failed", "exerciseId", req.ExerciseID, "error", err)
		return Result{
			Content: raw,
			Success: false,
			Type:    TypeExerciseUpdate,
			Message: fmt.Sprintf("failed to update exercise %d: %v", req.ExerciseID, err),
		}
	}

	p.log.Info("exercise updated from assistant payload", "exerciseId", exercise.ID)
	return Result{
		Content: raw,
		Success: true,
		Type:    TypeExerciseUpdate,
		Message: fmt.Sprintf("Updated exercise %q.", exercise.Name),
		Payload: ExerciseUpdatePayload{Request: req},
	}
}

// decodeAndValidate unmarshals data into dst and validates it. A nil return
// means dst is usable; otherwise the slice holds one message per problem.
func decodeAndValidate(data json.RawMessage, dst any) []string {
	if len(data) == 0 {
		return []string{"data: is required"}
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return []string{"data: " + err.Error()}
	}
	return validateStruct(dst)
}

func validateStruct(v any) []string {
	if err := validate.Struct(v); err != nil {
		return validationMessages(err)
	}
	return nil
}

func failure(raw, payloadType string, msgs []string) Result {
	return Result{
		Content: raw,
		Success: false,
		Type:    payloadType,
		Message: strings.Join(msgs, "; "),
	}
}

// parseErrorMessage names the parse error and, when the offset is known,
// quotes the fragment around it.
func parseErrorMessage(s string, err error) string {
	var syn *json.SyntaxError
	if errors.As(err, &syn) && syn.Offset > 0 {
		start := int(syn.Offset) - 20
		if start < 0 {
			start = 0
		}
		end := int(syn.Offset) + 20
		if end > len(s) {
			end = len(s)
		}
		return fmt.Sprintf("structured block is not valid JSON: %v (near %q)", err, s[start:end])
	}
	return fmt.Sprintf("structured block is not valid JSON: %v", err)
}
