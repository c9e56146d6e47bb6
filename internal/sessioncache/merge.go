package sessioncache

import "github.com/ml4teachers/helf/internal/domain"

// MergeExercises reconciles a fresh server snapshot against a cached local
// copy after a forced refresh. Matching is by catalog exercise id: where a
// match exists the server row keeps its structural fields (name, targets,
// order) but the cached set data replaces the server's wholesale, so
// in-progress edits survive the refresh. Server rows without a cached
// counterpart pass through untouched, and cached rows absent from the
// server are dropped.
func MergeExercises(server, cached []domain.SessionExercise) []domain.SessionExercise {
	local := make(map[int64]domain.SessionExercise, len(cached))
	for _, ex := range cached {
		if _, seen := local[ex.ExerciseID]; !seen {
			local[ex.ExerciseID] = ex
		}
	}
	merged := make([]domain.SessionExercise, len(server))
	for i, ex := range server {
		if cachedEx, ok := local[ex.ExerciseID]; ok {
			ex.Sets = cachedEx.Sets
		}
		merged[i] = ex
	}
	return merged
}
