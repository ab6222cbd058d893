package registry

import (
	"context"
	"unicode/utf8"
)

// DBStats holds aggregated statistics for the entire registry, including a list of
// all models and their individual stats.
type DBStats struct {
	Models         []ModelInfo        // A list of models in the database
	Stats          map[int]ModelStats // A mapping of model ids to their stats
	TotalFrequency int64              // The sum of all counts across all models
}

// ModelStats holds aggregated statistics for a single stored model.
type ModelStats struct {
	Vertices       int   // The size of the model's alphabet, boundary included.
	Transitions    int   // The number of distinct from->to pairs with a non-zero count.
	TotalFrequency int64 // The sum of all counts; the number of trained transitions.
}

// GetStats returns a snapshot of statistics for the entire registry.
func (r *Registry) GetStats(ctx context.Context) (*DBStats, error) {
	models, err := r.GetModelInfos(ctx)
	if err != nil {
		return nil, err
	}

	stats := &DBStats{
		Models: models,
		Stats:  make(map[int]ModelStats, len(models)),
	}
	for _, m := range models {
		var transitions int
		var totalFrequency int64
		if err = r.stmtModelTransitions.QueryRowContext(ctx, m.Id).Scan(&transitions); err != nil {
			return nil, err
		}
		if err = r.stmtModelFreq.QueryRowContext(ctx, m.Id).Scan(&totalFrequency); err != nil {
			return nil, err
		}
		stats.Stats[m.Id] = ModelStats{
			Vertices:       utf8.RuneCountInString(m.Vertices),
			Transitions:    transitions,
			TotalFrequency: totalFrequency,
		}
		stats.TotalFrequency += totalFrequency
	}

	return stats, nil
}
