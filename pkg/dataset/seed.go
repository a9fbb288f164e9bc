package dataset

import (
	"context"

	"github.com/nwsirlp/skillgraph/pkg/logger"
	"github.com/nwsirlp/skillgraph/pkg/store"

	"golang.org/x/sync/errgroup"
)

const seedChunkSize = 200

// SeedStats reports what a seed run wrote and what Normalize dropped along
// the way.
type SeedStats struct {
	Employees   int `json:"employees"`
	Skills      int `json:"skills"`
	Possessions int `json:"possessions"`

	NormalizeStats
}

// Seed normalizes the dataset and upserts it. Employees and skills go in
// first, in bounded-parallel chunks; possessions follow once both endpoint
// sets exist.
func Seed(ctx context.Context, st store.Storage, ds Dataset) (SeedStats, error) {
	normalized, normStats := Normalize(ds)
	stats := SeedStats{
		Employees:      len(normalized.Employees),
		Skills:         len(normalized.Skills),
		Possessions:    len(normalized.Possessions),
		NormalizeStats: normStats,
	}

	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(4)

	employees := normalized.Employees
	err := store.ChunkRange(len(employees), seedChunkSize, func(start, end int) error {
		chunk := employees[start:end]
		eg.Go(func() error {
			return st.SaveEmployees(ectx, chunk)
		})
		return nil
	})
	if err != nil {
		return SeedStats{}, err
	}

	skills := normalized.Skills
	err = store.ChunkRange(len(skills), seedChunkSize, func(start, end int) error {
		chunk := skills[start:end]
		eg.Go(func() error {
			return st.SaveSkills(ectx, chunk)
		})
		return nil
	})
	if err != nil {
		return SeedStats{}, err
	}

	if err := eg.Wait(); err != nil {
		return SeedStats{}, err
	}

	possessions := normalized.Possessions
	err = store.ChunkRange(len(possessions), seedChunkSize, func(start, end int) error {
		return st.SavePossessions(ctx, possessions[start:end])
	})
	if err != nil {
		return SeedStats{}, err
	}

	logger.Info("[Dataset] Seeded",
		"employees", stats.Employees,
		"skills", stats.Skills,
		"possessions", stats.Possessions,
	)
	return stats, nil
}
