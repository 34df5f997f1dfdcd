package persistence

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// SchemaOrder sorts entities so every table follows the tables it references.
func SchemaOrder(entities map[string]Entity) ([]Entity, error) {
	byTable := make(map[string]Entity, len(entities))
	tables := make([]string, 0, len(entities))
	for _, e := range entities {
		byTable[e.Table] = e
		tables = append(tables, e.Table)
	}
	sort.Strings(tables)

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(tables))
	ordered := make([]Entity, 0, len(tables))

	var visit func(table string) error
	visit = func(table string) error {
		switch state[table] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("entity dependency cycle at %s", table)
		}
		e, ok := byTable[table]
		if !ok {
			return fmt.Errorf("unknown entity table %s", table)
		}
		state[table] = visiting
		for _, dep := range e.DependsOn {
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[table] = done
		ordered = append(ordered, e)
		return nil
	}

	for _, t := range tables {
		if err := visit(t); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

// RunMigrations creates the tables for the loaded entity definitions.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, entities map[string]Entity, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping migrations")
		return nil
	}

	ordered, err := SchemaOrder(entities)
	if err != nil {
		return fmt.Errorf("order entities: %w", err)
	}

	for _, e := range ordered {
		logger.Info("applying schema", zap.String("table", e.Table))
		if _, err := pool.Exec(ctx, e.Schema); err != nil {
			return fmt.Errorf("apply schema %s: %w", e.Table, err)
		}
	}

	logger.Info("migrations applied", zap.Int("count", len(ordered)))
	return nil
}
