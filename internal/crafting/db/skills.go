package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rsned/crafting-macro-server/internal/crafting/sim"
)

// SkillStore handles skill registry access.
type SkillStore struct {
	db *DB
}

// NewSkillStore creates a new SkillStore.
func NewSkillStore(db *DB) *SkillStore {
	return &SkillStore{db: db}
}

const skillColumns = `name, variant, category, cp_cost, durability_cost, wait_seconds, unlock_level`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSkill(row rowScanner) (sim.Action, error) {
	var (
		a                 sim.Action
		variant, category string
	)
	if err := row.Scan(&a.Name, &variant, &category, &a.CPCost, &a.DurabilityCost, &a.WaitSeconds, &a.UnlockLevel); err != nil {
		return sim.Action{}, err
	}

	skill, err := sim.ParseSkill(variant)
	if err != nil {
		return sim.Action{}, fmt.Errorf("skill %q: %w", a.Name, err)
	}
	a.Skill = skill

	cat, err := sim.ParseCategory(category)
	if err != nil {
		return sim.Action{}, fmt.Errorf("skill %q: %w", a.Name, err)
	}
	a.Category = cat

	return a, nil
}

// ListSkills returns every registered skill ordered by unlock level.
func (s *SkillStore) ListSkills(ctx context.Context) ([]sim.Action, error) {
	return s.querySkills(ctx, `
		SELECT `+skillColumns+`
		FROM skills
		ORDER BY unlock_level, name
	`)
}

// SkillsAtLevel returns the skills unlocked at or below level.
func (s *SkillStore) SkillsAtLevel(ctx context.Context, level int) ([]sim.Action, error) {
	return s.querySkills(ctx, `
		SELECT `+skillColumns+`
		FROM skills
		WHERE unlock_level <= ?
		ORDER BY unlock_level, name
	`, level)
}

func (s *SkillStore) querySkills(ctx context.Context, query string, args ...any) ([]sim.Action, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying skills: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var skills []sim.Action
	for rows.Next() {
		a, err := scanSkill(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning skill: %w", err)
		}
		skills = append(skills, a)
	}

	return skills, rows.Err()
}

// GetSkill retrieves a single skill by name. A missing skill returns nil, nil.
func (s *SkillStore) GetSkill(ctx context.Context, name string) (*sim.Action, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+skillColumns+`
		FROM skills WHERE name = ?
	`, name)

	a, err := scanSkill(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying skill: %w", err)
	}

	return &a, nil
}

// CountSkills returns the number of registered skills.
func (s *SkillStore) CountSkills(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM skills`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting skills: %w", err)
	}
	return n, nil
}

// ReplaceSkills swaps the whole registry for actions in one transaction.
func (s *SkillStore) ReplaceSkills(ctx context.Context, actions []sim.Action) error {
	return s.db.InTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM skills`); err != nil {
			return fmt.Errorf("clearing skills: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO skills (`+skillColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing skill insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, a := range actions {
			_, err := stmt.ExecContext(ctx,
				a.Name, a.Skill.String(), a.Category.String(),
				a.CPCost, a.DurabilityCost, a.WaitSeconds, a.UnlockLevel,
			)
			if err != nil {
				return fmt.Errorf("inserting skill %q: %w", a.Name, err)
			}
		}
		return nil
	})
}

// SeedDefaults loads the built-in skills into an empty registry. It reports
// whether anything was written.
func (s *SkillStore) SeedDefaults(ctx context.Context) (bool, error) {
	n, err := s.CountSkills(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	if err := s.ReplaceSkills(ctx, sim.DefaultActions()); err != nil {
		return false, fmt.Errorf("seeding skills: %w", err)
	}
	return true, nil
}
