package persist

import (
	"context"

	"github.com/pokerune/engine/internal/data"
)

// TemplateRepo stores object templates in Postgres. Templates are read once
// at boot into a data.TemplateTable; the loader resolves against that table,
// never against the pool.
type TemplateRepo struct {
	db *DB
}

func NewTemplateRepo(db *DB) *TemplateRepo {
	return &TemplateRepo{db: db}
}

// LoadAll reads every template row.
func (r *TemplateRepo) LoadAll(ctx context.Context) ([]data.ObjectTemplate, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, kind, manifest, sprite, speed, solid, on_spawn, props
		 FROM object_templates`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []data.ObjectTemplate
	for rows.Next() {
		var t data.ObjectTemplate
		if err := rows.Scan(
			&t.ID, &t.Kind, &t.Manifest, &t.Sprite,
			&t.Speed, &t.Solid, &t.OnSpawn, &t.Props,
		); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// LoadTable reads every template into a resolver table.
func (r *TemplateRepo) LoadTable(ctx context.Context) (*data.TemplateTable, error) {
	templates, err := r.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return data.NewTemplateTable(templates), nil
}

// Upsert writes one template, replacing any existing row.
func (r *TemplateRepo) Upsert(ctx context.Context, t *data.ObjectTemplate) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO object_templates (id, kind, manifest, sprite, speed, solid, on_spawn, props, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		 ON CONFLICT (id) DO UPDATE SET
		   kind = EXCLUDED.kind,
		   manifest = EXCLUDED.manifest,
		   sprite = EXCLUDED.sprite,
		   speed = EXCLUDED.speed,
		   solid = EXCLUDED.solid,
		   on_spawn = EXCLUDED.on_spawn,
		   props = EXCLUDED.props,
		   updated_at = now()`,
		t.ID, t.Kind, t.Manifest, t.Sprite, t.Speed, t.Solid, t.OnSpawn, t.Props,
	)
	return err
}

// Delete removes one template.
func (r *TemplateRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM object_templates WHERE id = $1`, id)
	return err
}

// SeedFrom bulk-imports a YAML template table, overwriting existing rows.
// Used by the import command to move file-based data into the database.
func (r *TemplateRepo) SeedFrom(ctx context.Context, templates []data.ObjectTemplate) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := range templates {
		t := &templates[i]
		if _, err := tx.Exec(ctx,
			`INSERT INTO object_templates (id, kind, manifest, sprite, speed, solid, on_spawn, props, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
			 ON CONFLICT (id) DO UPDATE SET
			   kind = EXCLUDED.kind,
			   manifest = EXCLUDED.manifest,
			   sprite = EXCLUDED.sprite,
			   speed = EXCLUDED.speed,
			   solid = EXCLUDED.solid,
			   on_spawn = EXCLUDED.on_spawn,
			   props = EXCLUDED.props,
			   updated_at = now()`,
			t.ID, t.Kind, t.Manifest, t.Sprite, t.Speed, t.Solid, t.OnSpawn, t.Props,
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
