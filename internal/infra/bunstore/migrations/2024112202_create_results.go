package migrations

import (
	"context"

	"github.com/uptrace/bun"
	"quizboard/internal/infra/bunstore"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			if _, err := db.NewCreateTable().Model((*bunstore.ResultRow)(nil)).IfNotExists().Exec(ctx); err != nil {
				return err
			}
			_, err := db.NewCreateIndex().
				Model((*bunstore.ResultRow)(nil)).
				Index("results_quiz_id_idx").
				Column("quiz_id").
				IfNotExists().
				Exec(ctx)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.NewDropTable().Model((*bunstore.ResultRow)(nil)).IfExists().Exec(ctx)
			return err
		},
	)
}
