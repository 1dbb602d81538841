package migrations

import (
	"context"

	"github.com/uptrace/bun"
	"quizboard/internal/infra/bunstore"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			for _, model := range []interface{}{(*bunstore.QuizRow)(nil), (*bunstore.QuestionRow)(nil)} {
				if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
					return err
				}
			}
			_, err := db.NewCreateIndex().
				Model((*bunstore.QuestionRow)(nil)).
				Index("questions_quiz_id_position_idx").
				Column("quiz_id", "position").
				IfNotExists().
				Exec(ctx)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			for _, model := range []interface{}{(*bunstore.QuestionRow)(nil), (*bunstore.QuizRow)(nil)} {
				if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
					return err
				}
			}
			return nil
		},
	)
}
