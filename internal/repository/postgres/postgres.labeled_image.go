// FilePath: internal/repository/postgres/postgres.labeled_image.go
package postgres

import (
	"context"
	"database/sql"

	"github.com/fieldwatch/fieldwatch-hub/internal/database"
	"github.com/fieldwatch/fieldwatch-hub/internal/errors"
	"github.com/fieldwatch/fieldwatch-hub/internal/models"
)

type LabeledImageRepo struct {
	PostgresBaseRepo
}

func NewLabeledImageRepository(db database.DB) *LabeledImageRepo {
	repo := &PostgresBaseRepo{db: db}
	return &LabeledImageRepo{PostgresBaseRepo: *repo}
}

func (r *LabeledImageRepo) Create(ctx context.Context, label *models.LabeledImage) error {
	query := `
		INSERT INTO labeled_images (
			id, captured_image_id, user_id, labeled_image_url,
			animal_detected, confidence_score, processed_at,
			colab_notebook_id, thingspeak_url, sms_sent, sms_sent_at
		) VALUES (
			:id, :captured_image_id, :user_id, :labeled_image_url,
			:animal_detected, :confidence_score, :processed_at,
			:colab_notebook_id, :thingspeak_url, :sms_sent, :sms_sent_at
		)`

	_, err := r.db.GetDB().NamedExecContext(ctx, query, label)
	if err != nil {
		return errors.NewDatabaseError("failed to create labeled image", err)
	}
	return nil
}

func (r *LabeledImageRepo) Get(ctx context.Context, id string) (*models.LabeledImage, error) {
	label := &models.LabeledImage{}
	query := `SELECT * FROM labeled_images WHERE id = $1`

	err := r.db.GetDB().GetContext(ctx, label, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("labeled image not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get labeled image", err)
	}
	return label, nil
}

func (r *LabeledImageRepo) GetByCapturedImage(ctx context.Context, capturedImageID string) (*models.LabeledImage, error) {
	label := &models.LabeledImage{}
	query := `
		SELECT * FROM labeled_images
		WHERE captured_image_id = $1
		ORDER BY processed_at DESC
		LIMIT 1`

	err := r.db.GetDB().GetContext(ctx, label, query, capturedImageID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("labeled image not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get labeled image", err)
	}
	return label, nil
}

func (r *LabeledImageRepo) ListByUser(ctx context.Context, userID string, offset, limit int) ([]*models.LabeledImage, error) {
	labels := []*models.LabeledImage{}
	query := `
		SELECT * FROM labeled_images
		WHERE user_id = $1
		ORDER BY processed_at DESC LIMIT $2 OFFSET $3`

	err := r.db.GetDB().SelectContext(ctx, &labels, query, userID, limit, offset)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list labeled images", err)
	}
	return labels, nil
}

func (r *LabeledImageRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	query := `DELETE FROM labeled_images WHERE user_id = $1`

	result, err := r.db.GetDB().ExecContext(ctx, query, userID)
	if err != nil {
		return 0, errors.NewDatabaseError("failed to delete labeled images", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewDatabaseError("failed to get rows affected", err)
	}
	return rows, nil
}
