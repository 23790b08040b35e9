// FilePath: internal/repository/postgres/postgres.captured_image.go
package postgres

import (
	"context"
	"database/sql"

	"github.com/fieldwatch/fieldwatch-hub/internal/database"
	"github.com/fieldwatch/fieldwatch-hub/internal/errors"
	"github.com/fieldwatch/fieldwatch-hub/internal/models"
	"github.com/fieldwatch/fieldwatch-hub/internal/repository"
)

type CapturedImageRepo struct {
	PostgresBaseRepo
}

func NewCapturedImageRepository(db database.DB) *CapturedImageRepo {
	repo := &PostgresBaseRepo{db: db}
	return &CapturedImageRepo{PostgresBaseRepo: *repo}
}

func (r *CapturedImageRepo) Create(ctx context.Context, capture *models.CapturedImage) error {
	query := `
		INSERT INTO captured_images (
			id, user_id, image_url, thingspeak_url,
			detection_timestamp, uploaded_at, status, metadata
		) VALUES (
			:id, :user_id, :image_url, :thingspeak_url,
			:detection_timestamp, :uploaded_at, :status, :metadata
		)`

	_, err := r.db.GetDB().NamedExecContext(ctx, query, capture)
	if err != nil {
		return errors.NewDatabaseError("failed to create captured image", err)
	}
	return nil
}

func (r *CapturedImageRepo) Get(ctx context.Context, id string) (*models.CapturedImage, error) {
	capture := &models.CapturedImage{}
	query := `SELECT * FROM captured_images WHERE id = $1`

	err := r.db.GetDB().GetContext(ctx, capture, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("captured image not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get captured image", err)
	}
	return capture, nil
}

// GetOldestPending selects the oldest pending row without claiming it.
// The id tie-break keeps the selection deterministic when two captures
// share an upload timestamp.
func (r *CapturedImageRepo) GetOldestPending(ctx context.Context) (*models.CapturedImage, error) {
	capture := &models.CapturedImage{}
	query := `
		SELECT * FROM captured_images
		WHERE status = 'pending'
		ORDER BY uploaded_at ASC, id ASC
		LIMIT 1`

	err := r.db.GetDB().GetContext(ctx, capture, query)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("no pending captures", err)
		}
		return nil, errors.NewDatabaseError("failed to get oldest pending capture", err)
	}
	return capture, nil
}

// UpdateStatus applies a transition guarded in SQL so that a
// concurrent writer cannot resurrect a terminal row.
func (r *CapturedImageRepo) UpdateStatus(ctx context.Context, id string, status models.CaptureStatus) error {
	query := `
		UPDATE captured_images SET status = $1
		WHERE id = $2
		  AND CASE status
			WHEN 'pending' THEN $1 IN ('processing', 'completed', 'failed')
			WHEN 'processing' THEN $1 IN ('completed', 'failed')
			ELSE false
		  END`

	result, err := r.db.GetDB().ExecContext(ctx, query, status, id)
	if err != nil {
		return errors.NewDatabaseError("failed to update capture status", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		if _, getErr := r.Get(ctx, id); getErr != nil {
			return getErr
		}
		return errors.NewDatabaseError("capture status transition not allowed", repository.ErrInvalidTransition)
	}

	return nil
}

func (r *CapturedImageRepo) MarkFailed(ctx context.Context, id string, reason string) error {
	query := `
		UPDATE captured_images
		SET status = 'failed',
		    metadata = metadata || jsonb_build_object('error', $1::text)
		WHERE id = $2 AND status NOT IN ('completed', 'failed')`

	result, err := r.db.GetDB().ExecContext(ctx, query, reason, id)
	if err != nil {
		return errors.NewDatabaseError("failed to mark capture as failed", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		if _, getErr := r.Get(ctx, id); getErr != nil {
			return getErr
		}
		return errors.NewDatabaseError("capture already in a terminal state", repository.ErrInvalidTransition)
	}

	return nil
}

func (r *CapturedImageRepo) ListByUser(ctx context.Context, userID string, status models.CaptureStatus, offset, limit int) ([]*models.CapturedImage, error) {
	captures := []*models.CapturedImage{}

	if status != "" {
		query := `
			SELECT * FROM captured_images
			WHERE user_id = $1 AND status = $2
			ORDER BY uploaded_at DESC LIMIT $3 OFFSET $4`
		err := r.db.GetDB().SelectContext(ctx, &captures, query, userID, status, limit, offset)
		if err != nil {
			return nil, errors.NewDatabaseError("failed to list captured images", err)
		}
		return captures, nil
	}

	query := `
		SELECT * FROM captured_images
		WHERE user_id = $1
		ORDER BY uploaded_at DESC LIMIT $2 OFFSET $3`
	err := r.db.GetDB().SelectContext(ctx, &captures, query, userID, limit, offset)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list captured images", err)
	}
	return captures, nil
}

func (r *CapturedImageRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	query := `DELETE FROM captured_images WHERE user_id = $1`

	result, err := r.db.GetDB().ExecContext(ctx, query, userID)
	if err != nil {
		return 0, errors.NewDatabaseError("failed to delete captured images", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewDatabaseError("failed to get rows affected", err)
	}
	return rows, nil
}
