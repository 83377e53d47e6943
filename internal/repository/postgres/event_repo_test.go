package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"gatherly/internal/domain"
)

var eventCols = []string{
	"id", "title", "description", "location", "date_time",
	"capacity", "attendee_count", "image_url", "created_by",
	"created_at", "updated_at",
}

func eventRow(id string) *sqlmock.Rows {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(eventCols).AddRow(
		id, "Go Meetup", "Monthly meetup", "Berlin", now.Add(240*time.Hour),
		50, 12, nil, "user-1", now, now,
	)
}

func TestEventRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		event   *domain.Event
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr bool
	}{
		{
			name: "success",
			event: &domain.Event{
				Title:       "Go Meetup",
				Description: "Monthly meetup",
				Location:    "Berlin",
				DateTime:    now.Add(240 * time.Hour),
				Capacity:    50,
				CreatedBy:   "user-1",
				CreatedAt:   now,
				UpdatedAt:   now,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events`).
					WithArgs("Go Meetup", "Monthly meetup", "Berlin", now.Add(240*time.Hour), 50, "user-1", now, now).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-uuid-1"))
			},
			wantID: "ev-uuid-1",
		},
		{
			name: "db error",
			event: &domain.Event{
				Title: "Conf", Description: "d", Location: "l",
				DateTime: now, Capacity: 1, CreatedBy: "user-1",
				CreatedAt: now, UpdatedAt: now,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			err = repo.Create(ctx, tt.event)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, tt.event.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT (.+) FROM events WHERE id`).
			WithArgs("ev-1").
			WillReturnRows(eventRow("ev-1"))

		repo := NewEventRepository(db)
		event, err := repo.GetByID(ctx, "ev-1")
		require.NoError(t, err)
		require.Equal(t, "ev-1", event.ID)
		require.Equal(t, 12, event.AttendeeCount)
		require.Nil(t, event.ImageURL)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT (.+) FROM events WHERE id`).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		repo := NewEventRepository(db)
		_, err = repo.GetByID(ctx, "missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_List(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := eventRow("ev-1").AddRow(
		"ev-2", "Another", "d", "l", time.Now(),
		10, 0, "https://img.example/x.png", "user-2", time.Now(), time.Now(),
	)
	mock.ExpectQuery(`SELECT (.+) FROM events ORDER BY date_time`).
		WillReturnRows(rows)

	repo := NewEventRepository(db)
	events, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.NotNil(t, events[1].ImageURL)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("capacity guard blocks reduction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`AND attendee_count <= `).
			WithArgs(5, "ev-1").
			WillReturnError(sql.ErrNoRows)

		repo := NewEventRepository(db)
		capacity := 5
		_, err = repo.Update(ctx, "ev-1", domain.EventPatch{Capacity: &capacity})
		require.ErrorIs(t, err, domain.ErrConditionFailed)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("title-only update missing row is not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE events SET`).
			WithArgs("New title", "missing").
			WillReturnError(sql.ErrNoRows)

		repo := NewEventRepository(db)
		title := "New title"
		_, err = repo.Update(ctx, "missing", domain.EventPatch{Title: &title})
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE events SET`).
			WithArgs("New title", 60, "ev-1").
			WillReturnRows(eventRow("ev-1"))

		repo := NewEventRepository(db)
		title := "New title"
		capacity := 60
		event, err := repo.Update(ctx, "ev-1", domain.EventPatch{Title: &title, Capacity: &capacity})
		require.NoError(t, err)
		require.Equal(t, "ev-1", event.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty patch fetches current row", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT (.+) FROM events WHERE id`).
			WithArgs("ev-1").
			WillReturnRows(eventRow("ev-1"))

		repo := NewEventRepository(db)
		event, err := repo.Update(ctx, "ev-1", domain.EventPatch{})
		require.NoError(t, err)
		require.Equal(t, "ev-1", event.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_UpdateImageURL(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows(eventCols).AddRow(
		"ev-1", "Go Meetup", "Monthly meetup", "Berlin", time.Now(),
		50, 12, "https://bucket.s3.amazonaws.com/events/ev-1/1.png", "user-1", time.Now(), time.Now(),
	)
	mock.ExpectQuery(`UPDATE events SET image_url`).
		WithArgs("ev-1", "https://bucket.s3.amazonaws.com/events/ev-1/1.png").
		WillReturnRows(rows)

	repo := NewEventRepository(db)
	event, err := repo.UpdateImageURL(ctx, "ev-1", "https://bucket.s3.amazonaws.com/events/ev-1/1.png")
	require.NoError(t, err)
	require.NotNil(t, event.ImageURL)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM events WHERE id`).
			WithArgs("ev-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewEventRepository(db)
		require.NoError(t, repo.Delete(ctx, "ev-1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM events WHERE id`).
			WithArgs("missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewEventRepository(db)
		require.ErrorIs(t, repo.Delete(ctx, "missing"), domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
