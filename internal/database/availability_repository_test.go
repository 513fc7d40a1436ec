package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryReserveSeat(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAvailabilityRepository(db)
	ctx := context.Background()

	t.Run("Seat Reserved", func(t *testing.T) {
		mock.ExpectExec(`UPDATE bus_availability`).
			WithArgs("R1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		reserved, err := repo.TryReserveSeat(ctx, "R1")
		require.NoError(t, err)
		assert.True(t, reserved)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Sold Out Or Unknown Route", func(t *testing.T) {
		mock.ExpectExec(`UPDATE bus_availability`).
			WithArgs("R1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		reserved, err := repo.TryReserveSeat(ctx, "R1")
		require.NoError(t, err)
		assert.False(t, reserved)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectExec(`UPDATE bus_availability`).
			WithArgs("R1").
			WillReturnError(fmt.Errorf("database error"))

		reserved, err := repo.TryReserveSeat(ctx, "R1")
		assert.Error(t, err)
		assert.False(t, reserved)
		assert.Contains(t, err.Error(), "failed to reserve seat")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReleaseSeat(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAvailabilityRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`UPDATE bus_availability`).
			WithArgs("R1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.ReleaseSeat(ctx, "R1")
		assert.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown Route", func(t *testing.T) {
		mock.ExpectExec(`UPDATE bus_availability`).
			WithArgs("ghost").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.ReleaseSeat(ctx, "ghost")
		assert.ErrorIs(t, err, ErrRouteNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectExec(`UPDATE bus_availability`).
			WithArgs("R1").
			WillReturnError(fmt.Errorf("database error"))

		err := repo.ReleaseSeat(ctx, "R1")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to release seat")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetAllAvailability(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAvailabilityRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`SELECT bus_route, available_seats FROM bus_availability`).
			WillReturnRows(sqlmock.NewRows([]string{"bus_route", "available_seats"}).
				AddRow("R1", 7).
				AddRow("R2", 0))

		availability, err := repo.GetAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"R1": 7, "R2": 0}, availability)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty", func(t *testing.T) {
		mock.ExpectQuery(`SELECT bus_route, available_seats FROM bus_availability`).
			WillReturnRows(sqlmock.NewRows([]string{"bus_route", "available_seats"}))

		availability, err := repo.GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, availability)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectQuery(`SELECT bus_route, available_seats FROM bus_availability`).
			WillReturnError(fmt.Errorf("database error"))

		availability, err := repo.GetAll(ctx)
		assert.Error(t, err)
		assert.Nil(t, availability)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetAvailabilityByRoute(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAvailabilityRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(`SELECT (.+) FROM bus_availability`).
			WithArgs("R1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "bus_route", "available_seats", "updated_at"}).
				AddRow(1, "R1", 5, now))

		availability, err := repo.GetByRoute(ctx, "R1")
		require.NoError(t, err)
		assert.Equal(t, "R1", availability.BusRoute)
		assert.Equal(t, 5, availability.AvailableSeats)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM bus_availability`).
			WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows([]string{"id", "bus_route", "available_seats", "updated_at"}))

		availability, err := repo.GetByRoute(ctx, "ghost")
		assert.ErrorIs(t, err, ErrRouteNotFound)
		assert.Nil(t, availability)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSetForRoute(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAvailabilityRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO bus_availability`).
			WithArgs("R1", 10).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SetForRoute(ctx, "R1", 10)
		assert.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Negative Seats Rejected", func(t *testing.T) {
		err := repo.SetForRoute(ctx, "R1", -1)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be negative")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpsertMany(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAvailabilityRepository(db)
	ctx := context.Background()

	t.Run("Single Route", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO bus_availability`).
			WithArgs("R1", 8).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpsertMany(ctx, map[string]int{"R1": 8})
		assert.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Multiple Routes One Statement", func(t *testing.T) {
		// Map iteration order is not fixed, so match args loosely.
		mock.ExpectExec(`INSERT INTO bus_availability`).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 2))

		err := repo.UpsertMany(ctx, map[string]int{"R1": 8, "R2": 3})
		assert.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty Map Is No-Op", func(t *testing.T) {
		err := repo.UpsertMany(ctx, map[string]int{})
		assert.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Negative Seats Rejected", func(t *testing.T) {
		err := repo.UpsertMany(ctx, map[string]int{"R1": -5})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be negative")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteForRoute(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAvailabilityRepository(db)
	ctx := context.Background()

	mock.ExpectExec(`DELETE FROM bus_availability`).
		WithArgs("R1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.DeleteForRoute(ctx, "R1")
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
