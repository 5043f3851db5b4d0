package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/skillcam-io/skillcam-api/internal/models"
)

func setupWaitlistDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:waitlist_repo?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.WaitlistEntry{}))
	require.NoError(t, db.Exec("DELETE FROM waitlist_entries").Error)

	return db
}

func TestWaitlistRepositoryCreateIsIdempotent(t *testing.T) {
	db := setupWaitlistDB(t)
	repo := NewWaitlistRepository(db)
	ctx := context.Background()

	first := models.WaitlistEntry{Email: "ana@example.com", Organization: "Clinic A"}
	created, err := repo.Create(ctx, &first)
	require.NoError(t, err)
	require.True(t, created)

	second := models.WaitlistEntry{Email: "ana@example.com", Organization: "Clinic B"}
	created, err = repo.Create(ctx, &second)
	require.NoError(t, err)
	require.False(t, created)

	var count int64
	require.NoError(t, db.Model(&models.WaitlistEntry{}).Count(&count).Error)
	require.EqualValues(t, 1, count)

	// The original row survives the repeated signup untouched.
	var stored models.WaitlistEntry
	require.NoError(t, db.Where("email = ?", "ana@example.com").First(&stored).Error)
	require.Equal(t, "Clinic A", stored.Organization)
}
