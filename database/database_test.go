package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions_backend/database"
	"admissions_backend/internal/config"
	"admissions_backend/internal/models"
	"admissions_backend/internal/testutil"
)

func TestSeedCatalogIsIdempotent(t *testing.T) {
	db := testutil.NewTestDB(t)

	require.NoError(t, database.SeedCatalog(db))
	require.NoError(t, database.SeedCatalog(db))

	var campuses, programs int64
	require.NoError(t, db.Model(&models.CampusInfo{}).Count(&campuses).Error)
	require.NoError(t, db.Model(&models.ProgramInfo{}).Count(&programs).Error)
	assert.EqualValues(t, 3, campuses)
	assert.EqualValues(t, 7, programs)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := database.Open(config.DatabaseConfig{Driver: "oracle", DSN: "x"}, "test")
	assert.Error(t, err)
}
