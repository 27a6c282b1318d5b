package integration

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aster-data/aster/internal/database"
	"github.com/aster-data/aster/internal/repositories/rawrecord"
	"github.com/aster-data/aster/internal/repositories/validatedrecord"
	"github.com/aster-data/aster/pkg/logging"
	"github.com/aster-data/aster/pkg/models"
)

// getTestDB connects to the Postgres instance named by the DB_* environment
// variables and applies the schema migrations. Skips when no database is
// configured so the suite stays runnable without one.
func getTestDB(t *testing.T) *database.DatabaseInstance {
	t.Helper()

	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		t.Skip("Database not configured")
	}
	dbPort := os.Getenv("DB_PORT")
	if dbPort == "" {
		dbPort = "5432"
	}
	dbUser := os.Getenv("DB_USER_NAME")
	if dbUser == "" {
		dbUser = "user"
	}
	dbPass := os.Getenv("DB_PASSWORD")
	if dbPass == "" {
		dbPass = "password"
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "aster"
	}

	logger := logging.NewNopLogger()
	db, err := database.Connect(context.Background(), database.ConnectionConfig{
		Host:            dbHost,
		Port:            dbPort,
		User:            dbUser,
		Password:        dbPass,
		Name:            dbName,
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	}, logger)
	require.NoError(t, err, "Failed to connect to test database")
	t.Cleanup(func() { db.Close() })

	ms := database.NewMigrationService(logger, &database.MigrationConfig{
		MigrationFolderPath: "../../db/pg",
		AutoRollback:        true,
	})
	require.NoError(t, ms.MigrateInstance(db, dbName))

	return db
}

func TestRawRecordRepository_UpsertRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := rawrecord.NewRepository(db, logging.NewNopLogger())
	ctx := context.Background()

	id := "C-" + uuid.NewString()
	sourceFile := "upload-" + uuid.NewString() + ".xlsx"
	rec := &models.RawRecord{
		ID:          id,
		PhoneNumber: "91234567",
		CompanyName: "Acme Pte Ltd",
		SourceFile:  sourceFile,
		Metadata:    json.RawMessage(`{"source_sheet":"Sheet1","row_index":2}`),
	}

	inserted, err := repo.Upsert(ctx, rec)
	require.NoError(t, err)
	assert.True(t, inserted)

	// Second upsert of the same id overwrites the whole row.
	rec.CompanyName = "Acme Pte Ltd (SG)"
	rec.Email = "ops@acme.sg"
	inserted, err = repo.Upsert(ctx, rec)
	require.NoError(t, err)
	assert.False(t, inserted)

	fetched, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, "Acme Pte Ltd (SG)", fetched.CompanyName)
	assert.Equal(t, "ops@acme.sg", fetched.Email)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(fetched.Metadata, &meta))
	assert.Equal(t, "Sheet1", meta["source_sheet"])

	listed, err := repo.ListBySourceFile(ctx, sourceFile)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, id, listed[0].ID)

	missing, err := repo.Get(ctx, "absent-"+uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestValidatedRecordRepository_InsertUpdateLookup(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := validatedrecord.NewRepository(db, logging.NewNopLogger())
	ctx := context.Background()

	id := "C-" + uuid.NewString()
	email := uuid.NewString() + "@acme.sg"
	status := true
	require.NoError(t, repo.Insert(ctx, &models.ValidatedRecord{
		ID:          id,
		Phone:       "81234567",
		Status:      &status,
		CompanyName: "Acme",
		Email:       email,
	}))

	fetched, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	require.NotNil(t, fetched.Status)
	assert.True(t, *fetched.Status)

	byPair, err := repo.GetByIDAndPhone(ctx, id, "81234567")
	require.NoError(t, err)
	require.NotNil(t, byPair)
	assert.Equal(t, email, byPair.Email)

	byEmail, err := repo.FindByEmail(ctx, email)
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, id, byEmail.ID)

	// A patch fills blanks without touching populated fields.
	address := "1 Raffles Place"
	require.NoError(t, repo.UpdateFields(ctx, id, "81234567", models.FieldPatch{
		PhysicalAddress: &address,
	}, &status))

	updated, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "1 Raffles Place", updated.PhysicalAddress)
	assert.Equal(t, "Acme", updated.CompanyName)

	// A second row claiming the same email violates the unique constraint.
	err = repo.Insert(ctx, &models.ValidatedRecord{
		ID:     "C-" + uuid.NewString(),
		Phone:  "81234568",
		Status: &status,
		Email:  email,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrEmailConflict))
}

func TestValidatedRecordRepository_ConsolidationGroup(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := validatedrecord.NewRepository(db, logging.NewNopLogger())
	ctx := context.Background()

	// Two rows sharing one number, distinct completeness.
	sharedPhone := "9" + uuid.NewString()[:7]
	status := true
	sparse := &models.ValidatedRecord{
		ID:     "C-" + uuid.NewString(),
		Phone:  sharedPhone,
		Status: &status,
	}
	full := &models.ValidatedRecord{
		ID:          "C-" + uuid.NewString(),
		Phone:       sharedPhone,
		Status:      &status,
		CompanyName: "Acme",
		Website:     "https://acme.sg",
	}
	require.NoError(t, repo.Insert(ctx, sparse))
	require.NoError(t, repo.Insert(ctx, full))

	shared, err := repo.ListSharingPhones(ctx)
	require.NoError(t, err)
	ids := make(map[string]bool, len(shared))
	for _, row := range shared {
		ids[row.ID] = true
	}
	assert.True(t, ids[sparse.ID])
	assert.True(t, ids[full.ID])

	// The batch write lands both members in one transaction.
	sparse.CompanyName = "Acme"
	sparse.Website = "https://acme.sg"
	require.NoError(t, repo.UpdateCompanyFieldsBatch(ctx, []*models.ValidatedRecord{sparse, full}))

	merged, err := repo.Get(ctx, sparse.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", merged.CompanyName)
	assert.Equal(t, "https://acme.sg", merged.Website)
}

func TestValidatedRecordRepository_BatchRollsBackOnFailure(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := validatedrecord.NewRepository(db, logging.NewNopLogger())
	ctx := context.Background()

	status := true
	takenEmail := uuid.NewString() + "@acme.sg"
	holder := &models.ValidatedRecord{
		ID:     "C-" + uuid.NewString(),
		Phone:  "61234567",
		Status: &status,
		Email:  takenEmail,
	}
	first := &models.ValidatedRecord{
		ID:     "C-" + uuid.NewString(),
		Phone:  "61234568",
		Status: &status,
	}
	second := &models.ValidatedRecord{
		ID:     "C-" + uuid.NewString(),
		Phone:  "61234569",
		Status: &status,
	}
	require.NoError(t, repo.Insert(ctx, holder))
	require.NoError(t, repo.Insert(ctx, first))
	require.NoError(t, repo.Insert(ctx, second))

	// The second member's email collides, so the whole batch must unwind,
	// including the first member's already-executed update.
	first.CompanyName = "Never Lands"
	second.Email = takenEmail
	err := repo.UpdateCompanyFieldsBatch(ctx, []*models.ValidatedRecord{first, second})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrEmailConflict))

	fetched, err := repo.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Empty(t, fetched.CompanyName)

	// The failed batch released its transaction; the next write goes through.
	first.CompanyName = "Acme"
	require.NoError(t, repo.UpdateCompanyFieldsBatch(ctx, []*models.ValidatedRecord{first}))

	retried, err := repo.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", retried.CompanyName)
}
