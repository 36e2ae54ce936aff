package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthix-be/internal/entity"
	"healthix-be/internal/repository/specification"
	"healthix-be/internal/repository/unitofwork"
	"healthix-be/pkg/database"
	"healthix-be/pkg/rag/index"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.PatientRepository())
	assert.NotNil(t, uow.VectorRecordRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	t.Run("Check Patient Repository", func(t *testing.T) {
		count, err := uow.PatientRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Patient count: %d", count)
	})

	t.Run("Check Vector Record Repository", func(t *testing.T) {
		count, err := uow.VectorRecordRepository().Count(context.Background(), index.NamespacePatientRecords)
		assert.NoError(t, err)
		t.Logf("Patient namespace chunk count: %d", count)
	})

	t.Run("Patient CRUD Round Trip", func(t *testing.T) {
		ctx := context.Background()
		patient := &entity.Patient{
			Id:              uuid.New(),
			Name:            "Integration Test Patient " + uuid.NewString()[:8],
			DateOfBirth:     "1985-06-15",
			Diagnosis:       "Hypertension",
			Prescription:    "Amlodipine 5mg daily",
			ConfidenceScore: 0.99,
			CreatedAt:       time.Now(),
		}
		require.NoError(t, uow.PatientRepository().Create(ctx, patient))
		defer func() {
			assert.NoError(t, uow.PatientRepository().Delete(ctx, patient.Id))
		}()

		found, err := uow.PatientRepository().FindOne(ctx, specification.ByID{ID: patient.Id})
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, patient.Name, found.Name)

		matches, err := uow.PatientRepository().FindAll(ctx, specification.NameOrDiagnosisLike{Term: "Hypertension"})
		require.NoError(t, err)
		assert.NotEmpty(t, matches)
	})

	t.Run("Vector Record Batch Lifecycle", func(t *testing.T) {
		ctx := context.Background()
		batchId := uuid.NewString()
		records := []*entity.VectorRecord{
			{
				Id:            uuid.New(),
				Namespace:     index.NamespaceStagingDocuments,
				RecordKey:     "attachment_" + batchId,
				Document:      "integration test chunk one",
				Metadata:      map[string]string{"type": "staging_document"},
				Embedding:     testVector(768, 0.1),
				ChunkIndex:    0,
				UploadBatchId: batchId,
				CreatedAt:     time.Now(),
			},
			{
				Id:            uuid.New(),
				Namespace:     index.NamespaceStagingDocuments,
				RecordKey:     "attachment_" + batchId,
				Document:      "integration test chunk two",
				Metadata:      map[string]string{"type": "staging_document"},
				Embedding:     testVector(768, 0.2),
				ChunkIndex:    1,
				UploadBatchId: batchId,
				CreatedAt:     time.Now(),
			},
		}
		require.NoError(t, uow.VectorRecordRepository().CreateBulk(ctx, records))

		scored, err := uow.VectorRecordRepository().SearchSimilar(ctx, index.NamespaceStagingDocuments, testVector(768, 0.1), 5, batchId)
		require.NoError(t, err)
		require.NotEmpty(t, scored)
		assert.InDelta(t, 1.0, scored[0].Similarity, 0.01)

		require.NoError(t, uow.VectorRecordRepository().DeleteByUploadBatch(ctx, index.NamespaceStagingDocuments, batchId))

		scored, err = uow.VectorRecordRepository().SearchSimilar(ctx, index.NamespaceStagingDocuments, testVector(768, 0.1), 5, batchId)
		require.NoError(t, err)
		assert.Empty(t, scored)
	})
}

// testVector makes a deterministic vector whose direction depends on seed.
func testVector(dim int, seed float32) []float32 {
	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = seed + float32(i%7)*0.01
	}
	return vec
}
