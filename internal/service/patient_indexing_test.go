package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthix-be/internal/entity"
	"healthix-be/pkg/store"
)

func TestBuildPatientText(t *testing.T) {
	p := &entity.Patient{
		Name:         "Jane Doe",
		DateOfBirth:  "1990-04-12",
		Diagnosis:    "Asthma",
		Prescription: "Salbutamol 100mcg as needed",
	}
	text := buildPatientText(p)
	assert.Equal(t, "Patient Name: Jane Doe | Date of Birth: 1990-04-12 | Diagnosis: Asthma | Prescription: Salbutamol 100mcg as needed", text)
}

func TestPatientIndexEntries(t *testing.T) {
	p := &entity.Patient{
		Id:          uuid.New(),
		Name:        "Jane Doe",
		DateOfBirth: "1990-04-12",
	}
	chunks := []string{"chunk a", "chunk b"}
	vectors := [][]float32{{0.1}, {0.2}}

	entries := patientIndexEntries(p, chunks, vectors)
	require.Len(t, entries, 2)

	assert.Equal(t, patientRecordKey(p.Id), entries[0].Key)
	assert.Equal(t, "chunk a", entries[0].Document)
	assert.Equal(t, []float32{0.1}, entries[0].Vector)
	assert.Equal(t, store.TypePatientRecord, entries[0].Metadata[store.MetaType])
	assert.Equal(t, p.Id.String(), entries[0].Metadata[store.MetaPatientId])
	assert.Equal(t, 1, entries[1].ChunkIndex)
}

func TestBuildSources(t *testing.T) {
	patientId := uuid.NewString()
	hits := []store.Hit{
		{
			Content: "uploaded doc",
			Score:   0.9,
			Metadata: map[string]string{
				store.MetaType:     store.TypeStagingDocument,
				store.MetaFileName: "report.pdf",
			},
		},
		{
			Content: "patient chunk one",
			Score:   0.8,
			Metadata: map[string]string{
				store.MetaType:      store.TypePatientRecord,
				store.MetaPatientId: patientId,
				store.MetaName:      "Jane Doe",
			},
		},
		{
			Content: "patient chunk two",
			Score:   0.7,
			Metadata: map[string]string{
				store.MetaType:      store.TypePatientRecord,
				store.MetaPatientId: patientId,
				store.MetaName:      "Jane Doe",
			},
		},
	}

	sources, patientIds := buildSources(hits)
	require.Len(t, sources, 3)
	assert.Equal(t, "report.pdf", sources[0].Label)
	assert.Equal(t, store.TypeStagingDocument, sources[0].Type)
	assert.Equal(t, "Jane Doe", sources[1].Label)

	// Duplicate patient ids collapse
	assert.Equal(t, []string{patientId}, patientIds)
}

func TestTruncateTitle(t *testing.T) {
	assert.Equal(t, "short", truncateTitle("short", 60))
	long := truncateTitle("what medications is the patient on and when was the last refill issued", 30)
	assert.Len(t, []rune(long), 30)
	assert.Contains(t, long, "...")
}
