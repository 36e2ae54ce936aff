package index

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthix-be/internal/entity"
	"healthix-be/internal/pkg/logger"
	"healthix-be/internal/repository/contract"
)

type fakeVectorRepo struct {
	records   []*entity.VectorRecord
	searchErr error
	createErr error
}

func (f *fakeVectorRepo) CreateBulk(ctx context.Context, records []*entity.VectorRecord) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.records = append(f.records, records...)
	return nil
}

func (f *fakeVectorRepo) ReplaceForRecordKey(ctx context.Context, namespace, recordKey string, records []*entity.VectorRecord) error {
	kept := f.records[:0]
	for _, r := range f.records {
		if !(r.Namespace == namespace && r.RecordKey == recordKey) {
			kept = append(kept, r)
		}
	}
	f.records = append(kept, records...)
	return nil
}

func (f *fakeVectorRepo) DeleteByNamespace(ctx context.Context, namespace string) error {
	kept := f.records[:0]
	for _, r := range f.records {
		if r.Namespace != namespace {
			kept = append(kept, r)
		}
	}
	f.records = kept
	return nil
}

func (f *fakeVectorRepo) DeleteByRecordKey(ctx context.Context, namespace, recordKey string) error {
	kept := f.records[:0]
	for _, r := range f.records {
		if !(r.Namespace == namespace && r.RecordKey == recordKey) {
			kept = append(kept, r)
		}
	}
	f.records = kept
	return nil
}

func (f *fakeVectorRepo) DeleteByUploadBatch(ctx context.Context, namespace, uploadBatchId string) error {
	kept := f.records[:0]
	for _, r := range f.records {
		if !(r.Namespace == namespace && r.UploadBatchId == uploadBatchId) {
			kept = append(kept, r)
		}
	}
	f.records = kept
	return nil
}

func (f *fakeVectorRepo) Count(ctx context.Context, namespace string) (int64, error) {
	var n int64
	for _, r := range f.records {
		if r.Namespace == namespace {
			n++
		}
	}
	return n, nil
}

func (f *fakeVectorRepo) SearchSimilar(ctx context.Context, namespace string, embedding []float32, limit int, uploadBatchId string) ([]*contract.ScoredVectorRecord, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	results := make([]*contract.ScoredVectorRecord, 0)
	for _, r := range f.records {
		if r.Namespace != namespace {
			continue
		}
		if uploadBatchId != "" && r.UploadBatchId != uploadBatchId {
			continue
		}
		results = append(results, &contract.ScoredVectorRecord{Record: r, Similarity: 0.9})
		if len(results) == limit {
			break
		}
	}
	return results, nil
}

type staticSource struct {
	entries []Entry
	err     error
}

func (s *staticSource) IndexEntries(ctx context.Context) ([]Entry, error) {
	return s.entries, s.err
}

func testIndex(repo contract.VectorRecordRepository) *Index {
	return NewIndex(repo, logger.NewIsolatedLogger("logs/test.log"))
}

func TestIndex_AddAndQuery(t *testing.T) {
	repo := &fakeVectorRepo{}
	idx := testIndex(repo)
	ctx := context.Background()

	err := idx.Add(ctx, NamespacePatientRecords, []Entry{
		{Key: "patient_1", Document: "Patient Name: Jane", Vector: []float32{0.1, 0.2}, Metadata: map[string]interface{}{"patient_id": "1", "chunk_index": 0}},
		{Key: "patient_1", Document: "Diagnosis: flu", Vector: []float32{0.3, 0.4}, Metadata: map[string]interface{}{"patient_id": "1", "chunk_index": 1}},
	})
	require.NoError(t, err)

	hits, err := idx.Query(ctx, NamespacePatientRecords, []float32{0.1, 0.2}, 5, "")
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "Patient Name: Jane", hits[0].Content)
	assert.Equal(t, "1", hits[0].Metadata["patient_id"])
	assert.Equal(t, 0.9, hits[0].Score)
}

func TestIndex_QueryScopedToUploadBatch(t *testing.T) {
	repo := &fakeVectorRepo{}
	idx := testIndex(repo)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, NamespaceStagingDocuments, []Entry{
		{Key: "doc_a", Document: "first session doc", Vector: []float32{1}, UploadBatchId: "batch-1"},
		{Key: "doc_b", Document: "second session doc", Vector: []float32{1}, UploadBatchId: "batch-2"},
	}))

	hits, err := idx.Query(ctx, NamespaceStagingDocuments, []float32{1}, 5, "batch-1")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "first session doc", hits[0].Content)
}

func TestIndex_AddEmptyBatchIsNoop(t *testing.T) {
	repo := &fakeVectorRepo{}
	idx := testIndex(repo)
	require.NoError(t, idx.Add(context.Background(), NamespacePatientRecords, nil))
	assert.Empty(t, repo.records)
}

func TestIndex_QueryZeroTopK(t *testing.T) {
	idx := testIndex(&fakeVectorRepo{})
	hits, err := idx.Query(context.Background(), NamespacePatientRecords, []float32{1}, 0, "")
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndex_Rebuild(t *testing.T) {
	repo := &fakeVectorRepo{}
	idx := testIndex(repo)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, NamespacePatientRecords, []Entry{
		{Key: "patient_old", Document: "stale", Vector: []float32{1}},
	}))

	source := &staticSource{entries: []Entry{
		{Key: "patient_1", Document: "fresh one", Vector: []float32{1}},
		{Key: "patient_2", Document: "fresh two", Vector: []float32{1}},
	}}
	count, err := idx.Rebuild(ctx, NamespacePatientRecords, source)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	hits, err := idx.Query(ctx, NamespacePatientRecords, []float32{1}, 10, "")
	require.NoError(t, err)
	require.Len(t, hits, 2)
	for _, h := range hits {
		assert.NotEqual(t, "stale", h.Content)
	}
}

func TestIndex_RebuildSourceErrorKeepsExisting(t *testing.T) {
	repo := &fakeVectorRepo{}
	idx := testIndex(repo)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, NamespacePatientRecords, []Entry{
		{Key: "patient_1", Document: "keep me", Vector: []float32{1}},
	}))

	source := &staticSource{err: errors.New("db down")}
	_, err := idx.Rebuild(ctx, NamespacePatientRecords, source)
	require.Error(t, err)

	hits, err := idx.Query(ctx, NamespacePatientRecords, []float32{1}, 10, "")
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestIndex_ReplaceRecord(t *testing.T) {
	repo := &fakeVectorRepo{}
	idx := testIndex(repo)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, NamespacePatientRecords, []Entry{
		{Key: "patient_1", Document: "old text", Vector: []float32{1}},
		{Key: "patient_2", Document: "untouched", Vector: []float32{1}},
	}))

	require.NoError(t, idx.ReplaceRecord(ctx, NamespacePatientRecords, "patient_1", []Entry{
		{Document: "new text", Vector: []float32{1}},
	}))

	hits, err := idx.Query(ctx, NamespacePatientRecords, []float32{1}, 10, "")
	require.NoError(t, err)
	require.Len(t, hits, 2)

	contents := []string{hits[0].Content, hits[1].Content}
	assert.Contains(t, contents, "new text")
	assert.Contains(t, contents, "untouched")
	assert.NotContains(t, contents, "old text")
}

func TestIndex_DropBatch(t *testing.T) {
	repo := &fakeVectorRepo{}
	idx := testIndex(repo)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, NamespaceStagingDocuments, []Entry{
		{Key: "doc_a", Document: "session doc", Vector: []float32{1}, UploadBatchId: "batch-1"},
		{Key: "doc_b", Document: "other session", Vector: []float32{1}, UploadBatchId: "batch-2"},
	}))

	require.NoError(t, idx.DropBatch(ctx, NamespaceStagingDocuments, "batch-1"))

	count, err := idx.Count(ctx, NamespaceStagingDocuments)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSanitizeMetadata(t *testing.T) {
	out := sanitizeMetadata(map[string]interface{}{
		"name":        "Jane",
		"chunk_index": 2,
		"score":       0.95,
		"missing":     nil,
	})
	assert.Equal(t, "Jane", out["name"])
	assert.Equal(t, "2", out["chunk_index"])
	assert.Equal(t, "0.95", out["score"])
	_, present := out["missing"]
	assert.False(t, present)

	assert.Empty(t, sanitizeMetadata(nil))
}
