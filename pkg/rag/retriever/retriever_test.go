package retriever

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthix-be/internal/pkg/logger"
	"healthix-be/pkg/rag/index"
	"healthix-be/pkg/store"
)

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{0.1, 0.2}
	}
	return vectors, nil
}

type fakeSearcher struct {
	byNamespace map[string][]store.Hit
	errs        map[string]error
}

func (f *fakeSearcher) Query(ctx context.Context, namespace string, vector []float32, topK int, uploadBatchId string) ([]store.Hit, error) {
	if err := f.errs[namespace]; err != nil {
		return nil, err
	}
	hits := f.byNamespace[namespace]
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

type fakeKeywordSource struct {
	records []KeywordRecord
	err     error
}

func (f *fakeKeywordSource) KeywordRecords(ctx context.Context) ([]KeywordRecord, error) {
	return f.records, f.err
}

func patientHit(content string) store.Hit {
	return store.Hit{
		Content:  content,
		Metadata: map[string]string{store.MetaType: store.TypePatientRecord},
		Score:    0.8,
	}
}

func stagingHit(content string) store.Hit {
	return store.Hit{
		Content:  content,
		Metadata: map[string]string{store.MetaType: store.TypeStagingDocument},
		Score:    0.7,
	}
}

func newTestEngine(embedder Embedder, searcher VectorSearcher, keywords KeywordSource) *Engine {
	return NewEngine(embedder, searcher, keywords, logger.NewIsolatedLogger("logs/test.log"), 5*time.Second)
}

func TestRetrieve_InputValidation(t *testing.T) {
	engine := newTestEngine(&fakeEmbedder{}, &fakeSearcher{}, &fakeKeywordSource{})

	_, err := engine.Retrieve(context.Background(), "   ", 5, "")
	assert.ErrorIs(t, err, ErrEmptyQuery)

	_, err = engine.Retrieve(context.Background(), "diabetes", 0, "")
	assert.ErrorIs(t, err, ErrInvalidTopK)
}

func TestRetrieve_StagingHitsComeFirst(t *testing.T) {
	searcher := &fakeSearcher{byNamespace: map[string][]store.Hit{
		index.NamespaceStagingDocuments: {stagingHit("uploaded lab report")},
		index.NamespacePatientRecords:   {patientHit("patient history")},
	}}
	engine := newTestEngine(&fakeEmbedder{}, searcher, &fakeKeywordSource{})

	hits, err := engine.Retrieve(context.Background(), "lab results", 5, "batch-1")
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "uploaded lab report", hits[0].Content)
	assert.Equal(t, "patient history", hits[1].Content)
}

func TestRetrieve_NoBatchSkipsStaging(t *testing.T) {
	searcher := &fakeSearcher{byNamespace: map[string][]store.Hit{
		index.NamespaceStagingDocuments: {stagingHit("should not appear")},
		index.NamespacePatientRecords:   {patientHit("patient history")},
	}}
	engine := newTestEngine(&fakeEmbedder{}, searcher, &fakeKeywordSource{})

	hits, err := engine.Retrieve(context.Background(), "history", 5, "")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "patient history", hits[0].Content)
}

func TestRetrieve_TruncatesToTopK(t *testing.T) {
	searcher := &fakeSearcher{byNamespace: map[string][]store.Hit{
		index.NamespaceStagingDocuments: {stagingHit("doc one"), stagingHit("doc two")},
		index.NamespacePatientRecords:   {patientHit("rec one"), patientHit("rec two")},
	}}
	engine := newTestEngine(&fakeEmbedder{}, searcher, &fakeKeywordSource{})

	hits, err := engine.Retrieve(context.Background(), "anything", 3, "batch-1")
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "doc one", hits[0].Content)
	assert.Equal(t, "rec one", hits[2].Content)
}

func TestRetrieve_NoEmbedderUsesKeywordSearch(t *testing.T) {
	keywords := &fakeKeywordSource{records: []KeywordRecord{
		{Content: "Patient Name: Jane | Diagnosis: diabetes", Fields: []string{"Jane", "diabetes"}, Metadata: map[string]string{store.MetaType: store.TypePatientRecord}},
		{Content: "Patient Name: Bob | Diagnosis: asthma", Fields: []string{"Bob", "asthma"}, Metadata: map[string]string{store.MetaType: store.TypePatientRecord}},
	}}
	engine := newTestEngine(nil, &fakeSearcher{}, keywords)

	hits, err := engine.Retrieve(context.Background(), "Diabetes", 5, "")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Contains(t, hits[0].Content, "Jane")
	assert.Equal(t, 1.0, hits[0].Score)
	assert.Equal(t, store.TypePatientRecord, hits[0].Metadata[store.MetaType])
}

func TestRetrieve_KeywordMatchesWholeQueryOnly(t *testing.T) {
	keywords := &fakeKeywordSource{records: []KeywordRecord{
		{Content: "Patient Name: Jane | Diagnosis: diabetes | Prescription: insulin", Fields: []string{"Jane", "diabetes", "insulin"}},
	}}
	engine := newTestEngine(nil, &fakeSearcher{}, keywords)

	// A partial overlap is not a match; the full query string has to appear.
	hits, err := engine.Retrieve(context.Background(), "rare diabetes", 5, "")
	require.NoError(t, err)
	assert.Empty(t, hits)

	// Queries spanning adjacent fields match against the concatenation.
	hits, err = engine.Retrieve(context.Background(), "diabetes insulin", 5, "")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 1.0, hits[0].Score)
}

func TestRetrieve_EmbedErrorFallsBackToKeyword(t *testing.T) {
	keywords := &fakeKeywordSource{records: []KeywordRecord{
		{Content: "Patient Name: Jane", Fields: []string{"Jane"}},
	}}
	engine := newTestEngine(&fakeEmbedder{err: errors.New("ollama unreachable")}, &fakeSearcher{}, keywords)

	hits, err := engine.Retrieve(context.Background(), "jane", 5, "")
	require.NoError(t, err)
	require.Len(t, hits, 1)
}

func TestRetrieve_EmptySemanticResultsFallBackToKeyword(t *testing.T) {
	searcher := &fakeSearcher{byNamespace: map[string][]store.Hit{}}
	keywords := &fakeKeywordSource{records: []KeywordRecord{
		{Content: "Patient Name: Jane | Diagnosis: flu", Fields: []string{"Jane", "flu"}},
	}}
	engine := newTestEngine(&fakeEmbedder{}, searcher, keywords)

	hits, err := engine.Retrieve(context.Background(), "flu", 5, "")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 1.0, hits[0].Score)
}

func TestRetrieve_SearchErrorsAreAbsorbed(t *testing.T) {
	searcher := &fakeSearcher{
		byNamespace: map[string][]store.Hit{
			index.NamespacePatientRecords: {patientHit("still retrievable")},
		},
		errs: map[string]error{
			index.NamespaceStagingDocuments: errors.New("staging table locked"),
		},
	}
	engine := newTestEngine(&fakeEmbedder{}, searcher, &fakeKeywordSource{})

	hits, err := engine.Retrieve(context.Background(), "anything", 5, "batch-1")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "still retrievable", hits[0].Content)
}

func TestRetrieve_EverythingEmptyReturnsEmptySlice(t *testing.T) {
	engine := newTestEngine(&fakeEmbedder{}, &fakeSearcher{}, &fakeKeywordSource{})

	hits, err := engine.Retrieve(context.Background(), "no matches anywhere", 5, "")
	require.NoError(t, err)
	assert.NotNil(t, hits)
	assert.Empty(t, hits)
}

func TestRetrieve_KeywordSourceErrorReturnsEmpty(t *testing.T) {
	engine := newTestEngine(nil, &fakeSearcher{}, &fakeKeywordSource{err: errors.New("db down")})

	hits, err := engine.Retrieve(context.Background(), "anything", 5, "")
	require.NoError(t, err)
	assert.Empty(t, hits)
}
