package memory

import (
	"sync"
	"time"

	"healthix-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// SessionContextRepository keeps chat-session upload bookkeeping in process
// memory. Entries expire on their own; staging vectors outlive the cache and
// are reclaimed when the session is explicitly cleared.
type SessionContextRepository struct {
	mu        sync.Mutex // serializes attachment appends
	contexts  *cache.Cache
	summaries *cache.Cache // processed file text keyed by content hash
}

func NewSessionContextRepository() *SessionContextRepository {
	return &SessionContextRepository{
		contexts:  cache.New(1*time.Hour, 10*time.Minute),
		summaries: cache.New(1*time.Hour, 10*time.Minute),
	}
}

func (r *SessionContextRepository) Save(sessionCtx *store.SessionContext) {
	r.contexts.Set(sessionCtx.SessionId, sessionCtx, cache.DefaultExpiration)
}

func (r *SessionContextRepository) Get(sessionId string) (*store.SessionContext, bool) {
	if x, found := r.contexts.Get(sessionId); found {
		return x.(*store.SessionContext), true
	}
	return nil, false
}

func (r *SessionContextRepository) Delete(sessionId string) {
	r.contexts.Delete(sessionId)
}

func (r *SessionContextRepository) AddAttachment(sessionId string, attachment store.Attachment) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	sessionCtx, found := r.Get(sessionId)
	if !found {
		return false
	}
	// Store a fresh copy so readers holding the old pointer never see a
	// half-appended slice.
	updated := *sessionCtx
	updated.Attachments = make([]store.Attachment, 0, len(sessionCtx.Attachments)+1)
	updated.Attachments = append(updated.Attachments, sessionCtx.Attachments...)
	updated.Attachments = append(updated.Attachments, attachment)
	r.Save(&updated)
	return true
}

// CacheProcessedText stores extracted file text so re-sent attachments are not
// reprocessed through the extraction backend.
func (r *SessionContextRepository) CacheProcessedText(attachmentId, text string) {
	r.summaries.Set(attachmentId, text, cache.DefaultExpiration)
}

func (r *SessionContextRepository) GetProcessedText(attachmentId string) (string, bool) {
	if x, found := r.summaries.Get(attachmentId); found {
		return x.(string), true
	}
	return "", false
}
