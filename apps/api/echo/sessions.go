package echoapi

import (
	"net/http"
	"sync"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/attendance"
)

var errNoSession = echo.NewHTTPError(http.StatusNotFound, "no attendance session open for this lesson")

type sessionEntry struct {
	mutex sync.Mutex
	sess  *attendance.Session
}

// SessionStore keeps the attendance editing sessions of the users, keyed by (user, lesson).
// Idle sessions expire after conf.Session.TTL; the least recently used are evicted past conf.Session.MaxEntries.
type SessionStore struct {
	cache *expirable.LRU[string, *sessionEntry]
}

func NewSessionStore(conf *core.Config) *SessionStore {
	return &SessionStore{
		cache: expirable.NewLRU[string, *sessionEntry](conf.Session.MaxEntries, nil, conf.Session.TTL),
	}
}

func sessionKey(userID, lessonID string) string {
	return userID + "/" + lessonID
}

// Put starts tracking sess, replacing any session of the same user on the same lesson.
func (st *SessionStore) Put(userID string, sess *attendance.Session) {
	st.cache.Add(sessionKey(userID, sess.LessonID()), &sessionEntry{sess: sess})
}

// With runs fn on the session of the user for lessonID, holding the session lock.
func (st *SessionStore) With(userID, lessonID string, fn func(sess *attendance.Session) error) error {
	entry, ok := st.cache.Get(sessionKey(userID, lessonID))
	if !ok {
		return errNoSession
	}
	entry.mutex.Lock()
	defer entry.mutex.Unlock()
	return fn(entry.sess)
}

// Delete reports whether a session was dropped.
func (st *SessionStore) Delete(userID, lessonID string) bool {
	return st.cache.Remove(sessionKey(userID, lessonID))
}

func (st *SessionStore) Len() int {
	return st.cache.Len()
}
