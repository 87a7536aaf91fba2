package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	c := NewClient(Config{
		BaseURL:    serverURL,
		Username:   "etl",
		Password:   "secret",
		PageLimit:  100,
		MaxRetries: 2,
	}, zap.NewNop())
	c.retryInterval = time.Millisecond
	return c
}

func TestFetchPage_Success(t *testing.T) {
	var gotQuery, gotLimit, gotOffset string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "etl", user)
		assert.Equal(t, "secret", pass)
		assert.Equal(t, "/api/now/table/sys_user", r.URL.Path)

		gotQuery = r.URL.Query().Get("sysparm_query")
		gotLimit = r.URL.Query().Get("sysparm_limit")
		gotOffset = r.URL.Query().Get("sysparm_offset")

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"result":[{"sys_id":"u1","name":"Ann"},{"sys_id":"u2","name":"Ben"}]}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	rows, err := c.FetchPage(context.Background(), "sys_user", Query{
		Filter: "active=true",
		Fields: []string{"sys_id", "name"},
	}, 200)

	assert.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, "u1", rows[0]["sys_id"])
	assert.Equal(t, "active=true", gotQuery)
	assert.Equal(t, "100", gotLimit)
	assert.Equal(t, "200", gotOffset)
}

func TestFetchPage_PermanentErrorNoRetry(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.FetchPage(context.Background(), "sys_user", Query{}, 0)

	assert.Error(t, err)
	assert.True(t, IsPermanent(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts), "4xx must not be retried")
}

func TestFetchPage_TransientErrorRetried(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"result":[{"sys_id":"u1"}]}`)
	}))
	defer srv.Close()

	var succeeded, failed int32
	c := newTestClient(t, srv.URL)
	c.OnCall(func(success bool, elapsed time.Duration) {
		if success {
			atomic.AddInt32(&succeeded, 1)
		} else {
			atomic.AddInt32(&failed, 1)
		}
	})

	rows, err := c.FetchPage(context.Background(), "sys_user", Query{}, 0)

	assert.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	assert.Equal(t, int32(1), atomic.LoadInt32(&succeeded))
	assert.Equal(t, int32(2), atomic.LoadInt32(&failed))
}

func TestOnCall_NilDetachesObserver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"result":[{"sys_id":"u1"}]}`)
	}))
	defer srv.Close()

	var calls int32
	c := newTestClient(t, srv.URL)
	c.OnCall(func(success bool, elapsed time.Duration) {
		atomic.AddInt32(&calls, 1)
	})

	_, err := c.FetchPage(context.Background(), "sys_user", Query{}, 0)
	assert.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	c.OnCall(nil)

	_, err = c.FetchPage(context.Background(), "sys_user", Query{}, 0)
	assert.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchPage_RetriesExhausted(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.FetchPage(context.Background(), "sys_user", Query{}, 0)

	assert.Error(t, err)
	assert.False(t, IsPermanent(err))
	// MaxRetries=2 means one initial attempt plus two retries
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestFetchByKeys_Chunking(t *testing.T) {
	var filters []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		filter := r.URL.Query().Get("sysparm_query")
		filters = append(filters, filter)

		// Echo one row per requested key
		terms := strings.Split(filter, "^OR")
		fmt.Fprint(w, `{"result":[`)
		for i, term := range terms {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"sys_id":"%s"}`, strings.TrimPrefix(term, "sys_id="))
		}
		fmt.Fprint(w, `]}`)
	}))
	defer srv.Close()

	keys := make([]string, 120)
	for i := range keys {
		keys[i] = fmt.Sprintf("key-%03d", i)
	}

	c := newTestClient(t, srv.URL)
	rows, err := c.FetchByKeys(context.Background(), "core_company", []string{"sys_id"}, keys)

	assert.NoError(t, err)
	assert.Len(t, rows, 120)
	assert.Len(t, filters, 3) // 50 + 50 + 20
	assert.True(t, strings.HasPrefix(filters[0], "sys_id=key-000^ORsys_id=key-001"))

	// Every requested key must come back exactly once
	seen := make(map[string]int)
	for _, row := range rows {
		seen[row["sys_id"].(string)]++
	}
	assert.Len(t, seen, 120)
}

func TestFetchByKeys_Empty(t *testing.T) {
	c := newTestClient(t, "http://unused.invalid")
	rows, err := c.FetchByKeys(context.Background(), "sys_user", nil, nil)
	assert.NoError(t, err)
	assert.Nil(t, rows)
}

func TestAPIError_Classification(t *testing.T) {
	transient := &APIError{StatusCode: 503, Status: "503 Service Unavailable"}
	assert.True(t, transient.Transient())
	assert.False(t, IsPermanent(transient))

	rateLimited := &APIError{StatusCode: 429, Status: "429 Too Many Requests"}
	assert.True(t, rateLimited.Transient())

	auth := &APIError{StatusCode: 403, Status: "403 Forbidden"}
	assert.False(t, auth.Transient())
	assert.True(t, IsPermanent(auth))

	assert.False(t, IsPermanent(fmt.Errorf("dial tcp: connection refused")))
}
