package github

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"net/http"
	"net/http/httputil"
	"time"

	"github.com/gregjones/httpcache"
)

// defaultCacheTTL is how long a successful GET response is replayed without
// touching the network.
const defaultCacheTTL = 5 * time.Minute

// cacheTransport is an http.RoundTripper that memoizes successful GET
// responses for a fixed wall-clock window, keyed by request URL. Entries are
// never evicted; the cache lives and dies with the client that owns it.
//
// Non-2xx responses and transport errors are never stored and always
// propagate. A read-before-write race on a key costs at most one redundant
// network call.
type cacheTransport struct {
	base  http.RoundTripper
	store httpcache.Cache
	ttl   time.Duration
	now   func() time.Time
}

// newCacheTransport creates a cacheTransport over an in-memory byte store.
func newCacheTransport(base http.RoundTripper, ttl time.Duration) *cacheTransport {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &cacheTransport{
		base:  base,
		store: httpcache.NewMemoryCache(),
		ttl:   ttl,
		now:   time.Now,
	}
}

// RoundTrip serves a fresh cached response when one exists, otherwise
// performs the request and stores the response if it succeeded.
func (t *cacheTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return t.base.RoundTrip(req)
	}

	key := req.URL.String()
	if data, ok := t.store.Get(key); ok {
		if resp, ok := t.replay(req, data); ok {
			return resp, nil
		}
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		t.record(key, resp)
	}

	return resp, nil
}

// replay decodes a stored entry and returns the response if still fresh.
func (t *cacheTransport) replay(req *http.Request, data []byte) (*http.Response, bool) {
	if len(data) <= 8 {
		return nil, false
	}

	storedAt := time.Unix(0, int64(binary.BigEndian.Uint64(data[:8])))
	if t.now().Sub(storedAt) >= t.ttl {
		return nil, false
	}

	resp, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(data[8:])), req)
	if err != nil {
		t.store.Delete(req.URL.String())
		return nil, false
	}

	return resp, true
}

// record stores the response body and headers prefixed with the store time.
// DumpResponse leaves resp.Body readable for the caller.
func (t *cacheTransport) record(key string, resp *http.Response) {
	dump, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return
	}

	entry := make([]byte, 8, 8+len(dump))
	binary.BigEndian.PutUint64(entry, uint64(t.now().UnixNano()))
	t.store.Set(key, append(entry, dump...))
}
