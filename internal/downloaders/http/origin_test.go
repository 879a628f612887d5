package rangehttp

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMain(m *testing.M) {
	retryBackoff = time.Millisecond
	os.Exit(m.Run())
}

// origin is a fake file server. With ranges set it behaves like a static
// file host; without it Range headers are ignored and Accept-Ranges is
// never sent.
type origin struct {
	data   []byte
	ranges bool
	delay  time.Duration

	// failStart makes range requests starting at this offset return 500.
	failStart int64
	// failFirst makes the first n GETs return 500.
	failFirst int32
	// beforeRange runs ahead of serving each range request.
	beforeRange func(rangeHeader string)

	heads     atomic.Int32
	gets      atomic.Int32
	rangeGets atomic.Int32

	mu          sync.Mutex
	inflight    int
	maxInflight int
}

func newOrigin(data []byte, ranges bool) *origin {
	return &origin{data: data, ranges: ranges, failStart: -1}
}

func (o *origin) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodHead {
		o.heads.Add(1)
		w.Header().Set("Content-Length", strconv.Itoa(len(o.data)))
		if o.ranges {
			w.Header().Set("Accept-Ranges", "bytes")
		}
		return
	}
	n := o.gets.Add(1)
	o.enter()
	defer o.leave()
	if o.delay > 0 {
		time.Sleep(o.delay)
	}
	if n <= o.failFirst {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	rangeHeader := r.Header.Get("Range")
	if !o.ranges || rangeHeader == "" {
		w.Header().Set("Content-Length", strconv.Itoa(len(o.data)))
		w.Write(o.data)
		return
	}
	o.rangeGets.Add(1)
	if o.failStart >= 0 && strings.HasPrefix(rangeHeader, "bytes="+strconv.FormatInt(o.failStart, 10)+"-") {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if o.beforeRange != nil {
		o.beforeRange(rangeHeader)
	}
	http.ServeContent(w, r, "", time.Time{}, bytes.NewReader(o.data))
}

func (o *origin) enter() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.inflight++
	o.maxInflight = max(o.maxInflight, o.inflight)
}

func (o *origin) leave() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.inflight--
}

func (o *origin) peak() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.maxInflight
}

func startOrigin(t *testing.T, o *origin) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(o)
	t.Cleanup(server.Close)
	return server
}

// testData returns n bytes where no short window repeats, so misordered
// blocks break equality.
func testData(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i*31 + i/256)
	}
	return data
}
