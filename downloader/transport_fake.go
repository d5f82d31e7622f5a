package downloader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"s3fetch/internal"
)

var _ internal.Transport = (*FakeTransport)(nil)

// GetFault is a scripted response a FakeTransport.Get call consumes instead
// of serving real object bytes. Returning a nil error with a body shorter
// than the requested range simulates a premature/short server response;
// returning a non-nil error simulates a transient transport failure.
type GetFault func(rangeHeader string) (contentLength int64, body io.ReadCloser, err error)

// FakeTransport is the narrow, in-memory, fault-injectable Transport double
// the engine's tests drive the six documented scenarios with. It never
// touches the network.
type FakeTransport struct {
	mu        sync.Mutex
	objects   map[string][]byte
	faults    map[string][]GetFault
	getCalls  map[string]int
	headCalls map[string]int
	headErr   map[string]error
}

// NewFakeTransport returns an empty fake transport.
func NewFakeTransport() *FakeTransport {
	return &FakeTransport{
		objects:   make(map[string][]byte),
		faults:    make(map[string][]GetFault),
		getCalls:  make(map[string]int),
		headCalls: make(map[string]int),
		headErr:   make(map[string]error),
	}
}

func objectKey(bucket, key string) string {
	return bucket + "/" + key
}

// PutObject registers the full content of an object for Head/Get to serve.
func (f *FakeTransport) PutObject(bucket, key string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[objectKey(bucket, key)] = data
}

// SetHeadError makes Head fail for the given object until cleared.
func (f *FakeTransport) SetHeadError(bucket, key string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.headErr[objectKey(bucket, key)] = err
}

// QueueFault appends a scripted fault for the next Get call on the object;
// faults are consumed in FIFO order, one per call, before falling back to
// serving real bytes.
func (f *FakeTransport) QueueFault(bucket, key string, fault GetFault) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := objectKey(bucket, key)
	f.faults[k] = append(f.faults[k], fault)
}

// GetCallCount reports how many times Get has been called for an object.
func (f *FakeTransport) GetCallCount(bucket, key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getCalls[objectKey(bucket, key)]
}

func (f *FakeTransport) Head(_ context.Context, bucket, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := objectKey(bucket, key)
	if err, ok := f.headErr[k]; ok && err != nil {
		return 0, err
	}
	data, ok := f.objects[k]
	if !ok {
		return 0, fmt.Errorf("fake transport: object %s not found", k)
	}
	return int64(len(data)), nil
}

func (f *FakeTransport) Get(_ context.Context, bucket, key, rangeHeader string) (int64, io.ReadCloser, error) {
	f.mu.Lock()
	k := objectKey(bucket, key)
	f.getCalls[k]++

	var fault GetFault
	if queue := f.faults[k]; len(queue) > 0 {
		fault = queue[0]
		f.faults[k] = queue[1:]
	}
	data := f.objects[k]
	f.mu.Unlock()

	if fault != nil {
		return fault(rangeHeader)
	}

	start, end, err := parseRange(rangeHeader)
	if err != nil {
		return 0, nil, err
	}
	if end >= int64(len(data)) {
		end = int64(len(data)) - 1
	}
	if start > end {
		return 0, io.NopCloser(bytes.NewReader(nil)), nil
	}
	slice := data[start : end+1]
	return int64(len(slice)), io.NopCloser(bytes.NewReader(slice)), nil
}

// NewTruncatedBodyFault returns a fault that serves only the first n bytes of
// the requested range, then ends the stream normally (no error) — simulating
// a server that closes the connection early.
func NewTruncatedBodyFault(data []byte, n int) GetFault {
	return func(rangeHeader string) (int64, io.ReadCloser, error) {
		start, end, err := parseRange(rangeHeader)
		if err != nil {
			return 0, nil, err
		}
		if end >= int64(len(data)) {
			end = int64(len(data)) - 1
		}
		full := data[start : end+1]
		if n > len(full) {
			n = len(full)
		}
		return int64(n), io.NopCloser(bytes.NewReader(full[:n])), nil
	}
}

// NewErrorFault returns a fault that always fails the Get call with err.
func NewErrorFault(err error) GetFault {
	return func(string) (int64, io.ReadCloser, error) {
		return 0, nil, err
	}
}

func parseRange(rangeHeader string) (start, end int64, err error) {
	const prefix = "bytes="
	if !strings.HasPrefix(rangeHeader, prefix) {
		return 0, 0, fmt.Errorf("fake transport: malformed range header %q", rangeHeader)
	}
	parts := strings.SplitN(strings.TrimPrefix(rangeHeader, prefix), "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("fake transport: malformed range header %q", rangeHeader)
	}
	start, serr := strconv.ParseInt(parts[0], 10, 64)
	if serr != nil {
		return 0, 0, fmt.Errorf("fake transport: bad range start: %w", serr)
	}
	end, eerr := strconv.ParseInt(parts[1], 10, 64)
	if eerr != nil {
		return 0, 0, fmt.Errorf("fake transport: bad range end: %w", eerr)
	}
	return start, end, nil
}
