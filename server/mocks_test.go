package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tkrehbiel/activitynode/server/storage"
	"github.com/tkrehbiel/activitynode/server/telemetry"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Open() error {
	return m.Called().Error(0)
}

func (m *mockGateway) Close() {
	m.Called()
}

func (m *mockGateway) Put(ctx context.Context, table string, item storage.Record) error {
	return m.Called(ctx, table, item).Error(0)
}

func (m *mockGateway) Get(ctx context.Context, table string, id string) (storage.Record, error) {
	args := m.Called(ctx, table, id)
	if r, ok := args.Get(0).(storage.Record); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

// putIDs lists the ids of every Put in call order
func (m *mockGateway) putIDs() []string {
	ids := make([]string, 0)
	for _, call := range m.Calls {
		if call.Method == "Put" {
			ids = append(ids, call.Arguments.Get(2).(storage.Record).ID())
		}
	}
	return ids
}

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

// captureLog redirects telemetry output for the duration of a test
func captureLog(t *testing.T) *bytes.Buffer {
	var buf bytes.Buffer
	telemetry.SetOutput(&buf)
	t.Cleanup(func() { telemetry.SetOutput(os.Stdout) })
	return &buf
}

func jsonDecode(response *http.Response, v any) error {
	defer response.Body.Close()
	return json.NewDecoder(response.Body).Decode(v)
}
