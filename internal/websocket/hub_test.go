package websocket

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient is a test double for Client that captures sent messages
type mockClient struct {
	id        string
	projectID int32
	messages  [][]byte
	mu        sync.Mutex
	closed    bool
}

func newMockClient(id string, projectID int32) *mockClient {
	return &mockClient{
		id:        id,
		projectID: projectID,
		messages:  make([][]byte, 0),
	}
}

func (m *mockClient) ID() string {
	return m.id
}

func (m *mockClient) ProjectID() int32 {
	return m.projectID
}

func (m *mockClient) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClientClosed
	}
	m.messages = append(m.messages, data)
	return nil
}

func (m *mockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockClient) messageCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

func waitForMessages(t *testing.T, client *mockClient, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if client.messageCount() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d messages, got %d", want, client.messageCount())
}

func TestHubRegisterAndCount(t *testing.T) {
	hub := NewHub()

	c1 := newMockClient("c1", 1)
	c2 := newMockClient("c2", 1)
	c3 := newMockClient("c3", 2)

	hub.Register(c1)
	hub.Register(c2)
	hub.Register(c3)

	assert.Equal(t, 2, hub.ClientCount(1))
	assert.Equal(t, 1, hub.ClientCount(2))
	assert.Equal(t, 3, hub.TotalClientCount())
}

func TestHubUnregister(t *testing.T) {
	hub := NewHub()

	c1 := newMockClient("c1", 1)
	hub.Register(c1)
	require.Equal(t, 1, hub.ClientCount(1))

	hub.Unregister(c1)
	assert.Equal(t, 0, hub.ClientCount(1))
	assert.Equal(t, 0, hub.TotalClientCount())
}

func TestHubBroadcast_OnlyTargetProject(t *testing.T) {
	hub := NewHub()

	watching := newMockClient("c1", 1)
	other := newMockClient("c2", 2)
	hub.Register(watching)
	hub.Register(other)

	hub.Broadcast(1, BudgetUpdated(map[string]int32{"id": 10}))

	waitForMessages(t, watching, 1)
	assert.Equal(t, 0, other.messageCount())
}

func TestHubBroadcast_NoClients(t *testing.T) {
	hub := NewHub()
	// Must not panic with no registered clients
	hub.Broadcast(99, BudgetUpdated(nil))
}

func TestHubBroadcastAll(t *testing.T) {
	hub := NewHub()

	c1 := newMockClient("c1", 1)
	c2 := newMockClient("c2", 2)
	hub.Register(c1)
	hub.Register(c2)

	hub.BroadcastAll(PeriodClosed(map[string]int32{"id": 5}))

	waitForMessages(t, c1, 1)
	waitForMessages(t, c2, 1)
}
