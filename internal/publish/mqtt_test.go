package publish

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cjeanneret/gpcam/internal/config"
	"github.com/cjeanneret/gpcam/internal/tether"
	"github.com/cjeanneret/gpcam/pkg/gphoto"
)

// fakeToken completes immediately with err.
type fakeToken struct {
	err     error
	pending bool
}

func (t *fakeToken) Wait() bool                     { return !t.pending }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return !t.pending }
func (t *fakeToken) Error() error                   { return t.err }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	if !t.pending {
		close(ch)
	}
	return ch
}

type message struct {
	topic    string
	qos      byte
	retained bool
	payload  any
}

// fakeClient records published messages.
type fakeClient struct {
	mu          sync.Mutex
	connectErr  error
	publishErr  error
	stall       bool
	connected   bool
	disconnects int
	messages    []message
}

func (c *fakeClient) Connect() pahomqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = c.connectErr == nil
	return &fakeToken{err: c.connectErr}
}

func (c *fakeClient) Disconnect(uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	c.disconnects++
}

func (c *fakeClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload any) pahomqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, message{topic, qos, retained, payload})
	return &fakeToken{err: c.publishErr, pending: c.stall}
}

func testConfig() config.MQTTConfig {
	return config.MQTTConfig{Broker: "tcp://localhost:1883", ClientID: "gpcam", TopicPrefix: "studio", QoS: 1}
}

func sampleRecord() tether.Record {
	return tether.Record{
		Session: "0b8f1e9c-4a52-4c53-9d7e-0d3c6f1f8a11",
		Shot:    2,
		Event: gphoto.CameraEvent{
			Kind: gphoto.EventNewFile,
			Path: gphoto.CameraFilePath{Folder: "/store_00010001/DCIM/100CANON", Name: "IMG_0002.JPG"},
		},
		File: "downloads/IMG_0002.JPG",
		Time: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestStartAnnouncesOnline(t *testing.T) {
	c := &fakeClient{}
	p := NewWithClient(testConfig(), c)
	require.NoError(t, p.Start())

	require.Len(t, c.messages, 1)
	assert.Equal(t, message{"studio/status", 1, true, "online"}, c.messages[0])
}

func TestStartConnectError(t *testing.T) {
	c := &fakeClient{connectErr: errors.New("connection refused")}
	p := NewWithClient(testConfig(), c)
	err := p.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mqtt connect")

	p.Publish(sampleRecord())
	assert.Empty(t, c.messages, "nothing is published before a successful start")
}

func TestPublishRecord(t *testing.T) {
	c := &fakeClient{}
	p := NewWithClient(testConfig(), c)
	require.NoError(t, p.Start())

	p.Publish(sampleRecord())
	require.Len(t, c.messages, 2)
	msg := c.messages[1]
	assert.Equal(t, "studio/events", msg.topic)
	assert.False(t, msg.retained)

	var got map[string]any
	require.NoError(t, json.Unmarshal(msg.payload.([]byte), &got))
	assert.Equal(t, "0b8f1e9c-4a52-4c53-9d7e-0d3c6f1f8a11", got["session"])
	assert.Equal(t, float64(2), got["shot"])
	assert.Equal(t, "downloads/IMG_0002.JPG", got["file"])
	event := got["event"].(map[string]any)
	assert.Equal(t, "new_file", event["kind"])
	assert.Equal(t, "IMG_0002.JPG", event["path"].(map[string]any)["name"])
}

func TestPublishFailureIsNotFatal(t *testing.T) {
	c := &fakeClient{}
	p := NewWithClient(testConfig(), c)
	require.NoError(t, p.Start())

	c.publishErr = errors.New("not connected")
	p.Publish(sampleRecord())
	c.publishErr = nil
	c.stall = true
	p.Publish(sampleRecord())
	assert.Len(t, c.messages, 3)
}

func TestStopAnnouncesOffline(t *testing.T) {
	c := &fakeClient{}
	p := NewWithClient(testConfig(), c)
	require.NoError(t, p.Start())

	p.Stop()
	p.Stop()
	assert.Equal(t, 1, c.disconnects)
	last := c.messages[len(c.messages)-1]
	assert.Equal(t, message{"studio/status", 1, true, "offline"}, last)

	p.Publish(sampleRecord())
	assert.Equal(t, last, c.messages[len(c.messages)-1])
}

func TestStopWithoutStart(t *testing.T) {
	c := &fakeClient{}
	NewWithClient(testConfig(), c).Stop()
	assert.Zero(t, c.disconnects)
	assert.Empty(t, c.messages)
}

func TestNewBuildsPahoClient(t *testing.T) {
	p := New(testConfig())
	require.NotNil(t, p.client)
	assert.False(t, p.client.IsConnected())
}
