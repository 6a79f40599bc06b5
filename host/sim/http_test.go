package sim

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Simulator, *httptest.Server) {
	t.Helper()
	s := newSim(t, testConfig())
	srv := httptest.NewServer(NewServer(s, NewMetrics()).Router())
	t.Cleanup(srv.Close)
	return s, srv
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHTTPHealth(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

func TestHTTPCommand(t *testing.T) {
	_, srv := newTestServer(t)

	resp := post(t, srv.URL+"/command", `{"line":"water 120"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out commandResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, []string{"TARGET --> [120 mL]"}, out.Reply)

	resp = post(t, srv.URL+"/command", `{"line":"bogus"}`)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, []string{"Invalid command"}, out.Reply)

	resp = post(t, srv.URL+"/command", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTPAdvanceAndStatus(t *testing.T) {
	_, srv := newTestServer(t)

	resp := post(t, srv.URL+"/advance", `{"duration":"2s"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snap Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, "07:55:02", snap.TimeOfDay)
	assert.True(t, snap.Feeder.HaveReading)
	assert.Equal(t, uint32(250), snap.Feeder.Reading.Volume)

	resp = post(t, srv.URL+"/advance", `{"duration":"-1s"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post(t, srv.URL+"/advance", `{"duration":"soon"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTPPet(t *testing.T) {
	s, srv := newTestServer(t)

	resp := post(t, srv.URL+"/pet", `{"present":true}`)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	s.Advance(10 * time.Millisecond)
	assert.True(t, s.Status().PetPresent)

	resp = post(t, srv.URL+"/pet", `{"present":false}`)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	s.Advance(10 * time.Millisecond)
	assert.False(t, s.Status().PetPresent)
}

func TestHTTPMetrics(t *testing.T) {
	_, srv := newTestServer(t)

	post(t, srv.URL+"/command", `{"line":"water 120"}`)
	post(t, srv.URL+"/command", `{"line":"nonsense 1"}`)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	text := string(body)

	assert.Contains(t, text, "feeder_water_target_ml 120")
	assert.Contains(t, text, `feeder_console_commands_total{command="water"} 1`)
	assert.Contains(t, text, `feeder_console_commands_total{command="invalid"} 1`)
}

func TestHTTPMethodNotAllowed(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/command")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
