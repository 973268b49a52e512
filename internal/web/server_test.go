package web_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/regisgambiza/Smart-Air-Purifier/internal/actuator"
	"github.com/regisgambiza/Smart-Air-Purifier/internal/engine"
	"github.com/regisgambiza/Smart-Air-Purifier/internal/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *actuator.Recorder) {
	t.Helper()

	out := actuator.NewRecorder()
	eng := engine.New(engine.Config{Profile: "balanced", Output: out})
	eng.Start()

	ts := httptest.NewServer(web.Handler(eng))
	t.Cleanup(ts.Close)

	return ts, out
}

func getSnapshot(t *testing.T, resp *http.Response) engine.Snapshot {
	t.Helper()
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var snap engine.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))

	return snap
}

func postForm(t *testing.T, rawURL string, form url.Values) *http.Response {
	t.Helper()

	resp, err := http.Post(rawURL, "application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()))
	require.NoError(t, err)

	return resp
}

func TestStatusEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/status")
	require.NoError(t, err)

	snap := getSnapshot(t, resp)
	assert.Equal(t, "classic_auto", snap.Mode)
	assert.Equal(t, "balanced", snap.Profile)
	assert.Equal(t, uint8(50), snap.SpeedPct)
	assert.Nil(t, snap.TempC, "no sensors wired means null readings")
}

func TestStatusRejectsPost(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postForm(t, ts.URL+"/api/status", url.Values{})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, http.MethodGet, resp.Header.Get("Allow"))
}

func TestSetModeEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postForm(t, ts.URL+"/api/control/mode", url.Values{"mode": {"manual"}})
	snap := getSnapshot(t, resp)
	assert.Equal(t, "manual", snap.Mode)
	assert.Equal(t, "mode:manual", snap.LastCmd)

	// Unrecognized keys land on classic auto, and still report accepted.
	resp = postForm(t, ts.URL+"/api/control/mode", url.Values{"mode": {"bogus"}})
	snap = getSnapshot(t, resp)
	assert.Equal(t, "classic_auto", snap.Mode)
	assert.Equal(t, uint32(2), snap.CmdSeq)
}

func TestSetProfileEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postForm(t, ts.URL+"/api/control/profile", url.Values{"profile": {"turbo"}})
	snap := getSnapshot(t, resp)
	assert.Equal(t, "turbo", snap.Profile)
}

func TestSetSpeedEndpoint(t *testing.T) {
	ts, out := newTestServer(t)

	resp := postForm(t, ts.URL+"/api/control/mode", url.Values{"mode": {"manual"}})
	resp.Body.Close()

	resp = postForm(t, ts.URL+"/api/control/speed", url.Values{"speed": {"73"}})
	snap := getSnapshot(t, resp)
	assert.Equal(t, uint8(73), snap.SpeedPct)

	got, ok := out.Last(0)
	require.True(t, ok)
	assert.Equal(t, uint8(73), got)
}

func TestSetSpeedRejectsGarbage(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postForm(t, ts.URL+"/api/control/speed", url.Values{"speed": {"fast"}})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestToggleEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postForm(t, ts.URL+"/api/control/toggle", url.Values{})
	snap := getSnapshot(t, resp)
	assert.Equal(t, "manual", snap.Mode)

	resp = postForm(t, ts.URL+"/api/control/toggle", url.Values{})
	snap = getSnapshot(t, resp)
	assert.Equal(t, "classic_auto", snap.Mode)
}

func TestLegacyRoutes(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/data")
	require.NoError(t, err)
	snap := getSnapshot(t, resp)
	assert.Equal(t, "balanced", snap.Profile)

	resp, err = http.Get(ts.URL + "/toggle")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "OK", string(body))

	resp, err = http.Get(ts.URL + "/set?speed=40")
	require.NoError(t, err)
	body, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "OK", string(body))

	resp, err = http.Get(ts.URL + "/data")
	require.NoError(t, err)
	snap = getSnapshot(t, resp)
	assert.Equal(t, "manual", snap.Mode, "legacy toggle switched the mode")
	assert.Equal(t, uint8(40), snap.SpeedPct, "legacy set applied in manual")
}
