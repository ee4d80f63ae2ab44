package handlers

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestConfigHandler_Get(t *testing.T) {
	session := &fakeSession{active: true}
	handler := NewConfigHandler(testConfig(), []string{"dnn", "hog"}, session, fakeKnown(7))

	recorder := httptest.NewRecorder()
	handler.Get(recorder, httptest.NewRequest(http.MethodGet, "/config", nil))

	assertStatusCode(t, recorder, http.StatusOK)

	var resp ConfigResponse
	parseJSONResponse(t, recorder, &resp)

	if !reflect.DeepEqual(resp.Detectors, []string{"dnn", "hog"}) {
		t.Errorf("unexpected detectors %v", resp.Detectors)
	}
	if resp.Encoder != "dlib" || resp.Index != "linear" || resp.Reload != "full" {
		t.Errorf("unexpected backends: %+v", resp)
	}
	if resp.KnownFaces != 7 {
		t.Errorf("expected 7 known faces, got %d", resp.KnownFaces)
	}
	if !resp.CameraActive || resp.SessionID != "session-1" {
		t.Errorf("unexpected session state: %+v", resp)
	}
	if resp.AcceptDistance != 0.5 || resp.HistoryCap != 50 {
		t.Errorf("unexpected thresholds: %+v", resp)
	}
}

func TestConfigHandler_NoDetectorsIsEmptyList(t *testing.T) {
	handler := NewConfigHandler(testConfig(), nil, &fakeSession{}, fakeKnown(0))

	recorder := httptest.NewRecorder()
	handler.Get(recorder, httptest.NewRequest(http.MethodGet, "/config", nil))

	var raw map[string]any
	parseJSONResponse(t, recorder, &raw)
	if _, ok := raw["detectors"].([]any); !ok {
		t.Errorf("expected detectors to be a JSON array, got %v", raw["detectors"])
	}
}
