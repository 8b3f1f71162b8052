package client

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeAgainst(handler http.HandlerFunc) (*HTTPStore, func()) {
	srv := httptest.NewServer(handler)
	return NewHTTPStore(srv.URL, "tok"), srv.Close
}

// The server's field-level validation message must reach the caller, not be
// flattened into a bare status code.
func TestAppendShapeSurfacesServerMessage(t *testing.T) {
	s, done := storeAgainst(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"shapeDetails is not valid geometry for line"}`))
	})
	defer done()

	_, err := s.AppendShape("abc", "line", "garbage")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shapeDetails is not valid geometry for line")
}

func TestStoreUnauthenticated(t *testing.T) {
	s, done := storeAgainst(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	defer done()

	_, err := s.ListShapes("abc")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestStoreRoomNotFound(t *testing.T) {
	s, done := storeAgainst(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"no such room exists"}`))
	})
	defer done()

	_, err := s.ListShapes("nope")
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = s.AppendShape("nope", "line", `{"startX":0,"startY":0,"endX":1,"endY":1}`)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestStoreSendsSessionToken(t *testing.T) {
	var gotToken string
	s, done := storeAgainst(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Session-Token")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"shapes":[]}`))
	})
	defer done()

	_, err := s.ListShapes("abc")
	require.NoError(t, err)
	assert.Equal(t, "tok", gotToken)
}
