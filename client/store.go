package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Anas-Nayeem4922/draw-app/model"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrRoomNotFound    = errors.New("room not found")
)

// Store is the persistence collaborator as seen from a participant. The
// server's storage.Storage satisfies it for in-process use; HTTPStore talks
// to a remote server.
type Store interface {
	CreateRoom(ownerID, name string) (string, error)
	RoomExist(roomID string) bool
	ListShapes(roomID string) ([]*model.Shape, error)
	AppendShape(roomID, name, details string) (string, error)
	ClearShapes(roomID string) (int64, error)
}

// HTTPStore implements Store against the draw-app HTTP API.
type HTTPStore struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewHTTPStore(baseURL, token string) *HTTPStore {
	return &HTTPStore{
		BaseURL: baseURL,
		Token:   token,
		Client:  http.DefaultClient,
	}
}

// do runs one request. For non-OK responses the server's message body is
// returned alongside the status so callers can surface field-level errors to
// the user instead of a bare status code.
func (s *HTTPStore) do(method, path string, body, out interface{}) (int, string, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, "", err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, s.BaseURL+path, rd)
	if err != nil {
		return 0, "", err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Session-Token", s.Token)

	res, err := s.Client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusUnauthorized {
		return res.StatusCode, "", ErrUnauthenticated
	}
	if res.StatusCode == http.StatusOK {
		if out != nil {
			if err = json.NewDecoder(res.Body).Decode(out); err != nil {
				return res.StatusCode, "", err
			}
		}
		return res.StatusCode, "", nil
	}

	var failure struct {
		Message string `json:"message"`
	}
	_ = json.NewDecoder(res.Body).Decode(&failure)
	return res.StatusCode, failure.Message, nil
}

// statusError builds the user-facing error for a failed call, keeping the
// server's own message when it sent one.
func statusError(op string, code int, msg string) error {
	if msg == "" {
		return fmt.Errorf("%s failed with status %d", op, code)
	}
	return fmt.Errorf("%s failed with status %d: %s", op, code, msg)
}

// CreateRoom ignores ownerID: the server derives the owner from the session.
func (s *HTTPStore) CreateRoom(_, name string) (string, error) {
	var out struct {
		RoomID string `json:"roomId"`
	}
	code, msg, err := s.do(http.MethodPost, "/room", map[string]string{"name": name}, &out)
	if err != nil {
		return "", err
	}
	if code != http.StatusOK {
		return "", statusError("create room", code, msg)
	}
	return out.RoomID, nil
}

func (s *HTTPStore) RoomExist(roomID string) bool {
	code, _, err := s.do(http.MethodGet, "/room/"+roomID, nil, nil)
	return err == nil && code == http.StatusOK
}

func (s *HTTPStore) ListShapes(roomID string) ([]*model.Shape, error) {
	var out struct {
		Shapes []*model.Shape `json:"shapes"`
	}
	code, msg, err := s.do(http.MethodGet, "/room/"+roomID+"/shapes", nil, &out)
	if err != nil {
		return nil, err
	}
	switch code {
	case http.StatusOK:
		return out.Shapes, nil
	case http.StatusNotFound:
		return nil, ErrRoomNotFound
	default:
		return nil, statusError("list shapes", code, msg)
	}
}

func (s *HTTPStore) AppendShape(roomID, name, details string) (string, error) {
	var out struct {
		Shape model.Shape `json:"shape"`
	}
	body := map[string]string{
		"roomId":       roomID,
		"shape":        name,
		"shapeDetails": details,
	}
	code, msg, err := s.do(http.MethodPost, "/shape", body, &out)
	if err != nil {
		return "", err
	}
	switch code {
	case http.StatusOK:
		return out.Shape.ID, nil
	case http.StatusNotFound:
		return "", ErrRoomNotFound
	default:
		return "", statusError("append shape", code, msg)
	}
}

func (s *HTTPStore) ClearShapes(roomID string) (int64, error) {
	var out struct {
		Cleared int64 `json:"cleared"`
	}
	code, msg, err := s.do(http.MethodDelete, "/room/"+roomID+"/shapes", nil, &out)
	if err != nil {
		return 0, err
	}
	switch code {
	case http.StatusOK:
		return out.Cleared, nil
	case http.StatusNotFound:
		return 0, ErrRoomNotFound
	default:
		return 0, statusError("clear shapes", code, msg)
	}
}
