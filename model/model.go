package model

import (
	"github.com/Anas-Nayeem4922/draw-app/pkg/utils"
)

type (
	// Room is a collaboration session. Shapes belonging to it are stored
	// separately as an ordered, append-only list.
	Room struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		OwnerID string `json:"ownerId"`
	}

	// Shape is a committed, immutable drawing primitive. Details holds the
	// codec-encoded geometry and is opaque at this layer.
	Shape struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Details string `json:"details"`
		RoomID  string `json:"roomId,omitempty"`
	}

	User struct {
		ID           string `json:"id"`
		Email        string `json:"email"`
		Name         string `json:"name"`
		PasswordHash string `json:"-"`
	}
)

func (r *Room) Valid() bool {
	return utils.IsLengthValid(r.Name, 5, 100)
}

func (s *Shape) Valid() bool {
	return s.Name != "" && s.RoomID != ""
}
