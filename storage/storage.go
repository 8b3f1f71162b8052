package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Anas-Nayeem4922/draw-app/model"
	"github.com/Anas-Nayeem4922/draw-app/pkg/utils"
	"github.com/go-redis/redis/v7"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUserExists      = errors.New("user already exists")
)

type Storage interface {
	CreateUser(email, name, password string) (*model.User, error)
	Authenticate(email, password string) (*model.User, error)
	CreateSession(userID string, ttl time.Duration) (string, error)
	GetSession(token string) (*model.User, error)

	CreateRoom(ownerID, name string) (string, error)
	RoomExist(roomID string) bool
	GetRoom(roomID string) (*model.Room, error)
	RoomsByOwner(ownerID string) ([]*model.Room, error)

	ListShapes(roomID string) ([]*model.Shape, error)
	AppendShape(roomID, name, details string) (string, error)
	ClearShapes(roomID string) (int64, error)

	IncrVisits() (int64, error)
}

type storage struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) Storage {
	return &storage{rdb: rdb}
}

func (s *storage) CreateUser(email, name, password string) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	}

	ok, err := s.rdb.SetNX("useremail:"+email, u.ID, 0).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUserExists
	}

	data := map[string]interface{}{
		"id":            u.ID,
		"email":         u.Email,
		"name":          u.Name,
		"password_hash": u.PasswordHash,
	}
	if err = s.rdb.HSet("user:"+u.ID, data).Err(); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *storage) Authenticate(email, password string) (*model.User, error) {
	userID, err := s.rdb.Get("useremail:" + email).Result()
	if err != nil {
		return nil, ErrUnauthenticated
	}
	u, err := s.getUser(userID)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrUnauthenticated
	}
	return u, nil
}

func (s *storage) getUser(userID string) (*model.User, error) {
	data := s.rdb.HGetAll("user:" + userID).Val()
	if len(data) == 0 {
		return nil, fmt.Errorf("user '%s' not found", userID)
	}
	return &model.User{
		ID:           data["id"],
		Email:        data["email"],
		Name:         data["name"],
		PasswordHash: data["password_hash"],
	}, nil
}

func (s *storage) CreateSession(userID string, ttl time.Duration) (string, error) {
	token := utils.RandString(32)
	err := s.rdb.Set("session:"+token, userID, ttl).Err()
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *storage) GetSession(token string) (*model.User, error) {
	userID, err := s.rdb.Get("session:" + token).Result()
	if err != nil {
		return nil, ErrUnauthenticated
	}
	return s.getUser(userID)
}

func (s *storage) CreateRoom(ownerID, name string) (string, error) {
	var ID string
	for i := 5; i <= 15; i++ {
		newID := utils.RandString(i)
		if !s.RoomExist(newID) {
			ID = newID
			break
		}
	}

	if ID == "" {
		return "", errors.New("unable to generate an unique ID")
	}

	data := map[string]interface{}{
		"id":    ID,
		"name":  name,
		"owner": ownerID,
	}

	affectedFields := s.rdb.HSet("room:"+ID, data).Val()
	if affectedFields != 3 {
		return "", fmt.Errorf("invalid affected fields num: %d", affectedFields)
	}
	if err := s.rdb.RPush("userrooms:"+ownerID, ID).Err(); err != nil {
		return "", err
	}
	return ID, nil
}

func (s *storage) RoomExist(roomID string) bool {
	return s.rdb.Exists("room:"+roomID).Val() == 1
}

func (s *storage) GetRoom(roomID string) (*model.Room, error) {
	data := s.rdb.HGetAll("room:" + roomID).Val()
	if len(data) == 0 {
		return nil, ErrRoomNotFound
	}
	return &model.Room{
		ID:      data["id"],
		Name:    data["name"],
		OwnerID: data["owner"],
	}, nil
}

func (s *storage) RoomsByOwner(ownerID string) ([]*model.Room, error) {
	ids, err := s.rdb.LRange("userrooms:"+ownerID, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	rooms := make([]*model.Room, 0, len(ids))
	for _, id := range ids {
		room, err := s.GetRoom(id)
		if err != nil {
			// Room hash may have been dropped; the listing stays usable.
			continue
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

// Shapes are an append-only redis list per room, so insertion order is the
// rendering order clients receive.
func (s *storage) ListShapes(roomID string) ([]*model.Shape, error) {
	if !s.RoomExist(roomID) {
		return nil, ErrRoomNotFound
	}
	entries, err := s.rdb.LRange("shapes:"+roomID, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	shapes := make([]*model.Shape, 0, len(entries))
	for _, e := range entries {
		var sh model.Shape
		if err := json.Unmarshal([]byte(e), &sh); err != nil {
			// One corrupt entry must not hide the rest of the room.
			continue
		}
		shapes = append(shapes, &sh)
	}
	return shapes, nil
}

func (s *storage) AppendShape(roomID, name, details string) (string, error) {
	if !s.RoomExist(roomID) {
		return "", ErrRoomNotFound
	}
	sh := model.Shape{
		ID:      uuid.NewString(),
		Name:    name,
		Details: details,
		RoomID:  roomID,
	}
	b, err := json.Marshal(&sh)
	if err != nil {
		return "", err
	}
	if err = s.rdb.RPush("shapes:"+roomID, string(b)).Err(); err != nil {
		return "", err
	}
	return sh.ID, nil
}

func (s *storage) ClearShapes(roomID string) (int64, error) {
	if !s.RoomExist(roomID) {
		return 0, ErrRoomNotFound
	}
	count, err := s.rdb.LLen("shapes:" + roomID).Result()
	if err != nil {
		return 0, err
	}
	if err = s.rdb.Del("shapes:" + roomID).Err(); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *storage) IncrVisits() (int64, error) {
	return s.rdb.Incr("visits:" + time.Now().Format("02.01.06")).Result()
}
