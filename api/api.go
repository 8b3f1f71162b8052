package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/Anas-Nayeem4922/draw-app/canvas"
	"github.com/Anas-Nayeem4922/draw-app/config"
	"github.com/Anas-Nayeem4922/draw-app/model"
	"github.com/Anas-Nayeem4922/draw-app/pkg/hub"
	"github.com/Anas-Nayeem4922/draw-app/pkg/msgbroker"
	"github.com/Anas-Nayeem4922/draw-app/pkg/utils"
	"github.com/Anas-Nayeem4922/draw-app/storage"
	"github.com/gammazero/workerpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

type API struct {
	echo       *echo.Echo
	config     *config.Config
	storage    storage.Storage
	hub        *hub.Hub
	msgBroker  msgbroker.MessageBroker
	workerPool *workerpool.WorkerPool
	// instanceID lets the broker relay skip events this instance published
	// itself; the local hub already delivered those.
	instanceID   string
	roomsChannel string

	relayMu sync.Mutex
	relay   map[string]*relayQueue
}

func New(c *config.Config, s storage.Storage, mb msgbroker.MessageBroker) *API {
	api := &API{
		echo:         echo.New(),
		config:       c,
		storage:      s,
		hub:          hub.New(),
		msgBroker:    mb,
		workerPool:   workerpool.New(c.MaxWorkers),
		instanceID:   utils.RandString(8),
		roomsChannel: "rooms:",
		relay:        make(map[string]*relayQueue),
	}

	api.echo.HideBanner = true
	api.echo.Use(middleware.CORS())

	api.echo.GET("/", api.ping)
	api.echo.POST("/signup", api.signup)
	api.echo.POST("/signin", api.signin)

	authed := api.echo.Group("", api.sessionAuth)
	authed.POST("/room", api.createRoom)
	authed.GET("/room/:roomID", api.getRoom)
	authed.GET("/rooms", api.listRooms)
	authed.GET("/room/:roomID/shapes", api.listShapes)
	authed.POST("/shape", api.createShape)
	authed.DELETE("/room/:roomID/shapes", api.clearShapes)
	authed.Any("/ws", api.websocket)

	return api
}

func (api *API) Start() error {
	err := api.msgBroker.Subscribe(api.roomsChannel+"*", api.handleRelayed)
	if err != nil {
		return err
	}
	return api.echo.Start(":" + strconv.Itoa(api.config.HttpPort))
}

func (api *API) Close(ctx context.Context) error {
	api.workerPool.StopWait()
	return api.echo.Shutdown(ctx)
}

// Ping handler
func (api *API) ping(c echo.Context) error {
	_, err := api.storage.IncrVisits()
	if err != nil {
		log.Error(err)
	}
	return c.String(http.StatusOK, "OK")
}

type credentials struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (api *API) signup(c echo.Context) error {
	var creds credentials
	if err := c.Bind(&creds); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity)
	}
	if !utils.IsEmailValid(creds.Email) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid email")
	}
	if !utils.IsNameValid(creds.Name) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid name")
	}
	if !utils.IsLengthValid(creds.Password, 8, 72) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "password must be 8-72 characters")
	}

	u, err := api.storage.CreateUser(creds.Email, creds.Name, creds.Password)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			return echo.NewHTTPError(http.StatusConflict, "user already exists")
		}
		log.Error(err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}
	return api.issueSession(c, u)
}

func (api *API) signin(c echo.Context) error {
	var creds credentials
	if err := c.Bind(&creds); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity)
	}
	u, err := api.storage.Authenticate(creds.Email, creds.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	return api.issueSession(c, u)
}

func (api *API) issueSession(c echo.Context, u *model.User) error {
	token, err := api.storage.CreateSession(u.ID, api.config.SessionTTL)
	if err != nil {
		log.Error(err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  u,
	})
}

// sessionAuth resolves the session token into a user. Every room and shape
// operation runs behind it; the hub itself never re-checks.
func (api *API) sessionAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := c.Request().Header.Get("X-Session-Token")
		if token == "" {
			token = c.QueryParam("token")
		}
		if token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
		}
		u, err := api.storage.GetSession(token)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
		}
		c.Set("user", u)
		return next(c)
	}
}

func currentUser(c echo.Context) *model.User {
	u, _ := c.Get("user").(*model.User)
	return u
}

// Room creation endpoint
func (api *API) createRoom(c echo.Context) error {
	var room model.Room
	err := c.Bind(&room)
	if err != nil || !room.Valid() {
		if err != nil {
			log.Warn(err)
		}
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "room name must be 5-100 characters")
	}

	room.ID, err = api.storage.CreateRoom(currentUser(c).ID, room.Name)
	if err != nil {
		log.Error(err)
		return echo.NewHTTPError(http.StatusConflict)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"roomId":  room.ID,
		"message": "Room created successfully",
	})
}

// Returns room data by roomID
func (api *API) getRoom(c echo.Context) error {
	roomID := c.Param("roomID")
	room, err := api.storage.GetRoom(roomID)
	if err != nil {
		log.Info(err)
		return echo.NewHTTPError(http.StatusNotFound, "no such room exists")
	}
	return c.JSON(http.StatusOK, room)
}

// Returns the rooms owned by the signed-in user
func (api *API) listRooms(c echo.Context) error {
	rooms, err := api.storage.RoomsByOwner(currentUser(c).ID)
	if err != nil {
		log.Error(err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"rooms": rooms})
}

// Returns a room's shapes in insertion order
func (api *API) listShapes(c echo.Context) error {
	shapes, err := api.storage.ListShapes(c.Param("roomID"))
	if err != nil {
		if errors.Is(err, storage.ErrRoomNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "no such room exists")
		}
		log.Error(err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"shapes": shapes})
}

type shapeRequest struct {
	RoomID  string `json:"roomId"`
	Shape   string `json:"shape"`
	Details string `json:"shapeDetails"`
}

// Shape submission endpoint. Known kinds must carry decodable geometry;
// unknown kinds are stored opaquely so newer clients keep working against
// older servers.
func (api *API) createShape(c echo.Context) error {
	var req shapeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity)
	}
	sh := model.Shape{Name: req.Shape, Details: req.Details, RoomID: req.RoomID}
	if !sh.Valid() {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "shape and roomId are required")
	}
	if _, err := canvas.Decode(req.Shape, req.Details); err != nil && !errors.Is(err, canvas.ErrUnknownShape) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "shapeDetails is not valid geometry for "+req.Shape)
	}

	id, err := api.storage.AppendShape(req.RoomID, req.Shape, req.Details)
	if err != nil {
		if errors.Is(err, storage.ErrRoomNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "no such room exists")
		}
		log.Error(err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}
	sh.ID = id
	return c.JSON(http.StatusOK, map[string]interface{}{"shape": sh})
}

// Clears every shape in a room. There is no single-shape delete or undo.
func (api *API) clearShapes(c echo.Context) error {
	count, err := api.storage.ClearShapes(c.Param("roomID"))
	if err != nil {
		if errors.Is(err, storage.ErrRoomNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "no such room exists")
		}
		log.Error(err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"cleared": count})
}
