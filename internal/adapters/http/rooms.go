package http

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dkeye/Convo/internal/adapters/storage"
	"github.com/dkeye/Convo/internal/core"
	"github.com/dkeye/Convo/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type roomHandlers struct {
	rooms *storage.RoomRepository
}

type createRoomRequest struct {
	Name string `json:"name" binding:"required,min=3,max=50"`
}

type joinRoomRequest struct {
	RoomID string `json:"room_id"`
}

func abortMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}

func (h *roomHandlers) create(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortMessage(c, http.StatusBadRequest, "name is required and must be 3 to 50 characters")
		return
	}

	room, err := h.rooms.Create(c.Request.Context(), req.Name)
	switch {
	case errors.Is(err, storage.ErrRoomExists):
		abortMessage(c, http.StatusBadRequest, "Room already exists")
		return
	case errors.Is(err, domain.ErrRoomNameEmpty), errors.Is(err, domain.ErrRoomNameLength):
		abortMessage(c, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.Error().Err(err).Str("module", "adapters.http").Msg("create room")
		abortMessage(c, http.StatusInternalServerError, "Error creating room")
		return
	}

	log.Info().Str("module", "adapters.http").Str("room_id", string(room.RoomID)).Str("client", c.GetString("client_token")).Msg("room created")
	c.JSON(http.StatusCreated, room)
}

func (h *roomHandlers) list(c *gin.Context) {
	rooms, err := h.rooms.ListActive(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("list rooms")
		abortMessage(c, http.StatusInternalServerError, "Error listing rooms")
		return
	}
	c.JSON(http.StatusOK, rooms)
}

func (h *roomHandlers) join(c *gin.Context) {
	var req joinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.RoomID) == "" {
		abortMessage(c, http.StatusBadRequest, "room_id is required")
		return
	}

	room, err := h.rooms.FindActiveRoom(c.Request.Context(), domain.RoomID(req.RoomID))
	if errors.Is(err, core.ErrRoomNotFound) {
		abortMessage(c, http.StatusNotFound, "Room not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("join room")
		abortMessage(c, http.StatusInternalServerError, "Error joining room")
		return
	}
	c.JSON(http.StatusOK, room)
}

func (h *roomHandlers) get(c *gin.Context) {
	id, ok := roomNumber(c)
	if !ok {
		return
	}
	room, err := h.rooms.Get(c.Request.Context(), id)
	if errors.Is(err, core.ErrRoomNotFound) || (err == nil && !room.Active) {
		abortMessage(c, http.StatusNotFound, "Room not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("get room")
		abortMessage(c, http.StatusInternalServerError, "Error fetching room")
		return
	}
	c.JSON(http.StatusOK, room)
}

func (h *roomHandlers) remove(c *gin.Context) {
	id, ok := roomNumber(c)
	if !ok {
		return
	}
	err := h.rooms.Deactivate(c.Request.Context(), id)
	if errors.Is(err, core.ErrRoomNotFound) {
		abortMessage(c, http.StatusNotFound, "Room not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("delete room")
		abortMessage(c, http.StatusInternalServerError, "Error deleting room")
		return
	}
	log.Info().Str("module", "adapters.http").Uint64("id", uint64(id)).Msg("room deactivated")
	c.JSON(http.StatusOK, gin.H{"message": "Room deleted"})
}

func roomNumber(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		abortMessage(c, http.StatusNotFound, "Room not found")
		return 0, false
	}
	return uint(id), true
}

// AdminAuth guards room administration with a static bearer token. With no
// token configured the guard is off.
func AdminAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		header := c.GetHeader("Authorization")
		if header == "" {
			abortMessage(c, http.StatusUnauthorized, "Missing authorization token")
			return
		}
		given, found := strings.CutPrefix(header, "Bearer ")
		if !found || subtle.ConstantTimeCompare([]byte(given), []byte(token)) != 1 {
			abortMessage(c, http.StatusUnauthorized, "Invalid token")
			return
		}
		c.Next()
	}
}
