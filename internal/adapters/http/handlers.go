package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/playgrid/lobby/internal/core"
	"github.com/playgrid/lobby/internal/domain"
)

type LobbyHandlers struct {
	Coord *core.Coordinator
}

type uidRequest struct {
	UID string `json:"uid" binding:"required"`
}

func (h *LobbyHandlers) Root(c *gin.Context) {
	c.String(http.StatusOK, "Hello from Tic Tac Toe Backend!")
}

func (h *LobbyHandlers) CreateLobby(c *gin.Context) {
	var req uidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Firebase UID is required"})
		return
	}

	room, err := h.Coord.CreateLobby(domain.UserID(req.UID))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	log.Info().Str("module", "adapters.http").Str("code", room.Code).Str("uid", req.UID).Msg("lobby created")
	c.JSON(http.StatusCreated, gin.H{"code": room.Code, "lobby": room})
}

func (h *LobbyHandlers) JoinLobby(c *gin.Context) {
	code := c.Param("code")

	var req uidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Firebase UID is required"})
		return
	}

	room, err := h.Coord.JoinLobby(code, domain.UserID(req.UID))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Joined lobby %s", code),
		"lobby":   room,
	})
}

func (h *LobbyHandlers) GetLobby(c *gin.Context) {
	room, err := h.Coord.GetLobby(c.Param("code"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, room)
}

func (h *LobbyHandlers) ListLobbies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"lobbies": h.Coord.ListLobbies()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrLobbyNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrMissingUID),
		errors.Is(err, domain.ErrUIDTooLong),
		errors.Is(err, domain.ErrLobbyFull),
		errors.Is(err, domain.ErrLobbyClosed):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
