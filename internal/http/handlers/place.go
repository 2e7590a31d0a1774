package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainagg "github.com/yungbote/placeshare-backend/internal/domain/aggregates"
	"github.com/yungbote/placeshare-backend/internal/http/response"
	"github.com/yungbote/placeshare-backend/internal/platform/ctxutil"
	"github.com/yungbote/placeshare-backend/internal/services"
)

type PlaceHandler struct {
	placeService services.PlaceService
}

func NewPlaceHandler(placeService services.PlaceService) *PlaceHandler {
	return &PlaceHandler{placeService: placeService}
}

// GET /api/places/:pid
func (ph *PlaceHandler) GetPlace(c *gin.Context) {
	placeID, ok := parseID(c, "pid", "Could not find a place for the provided id.")
	if !ok {
		return
	}
	place, err := ph.placeService.GetPlace(c.Request.Context(), placeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"place": place})
}

// GET /api/places/user/:uid
func (ph *PlaceHandler) ListUserPlaces(c *gin.Context) {
	ownerID, ok := parseID(c, "uid", "Could not find places for the provided user id.")
	if !ok {
		return
	}
	places, err := ph.placeService.ListPlacesByOwner(c.Request.Context(), ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"places": places})
}

// POST /api/places
// multipart: title, description, address, image
func (ph *PlaceHandler) CreatePlace(c *gin.Context) {
	limitBody(c)
	raw, name, err := readUpload(c, "image")
	if err != nil {
		response.Error(c, err)
		return
	}
	place, err := ph.placeService.CreatePlace(c.Request.Context(), services.CreatePlaceInput{
		OwnerID:     ctxutil.CallerID(c.Request.Context()),
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Address:     c.PostForm("address"),
		Image:       raw,
		ImageName:   name,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"place": place})
}

// PATCH /api/places/:pid
// body: { "title": "...", "description": "..." }
func (ph *PlaceHandler) UpdatePlace(c *gin.Context) {
	placeID, ok := parseID(c, "pid", "Could not find a place for the provided id.")
	if !ok {
		return
	}
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainagg.NewError(domainagg.CodeValidation, "PlaceHandler.UpdatePlace", "Invalid inputs passed, please check your data.", err))
		return
	}
	place, err := ph.placeService.UpdatePlace(c.Request.Context(), services.UpdatePlaceInput{
		CallerID:    ctxutil.CallerID(c.Request.Context()),
		PlaceID:     placeID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"place": place})
}

// DELETE /api/places/:pid
func (ph *PlaceHandler) DeletePlace(c *gin.Context) {
	placeID, ok := parseID(c, "pid", "Could not find place for this id.")
	if !ok {
		return
	}
	err := ph.placeService.DeletePlace(c.Request.Context(), services.DeletePlaceInput{
		CallerID: ctxutil.CallerID(c.Request.Context()),
		PlaceID:  placeID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deleted Place."})
}

// parseID reads a uuid path param. Malformed ids cannot name an entity, so
// they answer not found.
func parseID(c *gin.Context, param, notFound string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		response.Error(c, domainagg.NewError(domainagg.CodeNotFound, "handlers.parseID", notFound, err))
		return uuid.Nil, false
	}
	return id, true
}
