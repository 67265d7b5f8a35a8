package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"rishta/internal/middleware"
	"rishta/internal/repository"
	"rishta/pkg/cloudinary"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	cloud       cloudinary.Client
	profileRepo *repository.ProfileRepository
}

func NewUploadHandler(cloud cloudinary.Client, profileRepo *repository.ProfileRepository) *UploadHandler {
	return &UploadHandler{cloud: cloud, profileRepo: profileRepo}
}

// UploadProfilePhoto uploads a profile photo and stores the URL on the
// caller's profile. Replacing a photo does not re-trigger moderation.
func (h *UploadHandler) UploadProfilePhoto(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if h.cloud == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "uploads not configured"})
		return
	}
	if _, err := h.profileRepo.GetByUserID(userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	folder := "Rishta/profiles/" + strconv.FormatUint(uint64(userID), 10)
	publicID := "img_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:16]

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer f.Close()

	url, thumb, err := h.cloud.UploadImage(c.Request.Context(), f, folder, publicID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}
	if err := h.profileRepo.SetPhoto(userID, url); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save photo"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "thumbnail_url": thumb})
}
