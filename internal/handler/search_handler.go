package handler

import (
	"errors"
	"net/http"
	"strconv"

	"rishta/config"
	"rishta/internal/domain"
	"rishta/internal/matching"
	"rishta/internal/middleware"
	"rishta/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SearchHandler struct {
	cfg           *config.MatchingConfig
	candidateRepo *repository.CandidateRepository
	interestRepo  *repository.InterestRepository
}

func NewSearchHandler(cfg *config.MatchingConfig, candidateRepo *repository.CandidateRepository, interestRepo *repository.InterestRepository) *SearchHandler {
	return &SearchHandler{cfg: cfg, candidateRepo: candidateRepo, interestRepo: interestRepo}
}

// Search returns compatibility-ranked candidates for the caller, narrowed by
// optional filters. The caller needs an approved profile to search.
func (h *SearchHandler) Search(c *gin.Context) {
	userID := middleware.GetUserID(c)
	requester, err := h.candidateRepo.GetCandidateByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusForbidden, gin.H{"error": "complete your profile first"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}
	if requester.Status != domain.ProfileStatusApproved {
		c.JSON(http.StatusForbidden, gin.H{"error": "profile pending approval"})
		return
	}

	filters := repository.CandidateFilters{
		Religion:  c.Query("religion"),
		Caste:     c.Query("caste"),
		State:     c.Query("state"),
		Education: c.Query("education"),
	}
	if v := c.Query("min_age"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= h.cfg.MinAge {
			filters.MinAge = &n
		}
	}
	if v := c.Query("max_age"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filters.MaxAge = &n
		}
	}
	limit := h.queryLimit(c, h.cfg.SearchLimit)

	candidates, err := h.candidateRepo.FindCandidates(userID, filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}
	ranked := matching.Rank(*requester, candidates, limit)
	c.JSON(http.StatusOK, gin.H{
		"results": ranked,
		"count":   len(ranked),
	})
}

// Matches returns the caller's mutual matches, ranked the same way as search.
func (h *SearchHandler) Matches(c *gin.Context) {
	userID := middleware.GetUserID(c)
	requester, err := h.candidateRepo.GetCandidateByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusForbidden, gin.H{"error": "complete your profile first"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load matches"})
		return
	}

	matchedIDs, err := h.interestRepo.MatchedUserIDs(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load matches"})
		return
	}
	candidates, err := h.candidateRepo.FindCandidatesByUserIDs(matchedIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load matches"})
		return
	}
	limit := h.queryLimit(c, h.cfg.MatchesLimit)
	ranked := matching.Rank(*requester, candidates, limit)
	c.JSON(http.StatusOK, gin.H{
		"results": ranked,
		"count":   len(ranked),
	})
}

func (h *SearchHandler) queryLimit(c *gin.Context, fallback int) int {
	limit := fallback
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > h.cfg.MaxLimit {
		limit = h.cfg.MaxLimit
	}
	return limit
}
