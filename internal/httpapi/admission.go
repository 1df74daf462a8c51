package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quillboard/admission/internal/admission"
	"github.com/quillboard/admission/internal/engine"
	log "github.com/sirupsen/logrus"
)

// AdmissionHandler handles admission check endpoints.
type AdmissionHandler struct {
	svc *admission.Service
}

// NewAdmissionHandler constructs an AdmissionHandler.
func NewAdmissionHandler(svc *admission.Service) *AdmissionHandler {
	return &AdmissionHandler{svc: svc}
}

// checkRequest captures the payload for an admission check.
type checkRequest struct {
	UserID string `json:"user_id"` // Acting user ID.
	Action string `json:"action"`  // "post" or "comment".
	PostID string `json:"post_id"` // Target post for comments, optional.
}

// checkResponse reports the admission decision.
type checkResponse struct {
	Allowed        bool       `json:"allowed"`
	NextEligibleAt *time.Time `json:"next_eligible_at,omitempty"`
	RuleName       string     `json:"rule_name,omitempty"`
	Message        string     `json:"message,omitempty"`
	PriorityClass  string     `json:"priority_class,omitempty"`
}

// Check decides whether the user may perform the action right now. Evaluation
// errors deny the action; a misconfigured catalog must not open the gate.
func (h *AdmissionHandler) Check(c *gin.Context) {
	var req checkRequest
	if errBind := c.ShouldBindJSON(&req); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	ctx := c.Request.Context()

	var (
		decision engine.Decision
		errCheck error
	)
	switch strings.TrimSpace(req.Action) {
	case "post":
		decision, errCheck = h.svc.CheckPost(ctx, userID)
	case "comment":
		decision, errCheck = h.svc.CheckComment(ctx, userID, strings.TrimSpace(req.PostID))
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "action must be \"post\" or \"comment\""})
		return
	}
	if errCheck != nil {
		log.WithError(errCheck).WithField("user_id", userID).Error("admission check failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "admission check failed"})
		return
	}

	if !decision.Limited {
		c.JSON(http.StatusOK, checkResponse{Allowed: true})
		return
	}
	next := decision.NextEligibleAt
	resp := checkResponse{Allowed: false, NextEligibleAt: &next}
	if decision.Rule != nil {
		resp.RuleName = decision.Rule.Name()
		resp.Message = decision.Rule.Message
		resp.PriorityClass = decision.Rule.PriorityClass
	}
	c.JSON(http.StatusTooManyRequests, resp)
}

// voteObservedRequest captures the payload for a vote notification.
type voteObservedRequest struct {
	UserID string `json:"user_id"` // Author of the voted-on content.
}

// VoteObserved recomputes the author's limits after a vote and reports
// whether they tightened enough to warrant moderator review.
func (h *AdmissionHandler) VoteObserved(c *gin.Context) {
	var req voteObservedRequest
	if errBind := c.ShouldBindJSON(&req); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	stricter, errObserve := h.svc.ObserveVote(c.Request.Context(), userID)
	if errObserve != nil {
		log.WithError(errObserve).WithField("user_id", userID).Error("vote observation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "vote observation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"flagged_for_review": stricter})
}
