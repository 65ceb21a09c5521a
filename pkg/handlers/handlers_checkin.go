package handlers

import (
	"errors"
	"net/http"

	"github.com/arnavshah/carehome-shifts-api/pkg/shifts"
	"github.com/gin-gonic/gin"
)

// GenerateQRCode issues a fresh key pair for the shift and returns its QR image.
// A missing shift is reported as a server error, matching the legacy clients.
func (h *Handler) GenerateQRCode(c *gin.Context) {
	qr, err := h.Shifts.GenerateQRCode(c.Request.Context(), caller(c), c.Param("shiftId"))
	if err != nil {
		if errors.Is(err, shifts.ErrShiftNotFound) {
			h.failWith(c, http.StatusInternalServerError, err)
			return
		}
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, qr)
}

// VerifyPublicKey runs the legacy signature check for a carer scanning the shift QR
func (h *Handler) VerifyPublicKey(c *gin.Context) {
	var input struct {
		PublicKey string `json:"publicKey" binding:"required"`
		CarerID   string `json:"carerId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badRequest(c, err)
		return
	}

	ok, err := h.Shifts.VerifyPublicKey(c.Request.Context(), c.Param("shiftId"), input.PublicKey, input.CarerID)
	if err != nil {
		h.failWith(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": ok})
}

func (h *Handler) RegisterCarerKey(c *gin.Context) {
	var input struct {
		PublicKey string `json:"publicKey" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badRequest(c, err)
		return
	}

	key, err := h.Shifts.RegisterCarerKey(c.Request.Context(), caller(c), input.PublicKey)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, key)
}

func (h *Handler) IssueChallenge(c *gin.Context) {
	challenge, err := h.Shifts.IssueChallenge(c.Request.Context(), caller(c), c.Param("shiftId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, challenge)
}

// AnswerChallenge checks a carer's signature over the nonce shown at the site
func (h *Handler) AnswerChallenge(c *gin.Context) {
	var input struct {
		Signature string `json:"signature" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badRequest(c, err)
		return
	}

	ok, err := h.Shifts.AnswerChallenge(c.Request.Context(), caller(c), c.Param("challengeId"), input.Signature)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": ok})
}
