package handlers

import (
	"net/http"

	"github.com/arnavshah/carehome-shifts-api/pkg/accounts"
	"github.com/gin-gonic/gin"
)

func (h *Handler) Register(c *gin.Context) {
	var input accounts.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badRequest(c, err)
		return
	}

	session, err := h.Accounts.Register(c.Request.Context(), input)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// Login handles account authentication
func (h *Handler) Login(c *gin.Context) {
	var creds struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&creds); err != nil {
		h.badRequest(c, err)
		return
	}

	session, err := h.Accounts.Login(c.Request.Context(), creds.Email, creds.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *Handler) Me(c *gin.Context) {
	user, err := h.Accounts.Me(c.Request.Context(), caller(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) SearchUsers(c *gin.Context) {
	users, err := h.Accounts.Search(c.Request.Context(), c.Query("accountType"), c.Query("q"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) LinkedUsers(c *gin.Context) {
	grouped, err := h.Accounts.LinkedUsers(c.Request.Context(), caller(c), c.Query("accountType"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, grouped)
}

func (h *Handler) Unlink(c *gin.Context) {
	var input struct {
		LinkedUserID string `json:"linkedUserId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badRequest(c, err)
		return
	}

	if err := h.Accounts.Unlink(c.Request.Context(), caller(c), input.LinkedUserID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User unlinked"})
}
