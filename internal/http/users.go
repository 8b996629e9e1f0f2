package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"craftmart/internal/domain"
	"craftmart/internal/service"
)

type loginReq struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type registerReq struct {
	domain.User
	Password string `json:"password"`
}

// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param input body loginReq true "Credentials"
// @Success 200 {object} domain.Ack "message carries the token"
// @Router /v1/public/api/auth/login [post]
func (s *Server) login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	tok, err := s.auth.Login(c, req.Phone, req.Password)
	if errors.Is(err, service.ErrBadCredentials) {
		c.JSON(http.StatusOK, domain.Ack{Status: false, Message: "invalid phone or password"})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.Ack{Status: true, Message: tok})
}

// @Summary Register
// @Tags auth
// @Accept json
// @Produce json
// @Param input body registerReq true "User and password"
// @Success 200 {object} domain.Ack "message carries the token"
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /v1/public/api/auth/register [post]
func (s *Server) register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	tok, err := s.auth.Register(c, req.User, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.Ack{Status: true, Message: tok})
}

// @Summary Public profile
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} domain.User
// @Failure 404 {object} map[string]string
// @Router /v1/api/user/id/{id} [get]
func (s *Server) getUser(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	u, err := s.auth.Profile(c, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// @Summary Own profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.User
// @Router /v1/api/user/info [get]
func (s *Server) userInfo(c *gin.Context) {
	u, err := s.auth.Profile(c, currentUser(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// @Summary Update own profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body domain.User true "Profile"
// @Success 200 {object} domain.Ack "message carries the refreshed token"
// @Router /v1/api/user/update [post]
func (s *Server) updateUser(c *gin.Context) {
	var u domain.User
	if err := c.ShouldBindJSON(&u); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	tok, err := s.auth.UpdateProfile(c, currentUser(c), u)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.Ack{Status: true, Message: tok})
}
