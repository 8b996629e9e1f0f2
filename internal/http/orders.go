package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"craftmart/internal/domain"
)

// @Summary Place an order
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body domain.Order true "Order without id"
// @Success 200 {object} domain.Order
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /v1/api/order/saveorupdate [post]
func (s *Server) saveOrder(c *gin.Context) {
	var o domain.Order
	if err := c.ShouldBindJSON(&o); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	saved, err := s.orders.Create(c, currentUser(c), o)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// @Summary Change order status
// @Description Side effecting GET; an illegal transition answers status=false.
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Param status path string true "Target status" Enums(pending, confirmed, delivered, cancelled)
// @Success 200 {object} domain.Ack
// @Failure 404 {object} map[string]string
// @Router /v1/api/order/status/id/{id}/{status} [get]
func (s *Server) changeOrderStatus(c *gin.Context) {
	id, to, ok := transitionParams(c)
	if !ok {
		return
	}
	ack, err := s.orders.Transition(c, currentUser(c), id, to)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ack)
}

// @Summary Orders placed by a buyer
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Buyer ID"
// @Success 200 {array} domain.Order
// @Failure 403 {object} map[string]string
// @Router /v1/api/order/list/user/id/{id} [get]
func (s *Server) buyerOrders(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	list, err := s.orders.ListByBuyer(c, currentUser(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Orders received by a store
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Seller ID"
// @Success 200 {array} domain.Order
// @Failure 403 {object} map[string]string
// @Router /v1/api/order/list/store/id/{id} [get]
func (s *Server) sellerOrders(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	list, err := s.orders.ListBySeller(c, currentUser(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Place a custom order
// @Tags custom-orders
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param file formData file false "Reference image"
// @Param product formData string true "CustomOrder JSON"
// @Success 200 {object} domain.Ack
// @Failure 400 {object} map[string]string
// @Router /v1/custom-order/saveorupdate [post]
func (s *Server) saveCustomOrder(c *gin.Context) {
	var o domain.CustomOrder
	if err := bindPart(c, "product", &o); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	img, err := filePart(c, "file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ack, err := s.customs.Create(c, currentUser(c), o, img)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ack)
}

// @Summary Change custom order status
// @Tags custom-orders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Custom order ID"
// @Param status path string true "Target status" Enums(pending, confirmed, delivered, cancelled)
// @Success 200 {object} domain.Ack
// @Router /v1/custom-order/status/id/{id}/{status} [get]
func (s *Server) changeCustomOrderStatus(c *gin.Context) {
	id, to, ok := transitionParams(c)
	if !ok {
		return
	}
	ack, err := s.customs.Transition(c, currentUser(c), id, to)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ack)
}

// @Summary Custom orders of a buyer
// @Tags custom-orders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Buyer ID"
// @Success 200 {array} domain.CustomOrder
// @Router /v1/custom-order/list/buyer/{id} [get]
func (s *Server) buyerCustomOrders(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	list, err := s.customs.ListByBuyer(c, currentUser(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Custom orders received by a seller
// @Tags custom-orders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Seller ID"
// @Success 200 {array} domain.CustomOrder
// @Router /v1/custom-order/list/owner/{id} [get]
func (s *Server) sellerCustomOrders(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	list, err := s.customs.ListBySeller(c, currentUser(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func transitionParams(c *gin.Context) (int64, domain.Status, bool) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, "", false
	}
	to, err := domain.ParseStatus(c.Param("status"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return 0, "", false
	}
	return id, to, true
}
