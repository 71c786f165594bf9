package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"nectix/internal/domain"
	"nectix/internal/repository"
	"nectix/internal/service"
	"nectix/internal/validate"
)

type Server struct {
	engine    *gin.Engine
	products  *service.ProductService
	cart      *service.CartStore
	checkout  *service.CheckoutService
	favorites *service.FavoritesService
	sessions  *service.SessionService
}

func NewServer(
	products *service.ProductService,
	cart *service.CartStore,
	checkout *service.CheckoutService,
	favorites *service.FavoritesService,
	sessions *service.SessionService,
) *Server {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	registerFieldValidators()
	s := &Server{
		engine:    r,
		products:  products,
		cart:      cart,
		checkout:  checkout,
		favorites: favorites,
		sessions:  sessions,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

// registerFieldValidators подключает доменные проверки cpf/cep к binding
func registerFieldValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("cpf", func(fl validator.FieldLevel) bool {
		return validate.CPF(fl.Field().String()).IsValid
	})
	_ = v.RegisterValidation("cep", func(fl validator.FieldLevel) bool {
		return validate.CEP(fl.Field().String()).IsValid
	})
}

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := s.engine.Group("/api/v1")
	{
		products := v1.Group("/products")
		products.GET("", s.listProducts)
		products.GET(":id", s.getProduct)

		cart := v1.Group("/cart")
		cart.GET("", s.getCart)
		cart.POST("/items", s.addCartItem)
		cart.PATCH("/items/:key", s.updateCartItem)
		cart.DELETE("/items/:key", s.removeCartItem)
		cart.DELETE("", s.clearCart)

		v1.POST("/checkout", s.submitCheckout)

		payments := v1.Group("/payments")
		payments.GET(":id", s.getPaymentState)
		payments.DELETE(":id/watch", s.stopPaymentWatch)

		favorites := v1.Group("/favorites")
		favorites.GET("", s.listFavorites)
		favorites.POST(":productId/toggle", s.toggleFavorite)

		auth := v1.Group("/auth")
		auth.POST("/login", s.login)
		auth.POST("/logout", s.logout)
		auth.GET("/session", s.getSession)
	}
}

// Product handlers

// @Summary List products
// @Tags products
// @Produce json
// @Param q query string false "Name contains"
// @Param category query string false "Category"
// @Param min_price query number false "Min price"
// @Param max_price query number false "Max price"
// @Param sort query string false "price_asc | price_desc | name"
// @Success 200 {array} domain.Product
// @Router /products [get]
func (s *Server) listProducts(c *gin.Context) {
	f := repository.ProductFilter{
		NameSubstring: c.Query("q"),
		Category:      c.Query("category"),
		Sort:          repository.ProductSort(c.Query("sort")),
	}
	if v := c.Query("min_price"); v != "" {
		if x, err := strconv.ParseFloat(v, 64); err == nil {
			f.MinPrice = &x
		}
	}
	if v := c.Query("max_price"); v != "" {
		if x, err := strconv.ParseFloat(v, 64); err == nil {
			f.MaxPrice = &x
		}
	}
	list, err := s.products.List(c, f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Get product by id
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} domain.Product
// @Failure 404 {object} map[string]string
// @Router /products/{id} [get]
func (s *Server) getProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	p, err := s.products.GetByID(c, id)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

// Cart handlers

type cartView struct {
	Lines []cartLineView `json:"lines"`
	Total float64        `json:"total"`
	Count int64          `json:"count"`
}

type cartLineView struct {
	Key  string          `json:"key"`
	Line domain.CartLine `json:"line"`
}

func (s *Server) cartSnapshot() cartView {
	lines := s.cart.Snapshot()
	view := cartView{Lines: make([]cartLineView, 0, len(lines)), Total: s.cart.Total(), Count: s.cart.ItemCount()}
	for _, l := range lines {
		view.Lines = append(view.Lines, cartLineView{Key: l.Key().String(), Line: l})
	}
	return view
}

// @Summary Get cart
// @Tags cart
// @Produce json
// @Success 200 {object} cartView
// @Router /cart [get]
func (s *Server) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, s.cartSnapshot())
}

type addCartItemReq struct {
	ProductID int64  `json:"product_id" binding:"required,gt=0"`
	Quantity  int64  `json:"quantity" binding:"omitempty,gt=0"`
	Color     string `json:"color"`
	Size      string `json:"size"`
}

// @Summary Add product to cart
// @Tags cart
// @Accept json
// @Produce json
// @Param input body addCartItemReq true "Item"
// @Success 201 {object} cartView
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /cart/items [post]
func (s *Server) addCartItem(c *gin.Context) {
	var req addCartItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	p, err := s.products.GetByID(c, req.ProductID)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	s.cart.Add(*p, req.Quantity, req.Color, req.Size)
	c.JSON(http.StatusCreated, s.cartSnapshot())
}

type updateCartItemReq struct {
	Quantity int64 `json:"quantity"`
}

// @Summary Set line quantity; zero removes the line
// @Tags cart
// @Accept json
// @Produce json
// @Param key path string true "Line key"
// @Param input body updateCartItemReq true "Quantity"
// @Success 200 {object} cartView
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /cart/items/{key} [patch]
func (s *Server) updateCartItem(c *gin.Context) {
	key, err := domain.ParseLineKey(c.Param("key"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid line key"})
		return
	}
	var req updateCartItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if !s.cart.UpdateQuantity(key, req.Quantity) && req.Quantity > 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "line not found"})
		return
	}
	c.JSON(http.StatusOK, s.cartSnapshot())
}

// @Summary Remove line from cart
// @Tags cart
// @Produce json
// @Param key path string true "Line key"
// @Success 200 {object} cartView
// @Failure 404 {object} map[string]string
// @Router /cart/items/{key} [delete]
func (s *Server) removeCartItem(c *gin.Context) {
	key, err := domain.ParseLineKey(c.Param("key"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid line key"})
		return
	}
	if !s.cart.Remove(key) {
		c.JSON(http.StatusNotFound, gin.H{"error": "line not found"})
		return
	}
	c.JSON(http.StatusOK, s.cartSnapshot())
}

// @Summary Clear cart
// @Tags cart
// @Success 204
// @Router /cart [delete]
func (s *Server) clearCart(c *gin.Context) {
	s.cart.Clear()
	c.Status(http.StatusNoContent)
}

// Checkout handlers

type checkoutReq struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	CPF           string `json:"cpf" binding:"omitempty,cpf"`
	PostalCode    string `json:"postal_code"`
	Street        string `json:"street"`
	Number        string `json:"number"`
	Complement    string `json:"complement"`
	Neighborhood  string `json:"neighborhood"`
	City          string `json:"city"`
	State         string `json:"state"`
	SelectedColor string `json:"selected_color"`
	SelectedSize  string `json:"selected_size"`
}

// @Summary Submit checkout and create a PIX payment
// @Tags checkout
// @Accept json
// @Produce json
// @Param input body checkoutReq true "Checkout form"
// @Success 201 {object} domain.Payment
// @Failure 400 {object} map[string][]string "full list of validation problems"
// @Failure 502 {object} map[string]string
// @Router /checkout [post]
func (s *Server) submitCheckout(c *gin.Context) {
	var req checkoutReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	form := domain.CheckoutForm{
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		CPF:           req.CPF,
		PostalCode:    req.PostalCode,
		Street:        req.Street,
		Number:        req.Number,
		Complement:    req.Complement,
		Neighborhood:  req.Neighborhood,
		City:          req.City,
		State:         req.State,
		SelectedColor: req.SelectedColor,
		SelectedSize:  req.SelectedSize,
	}
	p, err := s.checkout.Submit(c, s.cart, form)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			// всё списком, чтобы форма показала каждую проблему
			c.JSON(http.StatusBadRequest, gin.H{"errors": verr.Problems})
			return
		}
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, p)
}

// @Summary Current payment state (status, QR, downloads)
// @Tags payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} service.PaymentState
// @Failure 404 {object} map[string]string
// @Router /payments/{id} [get]
func (s *Server) getPaymentState(c *gin.Context) {
	st, ok := s.checkout.State(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary Stop polling a payment
// @Tags payments
// @Param id path string true "Payment ID"
// @Success 204
// @Router /payments/{id}/watch [delete]
func (s *Server) stopPaymentWatch(c *gin.Context) {
	s.checkout.StopWatch(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// Favorites handlers

// @Summary List favorite product ids
// @Tags favorites
// @Produce json
// @Success 200 {array} int
// @Failure 401 {object} map[string]string
// @Router /favorites [get]
func (s *Server) listFavorites(c *gin.Context) {
	sess := s.sessions.Current()
	var userID string
	if sess != nil {
		userID = sess.UserID
	}
	ids, err := s.favorites.List(c, userID)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ids)
}

// @Summary Toggle favorite membership for a product
// @Tags favorites
// @Produce json
// @Param productId path int true "Product ID"
// @Success 200 {object} service.ToggleResult
// @Failure 401 {object} map[string]string
// @Router /favorites/{productId}/toggle [post]
func (s *Server) toggleFavorite(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}
	sess := s.sessions.Current()
	var userID string
	if sess != nil {
		userID = sess.UserID
	}
	res, err := s.favorites.Toggle(c, userID, productID)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// Auth handlers

type loginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// @Summary Sign in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param input body loginReq true "Credentials"
// @Success 200 {object} domain.Session
// @Failure 401 {object} map[string]string
// @Router /auth/login [post]
func (s *Server) login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	sess, err := s.sessions.SignIn(c, req.Email, req.Password)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sess)
}

// @Summary Sign out
// @Tags auth
// @Success 204
// @Router /auth/logout [post]
func (s *Server) logout(c *gin.Context) {
	s.sessions.SignOut()
	c.Status(http.StatusNoContent)
}

// @Summary Current session
// @Tags auth
// @Produce json
// @Success 200 {object} domain.Session
// @Failure 401 {object} map[string]string
// @Router /auth/session [get]
func (s *Server) getSession(c *gin.Context) {
	sess := s.sessions.Current()
	if sess == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no active session"})
		return
	}
	c.JSON(http.StatusOK, sess)
}

// mapErrorToStatus переводит категорию ошибки в HTTP-статус
func mapErrorToStatus(err error) int {
	if errors.Is(err, repository.ErrNotFound) {
		return http.StatusNotFound
	}
	switch service.Classify(err) {
	case service.CategoryValidation:
		return http.StatusBadRequest
	case service.CategoryAuth:
		return http.StatusUnauthorized
	case service.CategoryPayment, service.CategoryNetwork:
		return http.StatusBadGateway
	case service.CategoryDatabase:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
