package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/imaginarte/gestao/docs"
	"github.com/imaginarte/gestao/internal/auth"
	"github.com/imaginarte/gestao/internal/finance"
	"github.com/imaginarte/gestao/internal/health"
	"github.com/imaginarte/gestao/internal/httpx"
	"github.com/imaginarte/gestao/internal/order"
	"github.com/imaginarte/gestao/internal/product"
	"github.com/imaginarte/gestao/internal/report"
	"github.com/imaginarte/gestao/internal/user"
)

type app struct {
	products *product.Service
	orders   *order.Service
	finance  *finance.Service
	reports  *report.Service
	users    *user.Service
	tokens   *auth.Issuer
	health   *health.Checker
}

func newRouter(a *app) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger())

	r.GET("/healthz", healthHandler(a.health))
	r.POST("/login", loginHandler(a.users, a.tokens))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/", httpx.Auth(a.tokens))

	api.GET("/products", listProductsHandler(a.products))
	api.GET("/products/:id", getProductHandler(a.products))
	api.POST("/products", createProductHandler(a.products))
	api.PUT("/products/:id", updateProductHandler(a.products))
	api.DELETE("/products/:id", deleteProductHandler(a.products))

	api.GET("/orders", listOrdersHandler(a.orders))
	api.GET("/orders/view", orderViewHandler(a.orders))
	api.GET("/orders/:id", getOrderHandler(a.orders))
	api.POST("/orders", createOrderHandler(a.orders))
	api.PUT("/orders/:id", updateOrderHandler(a.orders))
	api.PUT("/orders/:id/status", updateOrderStatusHandler(a.orders))
	api.PUT("/orders/:id/items/:product_id", updateOrderItemHandler(a.orders))
	api.DELETE("/orders/:id", deleteOrderHandler(a.orders))

	api.GET("/financial-values", getFinancialValuesHandler(a.finance))
	api.PUT("/financial-values", updateFinancialValuesHandler(a.finance))

	api.GET("/summary", summaryHandler(a.reports))
	return r
}

// writeError maps domain errors to HTTP statuses. Anything unknown is logged
// and hidden behind a generic message.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, product.ErrInvalid), errors.Is(err, order.ErrInvalid),
		errors.Is(err, user.ErrInvalid), errors.Is(err, finance.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, user.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
	case errors.Is(err, product.ErrNotFound), errors.Is(err, order.ErrNotFound),
		errors.Is(err, order.ErrItemNotFound), errors.Is(err, finance.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, order.ErrOrderCompleted), errors.Is(err, product.ErrInUse), errors.Is(err, user.ErrAlreadyExist):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("rid", httpx.RID(c)).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error, try again"})
	}
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return false
	}
	return true
}

// healthHandler godoc
// @Summary  Liveness and database probe
// @Tags     health
// @Produce  json
// @Success  200 {object} map[string]string
// @Failure  503 {object} map[string]string
// @Router   /healthz [get]
func healthHandler(h *health.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h != nil {
			if err := h.Check(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unreachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// loginHandler godoc
// @Summary  Exchange credentials for a bearer token
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body user.LoginRequest true "credentials"
// @Success  200 {object} user.LoginResponse
// @Failure  401 {object} product.HTTPError
// @Router   /login [post]
func loginHandler(users *user.Service, tokens *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.LoginRequest
		if !bindJSON(c, &req) {
			return
		}
		u, err := users.Authenticate(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			writeError(c, err)
			return
		}
		tok, exp, err := tokens.Issue(u.ID, u.Username)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, user.LoginResponse{Token: tok, ExpiresAt: exp})
	}
}

// listProductsHandler godoc
// @Summary  List products sorted by name
// @Tags     products
// @Produce  json
// @Security Bearer
// @Success  200 {object} product.ListResponse
// @Router   /products [get]
func listProductsHandler(svc *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := svc.List(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		if items == nil {
			items = []product.Product{}
		}
		c.JSON(http.StatusOK, product.ListResponse{Items: items})
	}
}

// getProductHandler godoc
// @Summary  Get a product
// @Tags     products
// @Produce  json
// @Security Bearer
// @Param    id path string true "product id"
// @Success  200 {object} product.Product
// @Failure  404 {object} product.HTTPError
// @Router   /products/{id} [get]
func getProductHandler(svc *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// createProductHandler godoc
// @Summary  Create a product
// @Tags     products
// @Accept   json
// @Produce  json
// @Security Bearer
// @Param    body body product.CreateProductRequest true "product"
// @Success  201 {object} product.Product
// @Failure  400 {object} product.HTTPError
// @Router   /products [post]
func createProductHandler(svc *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req product.CreateProductRequest
		if !bindJSON(c, &req) {
			return
		}
		p, err := svc.Create(c.Request.Context(), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

// updateProductHandler godoc
// @Summary  Update a product; sending quantity also resets max_quantity
// @Tags     products
// @Accept   json
// @Produce  json
// @Security Bearer
// @Param    id   path string                       true "product id"
// @Param    body body product.UpdateProductRequest true "product"
// @Success  200 {object} product.Product
// @Failure  400 {object} product.HTTPError
// @Failure  404 {object} product.HTTPError
// @Router   /products/{id} [put]
func updateProductHandler(svc *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req product.UpdateProductRequest
		if !bindJSON(c, &req) {
			return
		}
		p, err := svc.Update(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// deleteProductHandler godoc
// @Summary  Delete a product not referenced by any order
// @Tags     products
// @Security Bearer
// @Param    id path string true "product id"
// @Success  204
// @Failure  404 {object} product.HTTPError
// @Failure  409 {object} product.HTTPError
// @Router   /products/{id} [delete]
func deleteProductHandler(svc *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// listOrdersHandler godoc
// @Summary  List orders with their items
// @Tags     orders
// @Produce  json
// @Security Bearer
// @Success  200 {array} order.Order
// @Router   /orders [get]
func listOrdersHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.List(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		if out == nil {
			out = []order.Order{}
		}
		c.JSON(http.StatusOK, gin.H{"orders": out})
	}
}

// orderViewHandler godoc
// @Summary  Order list partition with totals, sorted by name
// @Tags     orders
// @Produce  json
// @Security Bearer
// @Param    completed query bool false "true for concluida orders, false for the rest"
// @Success  200 {array} order.View
// @Router   /orders/view [get]
func orderViewHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		completed := false
		if v := c.Query("completed"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "completed must be true or false"})
				return
			}
			completed = b
		}
		out, err := svc.ListView(c.Request.Context(), completed)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"completed": completed, "orders": out})
	}
}

// getOrderHandler godoc
// @Summary  Get an order
// @Tags     orders
// @Produce  json
// @Security Bearer
// @Param    id path string true "order id"
// @Success  200 {object} order.Order
// @Failure  404 {object} product.HTTPError
// @Router   /orders/{id} [get]
func getOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// createOrderHandler godoc
// @Summary  Create an order; stock is taken for every line
// @Tags     orders
// @Accept   json
// @Produce  json
// @Security Bearer
// @Param    body body order.OrderRequest true "order draft"
// @Success  201 {object} order.Order
// @Failure  400 {object} product.HTTPError
// @Router   /orders [post]
func createOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.OrderRequest
		if !bindJSON(c, &req) {
			return
		}
		o, err := svc.Create(c.Request.Context(), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, o)
	}
}

// updateOrderHandler godoc
// @Summary  Replace an order's data and items
// @Tags     orders
// @Accept   json
// @Produce  json
// @Security Bearer
// @Param    id   path string             true "order id"
// @Param    body body order.OrderRequest true "order draft"
// @Success  200 {object} order.Order
// @Failure  400 {object} product.HTTPError
// @Failure  404 {object} product.HTTPError
// @Router   /orders/{id} [put]
func updateOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.OrderRequest
		if !bindJSON(c, &req) {
			return
		}
		o, err := svc.Update(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// updateOrderStatusHandler godoc
// @Summary  Change an order's status
// @Tags     orders
// @Accept   json
// @Produce  json
// @Security Bearer
// @Param    id   path string              true "order id"
// @Param    body body order.StatusRequest true "new status"
// @Success  200 {object} order.Order
// @Failure  400 {object} product.HTTPError
// @Failure  404 {object} product.HTTPError
// @Router   /orders/{id}/status [put]
func updateOrderStatusHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.StatusRequest
		if !bindJSON(c, &req) {
			return
		}
		o, err := svc.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// updateOrderItemHandler godoc
// @Summary  Mark one order line as paid or unpaid
// @Tags     orders
// @Accept   json
// @Produce  json
// @Security Bearer
// @Param    id         path string                  true "order id"
// @Param    product_id path string                  true "product id"
// @Param    body       body order.ItemStatusRequest true "flag"
// @Success  200 {object} order.Order
// @Failure  404 {object} product.HTTPError
// @Failure  409 {object} product.HTTPError
// @Router   /orders/{id}/items/{product_id} [put]
func updateOrderItemHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.ItemStatusRequest
		if !bindJSON(c, &req) {
			return
		}
		o, err := svc.SetItemCompleted(c.Request.Context(), c.Param("id"), c.Param("product_id"), req.Completed)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// deleteOrderHandler godoc
// @Summary  Delete an order; stock comes back unless it was concluida
// @Tags     orders
// @Security Bearer
// @Param    id path string true "order id"
// @Success  204
// @Failure  404 {object} product.HTTPError
// @Router   /orders/{id} [delete]
func deleteOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// getFinancialValuesHandler godoc
// @Summary  Cash figures; created with zeros on first read
// @Tags     finance
// @Produce  json
// @Security Bearer
// @Success  200 {object} finance.Values
// @Router   /financial-values [get]
func getFinancialValuesHandler(svc *finance.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := svc.Get(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

// updateFinancialValuesHandler godoc
// @Summary  Set the cash figures
// @Tags     finance
// @Accept   json
// @Produce  json
// @Security Bearer
// @Param    body body finance.UpdateRequest true "banco and casa"
// @Success  200 {object} finance.Values
// @Router   /financial-values [put]
func updateFinancialValuesHandler(svc *finance.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req finance.UpdateRequest
		if !bindJSON(c, &req) {
			return
		}
		v, err := svc.Update(c.Request.Context(), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

// summaryHandler godoc
// @Summary  Grand totals across orders plus cash figures
// @Tags     finance
// @Produce  json
// @Security Bearer
// @Success  200 {object} report.SummaryView
// @Router   /summary [get]
func summaryHandler(svc *report.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := svc.Summary(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, s.Render())
	}
}
