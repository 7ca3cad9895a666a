package api

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/lucianomirandaGherzoni/api-crud-berlini/config"
	m "github.com/lucianomirandaGherzoni/api-crud-berlini/models"
)

// DBService is everything the handlers need from the backend gateway.
// db.DBService implements it; tests substitute a mock.
type DBService interface {
	FindAllProducts() ([]m.Product, error)
	FindProductByID(id int) (m.Product, bool, error)
	InsertProduct(in m.ProductInput) (m.Product, error)
	UpdateProduct(id int, in m.ProductInput) (bool, error)
	DeleteProduct(id int) (bool, error)

	FindAllSauces() ([]m.Sauce, error)
	FindSauceByID(id int) (m.Sauce, bool, error)
	InsertSauce(in m.SauceInput) (m.Sauce, error)
	UpdateSauce(id int, in m.SauceInput) (bool, error)
	DeleteSauce(id int) (bool, error)

	ApplyStockDecrement(lines []m.StockLine) error

	UploadImage(data []byte, originalName, contentType string) (string, error)
	DeleteImage(url string) m.ImageDeleteResult
}

// API wires the route table to its collaborators.
type API struct {
	DB     DBService
	Config config.Config
}

func securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Next()
	}
}

func (api *API) setupCORS() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Authorization",
	}
	cfg.MaxAge = 12 * time.Hour
	return cfg
}

func (api *API) setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(securityHeadersMiddleware())
	router.Use(cors.New(api.setupCORS()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", api.handleListProducts)
		v1.POST("/products", api.handleCreateProduct)
		v1.GET("/products/:id", api.handleGetProduct)
		v1.PUT("/products/:id", api.handleUpdateProduct)
		v1.DELETE("/products/:id", api.handleDeleteProduct)

		v1.POST("/products/upload-image", api.handleUploadImage)
		v1.DELETE("/products/delete-image", api.handleDeleteImage)

		v1.GET("/sauces", api.handleListSauces)
		v1.POST("/sauces", api.handleCreateSauce)
		v1.GET("/sauces/:id", api.handleGetSauce)
		v1.PUT("/sauces/:id", api.handleUpdateSauce)
		v1.DELETE("/sauces/:id", api.handleDeleteSauce)

		v1.POST("/stock/decrement", api.handleStockDecrement)
	}
	return router
}

// ExposeAPI starts the HTTP server and blocks until the process is told to
// stop, then shuts down gracefully.
func ExposeAPI(dbService DBService, cfg config.Config) {
	api := &API{DB: dbService, Config: cfg}
	router := api.setupRouter()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to initialize server: %v\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}
	log.Println("Server exiting")
}
