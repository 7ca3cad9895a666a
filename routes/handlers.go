package api

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	m "github.com/lucianomirandaGherzoni/api-crud-berlini/models"
)

// parseID answers the 400 itself when the path identifier is not an integer,
// so no handler touches the repository with a bad ID.
func parseID(c *gin.Context, noun string) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + noun + " ID, must be a number"})
		return 0, false
	}
	return id, true
}

func internalError(c *gin.Context, action string, err error) {
	log.Printf("Error while %s: %v", action, err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":  "Internal server error while " + action,
		"detail": err.Error(),
	})
}

func (api *API) handleListProducts(c *gin.Context) {
	products, err := api.DB.FindAllProducts()
	if err != nil {
		internalError(c, "listing products", err)
		return
	}
	// An empty collection is not an error.
	if len(products) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "No products in the database"})
		return
	}
	c.JSON(http.StatusOK, products)
}

func (api *API) handleGetProduct(c *gin.Context) {
	id, ok := parseID(c, "product")
	if !ok {
		return
	}
	product, found, err := api.DB.FindProductByID(id)
	if err != nil {
		internalError(c, "getting the product", err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (api *API) handleCreateProduct(c *gin.Context) {
	var in m.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if violations := in.Validate(); len(violations) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Missing or invalid product fields",
			"violations": violations,
		})
		return
	}
	product, err := api.DB.InsertProduct(in)
	if err != nil {
		internalError(c, "creating the product", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"product": product,
	})
}

func (api *API) handleUpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "product")
	if !ok {
		return
	}
	var in m.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if violations := in.Validate(); len(violations) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Missing or invalid product fields",
			"violations": violations,
		})
		return
	}

	// Existence is confirmed with its own read before attempting the write.
	_, found, err := api.DB.FindProductByID(id)
	if err != nil {
		internalError(c, "updating the product", err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product to update not found"})
		return
	}

	updated, err := api.DB.UpdateProduct(id, in)
	if err != nil {
		internalError(c, "updating the product", err)
		return
	}
	if !updated {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Product could not be updated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Product %d updated successfully", id)})
}

func (api *API) handleDeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "product")
	if !ok {
		return
	}

	// Best-effort cleanup of the referenced image before the row goes away.
	product, found, err := api.DB.FindProductByID(id)
	if err != nil {
		internalError(c, "deleting the product", err)
		return
	}
	if found && product.ImageRef != "" {
		if res := api.DB.DeleteImage(product.ImageRef); res == m.ImageDeleteFailed {
			log.Printf("Image delete reported failure for product %d (%s)", id, product.ImageRef)
		}
	}

	deleted, err := api.DB.DeleteProduct(id)
	if err != nil {
		internalError(c, "deleting the product", err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product to delete not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Product %d deleted successfully", id)})
}

func (api *API) handleListSauces(c *gin.Context) {
	sauces, err := api.DB.FindAllSauces()
	if err != nil {
		internalError(c, "listing sauces", err)
		return
	}
	if len(sauces) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "No sauces in the database"})
		return
	}
	c.JSON(http.StatusOK, sauces)
}

func (api *API) handleGetSauce(c *gin.Context) {
	id, ok := parseID(c, "sauce")
	if !ok {
		return
	}
	sauce, found, err := api.DB.FindSauceByID(id)
	if err != nil {
		internalError(c, "getting the sauce", err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sauce not found"})
		return
	}
	c.JSON(http.StatusOK, sauce)
}

func (api *API) handleCreateSauce(c *gin.Context) {
	var in m.SauceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if violations := in.Validate(); len(violations) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Missing or invalid sauce fields",
			"violations": violations,
		})
		return
	}
	sauce, err := api.DB.InsertSauce(in)
	if err != nil {
		internalError(c, "creating the sauce", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Sauce created successfully",
		"sauce":   sauce,
	})
}

func (api *API) handleUpdateSauce(c *gin.Context) {
	id, ok := parseID(c, "sauce")
	if !ok {
		return
	}
	var in m.SauceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if violations := in.Validate(); len(violations) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Missing or invalid sauce fields",
			"violations": violations,
		})
		return
	}

	_, found, err := api.DB.FindSauceByID(id)
	if err != nil {
		internalError(c, "updating the sauce", err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sauce to update not found"})
		return
	}

	updated, err := api.DB.UpdateSauce(id, in)
	if err != nil {
		internalError(c, "updating the sauce", err)
		return
	}
	if !updated {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sauce could not be updated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Sauce %d updated successfully", id)})
}

func (api *API) handleDeleteSauce(c *gin.Context) {
	id, ok := parseID(c, "sauce")
	if !ok {
		return
	}
	deleted, err := api.DB.DeleteSauce(id)
	if err != nil {
		internalError(c, "deleting the sauce", err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sauce to delete not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Sauce %d deleted successfully", id)})
}

func (api *API) handleStockDecrement(c *gin.Context) {
	var body struct {
		Items []m.StockLineInput `json:"items"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if len(body.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No stock items provided"})
		return
	}

	var violations []m.FieldViolation
	lines := make([]m.StockLine, 0, len(body.Items))
	for i, item := range body.Items {
		if v := item.Validate(i); len(v) > 0 {
			violations = append(violations, v...)
			continue
		}
		lines = append(lines, item.ToLine())
	}
	if len(violations) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Missing or invalid stock items",
			"violations": violations,
		})
		return
	}

	if err := api.DB.ApplyStockDecrement(lines); err != nil {
		var notFound *m.LineNotFoundError
		var insufficient *m.InsufficientStockError
		switch {
		case errors.As(err, &notFound):
			c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
		case errors.As(err, &insufficient):
			c.JSON(http.StatusBadRequest, gin.H{"error": insufficient.Error()})
		default:
			internalError(c, "updating stock", err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stock updated successfully"})
}

func (api *API) handleUploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image file provided"})
		return
	}
	src, err := file.Open()
	if err != nil {
		internalError(c, "uploading the image", err)
		return
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		internalError(c, "uploading the image", err)
		return
	}

	imageURL, err := api.DB.UploadImage(data, file.Filename, file.Header.Get("Content-Type"))
	if err != nil {
		internalError(c, "uploading the image", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Image uploaded successfully",
		"imageUrl": imageURL,
	})
}

func (api *API) handleDeleteImage(c *gin.Context) {
	var body struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.ImageURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image URL provided"})
		return
	}
	// Failures are tolerated here: an orphaned blob beats a blocked caller.
	if res := api.DB.DeleteImage(body.ImageURL); res == m.ImageDeleteFailed {
		log.Printf("Image delete reported failure for %s", body.ImageURL)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Image deleted successfully"})
}
