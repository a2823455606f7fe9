package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"azzipizza/apperr"
	"azzipizza/models"
	"azzipizza/stores"
	"azzipizza/uploads"
)

type MenuController struct {
	store    stores.MenuStore
	uploader uploads.Uploader
}

func NewMenuController(store stores.MenuStore, uploader uploads.Uploader) *MenuController {
	return &MenuController{store: store, uploader: uploader}
}

func (mc *MenuController) GetAllMenuItems(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	items, err := mc.store.List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Fetch success", "data": items})
}

func (mc *MenuController) GetMenuItemByID(c *gin.Context) {
	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid menu item ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	item, err := mc.store.Get(ctx, objID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Fetch success", "data": item})
}

// menuForm reads the multipart fields shared by create and update. Numeric
// fields arrive as strings; ingredients arrive as a JSON-encoded array.
type menuForm struct {
	Name        string
	Description string
	Price       *float64
	Discount    *float64
	Category    string
	Ingredients *[]models.Ingredient
	Available   *bool
}

func parseMenuForm(c *gin.Context) (*menuForm, error) {
	form := &menuForm{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
	}

	if raw := c.PostForm("price"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, apperr.Validation("price", "price must be a number")
		}
		form.Price = &price
	}
	if raw := c.PostForm("discount"); raw != "" {
		discount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, apperr.Validation("discount", "discount must be a number")
		}
		form.Discount = &discount
	}
	if raw := c.PostForm("ingredients"); raw != "" {
		var ingredients []models.Ingredient
		if err := json.Unmarshal([]byte(raw), &ingredients); err != nil {
			return nil, apperr.Validation("ingredients", "ingredients must be a JSON array of {name, price}")
		}
		form.Ingredients = &ingredients
	}
	if raw := c.PostForm("available"); raw != "" {
		available, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, apperr.Validation("available", "available must be true or false")
		}
		form.Available = &available
	}
	return form, nil
}

// uploadImage pushes an attached image part to the image host and returns
// its URL; ok is false when the request carries no image.
func (mc *MenuController) uploadImage(c *gin.Context) (string, bool, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return "", false, nil
	}

	src, err := file.Open()
	if err != nil {
		return "", false, apperr.External("image upload", err)
	}
	defer src.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	url, err := mc.uploader.Upload(ctx, file.Filename, src)
	if err != nil {
		return "", false, err
	}
	return url, true, nil
}

func (mc *MenuController) CreateMenuItem(c *gin.Context) {
	form, err := parseMenuForm(c)
	if err != nil {
		respondError(c, err)
		return
	}

	input := stores.CreateMenuInput{
		Name:        form.Name,
		Description: form.Description,
		Category:    form.Category,
		Available:   form.Available,
	}
	if form.Price != nil {
		input.Price = *form.Price
	}
	if form.Discount != nil {
		input.Discount = *form.Discount
	}
	if form.Ingredients != nil {
		input.Ingredients = *form.Ingredients
	}

	if url, ok, err := mc.uploadImage(c); err != nil {
		respondError(c, err)
		return
	} else if ok {
		input.Image = url
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	item, err := mc.store.Create(ctx, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Menu item created", "data": item})
}

func (mc *MenuController) UpdateMenuItem(c *gin.Context) {
	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid menu item ID"})
		return
	}

	form, err := parseMenuForm(c)
	if err != nil {
		respondError(c, err)
		return
	}

	patch := stores.MenuPatch{
		Price:       form.Price,
		Discount:    form.Discount,
		Ingredients: form.Ingredients,
		Available:   form.Available,
	}
	if form.Name != "" {
		patch.Name = &form.Name
	}
	if form.Description != "" {
		patch.Description = &form.Description
	}
	if form.Category != "" {
		patch.Category = &form.Category
	}

	// A failed replacement upload keeps the previous image.
	if url, ok, err := mc.uploadImage(c); err != nil {
		respondError(c, err)
		return
	} else if ok {
		patch.Image = &url
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	item, err := mc.store.Update(ctx, objID, patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Menu item updated", "data": item})
}

func (mc *MenuController) DeleteMenuItem(c *gin.Context) {
	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid menu item ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	deleted, err := mc.store.Delete(ctx, objID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted", "data": deleted})
}
