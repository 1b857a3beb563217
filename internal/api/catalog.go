package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/service"
)

// TagHandler serves the read-only tag list
type TagHandler struct {
	tagService service.ITagService
}

func NewTagHandler(tagService service.ITagService) *TagHandler {
	return &TagHandler{tagService: tagService}
}

func (h *TagHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/tags", h.ListTags)
	router.GET("/tags/:id", h.GetTag)
}

func (h *TagHandler) ListTags(c *gin.Context) {
	tags, err := h.tagService.ListTags(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (h *TagHandler) GetTag(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	tag, err := h.tagService.GetTag(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

// IngredientHandler serves the ingredient catalogue with prefix search
type IngredientHandler struct {
	ingredientService service.IIngredientService
}

func NewIngredientHandler(ingredientService service.IIngredientService) *IngredientHandler {
	return &IngredientHandler{ingredientService: ingredientService}
}

func (h *IngredientHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/ingredients", h.ListIngredients)
	router.GET("/ingredients/:id", h.GetIngredient)
}

func (h *IngredientHandler) ListIngredients(c *gin.Context) {
	ingredients, err := h.ingredientService.ListIngredients(c.Request.Context(), c.Query("name"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

func (h *IngredientHandler) GetIngredient(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	ingredient, err := h.ingredientService.GetIngredient(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}
