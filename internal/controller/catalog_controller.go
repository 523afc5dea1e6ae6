package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"arc-backend/internal/service"
)

type CatalogController struct {
	CatalogService service.CatalogService
	responder
}

func NewCatalogController(catalogService service.CatalogService, resp responder) *CatalogController {
	return &CatalogController{CatalogService: catalogService, responder: resp}
}

func (cc *CatalogController) GetProducts(c *gin.Context) {
	products, err := cc.CatalogService.GetProducts(c.Request.Context(), c.Query("kind"), c.Query("q"))
	if err != nil {
		cc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (cc *CatalogController) GetProviders(c *gin.Context) {
	providers, err := cc.CatalogService.GetProviders(c.Request.Context())
	if err != nil {
		cc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"providers": providers})
}
