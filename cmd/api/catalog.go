package main

import (
	"net/http"

	"github.com/farxc/odca-monitor/internal/catalog"
	"github.com/farxc/odca-monitor/internal/response"
)

type GetCatalogResponse = response.APIResponse[*catalog.Catalog]

// @Summary		Get catalog
// @Description	Companies, operations, oil types and fields known to the parser and the report writers.
// @Tags			Catalog
// @Produce		json
// @Success		200	{object}	GetCatalogResponse
// @Router			/catalog [get]
func (app *application) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	writeData(w, "Successfully retrieved catalog", app.catalog)
}
