package apihandlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/arcflow/arcflow-backend/pkg/apihelpers"
	mw "github.com/arcflow/arcflow-backend/pkg/apihelpers/middlewares"
	"github.com/arcflow/arcflow-backend/pkg/briefing/exporter"
	"github.com/arcflow/arcflow-backend/pkg/briefing/types"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func (h *HttpEndpoints) AddBriefingAPI(rg *gin.RouterGroup) {
	briefingsGroup := rg.Group("/briefings")
	briefingsGroup.Use(mw.OfficeAuthMiddleware(h.tokenSignKey, h.allowedOfficeIDs, h.serviceAPIKeys))
	{
		briefingsGroup.GET("/", h.getBriefings) // ?page=1&limit=10&sortBy=submittedAt&order=desc&schemaKey=&submittedBy=&from=&until=
		briefingsGroup.GET("/:id", h.getBriefing)
		briefingsGroup.GET("/:id/export", h.exportBriefing) // ?format=wide|long|json
		briefingsGroup.DELETE("/:id", mw.IsOfficeAdmin(), h.deleteBriefing)
	}
}

func (h *HttpEndpoints) getBriefings(c *gin.Context) {
	token, _ := mw.GetOfficeClaims(c)

	query, err := apihelpers.ParsePaginatedBriefingQueryFromCtx(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	briefings, paginationInfo, err := h.briefingDB.GetBriefings(token.OfficeID, query.Filter, query.Sort, query.Page, query.Limit)
	if err != nil {
		slog.Error("failed to get briefings", slog.String("officeID", token.OfficeID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get briefings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"briefings":  briefings,
		"pagination": paginationInfo,
	})
}

func (h *HttpEndpoints) loadBriefing(c *gin.Context, officeID string) (*types.Briefing, bool) {
	id := c.Param("id")
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid briefing id"})
		return nil, false
	}
	briefing, err := h.briefingDB.GetBriefingByID(officeID, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "briefing not found"})
			return nil, false
		}
		slog.Error("failed to get briefing", slog.String("officeID", officeID), slog.String("briefingID", id), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get briefing"})
		return nil, false
	}
	return &briefing, true
}

func (h *HttpEndpoints) getBriefing(c *gin.Context) {
	token, _ := mw.GetOfficeClaims(c)
	briefing, ok := h.loadBriefing(c, token.OfficeID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"briefing": briefing,
		"summary":  exporter.Summarize(briefing.Records),
	})
}

func (h *HttpEndpoints) deleteBriefing(c *gin.Context) {
	token, _ := mw.GetOfficeClaims(c)
	id := c.Param("id")
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid briefing id"})
		return
	}

	if err := h.briefingDB.DeleteBriefingByID(token.OfficeID, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "briefing not found"})
			return
		}
		slog.Error("failed to delete briefing", slog.String("officeID", token.OfficeID), slog.String("briefingID", id), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete briefing"})
		return
	}

	slog.Info("briefing deleted", slog.String("officeID", token.OfficeID), slog.String("userID", token.Subject), slog.String("briefingID", id))
	c.JSON(http.StatusOK, gin.H{"message": "briefing deleted"})
}

func (h *HttpEndpoints) exportBriefing(c *gin.Context) {
	token, _ := mw.GetOfficeClaims(c)

	format := c.DefaultQuery("format", exporter.FORMAT_JSON)
	if !exporter.IsValidFormat(format) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported format"})
		return
	}

	briefing, ok := h.loadBriefing(c, token.OfficeID)
	if !ok {
		return
	}
	s, err := h.registry.Get(token.OfficeID, briefing.SchemaKey)
	if err != nil {
		h.respondSchemaError(c, token.OfficeID, briefing.SchemaKey, err)
		return
	}

	contentType := "text/csv; charset=utf-8"
	extension := "csv"
	if format == exporter.FORMAT_JSON {
		contentType = "application/json; charset=utf-8"
		extension = "json"
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=briefing-%s-%s.%s", briefing.ID.Hex(), format, extension))
	c.Status(http.StatusOK)

	writer, err := exporter.NewBriefingWriter(s, c.Writer, format, h.listSeparator)
	if err == nil {
		err = writer.WriteBriefing(briefing)
	}
	if err == nil {
		err = writer.Finish()
	}
	if err != nil {
		slog.Error("failed to export briefing", slog.String("officeID", token.OfficeID), slog.String("briefingID", briefing.ID.Hex()), slog.String("error", err.Error()))
	}
}
