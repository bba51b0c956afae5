package apihandlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	mw "github.com/arcflow/arcflow-backend/pkg/apihelpers/middlewares"
	"github.com/arcflow/arcflow-backend/pkg/briefing/schema"
	briefingsDB "github.com/arcflow/arcflow-backend/pkg/db/briefings"
	"github.com/arcflow/arcflow-backend/pkg/utils"
	"github.com/gin-gonic/gin"
)

func (h *HttpEndpoints) AddSchemaAPI(rg *gin.RouterGroup) {
	schemasGroup := rg.Group("/schemas")
	schemasGroup.Use(mw.OfficeAuthMiddleware(h.tokenSignKey, h.allowedOfficeIDs, h.serviceAPIKeys))
	{
		schemasGroup.GET("/", h.getSchemas)
		schemasGroup.GET("/:schemaKey", h.getSchema)
		schemasGroup.POST("/", mw.CanPublishSchemas(), mw.RequirePayload(h.maxSchemaSize), h.publishSchema)
	}
}

type schemaInfo struct {
	Key     string `json:"key"`
	Version string `json:"version"`
	Name    string `json:"name"`
}

func (h *HttpEndpoints) getSchemas(c *gin.Context) {
	token, _ := mw.GetOfficeClaims(c)

	keys := h.registry.Keys()
	officeKeys, err := h.briefingDB.GetSchemaKeys(token.OfficeID)
	if err != nil {
		slog.Error("failed to get schema keys", slog.String("officeID", token.OfficeID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get schemas"})
		return
	}
	for _, k := range officeKeys {
		if _, ok := h.registry.Static(k); !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	infos := make([]schemaInfo, 0, len(keys))
	for _, key := range keys {
		s, err := h.registry.Get(token.OfficeID, key)
		if err != nil {
			slog.Error("failed to load schema", slog.String("officeID", token.OfficeID), slog.String("key", key), slog.String("error", err.Error()))
			continue
		}
		infos = append(infos, schemaInfo{Key: s.Key, Version: s.Version, Name: s.Name})
	}
	c.JSON(http.StatusOK, gin.H{"schemas": infos})
}

func (h *HttpEndpoints) getSchema(c *gin.Context) {
	token, _ := mw.GetOfficeClaims(c)
	schemaKey := c.Param("schemaKey")

	s, err := h.registry.Get(token.OfficeID, schemaKey)
	if err != nil {
		h.respondSchemaError(c, token.OfficeID, schemaKey, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schema": s})
}

// respondSchemaError maps registry errors to responses.
func (h *HttpEndpoints) respondSchemaError(c *gin.Context, officeID string, schemaKey string, err error) {
	if errors.Is(err, schema.ErrSchemaNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "schema not found"})
		return
	}
	slog.Error("failed to get schema", slog.String("officeID", officeID), slog.String("key", schemaKey), slog.String("error", err.Error()))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get schema"})
}

// publishSchema accepts a schema document as multipart upload (field "file")
// or as raw request body. The format comes from the "format" query, the file
// name or the content.
func (h *HttpEndpoints) publishSchema(c *gin.Context) {
	token, _ := mw.GetOfficeClaims(c)

	content, filename, err := h.readSchemaDocument(c)
	if err != nil {
		slog.Warn("failed to read schema document", slog.String("officeID", token.OfficeID), slog.String("error", err.Error()))
		status := http.StatusBadRequest
		if errors.Is(err, utils.ErrUploadTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	format := c.Query("format")
	if format == "" {
		if f, ok := schema.FormatFromFilename(filename); ok {
			format = f
		} else {
			format = schema.DetectFormat(content)
		}
	}
	if format != schema.FORMAT_YAML && format != schema.FORMAT_JSON {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported format"})
		return
	}

	s, err := schema.LoadWithFormat(content, format, h.registry.Checks())
	if err != nil {
		var loadErr *schema.SchemaLoadError
		if errors.As(err, &loadErr) {
			slog.Info("rejected schema document", slog.String("officeID", token.OfficeID), slog.String("key", loadErr.SchemaKey), slog.Int("problems", len(loadErr.Problems)))
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid schema", "problems": loadErr.Problems})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !utils.IsURLSafe(s.Key) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "schema key must only contain letters, digits, '-' and '_'"})
		return
	}

	version := s.Version
	if version == "" {
		existing, err := h.briefingDB.GetSchemaVersions(token.OfficeID, s.Key)
		if err != nil {
			slog.Error("failed to get schema versions", slog.String("officeID", token.OfficeID), slog.String("key", s.Key), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to publish schema"})
			return
		}
		version = utils.GenerateSchemaVersion(existing)
	}

	def, err := h.briefingDB.SaveSchemaDefinition(token.OfficeID, briefingsDB.SchemaDefinition{
		Key:         s.Key,
		Version:     version,
		Format:      format,
		Source:      string(content),
		PublishedBy: token.Subject,
	})
	if err != nil {
		if errors.Is(err, briefingsDB.ErrDuplicateVersion) {
			c.JSON(http.StatusConflict, gin.H{"error": "schema version already published"})
			return
		}
		slog.Error("failed to save schema definition", slog.String("officeID", token.OfficeID), slog.String("key", s.Key), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to publish schema"})
		return
	}

	slog.Info("schema published", slog.String("officeID", token.OfficeID), slog.String("key", def.Key), slog.String("version", def.Version), slog.String("userID", token.Subject))
	c.JSON(http.StatusOK, gin.H{"schema": schemaInfo{Key: def.Key, Version: def.Version, Name: s.Name}})
}

func (h *HttpEndpoints) readSchemaDocument(c *gin.Context) ([]byte, string, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return nil, "", err
		}
		content, err := utils.ReadTextUpload(fileHeader, h.maxSchemaSize)
		return content, fileHeader.Filename, err
	}
	content, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, "", err
	}
	if err := utils.ValidateTextContent(content); err != nil {
		return nil, "", err
	}
	return content, "", nil
}
