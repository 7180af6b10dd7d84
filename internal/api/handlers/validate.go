package handlers

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/template"
	"github.com/gin-gonic/gin"
)

// ValidateTemplate checks an uploaded template for the required
// placeholder tokens before the caller commits to a batch run. Advisory:
// generation itself never requires the tokens to be present.
func ValidateTemplate(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "no template file uploaded"})
		return
	}
	if file.Size > template.MaxTemplateSize {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "template exceeds the 5 MB limit"})
		return
	}
	if ext := strings.ToLower(filepath.Ext(file.Filename)); ext != ".docx" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "only .docx templates are supported"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to read upload"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to read upload"})
		return
	}

	text, err := template.ExtractText(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "malformed document package"})
		return
	}

	result := template.ValidateText(text)
	c.JSON(http.StatusOK, gin.H{"success": true, "valid": result.OK, "hints": result.Hints})
}
