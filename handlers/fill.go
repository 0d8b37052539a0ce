package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"

	"vendorfill/api/db"
	"vendorfill/api/llm"
	"vendorfill/api/logger"
	"vendorfill/api/mapper"
	"vendorfill/api/models"
	"vendorfill/api/notifier"
	"vendorfill/api/pdfform"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FillMapper is wired in main with the configured assisted strategy.
var FillMapper = &mapper.Mapper{}

type FillRequest struct {
	PDFBase64 string         `json:"pdfBase64"`
	PDF       string         `json:"pdf"`
	FileName  string         `json:"fileName"`
	Profile   models.Profile `json:"profile"`
}

// HandleFill runs the whole fill pipeline: admit against quota, map
// fields, write and flatten the PDF. Quota is consumed on admission,
// before the model call, so an abandoned request still counts.
func HandleFill(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}

	var req FillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	raw := req.PDFBase64
	if raw == "" {
		raw = req.PDF
	}
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "pdfBase64 is required (base64 string)"})
		return
	}

	pdfBytes, err := base64.StdEncoding.DecodeString(stripDataURL(raw))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid base64 PDF input"})
		return
	}

	profile := req.Profile
	if profile.IsEmpty() {
		// Fall back to the saved profile so older clients that send
		// only the PDF keep working.
		profile, err = db.GetProfile(c.Request.Context(), claims.Sub)
		if err != nil {
			logger.Get().Error("failed to load profile", zap.String("user_id", claims.Sub), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to load profile"})
			return
		}
	}
	if profile.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Please save your company profile first"})
		return
	}

	form, err := pdfform.Load(pdfBytes)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Could not read PDF form: " + err.Error()})
		return
	}

	fillID := uuid.NewString()
	logger.Get().Debug("form fields resolved",
		zap.String("fill_id", fillID),
		zap.Strings("fields", form.FieldNames()))

	usage, err := db.ConsumeFill(c.Request.Context(), claims.Sub)
	if err != nil {
		logger.Get().Error("consume failed", zap.String("user_id", claims.Sub), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Usage check failed"})
		return
	}
	if !usage.Allowed {
		c.JSON(http.StatusPaymentRequired, gin.H{
			"success": false,
			"blocked": true,
			"reason":  usage.Reason,
			"usage":   usage,
		})
		return
	}

	values, err := FillMapper.Map(c.Request.Context(), profile, form.Fields())
	if err != nil {
		var malformed *llm.MalformedOutputError
		if errors.As(err, &malformed) {
			logger.Get().Error("model output malformed",
				zap.String("fill_id", fillID),
				zap.String("raw", malformed.Raw))
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Model response was not valid JSON",
				"raw":     malformed.Raw,
			})
			return
		}
		logger.Get().Error("field mapping failed", zap.String("fill_id", fillID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	form.Apply(values)
	form.Flatten()

	filled, err := form.Bytes()
	if err != nil {
		logger.Get().Error("failed to serialize filled PDF", zap.String("fill_id", fillID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to produce filled PDF"})
		return
	}

	logger.Get().Info("fill completed",
		zap.String("fill_id", fillID),
		zap.String("user_id", claims.Sub),
		zap.Int("fields", len(form.Fields())),
		zap.Int("used_this_period", usage.UsedThisPeriod))

	if notifier.Enabled() && profile.AccountingEmail != "" {
		fileName := req.FileName
		if fileName == "" {
			fileName = "vendor-packet.pdf"
		}
		// Best effort; the response doesn't wait on delivery.
		go notifier.SendFilledPacket(profile.AccountingEmail, fileName, fillID, filled)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"filledPdf": "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(filled),
		"usage":     usage,
		"fill_id":   fillID,
	})
}
