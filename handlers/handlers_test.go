package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"vendorfill/api/middleware"
	"vendorfill/api/models"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
)

func TestStripDataURL(t *testing.T) {
	cases := []struct{ in, want string }{
		{"data:application/pdf;base64,JVBERi0x", "JVBERi0x"},
		{"base64,JVBERi0x", "JVBERi0x"},
		{"JVBERi0x", "JVBERi0x"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := stripDataURL(tc.in); got != tc.want {
			t.Errorf("stripDataURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func authedContext(t *testing.T, method, path string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, &buf)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("user", &models.SupabaseClaims{Sub: "user-123", Email: "user@vendorfill.io"})
	return c, w
}

func TestHandleFillRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/fill", bytes.NewBufferString("{}"))

	HandleFill(c)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestHandleFillMissingPDF(t *testing.T) {
	c, w := authedContext(t, http.MethodPost, "/api/fill", FillRequest{})

	HandleFill(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHandleFillInvalidBase64(t *testing.T) {
	c, w := authedContext(t, http.MethodPost, "/api/fill", FillRequest{PDFBase64: "not-valid-base64!!!"})

	HandleFill(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHandleFillUnreadablePDF(t *testing.T) {
	c, w := authedContext(t, http.MethodPost, "/api/fill", FillRequest{
		// Valid base64 of bytes that are not a PDF.
		PDFBase64: "bm90IGEgcGRm",
		Profile:   models.Profile{CompanyName: "Acme Corp"},
	})

	HandleFill(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHandleCheckoutMissingPrice(t *testing.T) {
	c, w := authedContext(t, http.MethodPost, "/api/stripe/checkout", map[string]string{})

	HandleCreateCheckoutSession(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHandleCheckoutUnknownPrice(t *testing.T) {
	c, w := authedContext(t, http.MethodPost, "/api/stripe/checkout", map[string]string{
		"priceId": "price_not_in_plan_table",
	})

	HandleCreateCheckoutSession(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHandleStripeWebhookMissingEvent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", nil)

	HandleStripeWebhook(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHandleStripeWebhookIgnoredEvent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", nil)
	c.Set(middleware.StripeEventKey, stripe.Event{Type: "invoice.paid"})

	HandleStripeWebhook(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["received"] != true {
		t.Fatalf("response = %v, want received=true", resp)
	}
}
