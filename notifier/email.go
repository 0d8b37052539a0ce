// Package notifier delivers filled vendor packets by email. Delivery
// is best effort: the fill response never waits on it and failures are
// only logged.
package notifier

import (
	"encoding/base64"
	"fmt"
	"os"

	"vendorfill/api/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Enabled reports whether email delivery is configured.
func Enabled() bool {
	return os.Getenv("SENDGRID_API_KEY") != "" && os.Getenv("SENDGRID_FROM_EMAIL") != ""
}

// SendFilledPacket emails the filled PDF as an attachment.
func SendFilledPacket(to, fileName, fillID string, pdf []byte) {
	if !Enabled() {
		return
	}

	from := mail.NewEmail("VendorFill AI", os.Getenv("SENDGRID_FROM_EMAIL"))
	subject := fmt.Sprintf("Your filled vendor packet - %s", fileName)
	body := "Your AI-filled vendor packet is attached. Thank you for using VendorFill AI!"

	m := mail.NewV3Mail()
	m.SetFrom(from)
	m.Subject = subject

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail("", to))
	m.AddPersonalizations(p)

	m.AddContent(mail.NewContent("text/plain", body))

	a := mail.NewAttachment()
	a.SetContent(base64.StdEncoding.EncodeToString(pdf))
	a.SetType("application/pdf")
	a.SetFilename("FILLED_" + fileName)
	a.SetDisposition("attachment")
	m.AddAttachment(a)

	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
	resp, err := client.Send(m)
	if err != nil {
		logger.Get().Error("packet delivery failed",
			zap.String("fill_id", fillID), zap.Error(err))
		return
	}
	if resp.StatusCode >= 400 {
		logger.Get().Error("packet delivery rejected",
			zap.String("fill_id", fillID),
			zap.Int("status", resp.StatusCode),
			zap.String("body", resp.Body))
		return
	}

	logger.Get().Info("packet delivered",
		zap.String("fill_id", fillID), zap.String("to", to))
}
