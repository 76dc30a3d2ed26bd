package api

import (
	"context"
	"net/http"

	"github.com/ElizabetLu/Online-Tech/internal/domain"
)

// GenerateQR renders the given text as a QR code image (base64 PNG).
func (c *Client) GenerateQR(ctx context.Context, text string) (*domain.QRCode, error) {
	var code domain.QRCode
	err := c.do(ctx, call{
		name:   "qrcode.generate",
		method: http.MethodPost,
		path:   "/qrcode/generate",
		body:   map[string]string{"text": text},
	}, &code)
	if err != nil {
		return nil, err
	}
	return &code, nil
}

// GenerateQRWithImage renders a QR code with a centered overlay image.
func (c *Client) GenerateQRWithImage(ctx context.Context, text, imageURL string) (*domain.QRCode, error) {
	var code domain.QRCode
	err := c.do(ctx, call{
		name:   "qrcode.generate_image",
		method: http.MethodPost,
		path:   "/qrcode/generate_with_image",
		body:   map[string]string{"text": text, "image": imageURL},
	}, &code)
	if err != nil {
		return nil, err
	}
	return &code, nil
}
