// Package ticket composites fest tickets: a QR code pointing at the
// verification endpoint drawn over a background with the participant's
// details, PNG-encoded and uploaded to blob storage.
package ticket

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg" // background template decoding
	"image/png"
	"os"

	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"aakar/internal/webhook/service"
)

const (
	canvasWidth  = 600
	canvasHeight = 840
	qrSize       = 320
)

// Generator builds and uploads ticket images. The background template is
// loaded once at construction and owned by the generator; there is no
// process-wide image cache.
type Generator struct {
	blobs      BlobStore
	baseURL    string
	background image.Image
}

// NewGenerator creates a Generator. backgroundPath may be empty, in which
// case a plain background is used.
func NewGenerator(blobs BlobStore, baseURL, backgroundPath string) (*Generator, error) {
	g := &Generator{blobs: blobs, baseURL: baseURL}
	if backgroundPath != "" {
		f, err := os.Open(backgroundPath)
		if err != nil {
			return nil, fmt.Errorf("open ticket background: %w", err)
		}
		defer f.Close()
		img, _, err := image.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("decode ticket background: %w", err)
		}
		g.background = img
	}
	return g, nil
}

// Generate renders and uploads the ticket, returning its public URL. The QR
// encodes the verification URL keyed by participant ID.
func (g *Generator) Generate(ctx context.Context, req service.TicketRequest) (string, error) {
	verifyURL := fmt.Sprintf("%s/verify/%s", g.baseURL, req.ParticipantID)

	qr, err := qrcode.New(verifyURL, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}

	canvas := g.newCanvas()
	drawCentered(canvas, qr.Image(qrSize), canvasHeight-qrSize-60)

	lines := []string{
		"AAKAR 2025",
		"Name: " + req.Name,
		"Phone: " + req.Phone,
		fmt.Sprintf("Amount: Rs. %d", req.Price/100),
		fmt.Sprintf("Events: %d", req.EventCount),
		"Order: " + req.OrderID,
	}
	drawLines(canvas, lines, 40, 60)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return "", fmt.Errorf("encode ticket png: %w", err)
	}

	objectName := fmt.Sprintf("tickets/%s-%s.png", req.ParticipantID, req.OrderID)
	url, err := g.blobs.Put(ctx, objectName, "image/png", buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("upload ticket: %w", err)
	}
	return url, nil
}

func (g *Generator) newCanvas() *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, canvasWidth, canvasHeight))
	if g.background != nil {
		draw.Draw(canvas, canvas.Bounds(), g.background, g.background.Bounds().Min, draw.Src)
		return canvas
	}
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.RGBA{R: 24, G: 26, B: 42, A: 255}), image.Point{}, draw.Src)
	return canvas
}

func drawCentered(dst *image.RGBA, src image.Image, y int) {
	x := (dst.Bounds().Dx() - src.Bounds().Dx()) / 2
	r := image.Rect(x, y, x+src.Bounds().Dx(), y+src.Bounds().Dy())
	draw.Draw(dst, r, src, src.Bounds().Min, draw.Over)
}

func drawLines(dst *image.RGBA, lines []string, x, startY int) {
	const lineHeight = 28
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.White),
		Face: basicfont.Face7x13,
	}
	for i, line := range lines {
		d.Dot = fixed.P(x, startY+i*lineHeight)
		d.DrawString(line)
	}
}
