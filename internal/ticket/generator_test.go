package ticket

import (
	"bytes"
	"context"
	"image/png"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aakar/internal/webhook/service"
)

func TestGenerateUploadsPNGAndReturnsURL(t *testing.T) {
	blobs := NewInMemoryBlobStore()
	gen, err := NewGenerator(blobs, "http://localhost:8080", "")
	require.NoError(t, err)

	id := uuid.New()
	url, err := gen.Generate(context.Background(), service.TicketRequest{
		ParticipantID: id,
		Name:          "Asha Rao",
		Phone:         "9000000001",
		Price:         25000,
		EventCount:    2,
		OrderID:       "order_abc",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "memory://tickets/"), url)
	assert.Contains(t, url, id.String())

	data, ok := blobs.Get("tickets/" + id.String() + "-order_abc.png")
	require.True(t, ok, "ticket object not uploaded")

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err, "uploaded ticket is not a valid PNG")
	assert.Equal(t, canvasWidth, img.Bounds().Dx())
	assert.Equal(t, canvasHeight, img.Bounds().Dy())
}

func TestGenerateDistinctOrdersDistinctObjects(t *testing.T) {
	blobs := NewInMemoryBlobStore()
	gen, err := NewGenerator(blobs, "http://localhost:8080", "")
	require.NoError(t, err)

	id := uuid.New()
	u1, err := gen.Generate(context.Background(), service.TicketRequest{ParticipantID: id, OrderID: "o1", Name: "A", Phone: "1"})
	require.NoError(t, err)
	u2, err := gen.Generate(context.Background(), service.TicketRequest{ParticipantID: id, OrderID: "o2", Name: "A", Phone: "1"})
	require.NoError(t, err)

	assert.NotEqual(t, u1, u2)
}

func TestNewGeneratorMissingBackground(t *testing.T) {
	_, err := NewGenerator(NewInMemoryBlobStore(), "http://localhost:8080", "does/not/exist.png")
	assert.Error(t, err)
}
