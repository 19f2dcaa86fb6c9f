package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/voldhaul/load-invoicing/internal/domain/entity"
)

func sampleDocument(rowCount int) *entity.InvoiceDocument {
	rows := make([]entity.InvoiceRow, 0, rowCount)
	base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < rowCount; i++ {
		delivered := base.Add(time.Duration(i) * time.Hour)
		rows = append(rows, entity.InvoiceRow{
			Job:          "Pad A",
			Date:         delivered.Format(entity.DateTimeLayout),
			DeliveryTime: delivered,
			Driver:       "Ann Lee",
			LoadNumber:   fmt.Sprintf("L-%d", i+1),
			BOL:          fmt.Sprintf("B-%d", i+1),
			Tons:         10,
			Miles:        40,
			RatePerTon:   10,
			LoadPay:      100,
			LoadID:       int64(i + 1),
		})
	}
	header := entity.InvoiceHeader{
		ID:            12,
		ClientID:      7,
		ClientName:    "Acme Sand & Gravel",
		StartDate:     "2024-06-01",
		EndDate:       "2024-06-30",
		InvoiceNumber: "240613-7",
		LoadCount:     3,
		TonTotal:      15,
		MileTotal:     120,
		TotalAmount:   1130.5,
	}
	return entity.NewInvoiceDocument(header, rows)
}

func testLogo(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		for y := 0; y < 20; y++ {
			img.Set(x, y, color.RGBA{R: 255, G: 216, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
