// Package receipts renders a reservation confirmation as a PDF with a
// signed QR payload the front desk can scan.
package receipts

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"voyago/db"
	"voyago/models"
	"voyago/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
)

type Generator struct {
	secret []byte
}

func NewGenerator(secret []byte) *Generator {
	return &Generator{secret: secret}
}

// QRPayload returns "reservationID|timestamp|signature".
func (g *Generator) QRPayload(reservationID string) string {
	data := fmt.Sprintf("%s|%d", reservationID, time.Now().Unix())
	h := hmac.New(sha256.New, g.secret)
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return fmt.Sprintf("%s|%s", data, sig)
}

// Render produces the receipt PDF bytes for one reservation.
func (g *Generator) Render(res models.Reservation) ([]byte, error) {
	qrPNG, err := qrcode.Encode(g.QRPayload(res.ID.Hex()), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("qr encode: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Reservation Receipt")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Reservation: %s", res.ID.Hex()))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Destination: %s", res.Destination))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Depart: %s  Retour: %s", res.DateDepart, res.DateRetour))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Montant total: %.2f", res.MontantTotal))
	pdf.Ln(12)

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}

type Handler struct {
	store *db.Store
	gen   *Generator
}

func NewHandler(store *db.Store, gen *Generator) *Handler {
	return &Handler{store: store, gen: gen}
}

// GET /reservations/:id/recu
func (h *Handler) GetRecu(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := utils.ParseID(ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid reservation ID")
		return
	}

	var res models.Reservation
	if err := h.store.Reservations.FindOne(r.Context(), bson.M{"_id": id}).Decode(&res); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Reservation not found")
		return
	}

	pdfBytes, err := h.gen.Render(res)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate receipt")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=recu-%s.pdf", id.Hex()))
	w.Write(pdfBytes)
}
