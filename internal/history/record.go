package history

import (
	"time"

	"github.com/mmynk/tally/internal/models"
)

// record is the stored JSON layout of one snapshot.
type record struct {
	ID               string            `json:"id"`
	Label            string            `json:"label"`
	Items            []models.LineItem `json:"items"`
	CashReceived     float64           `json:"cashReceived"`
	TotalDue         float64           `json:"totalDue"`
	DraftProductName string            `json:"draftProductName"`
	DraftQuantity    float64           `json:"draftQuantity"`
	DraftPrice       float64           `json:"draftPrice"`
	Date             time.Time         `json:"date"`
}

func newRecord(id, label string, date time.Time, s models.SessionState) record {
	return record{
		ID:               id,
		Label:            label,
		Items:            models.CloneItems(s.Items),
		CashReceived:     s.CashReceived,
		TotalDue:         s.TotalDue,
		DraftProductName: s.Draft.ProductName,
		DraftQuantity:    s.Draft.Quantity,
		DraftPrice:       s.Draft.Price,
		Date:             date,
	}
}

func (r record) toModel() models.HistorySnapshot {
	return models.HistorySnapshot{
		ID:           r.ID,
		Label:        r.Label,
		Items:        models.CloneItems(r.Items),
		CashReceived: r.CashReceived,
		TotalDue:     r.TotalDue,
		Draft: models.Draft{
			ProductName: r.DraftProductName,
			Quantity:    r.DraftQuantity,
			Price:       r.DraftPrice,
		},
		CreatedAt: r.Date,
	}
}
