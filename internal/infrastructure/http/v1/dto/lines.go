package dto

import (
	"time"

	"valora/internal/core/entity"
	"valora/internal/core/id"
	"valora/internal/core/types"
	"valora/internal/domain/documents"
)

// StockLineRequest is the line shape shared by all stock document requests.
// Quantity and money fields accept JSON numbers or strings; trace kind and
// unit ratio are stamped server-side from the product catalog.
type StockLineRequest struct {
	ProductID string `json:"productId" binding:"required"`

	// UnitID is optional; empty means the product's base unit
	UnitID string `json:"unitId,omitempty"`

	Quantity  types.Quantity `json:"quantity" binding:"required"`
	UnitPrice types.Money    `json:"unitPrice"`
	VATRate   string         `json:"vatRate,omitempty"`
	VATAmount types.Money    `json:"vatAmount"`
	Amount    types.Money    `json:"amount"`

	Lot     *LotRequest     `json:"lot,omitempty"`
	Serials []SerialRequest `json:"serials,omitempty"`

	ProjectID string `json:"projectId,omitempty"`
}

// LotRequest identifies the lot of a lot-traced line.
type LotRequest struct {
	LotID      string     `json:"lotId,omitempty"`
	LotNumber  string     `json:"lotNumber" binding:"required"`
	ExpireDate *time.Time `json:"expireDate,omitempty"`
}

// SerialRequest identifies one serial of a serial-traced line.
type SerialRequest struct {
	SerialID           string     `json:"serialId,omitempty"`
	SerialNumber       string     `json:"serialNumber" binding:"required"`
	VendorSerialNumber string     `json:"vendorSerialNumber,omitempty"`
	ExpireDate         *time.Time `json:"expireDate,omitempty"`
}

// ToStockLine converts the request line to the domain line. Unknown IDs
// parse to nil and fail domain validation with a line-numbered error.
func (r *StockLineRequest) ToStockLine() documents.StockLine {
	productID, _ := id.Parse(r.ProductID)

	line := documents.StockLine{
		ProductID: productID,
		Quantity:  r.Quantity,
		UnitPrice: r.UnitPrice,
		VATRate:   r.VATRate,
		VATAmount: r.VATAmount,
		Amount:    r.Amount,
	}

	if r.UnitID != "" {
		unitID, _ := id.Parse(r.UnitID)
		line.UnitID = unitID
	}
	if r.ProjectID != "" {
		projectID, err := id.Parse(r.ProjectID)
		if err == nil {
			line.ProjectID = &projectID
		}
	}

	if r.Lot != nil {
		lotID, _ := id.Parse(r.Lot.LotID)
		if id.IsNil(lotID) {
			lotID = id.New()
		}
		line.Lot = &entity.LotData{
			LotID:      lotID,
			LotNumber:  r.Lot.LotNumber,
			ExpireDate: r.Lot.ExpireDate,
		}
	}

	for _, s := range r.Serials {
		serialID, _ := id.Parse(s.SerialID)
		if id.IsNil(serialID) {
			serialID = id.New()
		}
		line.Serials = append(line.Serials, entity.SerialData{
			SerialID:           serialID,
			SerialNumber:       s.SerialNumber,
			VendorSerialNumber: s.VendorSerialNumber,
			ExpireDate:         s.ExpireDate,
		})
	}

	return line
}

// ToStockLines converts a slice of request lines.
func ToStockLines(reqs []StockLineRequest) []documents.StockLine {
	lines := make([]documents.StockLine, 0, len(reqs))
	for i := range reqs {
		lines = append(lines, reqs[i].ToStockLine())
	}
	return lines
}
