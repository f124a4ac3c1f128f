// Demo binary that prints the reflected UI metadata for a couple of
// entities. Not part of the server; kept for poking at the registry.
package main

import (
	"encoding/json"
	"fmt"

	"valora/internal/domain/catalogs/counterparty"
	"valora/internal/domain/documents/goods_receipt"
	"valora/internal/metadata"
)

var headerLabels = map[string]struct {
	label string
	ref   string
}{
	"number":      {label: "Number"},
	"date":        {label: "Date"},
	"supplierId":  {label: "Supplier", ref: "counterparty"},
	"warehouseId": {label: "Warehouse", ref: "warehouse"},
}

var lineLabels = map[string]struct {
	label string
	ref   string
}{
	"productId": {label: "Product", ref: "product"},
	"quantity":  {label: "Quantity"},
	"unitPrice": {label: "Unit price"},
}

func main() {
	reg := metadata.NewRegistry()

	defCP := metadata.Inspect(counterparty.Counterparty{}, "Counterparty", metadata.TypeCatalog)
	defCP.TableName = "cat_counterparties"
	reg.Register(defCP)

	defGR := metadata.Inspect(goods_receipt.GoodsReceipt{}, "GoodsReceipt", metadata.TypeDocument)
	defGR.TableName = "doc_goods_receipts"
	defGR.Label = "Goods receipt"

	// Labels and reference types would normally come from tags or
	// translation files; hardcoded here.
	for i, f := range defGR.Fields {
		if m, ok := headerLabels[f.Name]; ok {
			defGR.Fields[i].Label = m.label
			defGR.Fields[i].ReferenceType = m.ref
		}
	}
	if len(defGR.TableParts) > 0 {
		tp := &defGR.TableParts[0]
		tp.Label = "Lines"
		for i, c := range tp.Columns {
			if m, ok := lineLabels[c.Name]; ok {
				tp.Columns[i].Label = m.label
				tp.Columns[i].ReferenceType = m.ref
			}
		}
	}
	reg.Register(defGR)

	out, _ := json.MarshalIndent(reg.List(), "", "  ")
	fmt.Println(string(out))
}
