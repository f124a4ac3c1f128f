package main

import (
	"valora/internal/domain/catalogs/company"
	"valora/internal/domain/catalogs/counterparty"
	"valora/internal/domain/catalogs/product"
	"valora/internal/domain/catalogs/unit"
	"valora/internal/domain/catalogs/warehouse"
	"valora/internal/domain/documents/balance_init"
	"valora/internal/domain/documents/delivery"
	"valora/internal/domain/documents/goods_issue"
	"valora/internal/domain/documents/goods_receipt"
	"valora/internal/domain/documents/goods_return"
	"valora/internal/domain/documents/goods_transfer"
	"valora/internal/metadata"
)

// setupMetadataRegistry initializes and populates the metadata registry.
func setupMetadataRegistry() *metadata.Registry {
	reg := metadata.NewRegistry()

	register := func(entity interface{}, name string, typ metadata.EntityType, label string) {
		def := metadata.Inspect(entity, name, typ)
		def.Label = label
		reg.Register(def)
	}

	// --- Catalogs ---
	register(counterparty.Counterparty{}, "Counterparty", metadata.TypeCatalog, "Counterparties")
	register(product.Product{}, "Product", metadata.TypeCatalog, "Products")
	register(warehouse.Warehouse{}, "Warehouse", metadata.TypeCatalog, "Warehouses")
	register(unit.Unit{}, "Unit", metadata.TypeCatalog, "Units of measure")
	register(company.Company{}, "Company", metadata.TypeCatalog, "Companies")

	// --- Documents ---
	register(goods_receipt.GoodsReceipt{}, "GoodsReceipt", metadata.TypeDocument, "Goods receipts")
	register(goods_issue.GoodsIssue{}, "GoodsIssue", metadata.TypeDocument, "Goods issues")
	register(delivery.Delivery{}, "Delivery", metadata.TypeDocument, "Deliveries")
	register(goods_return.GoodsReturn{}, "GoodsReturn", metadata.TypeDocument, "Goods returns")
	register(goods_transfer.GoodsTransfer{}, "GoodsTransfer", metadata.TypeDocument, "Goods transfers")
	register(balance_init.BalanceInit{}, "BalanceInit", metadata.TypeDocument, "Opening balances")

	return reg
}
