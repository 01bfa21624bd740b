// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Key Principles:
// 1. Domain entities are free of GORM tags and infrastructure concerns
// 2. Persistence models contain all GORM annotations and table mappings
// 3. ToDomain/FromDomain mappers convert between the two
// 4. Repositories use persistence models for database operations
//
// Structure:
// - base.go: BaseModel and the model list used by AutoMigrate
// - catalog.go: products and their unit prices
// - partner.go: suppliers
// - inventory.go: product_stock, stock_moves, stock_move_lines
// - trade.go: sales, quotes, purchase invoices with lines and payments
// - finance.go: finance_ledger
//
// Money columns are decimal(14,2), quantities decimal(12,3) and unit
// conversion factors decimal(18,4). The SQL schema in migrations/ is the
// source of truth in production; the tags here must agree with it.
package models
