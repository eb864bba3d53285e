package pgstore

import "gorm.io/gorm"

// Node keeps only the identity of a node. IDs come from a sequence, so
// they grow with creation order.
type Node struct {
	ID int64 `gorm:"primaryKey;autoIncrement"`
}

func (Node) TableName() string { return "nodes" }

// NodeProperty is a single string property of a node.
type NodeProperty struct {
	NodeID int64  `gorm:"primaryKey;autoIncrement:false"`
	Name   string `gorm:"primaryKey;type:varchar(100)"`
	Value  string `gorm:"type:text;not null"`
}

func (NodeProperty) TableName() string { return "node_properties" }

// IndexEntry maps an exact field/value pair to a node.
type IndexEntry struct {
	Field  string `gorm:"primaryKey;type:varchar(100);index:idx_index_entries_field_node,priority:1"`
	Value  string `gorm:"primaryKey;type:text"`
	NodeID int64  `gorm:"primaryKey;autoIncrement:false;index:idx_index_entries_field_node,priority:2"`
}

func (IndexEntry) TableName() string { return "index_entries" }

// Edge is a typed directed link between two nodes.
type Edge struct {
	FromID int64  `gorm:"primaryKey;autoIncrement:false"`
	Kind   string `gorm:"primaryKey;type:varchar(50)"`
	ToID   int64  `gorm:"primaryKey;autoIncrement:false"`
}

func (Edge) TableName() string { return "edges" }

// AllModels returns all models for GORM AutoMigrate.
func AllModels() []any {
	return []any{
		&Node{},
		&NodeProperty{},
		&IndexEntry{},
		&Edge{},
	}
}

// Migrate creates or updates the tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
