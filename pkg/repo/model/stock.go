package model

import "gorm.io/datatypes"

// Stock is a registered reagent (DNA, dye, buffer component) with a known
// concentration. Label is the short human-readable id shown in reaction
// tables, generated from name and concentration when not supplied.
type Stock struct {
	BaseModel
	Label     string         `gorm:"type:varchar(255);not null;uniqueIndex:idx_stock_label" json:"label"`
	Name      string         `gorm:"type:varchar(255);not null;index:idx_stock_name;uniqueIndex:idx_stock_identity,priority:1" json:"name"`
	Kind      string         `gorm:"type:varchar(64);not null;default:'';index:idx_stock_kind" json:"kind"`
	Conc      float64        `gorm:"type:numeric(16,6);not null;check:conc > 0;uniqueIndex:idx_stock_identity,priority:2" json:"conc"`
	ConcUnit  string         `gorm:"type:varchar(8);not null;uniqueIndex:idx_stock_identity,priority:3" json:"conc_unit"`
	CreatedBy string         `gorm:"type:varchar(120);not null;index:idx_stock_created_by" json:"created_by"`
	Note      string         `gorm:"type:text;not null;default:''" json:"note"`
	Meta      datatypes.JSON `gorm:"type:jsonb" json:"meta"`
}

func (*Stock) TableName() string { return "stocks" }
