package model

// Template is a reusable named list of reagent names. Items deliberately
// carry no concentrations: they are matched against stocks by name when a
// reaction is authored.
type Template struct {
	BaseModel
	Name         string  `gorm:"type:varchar(255);not null;uniqueIndex:idx_template_owner_name,priority:2" json:"name"`
	CreatedBy    string  `gorm:"type:varchar(120);not null;uniqueIndex:idx_template_owner_name,priority:1" json:"created_by"`
	FinalVolume  float64 `gorm:"type:numeric(12,3);not null;default:0" json:"final_volume"`
	FinalVolUnit string  `gorm:"type:varchar(8);not null;default:'uL'" json:"final_vol_unit"`
	Note         string  `gorm:"type:text;not null;default:''" json:"note"`
}

func (*Template) TableName() string { return "templates" }

type TemplateItem struct {
	BaseModel
	TemplateID int64  `gorm:"not null;index:idx_template_item_template;uniqueIndex:idx_template_item_line,priority:1" json:"template_id"`
	LineNo     int    `gorm:"not null;uniqueIndex:idx_template_item_line,priority:2" json:"line_no"`
	Reagent    string `gorm:"type:varchar(255);not null" json:"reagent"`
	Note       string `gorm:"type:text;not null;default:''" json:"note"`
}

func (*TemplateItem) TableName() string { return "template_items" }
