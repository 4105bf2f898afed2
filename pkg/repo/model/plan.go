package model

// Plan groups the reactions of one experiment.
type Plan struct {
	BaseModel
	Title     string `gorm:"type:varchar(255);not null;index:idx_plan_title" json:"title"`
	Category  string `gorm:"type:varchar(64);not null;index:idx_plan_category" json:"category"`
	CreatedBy string `gorm:"type:varchar(120);not null;index:idx_plan_created_by" json:"created_by"`
	Note      string `gorm:"type:text;not null;default:''" json:"note"`
}

func (*Plan) TableName() string { return "plans" }

// Reaction is one computed reaction card saved into a plan. FillVolume is
// the diluent that tops the mix up to FinalVolume, always in uL.
type Reaction struct {
	BaseModel
	PlanID       int64   `gorm:"not null;index:idx_reaction_plan" json:"plan_id"`
	Name         string  `gorm:"type:varchar(255);not null;default:''" json:"name"`
	FinalVolume  float64 `gorm:"type:numeric(12,3);not null;check:final_volume > 0" json:"final_volume"`
	FinalVolUnit string  `gorm:"type:varchar(8);not null;default:'uL'" json:"final_vol_unit"`
	FillVolume   float64 `gorm:"type:numeric(12,3);not null;default:0" json:"fill_volume"`
	CreatedBy    string  `gorm:"type:varchar(120);not null" json:"created_by"`
}

func (*Reaction) TableName() string { return "reactions" }

// ReactionItem is one line of a reaction card. StockID is nullable: lines
// may name reagents that were never registered as stocks. Volume and Amount
// are the computed values, stored in uL and nmol.
type ReactionItem struct {
	BaseModel
	ReactionID int64    `gorm:"not null;index:idx_reaction_item_reaction;uniqueIndex:idx_reaction_item_line,priority:1" json:"reaction_id"`
	LineNo     int      `gorm:"not null;uniqueIndex:idx_reaction_item_line,priority:2" json:"line_no"`
	StockID    *int64   `gorm:"index:idx_reaction_item_stock" json:"stock_id"`
	Reagent    string   `gorm:"type:varchar(255);not null" json:"reagent"`
	StockConc  float64  `gorm:"type:numeric(16,6);not null" json:"stock_conc"`
	StockUnit  string   `gorm:"type:varchar(8);not null" json:"stock_unit"`
	TargetConc *float64 `gorm:"type:numeric(16,6)" json:"target_conc"`
	TargetUnit string   `gorm:"type:varchar(8);not null;default:''" json:"target_unit"`
	VolumeUL   float64  `gorm:"type:numeric(12,3);not null" json:"volume_ul"`
	AmountNmol *float64 `gorm:"type:numeric(16,6)" json:"amount_nmol"`
	Note       string   `gorm:"type:text;not null;default:''" json:"note"`
}

func (*ReactionItem) TableName() string { return "reaction_items" }
