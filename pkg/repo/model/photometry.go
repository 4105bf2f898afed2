package model

// Epsilon is a molar extinction coefficient (1/M/cm) for a species at one
// wavelength.
type Epsilon struct {
	BaseModel
	Name       string  `gorm:"type:varchar(255);not null;uniqueIndex:idx_epsilon_identity,priority:1" json:"name"`
	Wavelength int     `gorm:"not null;uniqueIndex:idx_epsilon_identity,priority:2" json:"wavelength"`
	Epsilon    float64 `gorm:"type:numeric(16,4);not null;check:epsilon > 0" json:"epsilon"`
	Note       string  `gorm:"type:text;not null;default:''" json:"note"`
}

func (*Epsilon) TableName() string { return "epsilons" }

// CorrectionFactor removes a dye's own absorbance contribution from the
// target wavelength reading.
type CorrectionFactor struct {
	BaseModel
	DyeName          string  `gorm:"type:varchar(255);not null;uniqueIndex:idx_cf_identity,priority:1" json:"dye_name"`
	TargetWavelength int     `gorm:"not null;uniqueIndex:idx_cf_identity,priority:2" json:"target_wavelength"`
	Factor           float64 `gorm:"type:numeric(10,6);not null;check:factor >= 0" json:"factor"`
	Note             string  `gorm:"type:text;not null;default:''" json:"note"`
}

func (*CorrectionFactor) TableName() string { return "correction_factors" }

// LabelingRecord is one nanodrop measurement of a labeling reaction. The
// derived columns (concentrations, ratio, purity, recovery) are always
// written from a fresh calculation of the stored inputs.
type LabelingRecord struct {
	BaseModel
	ReactionID int64  `gorm:"not null;index:idx_labeling_record_reaction" json:"reaction_id"`
	Title      string `gorm:"type:varchar(255);not null;default:''" json:"title"`
	CreatedBy  string `gorm:"type:varchar(120);not null;index:idx_labeling_record_created_by" json:"created_by"`

	TargetName    string  `gorm:"type:varchar(255);not null" json:"target_name"`
	TargetEpsilon float64 `gorm:"type:numeric(16,4);not null" json:"target_epsilon"`
	ATarget       float64 `gorm:"type:numeric(12,6);not null" json:"a_target"`
	DyeName       string  `gorm:"type:varchar(255);not null" json:"dye_name"`
	DyeEpsilon    float64 `gorm:"type:numeric(16,4);not null" json:"dye_epsilon"`
	ADye          float64 `gorm:"type:numeric(12,6);not null" json:"a_dye"`
	CFUsed        float64 `gorm:"type:numeric(10,6);not null;default:0" json:"cf_used"`

	TargetUM      float64 `gorm:"type:numeric(16,6);not null" json:"target_um"`
	DyeUM         float64 `gorm:"type:numeric(16,6);not null" json:"dye_um"`
	LabelingRatio float64 `gorm:"type:numeric(16,6);not null" json:"labeling_ratio"`
	Purity        float64 `gorm:"type:numeric(10,4);not null" json:"purity"`

	A260     *float64 `gorm:"type:numeric(12,6)" json:"a260"`
	A280     *float64 `gorm:"type:numeric(12,6)" json:"a280"`
	UVPurity *float64 `gorm:"type:numeric(10,4)" json:"uv_purity"`

	EtohInitialNmol   *float64 `gorm:"type:numeric(16,6)" json:"etoh_initial_nmol"`
	EtohRecoveredNmol *float64 `gorm:"type:numeric(16,6)" json:"etoh_recovered_nmol"`
	EtohEfficiency    *float64 `gorm:"type:numeric(10,4)" json:"etoh_efficiency"`

	Note string `gorm:"type:text;not null;default:''" json:"note"`
}

func (*LabelingRecord) TableName() string { return "labeling_records" }
