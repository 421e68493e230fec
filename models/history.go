package models

// OutfitHistory is an outfit the user liked or wore, kept as a snapshot:
// the referenced wardrobe items may be edited or deleted later.
type OutfitHistory struct {
	JsonModel
	Date       string      `json:"date"`
	Location   string      `json:"location"`
	Weather    string      `json:"weather"`
	Occasion   string      `json:"occasion"`
	Liked      bool        `gorm:"default:false" json:"liked"`
	OutfitJSON string      `gorm:"type:text" json:"-"`
	Owner      UserAccount `json:"-"`
	OwnerID    uint        `json:"-"`
}

// Plan is a planned outfit for a future date. Multi-day plans (vacations)
// share a GroupID.
type Plan struct {
	JsonModel
	Date        string      `json:"date"`
	Location    string      `json:"location"`
	Lat         *float64    `json:"lat"`
	Lon         *float64    `json:"lon"`
	Occasion    string      `json:"occasion"`
	Weather     string      `json:"weather"`
	Temp        *int        `json:"temp"`
	Description *string     `json:"description"`
	OutfitJSON  string      `gorm:"type:text" json:"-"`
	GroupID     *uint       `json:"group_id"`
	Owner       UserAccount `json:"-"`
	OwnerID     uint        `json:"-"`
}
