package models

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator"
)

type ItemStatus string

const (
	StatusClean     ItemStatus = "Clean"
	StatusNeedsWash ItemStatus = "Needs Wash"
)

func (s *ItemStatus) Scan(value interface{}) error {
	*s = ItemStatus(value.(string))
	return nil
}

func (s ItemStatus) Value() (string, error) {
	return string(s), nil
}

// IsClean compares case-insensitively: the mobile app historically sent
// both "Clean" and "clean".
func (s ItemStatus) IsClean() bool {
	return strings.EqualFold(string(s), "Clean")
}

func ValidateItemStatus(fl validator.FieldLevel) bool {
	return ValidateItemStatusRaw(fl.Field().String())
}

func ValidateItemStatusRaw(value string) bool {
	matched, _ := regexp.MatchString("^(Clean|Needs Wash)$", value)
	return matched
}

type ItemType string

const (
	TypeTop      ItemType = "top"
	TypeBottom   ItemType = "bottom"
	TypeOnePiece ItemType = "onepiece"
	TypeOuter    ItemType = "outer"
	TypeShoes    ItemType = "shoes"
)

func (t *ItemType) Scan(value interface{}) error {
	*t = ItemType(value.(string))
	return nil
}

func (t ItemType) Value() (string, error) {
	return string(t), nil
}

func ValidateItemType(fl validator.FieldLevel) bool {
	matched, _ := regexp.MatchString("^(top|bottom|onepiece|outer|shoes)$", fl.Field().String())
	return matched
}

// WardrobeItem is one piece of clothing in a user's closet. Category is the
// occasion label (Casual, Formal, Gym, ...) used to filter the generation pool.
type WardrobeItem struct {
	JsonModel
	Name     string      `json:"name"`
	Category string      `json:"category"`
	ItemType ItemType    `sql:"type:ENUM('top', 'bottom', 'onepiece', 'outer', 'shoes')" json:"type"`
	Color    string      `json:"color"`
	Icon     string      `json:"icon"`
	Status   ItemStatus  `sql:"type:ENUM('Clean', 'Needs Wash')" json:"status"`
	Owner    UserAccount `json:"-"`
	OwnerID  uint        `json:"-"`
}

// Accessory is an optional add-on (watch, bag, ...), stored separately from
// wardrobe items and keyed by a string id.
type Accessory struct {
	ID        string      `gorm:"primarykey" json:"id"`
	Name      string      `json:"name"`
	AccType   string      `gorm:"column:acc_type" json:"type"`
	Owner     UserAccount `json:"-"`
	OwnerID   uint        `json:"-"`
	CreatedAt int64       `gorm:"autoCreateTime:milli" json:"created_at"`
}
