package models

import (
	"fmt"
	"time"
)

type GenderValue uint8

const (
	GenderMale GenderValue = iota
	GenderFemale
)

type SkinColourValue uint8

const (
	SkinColourWhite SkinColourValue = iota
	SkinColourBlack
	SkinColourAsian
	SkinColourIndian
	SkinColourOther
)

type AgeCategory uint8

const (
	AgeChild AgeCategory = iota
	AgeTeenager
	AgeYoungAdult
	AgeAdult
	AgeSenior
)

var (
	genderNames     = []string{"Male", "Female"}
	skinColourNames = []string{"White", "Black", "Asian", "Indian", "Other"}
	ageNames        = []string{"Child", "Teenager", "Young Adult", "Adult", "Senior"}
)

func (g GenderValue) Valid() bool { return int(g) < len(genderNames) }

func (g GenderValue) String() string { return enumName(genderNames, int(g)) }

func (s SkinColourValue) Valid() bool { return int(s) < len(skinColourNames) }

func (s SkinColourValue) String() string { return enumName(skinColourNames, int(s)) }

func (a AgeCategory) Valid() bool { return int(a) < len(ageNames) }

func (a AgeCategory) String() string { return enumName(ageNames, int(a)) }

func enumName(names []string, i int) string {
	if i < len(names) {
		return names[i]
	}
	return fmt.Sprintf("%d", i)
}

// Face is an anonymised picture used to represent the customer of a seat booking.
type Face struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	ImageURL        string          `gorm:"type:varchar(500);not null" json:"image_url"`
	ImageHash       string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"image_hash"`
	GenderValue     GenderValue     `gorm:"not null" json:"gender_value"`
	SkinColourValue SkinColourValue `gorm:"not null" json:"skin_colour_value"`
	AgeCategory     AgeCategory     `gorm:"not null" json:"age_category"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (f *Face) AltText() string {
	return fmt.Sprintf("%s %s %s", f.AgeCategory, f.SkinColourValue, f.GenderValue)
}
