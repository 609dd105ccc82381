package domain

import (
	"strings"
	"time"
)

const (
	IDTypeIDCard   = "id_card"
	IDTypePassport = "passport"
	IDTypeOther    = "other"
)

const (
	GenderMale   = "M"
	GenderFemale = "F"
)

var idCardWeights = [17]int{7, 9, 10, 5, 8, 4, 2, 1, 6, 3, 7, 9, 10, 5, 8, 4, 2}

const idCardCheckCodes = "10X98765432"

// ValidIDCard checks length, digits and the ISO 7064 check character of an
// 18-digit resident identity number.
func ValidIDCard(id string) bool {
	id = strings.ToUpper(strings.TrimSpace(id))
	if len(id) != 18 {
		return false
	}
	sum := 0
	for i := 0; i < 17; i++ {
		c := id[i]
		if c < '0' || c > '9' {
			return false
		}
		sum += int(c-'0') * idCardWeights[i]
	}
	return id[17] == idCardCheckCodes[sum%11]
}

// BirthDateFromIDCard reads the YYYYMMDD segment of an 18-digit id.
func BirthDateFromIDCard(id string) (time.Time, bool) {
	id = strings.TrimSpace(id)
	if len(id) != 18 {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("20060102", id[6:14], time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// GenderFromIDCard reads the sequence digit: odd is male.
func GenderFromIDCard(id string) (string, bool) {
	id = strings.TrimSpace(id)
	if len(id) != 18 {
		return "", false
	}
	c := id[16]
	if c < '0' || c > '9' {
		return "", false
	}
	if (c-'0')%2 == 1 {
		return GenderMale, true
	}
	return GenderFemale, true
}
