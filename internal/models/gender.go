package models

// Gender is one of the identities a user can pick on their profile.
type Gender string

const (
	GenderMale          Gender = "MALE"
	GenderFemale        Gender = "FEMALE"
	GenderAgender       Gender = "AGENDER"
	GenderBigender      Gender = "BIGENDER"
	GenderGenderFluid   Gender = "GENDER FLUID"
	GenderTransMale     Gender = "TRANSGENDER MALE"
	GenderTransFemale   Gender = "TRANSGENDER FEMALE"
	GenderTwoSpirit     Gender = "TWO-SPIRIT"
	GenderNonBinary     Gender = "NON-BINARY"
	GenderGenderqueer   Gender = "GENDERQUEER"
	GenderGenderNeutral Gender = "GENDER NEUTRAL"
	GenderOther         Gender = "OTHER"
)

var genders = map[Gender]struct{}{
	GenderMale: {}, GenderFemale: {}, GenderAgender: {}, GenderBigender: {},
	GenderGenderFluid: {}, GenderTransMale: {}, GenderTransFemale: {}, GenderTwoSpirit: {},
	GenderNonBinary: {}, GenderGenderqueer: {}, GenderGenderNeutral: {}, GenderOther: {},
}

// Valid reports whether g is a known gender.
func (g Gender) Valid() bool {
	_, ok := genders[g]
	return ok
}
