package children

type ChildResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	DOB          *string `json:"dob"`
	Gender       *Gender `json:"gender"`
	Region       *string `json:"region"`
	LanguagePref *string `json:"language_pref"`
}
