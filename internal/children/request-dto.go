package children

const dateLayout = "2006-01-02"

type CreateChildRequest struct {
	Name         string  `json:"name" validate:"required,min=1,max=200"`
	DOB          *string `json:"dob" validate:"omitempty,datetime=2006-01-02"`
	Gender       *string `json:"gender" validate:"omitempty,oneof=female male other undisclosed"`
	Region       *string `json:"region" validate:"omitempty,max=120"`
	LanguagePref *string `json:"language_pref" validate:"omitempty,max=50"`
}
