package domain

// User carries the identity and demographic attributes supplied by the
// external identity provider. The assessment core never creates or
// authenticates users; it only consumes these fields.
type User struct {
	ID         string `json:"id"`
	Email      string `json:"email,omitempty"`
	AgeRange   string `json:"age_range,omitempty"`
	Gender     string `json:"gender,omitempty"`
	Profession string `json:"profession,omitempty"`
}
