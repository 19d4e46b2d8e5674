package request

type SignupRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Username string `json:"username" validate:"required,username,max=150"`
}

type TokenRequest struct {
	Username         string `json:"username" validate:"required,username,max=150"`
	ConfirmationCode string `json:"confirmation_code" validate:"required"`
}
