package response

// SignupResponse echoes the registered pair back to the caller; the
// confirmation code itself travels out of band.
type SignupResponse struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

type TokenResponse struct {
	Token string `json:"token"`
}
