package dto

// WaitlistJoinRequest captures a pre-launch interest signup.
type WaitlistJoinRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Organization string `json:"organization" validate:"omitempty,max=120"`
	RoleFocus    string `json:"roleFocus" validate:"omitempty,max=120"`
}

// WaitlistJoinResponse reports whether the email was newly added or already on
// the list. Joining twice is a success either way.
type WaitlistJoinResponse struct {
	Success       bool `json:"success"`
	AlreadyJoined bool `json:"alreadyJoined,omitempty"`
}
