package payload

type SignupRequest struct {
	Email    string `json:"email"    validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=72"`
}

type SignupResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

type LoginResponse struct {
	Message     string `json:"message"`
	MFARequired bool   `json:"mfaRequired,omitempty"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp"   validate:"required,numeric,len=6"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,max=72"`
}

type SetMFARequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"       validate:"required,email"`
	ResetToken  string `json:"resetToken"  validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,max=72"`
}

type MeResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	IsMFAEnabled bool   `json:"isMFAEnabled"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Message           string            `json:"message"`
	Errors            map[string]string `json:"errors,omitempty"`
	RemainingAttempts *int              `json:"remainingAttempts,omitempty"`
}
