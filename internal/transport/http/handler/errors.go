package handler

const (
	errInternalServer     = "Internal server error"
	errUserNotFound       = "User not found"
	errEmailTaken         = "Email already exists"
	errInvalidCredentials = "Invalid credentials"
	errEmailNotVerified   = "Email not verified. Please verify your email."
	errOTPDelivery        = "Error sending OTP email"
	errExpenseNotFound    = "Expense not found"
)
