package domain

// TwoFactorEnrollment is handed to the dashboard when enrollment begins. The
// secret appears here exactly once; after the confirming passcode it is never
// shown again.
type TwoFactorEnrollment struct {
	// QR is the otpauth:// URI the dashboard renders as a QR code.
	QR string `json:"twoFactorQR"`

	// Secret is the base32 secret for manual entry.
	Secret string `json:"twoFactorSecret"`
}
