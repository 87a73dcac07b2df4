package vault

import (
	"bytes"
	"fmt"
	"image/png"
	"regexp"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const qrCodeSize = 256

var totpCodePattern = regexp.MustCompile(`^\d{6}$`)

// GenerateTOTP creates a new authenticator secret labelled "<issuer> (<account>)".
func GenerateTOTP(issuer, account string) (*otp.Key, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: fmt.Sprintf("%s (%s)", issuer, account),
		SecretSize:  20,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate totp secret: %w", err)
	}
	return key, nil
}

// QRCodePNG renders key as a PNG QR code for authenticator apps.
func QRCodePNG(key *otp.Key) ([]byte, error) {
	img, err := key.Image(qrCodeSize, qrCodeSize)
	if err != nil {
		return nil, fmt.Errorf("failed to render qr code: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	return buf.Bytes(), nil
}

// LooksLikeTOTPCode reports whether code is six digits.
func LooksLikeTOTPCode(code string) bool {
	return totpCodePattern.MatchString(code)
}

func VerifyTOTP(code, secret string) bool {
	return totp.Validate(code, secret)
}
