package utils

import (
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// SignInCodePeriod is how long an emailed sign-in code stays valid.
const SignInCodePeriod = 10 * time.Minute

var signInOpts = totp.ValidateOpts{
	Period:    uint(SignInCodePeriod / time.Second),
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

func GenerateSignInSecret(email string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "Corralio",
		AccountName: email,
		Period:      signInOpts.Period,
		Digits:      signInOpts.Digits,
		Algorithm:   signInOpts.Algorithm,
	})
	if err != nil {
		return "", err
	}
	return key.Secret(), nil
}

func SignInCode(secret string, at time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, at, signInOpts)
}

func VerifySignInCode(secret, code string, at time.Time) bool {
	valid, err := totp.ValidateCustom(code, secret, at, signInOpts)
	return err == nil && valid
}
