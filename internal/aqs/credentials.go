package aqs

import (
	"context"
	"net/url"
	"os"
)

// SignupBaseURL is the AQS endpoint that emails a key for a new account.
const SignupBaseURL = "https://aqs.epa.gov/data/api/signup"

// CredentialsProvider supplies the email/key pair for AQS requests.
type CredentialsProvider interface {
	Credentials(ctx context.Context) (Credentials, error)
}

// StaticCredentials is a fixed email/key pair.
type StaticCredentials Credentials

// Credentials implements CredentialsProvider.
func (s StaticCredentials) Credentials(context.Context) (Credentials, error) {
	if s.Email == "" || s.Key == "" {
		return Credentials{}, ErrNoCredentials
	}
	return Credentials(s), nil
}

// EnvCredentials reads the email/key pair from AQS_EMAIL and AQS_KEY at each
// call, so a .env file loaded after construction still takes effect.
type EnvCredentials struct{}

// Credentials implements CredentialsProvider.
func (EnvCredentials) Credentials(context.Context) (Credentials, error) {
	creds := Credentials{
		Email: os.Getenv("AQS_EMAIL"),
		Key:   os.Getenv("AQS_KEY"),
	}
	if creds.Email == "" || creds.Key == "" {
		return Credentials{}, ErrNoCredentials
	}
	return creds, nil
}

// SignupURL returns the URL that requests an API key for the given email.
// Visiting it (or issuing a GET) makes AQS email the key to the address.
func SignupURL(email string) string {
	return SignupBaseURL + "?email=" + url.QueryEscape(email)
}
