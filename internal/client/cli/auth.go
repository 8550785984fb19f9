package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/authkeeper/internal/api"
	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/password"
)

// getSimpleText, getPassword, getYesNo and getOptional are indirections
// used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getYesNo      = GetYesNo
	getOptional   = GetOptional
)

// describe turns an error into a message fit for the user. Credential
// failures are deliberately vague.
func describe(err error) string {
	var pe *password.PolicyError
	switch {
	case errors.As(err, &pe):
		return pe.Error()
	case errors.Is(err, common.ErrEmptyInput):
		return "all required fields must be filled in"
	case errors.Is(err, common.ErrDuplicateEmail):
		return "this email is already registered"
	case errors.Is(err, common.ErrDuplicateUsername):
		return "this username is already taken"
	case errors.Is(err, common.ErrInvalidCredentials):
		return "invalid credentials"
	case errors.Is(err, common.ErrAuthentication):
		return "you are not signed in or your session was revoked, please log in"
	case errors.Is(err, common.ErrInvalidToken):
		return "the verification token is invalid or has expired"
	case errors.Is(err, common.ErrLoginSuperseded):
		return "login was cancelled by a logout"
	case errors.Is(err, common.ErrNetwork):
		return "the server could not be reached, try again later"
	case errors.Is(err, common.ErrPersistence):
		return "the local session store failed"
	default:
		return err.Error()
	}
}

// Register prompts for the profile and password and creates the account.
func (a *App) Register(ctx context.Context) error {
	var req api.RegisterRequest
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Enter email", &req.Email},
		{"Enter username", &req.Username},
		{"Enter full name", &req.Name},
		{"Enter address (optional)", &req.Address},
		{"Enter phone (optional)", &req.Phone},
		{"Enter gender M/F (optional)", &req.Gender},
		{"Enter birth date YYYY-MM-DD (optional)", &req.BirthDate},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	pw, err := a.newPassword()
	if err != nil {
		return err
	}
	req.Password = pw

	cred, err := a.authService.Register(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Account %s created. Check %s for the verification token.\n", cred.Username, cred.Email)
	return nil
}

// newPassword asks for a password twice.
func (a *App) newPassword() (string, error) {
	pw, err := getPassword(a.out, "Enter password")
	if err != nil {
		return "", err
	}
	confirm, err := getPassword(a.out, "Repeat password")
	if err != nil {
		return "", err
	}
	if pw != confirm {
		return "", errors.New("passwords do not match")
	}
	return pw, nil
}

// Login prompts for credentials and signs in.
func (a *App) Login(ctx context.Context) error {
	identifier, err := getSimpleText(a.reader, "Enter username or email", a.out)
	if err != nil {
		return err
	}
	pw, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	remember, err := getYesNo(a.reader, "Remember me?", a.out)
	if err != nil {
		return err
	}

	user, err := a.authService.Login(ctx, identifier, pw, remember)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Hello, %s!\n", user.Name)
	return nil
}

// Logout clears the local session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *App) Status(ctx context.Context) error {
	server := "reachable"
	if err := a.authService.Ping(ctx); err != nil {
		server = "unreachable"
	}
	fmt.Fprintf(a.out, "session: %s, server %s: %s\n", a.status(), a.config.ServerURL, server)
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	u, err := a.authService.CurrentUser(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Name:     %s\n", u.Name)
	if u.Credential != nil {
		verified := "no"
		if u.Credential.IsVerified {
			verified = "yes"
		}
		fmt.Fprintf(a.out, "Username: %s\nEmail:    %s (verified: %s)\n", u.Credential.Username, u.Credential.Email, verified)
	}
	for _, kv := range [][2]string{{"Address", u.Address}, {"Phone", u.Phone}, {"Gender", u.Gender}, {"Born", u.BirthDate}} {
		if kv[1] != "" {
			fmt.Fprintf(a.out, "%-9s %s\n", kv[0]+":", kv[1])
		}
	}
	return nil
}

func (a *App) ChangePassword(ctx context.Context) error {
	current, err := getPassword(a.out, "Enter current password")
	if err != nil {
		return err
	}
	next, err := a.newPassword()
	if err != nil {
		return err
	}

	if err := a.authService.ChangePassword(ctx, current, next); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password changed.")
	return nil
}

func (a *App) UpdateAccount(ctx context.Context) error {
	email, err := getOptional(a.reader, "New email", a.out)
	if err != nil {
		return err
	}
	username, err := getOptional(a.reader, "New username", a.out)
	if err != nil {
		return err
	}
	if email == nil && username == nil {
		fmt.Fprintln(a.out, "Nothing to change.")
		return nil
	}

	cred, err := a.authService.UpdateAccount(ctx, email, username)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Account updated: %s <%s>\n", cred.Username, cred.Email)
	return nil
}

func (a *App) Verify(ctx context.Context) error {
	token, err := getSimpleText(a.reader, "Enter verification token", a.out)
	if err != nil {
		return err
	}

	cred, err := a.authService.VerifyEmail(ctx, strings.TrimSpace(token))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Email %s verified.\n", cred.Email)
	return nil
}
