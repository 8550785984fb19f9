package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/authkeeper/internal/api"
	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/password"
)

const maxErrorBody = 64 << 10

// mapError turns a non-2xx response into a sentinel error.
func mapError(resp *http.Response) error {
	var env api.Response[api.ErrorData]
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	_ = json.Unmarshal(body, &env)

	switch env.Data.Code {
	case api.CodePasswordPolicy:
		return password.NewPolicyError(env.Data.Violations)
	case api.CodeEmptyInput:
		return common.ErrEmptyInput
	case api.CodeDuplicateEmail:
		return common.ErrDuplicateEmail
	case api.CodeDuplicateUsername:
		return common.ErrDuplicateUsername
	case api.CodeInvalidCredentials:
		return common.ErrInvalidCredentials
	case api.CodeInvalidToken:
		return common.ErrInvalidToken
	case api.CodeUnauthenticated:
		return common.ErrAuthentication
	case api.CodeNotFound:
		return common.ErrNotFound
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return common.ErrAuthentication
	}
	return fmt.Errorf("%w: status %d", common.ErrInternal, resp.StatusCode)
}
