package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/thedittmer/briefly/internal/models"
)

const defaultRedirect = "/home/"

func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	body := map[string]string{"email": email, "password": password}

	var res models.LoginResult
	if err := c.sendJSON(ctx, http.MethodPost, c.pageURL("login/"), body, &res); err != nil {
		return nil, err
	}
	if !res.Success {
		msg := res.Error
		if msg == "" {
			msg = "Invalid credentials."
		}
		return nil, &RejectedError{Message: msg}
	}
	if res.RedirectURL == "" {
		res.RedirectURL = defaultRedirect
	}
	return &res, nil
}

// Logout ends the server-side session. The backend answers with a redirect
// to the login page, which the client follows.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, c.pageURL("logout/"), nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if resp.StatusCode >= 400 {
		return newHTTPError(resp.StatusCode, data)
	}
	return nil
}

func (c *Client) SaveAccountInfo(ctx context.Context, info models.AccountInfo) (string, error) {
	var res models.StatusMessage
	if err := c.sendJSON(ctx, http.MethodPost, c.pageURL("settings/modify/account/"), info, &res); err != nil {
		return "", err
	}
	return orDefault(res.Message, "Account information updated successfully"), nil
}

func (c *Client) UpdateAccountVersion(ctx context.Context, userID, version string) (string, error) {
	body := map[string]string{"user_id": userID, "account_version": version}

	var res models.StatusMessage
	if err := c.sendJSON(ctx, http.MethodPost, c.pageURL("custom-admin/dashboard/update/"), body, &res); err != nil {
		return "", err
	}
	return orDefault(res.Message, "Account version updated!"), nil
}

// FinaliseNewUser submits the onboarding wizard. The backend may answer
// 200 with an "error" field, which counts as a failure.
func (c *Client) FinaliseNewUser(ctx context.Context, fields map[string]string) error {
	var res models.StatusMessage
	if err := c.sendJSON(ctx, http.MethodPost, c.pageURL("account/new/user/"), fields, &res); err != nil {
		return err
	}
	if res.Error != "" {
		return &RejectedError{Message: res.Error}
	}
	return nil
}

// ExportCSV streams the admin dashboard CSV export into w.
func (c *Client) ExportCSV(ctx context.Context, w io.Writer) (int64, error) {
	resp, err := c.do(ctx, http.MethodGet, c.pageURL("custom-admin/export/csv/"), nil, "")
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		return 0, newHTTPError(resp.StatusCode, data)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("%w: downloading csv: %w", ErrNetwork, err)
	}
	return n, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
