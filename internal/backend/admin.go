package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/thedittmer/briefly/internal/models"
)

func (c *Client) CreateItem(ctx context.Context, item models.Item) (*models.Item, error) {
	item.ID = ""

	var created models.Item
	if err := c.sendJSON(ctx, http.MethodPost, c.rootURL("create-item/"), item, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateItem(ctx context.Context, item models.Item) error {
	if item.ID == "" {
		return fmt.Errorf("update item: missing item id")
	}
	id := item.ID
	item.ID = ""

	return c.sendJSON(ctx, http.MethodPut, c.rootURL("update-item/"+url.PathEscape(id)+"/"), item, nil)
}

func (c *Client) DeleteItem(ctx context.Context, id string) error {
	return c.sendJSON(ctx, http.MethodDelete, c.rootURL("delete-items/"+url.PathEscape(id)+"/"), nil, nil)
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.sendJSON(ctx, http.MethodDelete, c.rootURL("delete-user/"+url.PathEscape(id)+"/"), nil, nil)
}

func (c *Client) UpdateUserRole(ctx context.Context, id, role string) error {
	body := map[string]string{"new_role": role}
	return c.sendJSON(ctx, http.MethodPut, c.rootURL("update-user/"+url.PathEscape(id)+"/"), body, nil)
}

// ImportCSV uploads r as the csv_file form field.
func (c *Client) ImportCSV(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("csv_file", filename)
	if err != nil {
		return "", fmt.Errorf("error building upload: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("error reading %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("error building upload: %w", err)
	}

	var res models.StatusMessage
	if err := c.send(ctx, http.MethodPost, c.rootURL("upload/csv/"), &buf, mw.FormDataContentType(), &res); err != nil {
		return "", err
	}
	return orDefault(res.Message, "CSV imported successfully."), nil
}
