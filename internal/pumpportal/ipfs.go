// internal/pumpportal/ipfs.go
package pumpportal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// TokenCreateParams describes a token about to be launched.
type TokenCreateParams struct {
	Name        string
	Symbol      string
	Description string
	Twitter     string
	Telegram    string
	Website     string
}

// UploadMetadata pushes a token image plus descriptive fields to the
// pump.fun IPFS endpoint and returns the metadata ready to attach to a
// create action.
func (c *Client) UploadMetadata(ctx context.Context, params TokenCreateParams, imagePath string) (*TokenMetadata, error) {
	file, err := os.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open token image: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fields := map[string]string{
		"name":        params.Name,
		"symbol":      params.Symbol,
		"description": params.Description,
		"twitter":     params.Twitter,
		"telegram":    params.Telegram,
		"website":     params.Website,
		"showName":    "true",
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("failed to write form field %s: %w", key, err)
		}
	}

	part, err := writer.CreateFormFile("file", filepath.Base(imagePath))
	if err != nil {
		return nil, fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to copy token image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ipfsURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("metadata upload failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ipfs API returned status %d: %s", resp.StatusCode, raw)
	}

	var result struct {
		MetadataURI string `json:"metadataUri"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode metadata response: %w", err)
	}
	if result.MetadataURI == "" {
		return nil, fmt.Errorf("ipfs API returned no metadata URI")
	}

	c.logger.Info("token metadata uploaded",
		zap.String("name", params.Name),
		zap.String("uri", result.MetadataURI))

	return &TokenMetadata{
		Name:   params.Name,
		Symbol: params.Symbol,
		URI:    result.MetadataURI,
	}, nil
}

// UploadBonkMetadata runs the two-step letsbonk.fun flow: upload the image,
// then upload a metadata document referencing it. It returns the metadata
// URI for the create action.
func (c *Client) UploadBonkMetadata(ctx context.Context, params TokenCreateParams, imagePath string) (*TokenMetadata, error) {
	imageURI, err := c.uploadBonkImage(ctx, imagePath)
	if err != nil {
		return nil, err
	}

	doc := map[string]string{
		"createdOn":   "https://bonk.fun",
		"description": params.Description,
		"image":       imageURI,
		"name":        params.Name,
		"symbol":      params.Symbol,
	}
	if params.Website != "" {
		doc["website"] = params.Website
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal bonk metadata: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.bonkMetaURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create bonk metadata request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bonk metadata upload failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read bonk metadata response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bonk metadata API returned status %d: %s", resp.StatusCode, raw)
	}

	uri := strings.TrimSpace(string(raw))
	if uri == "" {
		return nil, fmt.Errorf("bonk metadata API returned no URI")
	}

	return &TokenMetadata{
		Name:   params.Name,
		Symbol: params.Symbol,
		URI:    uri,
	}, nil
}

func (c *Client) uploadBonkImage(ctx context.Context, imagePath string) (string, error) {
	file, err := os.Open(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to open token image: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("image", filepath.Base(imagePath))
	if err != nil {
		return "", fmt.Errorf("failed to create image part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("failed to copy token image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize image form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.bonkImageURL, &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create image request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("image upload failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read image response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bonk image API returned status %d: %s", resp.StatusCode, raw)
	}

	uri := strings.TrimSpace(string(raw))
	if uri == "" {
		return "", fmt.Errorf("bonk image API returned no URI")
	}
	return uri, nil
}
