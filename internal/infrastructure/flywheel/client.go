// Package flywheel is a thin REST client for the research-data platform.
// It only covers the calls the service needs: a connectivity probe,
// acquisition/session metadata and per-file downloads into the content store.
package flywheel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"imagulator/internal/infrastructure/storage"
	"imagulator/pkg/slug"

	"github.com/sirupsen/logrus"
)

// FileInfo describes one file inside an acquisition.
type FileInfo struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Size        int64    `json:"size"`
	Measurement []string `json:"measurement"`
}

// Acquisition is the metadata surface returned to callers.
type Acquisition struct {
	ID    string     `json:"id"`
	Label string     `json:"label"`
	Files []FileInfo `json:"files"`
}

// SessionAcquisitions groups a session's label with its acquisitions.
type SessionAcquisitions struct {
	SessionID    string        `json:"session_id"`
	SessionLabel string        `json:"session_label"`
	Acquisitions []Acquisition `json:"acquisitions"`
}

// DownloadResult reports per-file outcomes for a download batch.
type DownloadResult struct {
	AcquisitionID string   `json:"acquisition_id"`
	CachePath     string   `json:"cache_path"`
	Downloaded    []string `json:"downloaded"`
	Errors        []string `json:"errors"`
}

// Wire types for the remote API.

type apiFile struct {
	Name           string              `json:"name"`
	Type           string              `json:"type"`
	Size           int64               `json:"size"`
	Classification map[string][]string `json:"classification"`
}

type apiContainer struct {
	ID      string     `json:"_id"`
	Label   string     `json:"label"`
	Files   []apiFile  `json:"files"`
	Parents apiParents `json:"parents"`
}

type apiParents struct {
	Subject string `json:"subject"`
	Session string `json:"session"`
}

// Client talks to one Flywheel host with one credential. Construction
// validates the credential shape without touching the network; Connect runs
// the remote probe.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	store   *storage.Store
	log     *logrus.Logger
}

// ParseAPIKey splits a 'host:token' credential.
func ParseAPIKey(apiKey string) (host, token string, err error) {
	if apiKey == "" {
		return "", "", ErrNotConfigured
	}
	parts := strings.SplitN(apiKey, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", ErrBadCredentialFormat
	}
	return parts[0], parts[1], nil
}

// New builds a client. It fails fast on a malformed credential and performs
// no network I/O.
func New(apiKey string, store *storage.Store, requestTimeout time.Duration, log *logrus.Logger) (*Client, error) {
	host, token, err := ParseAPIKey(apiKey)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: fmt.Sprintf("https://%s/api", host),
		token:   token,
		http:    &http.Client{Timeout: requestTimeout},
		store:   store,
		log:     log,
	}, nil
}

// Connect probes the credential against the remote user endpoint.
func (c *Client) Connect(ctx context.Context) error {
	var self struct {
		ID string `json:"_id"`
	}
	if err := c.getJSON(ctx, "/users/self", &self); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return nil
}

// GetAcquisition returns acquisition metadata and its file list.
func (c *Client) GetAcquisition(ctx context.Context, acquisitionID string) (*Acquisition, error) {
	container, err := c.getContainer(ctx, "/acquisitions/"+url.PathEscape(acquisitionID))
	if err != nil {
		return nil, wrapContainerError(err, "acquisition "+acquisitionID)
	}
	acq := toAcquisition(container)
	return &acq, nil
}

// SearchBySession returns all acquisitions of a session with their files.
func (c *Client) SearchBySession(ctx context.Context, sessionID string) (*SessionAcquisitions, error) {
	sess, err := c.getContainer(ctx, "/sessions/"+url.PathEscape(sessionID))
	if err != nil {
		return nil, wrapContainerError(err, "session "+sessionID)
	}

	var containers []apiContainer
	if err := c.getJSON(ctx, "/sessions/"+url.PathEscape(sessionID)+"/acquisitions", &containers); err != nil {
		return nil, wrapContainerError(err, "acquisitions of session "+sessionID)
	}

	result := &SessionAcquisitions{
		SessionID:    sessionID,
		SessionLabel: sess.Label,
		Acquisitions: make([]Acquisition, 0, len(containers)),
	}
	for _, container := range containers {
		result.Acquisitions = append(result.Acquisitions, toAcquisition(container))
	}
	return result, nil
}

// Download fetches the named files of an acquisition into the content store
// under sub-<subject>/ses-<session>/acq-<label>. Each file succeeds or fails
// on its own; the call errors only when every requested file failed.
func (c *Client) Download(ctx context.Context, acquisitionID string, filenames []string) (*DownloadResult, error) {
	acq, err := c.getContainer(ctx, "/acquisitions/"+url.PathEscape(acquisitionID))
	if err != nil {
		if isAccessDenied(err) {
			return nil, fmt.Errorf("%w: acquisition %s. Your API key may have read-only access. Try using a session ID instead, or request write permissions from your Flywheel admin", ErrAccessDenied, acquisitionID)
		}
		return nil, wrapContainerError(err, "acquisition "+acquisitionID)
	}

	downloadDir := c.downloadDir(ctx, acq)

	result := &DownloadResult{
		AcquisitionID: acquisitionID,
		CachePath:     downloadDir,
		Downloaded:    []string{},
		Errors:        []string{},
	}

	for _, filename := range filenames {
		if !hasFile(acq, filename) {
			result.Errors = append(result.Errors, filename+": not found in acquisition")
			continue
		}

		relPath := path.Join(downloadDir, filename)
		if err := c.downloadFile(ctx, acq.ID, filename, relPath); err != nil {
			if isAccessDenied(err) {
				result.Errors = append(result.Errors, filename+": Access denied - read-only API key")
			} else {
				result.Errors = append(result.Errors, filename+": "+err.Error())
			}
			continue
		}
		result.Downloaded = append(result.Downloaded, relPath)
	}

	if len(result.Downloaded) == 0 && len(result.Errors) > 0 {
		return nil, ErrAllDownloadsFailed
	}
	return result, nil
}

// downloadDir resolves the subject/session hierarchy for organized storage,
// falling back to "unknown" segments when the hierarchy is unavailable.
func (c *Client) downloadDir(ctx context.Context, acq apiContainer) string {
	subLabel := "unknown"
	sesLabel := "unknown"
	acqLabel := slug.Make(acq.Label, fallbackLabel(acq.ID, "acq"))

	if acq.Parents.Session != "" && acq.Parents.Subject != "" {
		sess, errSess := c.getContainer(ctx, "/sessions/"+url.PathEscape(acq.Parents.Session))
		subj, errSubj := c.getContainer(ctx, "/subjects/"+url.PathEscape(acq.Parents.Subject))
		if errSess == nil && errSubj == nil {
			subLabel = slug.Make(subj.Label, "sub")
			sesLabel = slug.Make(sess.Label, "ses")
		} else {
			c.log.Warnf("Hierarchy lookup failed for acquisition %s, using fallback segments", acq.ID)
		}
	}

	return path.Join("sub-"+subLabel, "ses-"+sesLabel, "acq-"+acqLabel)
}

func (c *Client) downloadFile(ctx context.Context, acquisitionID, filename, relPath string) error {
	endpoint := fmt.Sprintf("/acquisitions/%s/files/%s", url.PathEscape(acquisitionID), url.PathEscape(filename))
	resp, err := c.do(ctx, endpoint)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	if _, err := c.store.SaveAt(relPath, resp.Body); err != nil {
		return err
	}
	return nil
}

func (c *Client) getContainer(ctx context.Context, endpoint string) (apiContainer, error) {
	var container apiContainer
	err := c.getJSON(ctx, endpoint, &container)
	return container, err
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	resp, err := c.do(ctx, endpoint)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) do(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "scitran-user "+c.token)
	return c.http.Do(req)
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := strings.TrimSpace(string(body))
	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	case http.StatusForbidden, http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrAccessDenied, msg)
	default:
		if strings.Contains(strings.ToLower(msg), "permission") || strings.Contains(strings.ToLower(msg), "access") {
			return fmt.Errorf("%w: %s", ErrAccessDenied, msg)
		}
		return fmt.Errorf("remote returned %d: %s", resp.StatusCode, msg)
	}
}

func wrapContainerError(err error, what string) error {
	return fmt.Errorf("cannot get %s: %w", what, err)
}

func isAccessDenied(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrAccessDenied) || strings.Contains(err.Error(), "403")
}

func hasFile(acq apiContainer, filename string) bool {
	for _, f := range acq.Files {
		if f.Name == filename {
			return true
		}
	}
	return false
}

func toAcquisition(container apiContainer) Acquisition {
	files := make([]FileInfo, 0, len(container.Files))
	for _, f := range container.Files {
		measurement := f.Classification["Measurement"]
		if measurement == nil {
			measurement = []string{}
		}
		files = append(files, FileInfo{
			Name:        f.Name,
			Type:        f.Type,
			Size:        f.Size,
			Measurement: measurement,
		})
	}
	return Acquisition{
		ID:    container.ID,
		Label: container.Label,
		Files: files,
	}
}

func fallbackLabel(id, fallback string) string {
	if id != "" {
		return id
	}
	return fallback
}
