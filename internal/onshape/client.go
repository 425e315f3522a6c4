package onshape

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/jlf119/app-cad-compliance/internal/domain"
	"github.com/jlf119/app-cad-compliance/internal/metrics"
)

// Credential carries the caller-supplied headers forwarded opaquely to the
// upstream service. The gateway performs no authentication of its own.
type Credential struct {
	Authorization string
	UserAgent     string
}

// Response is a raw upstream reply: status, content type and body bytes.
// The client never interprets payload semantics.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// TranslationStatus is the upstream translation-status document, reduced
// to the fields the tracker depends on.
type TranslationStatus struct {
	ID                    string   `json:"id"`
	RequestState          string   `json:"requestState"`
	DocumentID            string   `json:"documentId"`
	ResultExternalDataIDs []string `json:"resultExternalDataIds"`
	FailureReason         string   `json:"failureReason"`
}

// Upstream request states the tracker distinguishes. Anything else
// (ACTIVE, PENDING, ...) counts as still in progress.
const (
	RequestStateDone   = "DONE"
	RequestStateFailed = "FAILED"
)

// TranslationAcceptance is the upstream reply to a translation submission.
// Raw preserves the full JSON so it can be returned to the caller verbatim.
type TranslationAcceptance struct {
	ID  string
	Raw json.RawMessage
}

// Fixed export configuration for GLTF translations.
type translationRequest struct {
	Resolution              string  `json:"resolution"`
	DistanceTolerance       float64 `json:"distanceTolerance"`
	AngularTolerance        float64 `json:"angularTolerance"`
	MaximumChordLength      float64 `json:"maximumChordLength"`
	DocumentID              string  `json:"documentId"`
	WorkspaceID             string  `json:"workspaceId"`
	LinkDocumentWorkspaceID string  `json:"linkDocumentWorkspaceId"`
	ElementID               string  `json:"elementId,omitempty"`
	PartIDs                 string  `json:"partIds,omitempty"`
	IncludeExportIDs        bool    `json:"includeExportIds"`
	FormatName              string  `json:"formatName"`
	FlattenAssemblies       bool    `json:"flattenAssemblies"`
	YAxisIsUp               bool    `json:"yAxisIsUp"`
	TriggerAutoDownload     bool    `json:"triggerAutoDownload"`
	StoreInDocument         bool    `json:"storeInDocument"`
	Grouping                bool    `json:"grouping"`
	Configuration           string  `json:"configuration"`
}

// Client issues REST calls to the Onshape API on behalf of callers.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates an upstream client rooted at baseURL, e.g.
// "https://cad.onshape.com/api".
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// do performs one upstream call and classifies the outcome. acceptJSON
// must be false for binary downloads so content negotiation is left to the
// upstream endpoint.
func (c *Client) do(ctx context.Context, op, method, path string, cred Credential, query url.Values, body any, acceptJSON bool) (*Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("onshape: marshal %s body: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("onshape: build %s request: %w", op, err)
	}
	if cred.Authorization != "" {
		req.Header.Set("Authorization", cred.Authorization)
	}
	if cred.UserAgent != "" {
		req.Header.Set("User-Agent", cred.UserAgent)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if acceptJSON {
		req.Header.Set("Accept", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.UpstreamRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		c.logger.Warn("Upstream request failed", zap.String("op", op), zap.Error(err))
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	contentType := resp.Header.Get("Content-Type")
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, ContentType: contentType, Body: data}
	}
	return &Response{StatusCode: resp.StatusCode, ContentType: contentType, Body: data}, nil
}

// ListElements proxies the element listing for a document workspace.
func (c *Client) ListElements(ctx context.Context, cred Credential, documentID, workspaceID string) (*Response, error) {
	path := fmt.Sprintf("/documents/d/%s/w/%s/elements", documentID, workspaceID)
	return c.do(ctx, "list_elements", http.MethodGet, path, cred, nil, nil, true)
}

// ListElementParts proxies the part listing for one element.
func (c *Client) ListElementParts(ctx context.Context, cred Credential, documentID, workspaceID, elementID string) (*Response, error) {
	path := fmt.Sprintf("/parts/d/%s/w/%s/e/%s", documentID, workspaceID, elementID)
	return c.do(ctx, "list_element_parts", http.MethodGet, path, cred, nil, nil, true)
}

// ListParts proxies the part listing for a document workspace.
func (c *Client) ListParts(ctx context.Context, cred Credential, documentID, workspaceID string) (*Response, error) {
	path := fmt.Sprintf("/parts/d/%s/w/%s", documentID, workspaceID)
	return c.do(ctx, "list_parts", http.MethodGet, path, cred, nil, nil, true)
}

// CreateTranslation submits a GLTF export for the given source. Part
// exports go through the part-studio endpoint with a partIds list; sources
// without a part ID are treated as assembly exports.
func (c *Client) CreateTranslation(ctx context.Context, cred Credential, src domain.ModelSource) (*TranslationAcceptance, error) {
	body := translationRequest{
		Resolution:              "medium",
		DistanceTolerance:       0.00012,
		AngularTolerance:        0.1090830782496456,
		MaximumChordLength:      10,
		DocumentID:              src.DocumentID,
		WorkspaceID:             src.WorkspaceID,
		LinkDocumentWorkspaceID: src.WorkspaceID,
		FormatName:              "GLTF",
		Grouping:                true,
		Configuration:           "default",
	}

	var path string
	if src.IsAssembly() {
		path = fmt.Sprintf("/assemblies/d/%s/w/%s/e/%s/translations", src.DocumentID, src.WorkspaceID, src.ElementID)
		body.ElementID = src.ElementID
	} else {
		path = fmt.Sprintf("/partstudios/d/%s/w/%s/e/%s/translations", src.DocumentID, src.WorkspaceID, src.ElementID)
		body.PartIDs = src.PartID
	}

	resp, err := c.do(ctx, "create_translation", http.MethodPost, path, cred, nil, body, true)
	if err != nil {
		return nil, err
	}

	var accepted struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Body, &accepted); err != nil {
		return nil, fmt.Errorf("onshape: decode translation acceptance: %w", err)
	}
	return &TranslationAcceptance{ID: accepted.ID, Raw: resp.Body}, nil
}

// GetTranslation fetches the authoritative status of one translation job.
func (c *Client) GetTranslation(ctx context.Context, cred Credential, id string) (*TranslationStatus, error) {
	resp, err := c.do(ctx, "get_translation", http.MethodGet, "/translations/"+id, cred, nil, nil, true)
	if err != nil {
		return nil, err
	}
	var status TranslationStatus
	if err := json.Unmarshal(resp.Body, &status); err != nil {
		return nil, fmt.Errorf("onshape: decode translation status: %w", err)
	}
	return &status, nil
}

// DownloadExternalData retrieves the binary artifact of a finished
// translation. No Accept header is forced: the endpoint serves binary data
// and must negotiate its own content type.
func (c *Client) DownloadExternalData(ctx context.Context, cred Credential, loc domain.ResultLocation) (*Response, error) {
	path := fmt.Sprintf("/documents/d/%s/externaldata/%s", loc.DocumentID, loc.ExternalDataID)
	return c.do(ctx, "download_external_data", http.MethodGet, path, cred, nil, nil, false)
}
