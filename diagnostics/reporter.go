// Package diagnostics provides best-effort metadata reporting.
// A Reporter accumulates key/value metadata describing the running
// process (backend kind, backend version) and uploads snapshots to a
// diagnostics endpoint. Everything here is fire-and-forget: failures
// are logged and dropped, never propagated to callers that matter.
package diagnostics

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/yllada/wg-manager/common"
)

// credsName is the credential store entry holding the endpoint's basic
// auth credentials as "login:password". Reports are sent without auth
// when the entry is absent.
const credsName = "diagnostics"

// report is the JSON document uploaded to the endpoint.
type report struct {
	ReportID string            `json:"report_id"`
	App      string            `json:"app"`
	Hostname string            `json:"hostname,omitempty"`
	Metadata map[string]string `json:"metadata"`
}

// Reporter uploads metadata snapshots to a diagnostics endpoint.
// It implements common.MetadataSink. All methods are safe for
// concurrent use.
type Reporter struct {
	mu       sync.Mutex
	url      string
	client   *http.Client
	creds    common.CredentialStore
	reportID string
	metadata map[string]string
}

var _ common.MetadataSink = (*Reporter)(nil)

// NewReporter creates a Reporter targeting url. A fresh report ID is
// generated per process, so uploads from one run coalesce server-side.
func NewReporter(url string, creds common.CredentialStore) *Reporter {
	return &Reporter{
		url:      url,
		client:   &http.Client{Timeout: common.DiagnosticsTimeout},
		creds:    creds,
		reportID: uuid.NewString(),
		metadata: make(map[string]string),
	}
}

// PutMetadata records a key/value pair and uploads the updated report.
// The upload error is returned for logging; callers must treat it as
// ignorable.
func (r *Reporter) PutMetadata(key, value string) error {
	r.mu.Lock()
	r.metadata[key] = value
	doc := report{
		ReportID: r.reportID,
		App:      common.AppID,
		Metadata: make(map[string]string, len(r.metadata)),
	}
	for k, v := range r.metadata {
		doc.Metadata[k] = v
	}
	r.mu.Unlock()

	if hostname, err := os.Hostname(); err == nil {
		doc.Hostname = hostname
	}
	return r.upload(&doc)
}

func (r *Reporter) upload(doc *report) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return common.WrapError(err, "failed to encode report")
	}

	req, err := http.NewRequest(http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return common.WrapError(err, "failed to build report request")
	}
	req.Header.Set("Content-Type", "application/json")
	r.applyAuth(req)

	resp, err := r.client.Do(req)
	if err != nil {
		return common.WrapError(err, "report upload failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("report upload rejected: %s", resp.Status)
	}
	return nil
}

// applyAuth attaches basic auth when credentials are configured.
func (r *Reporter) applyAuth(req *http.Request) {
	if r.creds == nil {
		return
	}
	raw, err := r.creds.Get(credsName)
	if err != nil {
		if !errors.Is(err, common.ErrCredentialsNotFound) {
			common.LogDebug("Diagnostics credentials unavailable: %v", err)
		}
		return
	}
	login, password, ok := strings.Cut(raw, ":")
	if !ok {
		common.LogDebug("Diagnostics credentials malformed, sending unauthenticated")
		return
	}
	req.SetBasicAuth(login, password)
}

// SetCredentials stores the endpoint's basic auth credentials.
func SetCredentials(creds common.CredentialStore, login, password string) error {
	return creds.Store(credsName, login+":"+password)
}
