package congress

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultBaseURL = "https://api.congress.gov/v3"
	defaultTimeout = 30 * time.Second

	// The upstream list endpoints cap page size at 250; 100 matches
	// the poller's expected volume per lookback window.
	listLimit = 100
)

// Client handles communication with the Congress.gov v3 API.
// It performs no retries; retry policy belongs to the caller.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a Congress.gov API client
func NewClient(apiKey string) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

// NewClientWithBaseURL creates a client against a custom endpoint,
// used by tests to point at a local server.
func NewClientWithBaseURL(apiKey, baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{baseURL: baseURL, apiKey: apiKey, client: httpClient}
}

// BillRecord is a bill as returned by the upstream list endpoint
type BillRecord struct {
	Congress     int    `json:"congress"`
	Type         string `json:"type"`
	Number       int    `json:"number"`
	Title        string `json:"title"`
	LatestAction struct {
		Text       string `json:"text"`
		ActionDate string `json:"actionDate"`
	} `json:"latestAction"`
	PolicyArea struct {
		Name string `json:"name"`
	} `json:"policyArea"`
	URL        string `json:"url"`
	UpdateDate string `json:"updateDate"`
}

// VoteRecord is a roll-call vote as returned by the upstream list endpoint
type VoteRecord struct {
	Congress    int    `json:"congress"`
	Session     int    `json:"session"`
	Chamber     string `json:"chamber"`
	RollNumber  int    `json:"rollNumber"`
	Question    string `json:"question"`
	Description string `json:"description"`
	Result      string `json:"result"`
	Date        string       `json:"date"`
	Bill        *VoteBillRef `json:"bill"`
}

// VoteBillRef is the optional link from a vote to the bill it concerns
type VoteBillRef struct {
	Congress int    `json:"congress"`
	Type     string `json:"type"`
	Number   int    `json:"number"`
}

// MemberVote is a single member's position on one roll call
type MemberVote struct {
	Member struct {
		BioguideID string `json:"bioguideId"`
		Name       string `json:"name"`
	} `json:"member"`
	VotePosition string `json:"votePosition"`
}

// RollCallKey identifies one roll call on the upstream voters endpoint
type RollCallKey struct {
	Congress       int
	SessionNumber  int
	Chamber        string
	RollCallNumber int
}

type billsResponse struct {
	Bills []BillRecord `json:"bills"`
}

type votesResponse struct {
	Votes []VoteRecord `json:"votes"`
}

type votersResponse struct {
	Vote struct {
		Congress   int    `json:"congress"`
		Session    int    `json:"session"`
		Chamber    string `json:"chamber"`
		RollNumber int    `json:"rollNumber"`
	} `json:"vote"`
	MemberVotes []MemberVote `json:"memberVotes"`
}

// FetchRecentBills retrieves bills updated since the given watermark
func (c *Client) FetchRecentBills(ctx context.Context, since time.Time) ([]BillRecord, error) {
	endpoint := fmt.Sprintf("%s/bill?%s", c.baseURL, c.listQuery("updateDate+desc", since))

	body, err := c.get(ctx, "fetch bills", endpoint)
	if err != nil {
		return nil, err
	}

	var resp billsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse bills response: %w", err)
	}

	return resp.Bills, nil
}

// FetchRecentVotes retrieves roll-call votes taken since the given watermark
func (c *Client) FetchRecentVotes(ctx context.Context, since time.Time) ([]VoteRecord, error) {
	endpoint := fmt.Sprintf("%s/vote?%s", c.baseURL, c.listQuery("date+desc", since))

	body, err := c.get(ctx, "fetch votes", endpoint)
	if err != nil {
		return nil, err
	}

	var resp votesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse votes response: %w", err)
	}

	return resp.Votes, nil
}

// FetchVoterPositions retrieves every member's position on one roll call
func (c *Client) FetchVoterPositions(ctx context.Context, key RollCallKey) ([]MemberVote, error) {
	endpoint := fmt.Sprintf("%s/vote/%d/%s/%d/%d/voters?api_key=%s",
		c.baseURL, key.Congress, key.Chamber, key.SessionNumber, key.RollCallNumber,
		url.QueryEscape(c.apiKey))

	op := fmt.Sprintf("fetch positions for %d-%s-%d-%d",
		key.Congress, key.Chamber, key.SessionNumber, key.RollCallNumber)

	body, err := c.get(ctx, op, endpoint)
	if err != nil {
		return nil, err
	}

	var resp votersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse voters response: %w", err)
	}

	return resp.MemberVotes, nil
}

// listQuery builds the shared query string for the list endpoints
func (c *Client) listQuery(sort string, since time.Time) string {
	return fmt.Sprintf("limit=%d&sort=%s&fromDateTime=%s&api_key=%s",
		listLimit, sort,
		url.QueryEscape(since.UTC().Format(time.RFC3339)),
		url.QueryEscape(c.apiKey))
}

// get performs a single HTTP GET with no retries
func (c *Client) get(ctx context.Context, op, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Op: op, StatusCode: resp.StatusCode}
	}

	return body, nil
}
