package lawapi

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"jonglaw/pkg/config"

	"go.uber.org/zap"
)

// Client talks to the law.go.kr DRF open API. Search and detail endpoints
// return XML with Korean element names; a misconfigured OC id makes the
// service answer with an HTML error page instead, which must be reported
// distinctly from a plain parse failure.
type Client struct {
	baseURL    string
	ocID       string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg *config.LawAPIConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		ocID:       cfg.OCID,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// LawSummary is one row of a statute search result.
type LawSummary struct {
	Name            string `xml:"법령명한글"`
	MST             string `xml:"법령일련번호"`
	EnforcementDate string `xml:"시행일자"`
	AmendmentType   string `xml:"제개정구분명"`
}

// PrecedentSummary is one row of a precedent search result.
type PrecedentSummary struct {
	ID       string `xml:"판례일련번호"`
	CaseName string `xml:"사건명"`
	CaseNo   string `xml:"사건번호"`
	Court    string `xml:"법원명"`
	Date     string `xml:"선고일자"`
}

// LawDetail is the full statute body: article units with the four-level
// 조문 > 항 > 호 > 목 decomposition.
type LawDetail struct {
	Name     string    `xml:"기본정보>법령명_한글"`
	Articles []Article `xml:"조문>조문단위"`
}

type Article struct {
	Title      string      `xml:"조문제목"`
	Content    string      `xml:"조문내용"`
	Paragraphs []Paragraph `xml:"항"`
}

type Paragraph struct {
	No      string `xml:"항번호"`
	Content string `xml:"항내용"`
	Items   []Item `xml:"호"`
}

type Item struct {
	No       string    `xml:"호번호"`
	Content  string    `xml:"호내용"`
	SubItems []SubItem `xml:"목"`
}

type SubItem struct {
	No      string `xml:"목번호"`
	Content string `xml:"목내용"`
}

// PrecedentDetail is the full text of a single court decision.
type PrecedentDetail struct {
	CaseName     string `xml:"사건명"`
	CaseNo       string `xml:"사건번호"`
	Court        string `xml:"법원명"`
	Date         string `xml:"선고일자"`
	JudgmentType string `xml:"선고"`
	Holdings     string `xml:"판시사항"`
	Summary      string `xml:"판결요지"`
	FullText     string `xml:"전문"`
}

type lawSearchResponse struct {
	XMLName xml.Name     `xml:"LawSearch"`
	Laws    []LawSummary `xml:"law"`
}

type precSearchResponse struct {
	XMLName    xml.Name           `xml:"PrecSearch"`
	Precedents []PrecedentSummary `xml:"prec"`
}

type lawDetailResponse struct {
	XMLName xml.Name `xml:"법령"`
	LawDetail
}

type precDetailResponse struct {
	XMLName xml.Name `xml:"판례정보"`
	PrecedentDetail
}

// SearchLaws searches statutes by name.
func (c *Client) SearchLaws(ctx context.Context, query string, page int) ([]LawSummary, error) {
	body, err := c.get(ctx, "/lawSearch.do", url.Values{
		"OC":      {c.ocID},
		"target":  {"law"},
		"type":    {"XML"},
		"query":   {query},
		"page":    {fmt.Sprint(page)},
		"display": {"20"},
	})
	if err != nil {
		return nil, err
	}

	var resp lawSearchResponse
	if err := c.parse(body, &resp); err != nil {
		return nil, fmt.Errorf("law search: %w", err)
	}
	return resp.Laws, nil
}

// SearchPrecedents searches court decisions by free text.
func (c *Client) SearchPrecedents(ctx context.Context, query string, page int) ([]PrecedentSummary, error) {
	body, err := c.get(ctx, "/lawSearch.do", url.Values{
		"OC":      {c.ocID},
		"target":  {"prec"},
		"type":    {"XML"},
		"query":   {query},
		"page":    {fmt.Sprint(page)},
		"display": {"20"},
	})
	if err != nil {
		return nil, err
	}

	var resp precSearchResponse
	if err := c.parse(body, &resp); err != nil {
		return nil, fmt.Errorf("precedent search: %w", err)
	}
	return resp.Precedents, nil
}

// GetLawDetail fetches the full statute text by MST (law master serial number).
func (c *Client) GetLawDetail(ctx context.Context, mst string) (*LawDetail, error) {
	body, err := c.get(ctx, "/lawService.do", url.Values{
		"OC":       {c.ocID},
		"target":   {"law"},
		"type":     {"XML"},
		"MST":      {mst},
		"mobileYn": {"Y"},
	})
	if err != nil {
		return nil, err
	}

	var resp lawDetailResponse
	if err := c.parse(body, &resp); err != nil {
		return nil, fmt.Errorf("law detail: %w", err)
	}
	return &resp.LawDetail, nil
}

// GetPrecedentDetail fetches the full decision text by precedent id.
func (c *Client) GetPrecedentDetail(ctx context.Context, precID string) (*PrecedentDetail, error) {
	body, err := c.get(ctx, "/lawService.do", url.Values{
		"OC":       {c.ocID},
		"target":   {"prec"},
		"type":     {"XML"},
		"ID":       {precID},
		"mobileYn": {"Y"},
	})
	if err != nil {
		return nil, err
	}

	var resp precDetailResponse
	if err := c.parse(body, &resp); err != nil {
		return nil, fmt.Errorf("precedent detail: %w", err)
	}
	return &resp.PrecedentDetail, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("law API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("law API returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func (c *Client) parse(body []byte, out any) error {
	if err := xml.Unmarshal(body, out); err != nil {
		if strings.Contains(strings.ToLower(string(body)), "<html") {
			return fmt.Errorf("law API returned an HTML error page instead of XML, check the LAW_OC_ID setting (oc=%s)", c.ocID)
		}
		return fmt.Errorf("failed to parse law API response: %w", err)
	}
	return nil
}

// BestMatch selects the result to use for a law name: an exact name match
// wins over everything else, otherwise the first result stands in. Returns
// nil when the result set is empty. The first-result fallback can pick an
// unrelated law when no exact match exists; that risk is accepted.
func BestMatch(results []LawSummary, lawName string) *LawSummary {
	for i := range results {
		if results[i].Name == lawName {
			return &results[i]
		}
	}
	if len(results) > 0 {
		return &results[0]
	}
	return nil
}
