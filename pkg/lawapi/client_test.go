package lawapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jonglaw/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const lawSearchXML = `<?xml version="1.0" encoding="UTF-8"?>
<LawSearch>
	<law>
		<법령명한글>민법</법령명한글>
		<법령일련번호>248929</법령일련번호>
		<시행일자>20250101</시행일자>
		<제개정구분명>일부개정</제개정구분명>
	</law>
	<law>
		<법령명한글>민법 시행령</법령명한글>
		<법령일련번호>248930</법령일련번호>
		<시행일자>20240601</시행일자>
		<제개정구분명>타법개정</제개정구분명>
	</law>
</LawSearch>`

const precSearchXML = `<?xml version="1.0" encoding="UTF-8"?>
<PrecSearch>
	<prec>
		<판례일련번호>98765</판례일련번호>
		<사건명>손해배상(기)</사건명>
		<사건번호>2020다12345</사건번호>
		<법원명>대법원</법원명>
		<선고일자>2021.03.15</선고일자>
	</prec>
</PrecSearch>`

const lawDetailXML = `<?xml version="1.0" encoding="UTF-8"?>
<법령>
	<기본정보>
		<법령명_한글>민법</법령명_한글>
	</기본정보>
	<조문>
		<조문단위>
			<조문제목>제750조(불법행위의 내용)</조문제목>
			<조문내용>고의 또는 과실로 인한 위법행위로...</조문내용>
			<항>
				<항번호>①</항번호>
				<항내용>항 내용</항내용>
			</항>
		</조문단위>
	</조문>
</법령>`

const precDetailXML = `<?xml version="1.0" encoding="UTF-8"?>
<판례정보>
	<사건명>손해배상(기)</사건명>
	<사건번호>2020다12345</사건번호>
	<법원명>대법원</법원명>
	<선고일자>2021.03.15</선고일자>
	<선고>선고</선고>
	<판시사항>판시사항 본문</판시사항>
	<판결요지>판결요지 본문</판결요지>
	<전문>전문 본문</전문>
</판례정보>`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(&config.LawAPIConfig{
		BaseURL: srv.URL,
		OCID:    "test",
		Timeout: 5 * time.Second,
	}, zap.NewNop())
}

func TestSearchLaws(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/lawSearch.do", r.URL.Path)
		assert.Equal(t, "law", r.URL.Query().Get("target"))
		assert.Equal(t, "test", r.URL.Query().Get("OC"))
		w.Write([]byte(lawSearchXML))
	})

	results, err := client.SearchLaws(context.Background(), "민법", 1)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "민법", results[0].Name)
	assert.Equal(t, "248929", results[0].MST)
	assert.Equal(t, "20250101", results[0].EnforcementDate)
	assert.Equal(t, "일부개정", results[0].AmendmentType)
}

func TestSearchPrecedents(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "prec", r.URL.Query().Get("target"))
		w.Write([]byte(precSearchXML))
	})

	results, err := client.SearchPrecedents(context.Background(), "손해배상", 1)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "98765", results[0].ID)
	assert.Equal(t, "손해배상(기)", results[0].CaseName)
	assert.Equal(t, "대법원", results[0].Court)
}

func TestGetLawDetail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/lawService.do", r.URL.Path)
		assert.Equal(t, "248929", r.URL.Query().Get("MST"))
		w.Write([]byte(lawDetailXML))
	})

	detail, err := client.GetLawDetail(context.Background(), "248929")

	require.NoError(t, err)
	assert.Equal(t, "민법", detail.Name)
	require.Len(t, detail.Articles, 1)
	assert.Equal(t, "제750조(불법행위의 내용)", detail.Articles[0].Title)
	require.Len(t, detail.Articles[0].Paragraphs, 1)
	assert.Equal(t, "①", detail.Articles[0].Paragraphs[0].No)
}

func TestGetPrecedentDetail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "98765", r.URL.Query().Get("ID"))
		w.Write([]byte(precDetailXML))
	})

	detail, err := client.GetPrecedentDetail(context.Background(), "98765")

	require.NoError(t, err)
	assert.Equal(t, "손해배상(기)", detail.CaseName)
	assert.Equal(t, "판시사항 본문", detail.Holdings)
	assert.Equal(t, "판결요지 본문", detail.Summary)
	assert.Equal(t, "전문 본문", detail.FullText)
}

func TestHTMLErrorPageIsReportedDistinctly(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>서비스 이용이 제한되었습니다</body></html>"))
	})

	_, err := client.SearchLaws(context.Background(), "민법", 1)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "LAW_OC_ID")
}

func TestNonOKStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.SearchLaws(context.Background(), "민법", 1)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestBestMatch(t *testing.T) {
	results := []LawSummary{
		{Name: "민법 시행령", MST: "1"},
		{Name: "민법", MST: "2"},
	}

	// Exact name match wins over result order.
	match := BestMatch(results, "민법")
	require.NotNil(t, match)
	assert.Equal(t, "2", match.MST)

	// No exact match falls back to the first result.
	match = BestMatch(results, "상법")
	require.NotNil(t, match)
	assert.Equal(t, "1", match.MST)

	assert.Nil(t, BestMatch(nil, "민법"))
}
