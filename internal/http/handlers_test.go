package http

import (
    "net/http/httptest"
    "testing"

    "github.com/gin-gonic/gin"
    "github.com/google/uuid"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func testCtx(t *testing.T, target string) (*gin.Context, *httptest.ResponseRecorder) {
    t.Helper()
    gin.SetMode(gin.TestMode)
    w := httptest.NewRecorder()
    c, _ := gin.CreateTestContext(w)
    c.Request = httptest.NewRequest("GET", target, nil)
    return c, w
}

func TestSplitCSV(t *testing.T) {
    assert.Nil(t, splitCSV(""))
    assert.Nil(t, splitCSV("  "))
    assert.Equal(t, []string{"a", "b"}, splitCSV("a, b,"))
}

func TestParseFilterRequiresDates(t *testing.T) {
    c, w := testCtx(t, "/api/v1/workload")
    _, ok := parseFilter(c)
    assert.False(t, ok)
    assert.Equal(t, 400, w.Code)

    c, w = testCtx(t, "/api/v1/workload?from=2024-01-01&to=bogus")
    _, ok = parseFilter(c)
    assert.False(t, ok)
    assert.Equal(t, 400, w.Code)
}

func TestParseFilterSelections(t *testing.T) {
    teamID := uuid.New()
    c, _ := testCtx(t, "/api/v1/workload?from=2024-01-01&to=2024-01-07&users=a@x,b@x&projects=p1&teams="+teamID.String())
    f, ok := parseFilter(c)
    require.True(t, ok)
    assert.Equal(t, "2024-01-01", f.From.Format("2006-01-02"))
    assert.Equal(t, "2024-01-07", f.To.Format("2006-01-02"))
    assert.Equal(t, []string{"a@x", "b@x"}, f.Users)
    assert.Equal(t, []string{"p1"}, f.Projects)
    require.Len(t, f.Teams, 1)
    assert.Equal(t, teamID, f.Teams[0])
}

func TestParseFilterRejectsBadTeamID(t *testing.T) {
    c, w := testCtx(t, "/api/v1/workload?from=2024-01-01&to=2024-01-07&teams=not-a-uuid")
    _, ok := parseFilter(c)
    assert.False(t, ok)
    assert.Equal(t, 400, w.Code)
}
