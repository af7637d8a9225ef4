package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"talent-marketplace/internal/directory"
	"talent-marketplace/internal/domain"
	"talent-marketplace/internal/session"
	"talent-marketplace/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDirectory struct {
	devs      []domain.DeveloperProfile
	developer *domain.PublicDeveloperProfile
	err       error
}

func (s stubDirectory) ListDevelopers(ctx context.Context) ([]domain.DeveloperProfile, error) {
	return s.devs, s.err
}

func (s stubDirectory) ListPublicDevelopers(ctx context.Context) ([]domain.PublicDeveloperProfile, error) {
	out := make([]domain.PublicDeveloperProfile, 0, len(s.devs))
	for _, d := range s.devs {
		out = append(out, d.PublicDeveloperProfile)
	}
	return out, s.err
}

func (s stubDirectory) ListCompanies(ctx context.Context) ([]domain.CompanyProfile, error) {
	return nil, s.err
}

func (s stubDirectory) GetPublicDeveloper(ctx context.Context, id string) (*domain.PublicDeveloperProfile, error) {
	return s.developer, s.err
}

func (s stubDirectory) GetPublicCompany(ctx context.Context, id string) (*domain.CompanyProfile, error) {
	return nil, s.err
}

func newTestEngine(t *testing.T, snap *session.Snapshot) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	tmpl, err := loadTemplates()
	require.NoError(t, err)
	r.SetHTMLTemplate(tmpl)
	if snap != nil {
		r.Use(func(c *gin.Context) {
			c.Set(string(domain.KeySnapshot), *snap)
			c.Next()
		})
	}
	return r
}

func flashOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	for _, ck := range w.Result().Cookies() {
		if ck.Name == flashCookie {
			v, err := url.QueryUnescape(ck.Value)
			require.NoError(t, err)
			return v
		}
	}
	return ""
}

func developerSnapshot() *session.Snapshot {
	return &session.Snapshot{
		AccountID: "acc-1",
		Profile: &domain.Profile{
			UserProfile: domain.UserProfile{AccountID: "acc-1", Role: domain.RoleDeveloper},
			Developer:   &domain.DeveloperProfile{PublicDeveloperProfile: domain.PublicDeveloperProfile{FullName: "Ada"}},
		},
	}
}

func TestPublicDeveloper_MissingAndFailedAreDistinct(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		notice string
	}{
		{"not found", domain.ErrNotFound, noticeNotFound},
		{"store down", apperror.Unavailable("Service temporarily unavailable", errors.New("timeout")), noticeLoadFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestEngine(t, developerSnapshot())
			ph := &publicHandler{directory: stubDirectory{err: tc.err}}
			r.GET("/developer/:id", ph.developer)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/developer/not-a-uuid", nil))

			assert.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, "/developers", w.Header().Get("Location"))
			assert.Equal(t, "error|"+tc.notice, flashOf(t, w))
		})
	}
}

func TestFlash_SurvivesRedirect(t *testing.T) {
	r := newTestEngine(t, nil)
	var got *Flash
	r.GET("/from", func(c *gin.Context) { redirectWith(c, "/to", "error", "Profile not found | retry") })
	r.GET("/to", func(c *gin.Context) { got = takeFlash(c) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/from", nil))
	require.Equal(t, http.StatusSeeOther, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/to", nil)
	for _, ck := range w.Result().Cookies() {
		req.AddCookie(ck)
	}
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	assert.Equal(t, Flash{Kind: "error", Message: "Profile not found | retry"}, *got)
}

func TestPublicDeveloper_Renders(t *testing.T) {
	bio := "Compilers & <tools>"
	r := newTestEngine(t, developerSnapshot())
	ph := &publicHandler{directory: stubDirectory{developer: &domain.PublicDeveloperProfile{
		ID: "d1", FullName: "Grace Hopper", Bio: &bio, Skills: []string{"COBOL"},
	}}}
	r.GET("/developer/:id", ph.developer)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/developer/d1", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Grace Hopper")
	assert.Contains(t, body, "COBOL")
	assert.Contains(t, body, "Compilers &amp; &lt;tools&gt;")
}

func TestDevelopers_EmptyStates(t *testing.T) {
	devs := []domain.DeveloperProfile{
		{PublicDeveloperProfile: domain.PublicDeveloperProfile{ID: "1", FullName: "Ada", Skills: []string{"Go"}}, Email: "ada@example.com"},
	}
	cases := []struct {
		name  string
		dir   stubDirectory
		query string
		want  string
	}{
		{"ready", stubDirectory{devs: devs}, "", "ada@example.com"},
		{"empty", stubDirectory{}, "", "No profiles yet."},
		{"no matches", stubDirectory{devs: devs}, "?skill=rust", "Nothing matches your filters."},
		{"load failed", stubDirectory{err: errors.New("boom")}, "", "Could not load the list."},
		{"table", stubDirectory{devs: devs}, "?view=table", "<table>"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestEngine(t, developerSnapshot())
			dh := &directoryHandler{directory: tc.dir}
			r.GET("/developers", dh.developers)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/developers"+tc.query, nil))

			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), tc.want)
		})
	}
}

func TestPublicDevelopers_HideEmail(t *testing.T) {
	devs := []domain.DeveloperProfile{
		{PublicDeveloperProfile: domain.PublicDeveloperProfile{ID: "1", FullName: "Ada"}, Email: "ada@example.com"},
	}
	r := newTestEngine(t, nil)
	dh := &directoryHandler{directory: stubDirectory{devs: devs}}
	r.GET("/public/developers", dh.publicDevelopers)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public/developers", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ada")
	assert.NotContains(t, w.Body.String(), "ada@example.com")
	assert.NotContains(t, w.Body.String(), `href="/developer/1"`)
}

func TestRequireProfile(t *testing.T) {
	cases := []struct {
		name     string
		snap     session.Snapshot
		code     int
		location string
	}{
		{"needs setup", session.Snapshot{AccountID: "acc-1"}, http.StatusSeeOther, "/setup"},
		{"load failed", session.Snapshot{AccountID: "acc-1", Err: errors.New("timeout")}, http.StatusServiceUnavailable, ""},
		{"has profile", *developerSnapshot(), http.StatusOK, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := tc.snap
			r := newTestEngine(t, &snap)
			r.GET("/dashboard", requireProfile(), func(c *gin.Context) { c.String(http.StatusOK, "ok") })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

			assert.Equal(t, tc.code, w.Code)
			assert.Equal(t, tc.location, w.Header().Get("Location"))
		})
	}
}

func TestRequireRole_RedirectsOtherRole(t *testing.T) {
	r := newTestEngine(t, developerSnapshot())
	r.GET("/company/profile", requireRole(domain.RoleCompany), func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/company/profile", nil))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
}

func TestEditSkills(t *testing.T) {
	gin.SetMode(gin.TestMode)
	post := func(values url.Values, form *domain.DeveloperForm) bool {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/setup", strings.NewReader(values.Encode()))
		c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return editSkills(c, form)
	}

	form := &domain.DeveloperForm{Skills: []string{"Go"}}
	assert.True(t, post(url.Values{"action": {"add_skill"}, "new_skill": {"  Rust "}}, form))
	assert.Equal(t, []string{"Go", "Rust"}, form.Skills)

	assert.True(t, post(url.Values{"action": {"add_skill"}, "new_skill": {"Haskell"}}, form))
	assert.Equal(t, []string{"Go", "Rust"}, form.Skills)

	assert.True(t, post(url.Values{"remove_skill": {"Go"}}, form))
	assert.Equal(t, []string{"Rust"}, form.Skills)

	assert.False(t, post(url.Values{"full_name": {"Ada"}}, form))
}

func TestSafeNext(t *testing.T) {
	assert.Equal(t, "/developers?q=go", safeNext("/developers?q=go"))
	assert.Equal(t, "/dashboard", safeNext("https://evil.example"))
	assert.Equal(t, "/dashboard", safeNext("//evil.example"))
	assert.Equal(t, "/dashboard", safeNext(`/\evil.example`))
	assert.Equal(t, "/dashboard", safeNext(""))
}

func TestResultStateNames(t *testing.T) {
	r := directory.NewResult([]developerCard{}, 3, nil)
	assert.Equal(t, "no_matches", r.State.String())
}

type stubDeveloperProfiles struct {
	getErr error
	saves  int
}

func (s *stubDeveloperProfiles) Get(ctx context.Context, accountID string) (*domain.DeveloperProfile, error) {
	return nil, s.getErr
}

func (s *stubDeveloperProfiles) Save(ctx context.Context, accountID string, form domain.DeveloperForm) (*domain.DeveloperProfile, error) {
	s.saves++
	return &domain.DeveloperProfile{}, nil
}

func TestDeveloperSubmit_BindAndReadFailures(t *testing.T) {
	t.Run("Should reject an unreadable body without saving", func(t *testing.T) {
		profiles := &stubDeveloperProfiles{}
		r := newTestEngine(t, developerSnapshot())
		r.POST("/developer/profile", (&developerHandler{profiles: profiles}).submit)

		req := httptest.NewRequest(http.MethodPost, "/developer/profile", strings.NewReader("garbage"))
		req.Header.Set("Content-Type", "multipart/form-data")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Some fields could not be read")
		assert.Zero(t, profiles.saves)
	})

	t.Run("Should still render the form when the stored record cannot be read", func(t *testing.T) {
		profiles := &stubDeveloperProfiles{getErr: apperror.Unavailable("Could not load your profile", errors.New("timeout"))}
		r := newTestEngine(t, developerSnapshot())
		r.POST("/developer/profile", (&developerHandler{profiles: profiles}).submit)

		body := url.Values{"full_name": {"Ada"}, "action": {"add_skill"}, "new_skill": {"Haskell"}}
		req := httptest.NewRequest(http.MethodPost, "/developer/profile", strings.NewReader(body.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Haskell")
		assert.Zero(t, profiles.saves)
	})
}

func TestDeveloperDirectory_EmailSearchOnlyOnTalent(t *testing.T) {
	devs := []domain.DeveloperProfile{
		{PublicDeveloperProfile: domain.PublicDeveloperProfile{ID: "1", FullName: "Ada"}, Email: "ada@lovelace.dev"},
	}
	r := newTestEngine(t, developerSnapshot())
	dh := &directoryHandler{directory: stubDirectory{devs: devs}}
	r.GET("/developers", dh.developers)
	r.GET("/talent", dh.talent)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/developers?q=lovelace.dev", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Nothing matches your filters.")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/talent?q=lovelace.dev", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "mailto:ada@lovelace.dev")
	assert.Contains(t, w.Body.String(), `action="/talent"`)
}
