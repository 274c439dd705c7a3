package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postboard/app/middleware"
	"postboard/app/models"
	"postboard/app/repositories"
	"postboard/app/services"
)

func setupTestRouter(t *testing.T) (*mux.Router, *services.Services) {
	t.Helper()
	bs, err := repositories.OpenBadger("", true, zerolog.Nop())
	require.NoError(t, err)
	store := bs.Store()
	t.Cleanup(func() { store.Close() })

	svc := services.New(store, zerolog.Nop())
	return SetupRoutes(svc, store, 10, zerolog.Nop()), svc
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

type listing struct {
	Template string `json:"template"`
	PageObj  struct {
		ObjectList []models.Post `json:"object_list"`
		Number     int           `json:"number"`
		NumPages   int           `json:"num_pages"`
		HasNext    bool          `json:"has_next"`
	} `json:"page_obj"`
}

func getListing(t *testing.T, router http.Handler, path string) listing {
	t.Helper()
	w := serve(router, httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, w.Code, path)
	var l listing
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &l))
	return l
}

func TestEndToEnd(t *testing.T) {
	router, _ := setupTestRouter(t)

	require.Equal(t, http.StatusCreated, serve(router, postJSON("/authors/", `{"username":"leo"}`)).Code)
	require.Equal(t, http.StatusCreated, serve(router, postForm("/authors/", url.Values{"username": {"anna"}})).Code)

	w := serve(router, postJSON("/groups/", `{"title":"Group one","slug":"g1"}`))
	require.Equal(t, http.StatusCreated, w.Code)
	var g1 models.Group
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &g1))
	require.Equal(t, http.StatusCreated, serve(router, postJSON("/groups/", `{"title":"Group two","slug":"g2"}`)).Code)

	for i := 0; i < 14; i++ {
		w := serve(router, postForm("/create/", url.Values{
			"author": {"anna"},
			"text":   {fmt.Sprintf("anna %d", i)},
			"group":  {strconv.Itoa(g1.ID)},
		}))
		require.Equal(t, http.StatusSeeOther, w.Code)
		require.Equal(t, "/profile/anna/", w.Header().Get("Location"))
	}

	w = serve(router, postForm("/create/", url.Values{"author": {"leo"}, "text": {"leo writes"}, "group": {strconv.Itoa(g1.ID)}}))
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/profile/leo/", w.Header().Get("Location"))

	t.Run("newest post leads every matching listing", func(t *testing.T) {
		for _, path := range []string{"/", "/group/g1/", "/profile/leo/"} {
			l := getListing(t, router, path)
			require.NotEmpty(t, l.PageObj.ObjectList, path)
			assert.Equal(t, "leo writes", l.PageObj.ObjectList[0].Text, path)
		}
		assert.Empty(t, getListing(t, router, "/group/g2/").PageObj.ObjectList)
	})

	t.Run("fifteen posts paginate into ten and five", func(t *testing.T) {
		first := getListing(t, router, "/")
		assert.Equal(t, "posts/index.html", first.Template)
		assert.Len(t, first.PageObj.ObjectList, 10)
		assert.Equal(t, 2, first.PageObj.NumPages)
		assert.True(t, first.PageObj.HasNext)

		second := getListing(t, router, "/?page=2")
		assert.Len(t, second.PageObj.ObjectList, 5)
		assert.False(t, second.PageObj.HasNext)

		beyond := getListing(t, router, "/group/g1/?page=3")
		assert.Equal(t, 2, beyond.PageObj.Number)
		assert.Len(t, beyond.PageObj.ObjectList, 5)

		garbage := getListing(t, router, "/?page=abc")
		assert.Equal(t, 1, garbage.PageObj.Number)
	})

	t.Run("edit redirects to the detail", func(t *testing.T) {
		l := getListing(t, router, "/profile/leo/")
		id := l.PageObj.ObjectList[0].ID
		w := serve(router, postForm("/posts/"+strconv.Itoa(id)+"/edit/", url.Values{"text": {"leo edits"}}))
		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/posts/"+strconv.Itoa(id)+"/", w.Header().Get("Location"))

		w = serve(router, httptest.NewRequest(http.MethodGet, "/posts/"+strconv.Itoa(id)+"/", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"text":"leo edits"`)
		assert.Contains(t, w.Body.String(), `"post_count":1`)
	})
}

func TestHealthRoutes(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ready"}`, w.Body.String())
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/nope/", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"not_found"}`, w.Body.String())

	w = serve(router, httptest.NewRequest(http.MethodDelete, "/create/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.JSONEq(t, `{"error":"method_not_allowed"}`, w.Body.String())
}

func TestMiddlewareApplied(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestRouteTable(t *testing.T) {
	router, _ := setupTestRouter(t)

	var got []string
	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		tpl, err := route.GetPathTemplate()
		if err != nil {
			return err
		}
		methods, _ := route.GetMethods()
		for _, m := range methods {
			got = append(got, m+" "+tpl)
		}
		return nil
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"GET /live",
		"GET /ready",
		"GET /",
		"GET /group/{slug}/",
		"GET /profile/{username}/",
		"GET /posts/{id:[0-9]+}/",
		"GET /create/",
		"POST /create/",
		"GET /posts/{id:[0-9]+}/edit/",
		"POST /posts/{id:[0-9]+}/edit/",
		"GET /groups/",
		"POST /groups/",
		"POST /authors/",
	}, got)
}
