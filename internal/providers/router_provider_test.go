package providers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dummyHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	})
}

func serve(route http.Handler, method string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/test", nil)
	rr := httptest.NewRecorder()
	route.ServeHTTP(rr, req)
	return rr
}

func TestRouterProvider_GetAddsRoute(t *testing.T) {
	rp := NewRouterProvider()
	rp.Get("/library", dummyHandler("ok"))

	routes := rp.GetRoutes()
	require.Len(t, routes, 1)
	assert.Equal(t, "/library", routes[0].Url)
}

func TestRouterProvider_PostAddsRoute(t *testing.T) {
	rp := NewRouterProvider()
	rp.Post("/library/refresh", dummyHandler("ok"))

	routes := rp.GetRoutes()
	require.Len(t, routes, 1)
	assert.Equal(t, "/library/refresh", routes[0].Url)
}

func TestRouterProvider_MultipleRoutesKeepOrder(t *testing.T) {
	rp := NewRouterProvider()
	rp.Get("/a", dummyHandler("a"))
	rp.Post("/b", dummyHandler("b"))
	rp.Get("/c", dummyHandler("c"))

	routes := rp.GetRoutes()
	require.Len(t, routes, 3)
	assert.Equal(t, "/a", routes[0].Url)
	assert.Equal(t, "/b", routes[1].Url)
	assert.Equal(t, "/c", routes[2].Url)
}

func TestRouterProvider_SameUrlSeveralMethods(t *testing.T) {
	rp := NewRouterProvider()
	rp.Get("/watchlist", dummyHandler("list"))
	rp.Post("/watchlist", dummyHandler("add"))
	rp.Delete("/watchlist", dummyHandler("remove"))

	routes := rp.GetRoutes()
	require.Len(t, routes, 1)

	h := routes[0].Handler
	assert.Equal(t, "list", serve(h, http.MethodGet).Body.String())
	assert.Equal(t, "add", serve(h, http.MethodPost).Body.String())
	assert.Equal(t, "remove", serve(h, http.MethodDelete).Body.String())
}

func TestRouterProvider_GetRouteRejectsPost(t *testing.T) {
	rp := NewRouterProvider()
	rp.Get("/test", dummyHandler("ok"))

	rr := serve(rp.GetRoutes()[0].Handler, http.MethodPost)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "GET", rr.Header().Get("Allow"))
}

func TestRouterProvider_PostRouteRejectsGet(t *testing.T) {
	rp := NewRouterProvider()
	rp.Post("/submit", dummyHandler("ok"))

	rr := serve(rp.GetRoutes()[0].Handler, http.MethodGet)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestMethodHandler_AllowHeaderListsMethods(t *testing.T) {
	h := methodHandler(map[string]http.Handler{
		http.MethodPost:   dummyHandler("p"),
		http.MethodDelete: dummyHandler("d"),
	})

	rr := serve(h, http.MethodPut)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "DELETE, POST", rr.Header().Get("Allow"))
}
