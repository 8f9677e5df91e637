package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestClassify(t *testing.T) {
	Convey("Given error statuses", t, func() {
		cases := []struct {
			status   int
			kind     string
			severity string
		}{
			{http.StatusBadRequest, "client_error", "medium"},
			{http.StatusNotFound, "not_found", "medium"},
			{http.StatusInternalServerError, "server_error", "high"},
			{http.StatusBadGateway, "upstream_error", "medium"},
			{http.StatusServiceUnavailable, "unavailable", "high"},
		}
		for _, tc := range cases {
			kind, severity := classify(tc.status)
			So(kind, ShouldEqual, tc.kind)
			So(severity, ShouldEqual, tc.severity)
		}
	})
}

func TestMetricsMiddleware(t *testing.T) {
	Convey("Given a wrapped handler that fails upstream", t, func() {
		h := MetricsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusBadGateway, "upstream_error", nil)
		}, "scores")

		req := httptest.NewRequest(http.MethodPost, "/scores", nil)
		w := httptest.NewRecorder()
		h(w, req)

		Convey("Then the status and body pass through", func() {
			So(w.Code, ShouldEqual, http.StatusBadGateway)
			So(w.Body.String(), ShouldContainSubstring, "Bad Gateway")
		})
	})
}
